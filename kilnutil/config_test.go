/*
Copyright © 2026 the KilnSim authors.
This file is part of KilnSim.

KilnSim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

KilnSim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with KilnSim.  If not, see <http://www.gnu.org/licenses/>.
*/

package kilnutil

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/kilnsim"
	"github.com/spf13/viper"
)

// newTestViper returns a configuration holding the default value of
// every option.
func newTestViper() *viper.Viper {
	v := viper.New()
	for _, o := range options {
		v.Set(o.name, o.defaultVal)
	}
	return v
}

func TestControlConfigDefaults(t *testing.T) {
	have, err := ControlConfig(newTestViper())
	if err != nil {
		t.Fatal(err)
	}
	want := kilnsim.DefaultControlConfig()
	if diff := pretty.Diff(have, want); len(diff) > 0 {
		t.Errorf("default configuration differs: %v", diff)
	}
	g, err := Geometry(newTestViper())
	if err != nil {
		t.Fatal(err)
	}
	if g != (kilnsim.Geometry{Radius: 5, Length: 80}) {
		t.Errorf("geometry: have %+v", g)
	}
	s, err := SavingsConstants(newTestViper())
	if err != nil {
		t.Fatal(err)
	}
	if s != kilnsim.DefaultSavingsConstants() {
		t.Errorf("savings constants: have %+v", s)
	}
}

func TestControlConfigStrings(t *testing.T) {
	v := newTestViper()
	v.Set("Kp", "2.5")
	v.Set("Mode", "Manual")
	v.Set("AntiWindup", "true")
	c, err := ControlConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kp != 2.5 || c.Mode != kilnsim.Manual || !c.AntiWindup {
		t.Errorf("have %+v", c)
	}
}

func TestControlConfigInvalid(t *testing.T) {
	v := newTestViper()
	v.Set("MotorSpeed", 0)
	_, err := ControlConfig(v)
	var ce *kilnsim.ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "MotorSpeed" {
		t.Errorf("have error %v", err)
	}

	v = newTestViper()
	v.Set("Kp", "fast")
	if _, err := ControlConfig(v); err == nil {
		t.Error("want an error for a non-numeric gain")
	}

	v = newTestViper()
	v.Set("Mode", "cruise")
	if _, err := ControlConfig(v); err == nil {
		t.Error("want an error for an invalid mode")
	}

	v = newTestViper()
	v.Set("Savings.OperatingDays", 400)
	if _, err := SavingsConstants(v); err == nil {
		t.Error("want an error for too many operating days")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	dir := t.TempDir()
	v := newTestViper()
	v.Set("OutputFile", filepath.Join(dir, "out.xlsx"))
	v.Set("ConvergenceTolerance", 0.1)
	o, err := OptionsFromConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if o.LogFile != filepath.Join(dir, "out.log") {
		t.Errorf("log file: have %s", o.LogFile)
	}
	if len(o.OutputVariables) != 4 {
		t.Errorf("output variables: have %v", o.OutputVariables)
	}
	if o.ConvergenceTolerance != 0.1 || o.ConvergencePeriod != 600 {
		t.Errorf("convergence: have %g, %g", o.ConvergenceTolerance, o.ConvergencePeriod)
	}

	v.Set("LogLevel", "loud")
	if _, err := OptionsFromConfig(v); err == nil {
		t.Error("want an error for an invalid log level")
	}
}

func TestGetStringMapString(t *testing.T) {
	// Map keys set in viper are case-insensitive.
	want := map[string]string{"a": "Temperature", "b": "FuelRate * 2"}
	v := viper.New()
	for _, in := range []interface{}{
		want,
		map[string]interface{}{"A": "Temperature", "B": "FuelRate * 2"},
		`{"a": "Temperature", "b": "FuelRate * 2"}`,
	} {
		v.Set("OutputVariables", in)
		have, err := GetStringMapString("OutputVariables", v)
		if err != nil {
			t.Errorf("%#v: %v", in, err)
			continue
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%#v: have %v, want %v", in, have, want)
		}
	}
	v.Set("OutputVariables", "{")
	if _, err := GetStringMapString("OutputVariables", v); err == nil {
		t.Error("want an error for invalid JSON")
	}
}

func TestCheckOutputFile(t *testing.T) {
	if f, err := checkOutputFile(""); f != "" || err != nil {
		t.Errorf("empty: have %q, %v", f, err)
	}
	if _, err := checkOutputFile("out.shp"); err == nil {
		t.Error("want an error for an unsupported extension")
	}
	if _, err := checkOutputFile(filepath.Join(t.TempDir(), "missing", "out.csv")); err == nil {
		t.Error("want an error for a missing directory")
	}
	t.Setenv("KILN_DIR", t.TempDir())
	f, err := checkOutputFile("${KILN_DIR}/out.csv")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(f) != "out.csv" || f[0] == '$' {
		t.Errorf("have %s", f)
	}
}

func TestCheckOutputVars(t *testing.T) {
	t.Setenv("KILN_COLUMN", "T")
	have, err := checkOutputVars(map[string]string{"${KILN_COLUMN}": "Temperature +\n 0"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"T": "Temperature +  0"}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if _, err := checkOutputVars(nil); err == nil {
		t.Error("want an error for no output variables")
	}
}
