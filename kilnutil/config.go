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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/kilnsim"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// getFloats reads the named configuration variables as float64s,
// accepting any value that can be cast to a number.
func getFloats(cfg *viper.Viper, names ...string) ([]float64, error) {
	o := make([]float64, len(names))
	for i, name := range names {
		v, err := cast.ToFloat64E(cfg.Get(name))
		if err != nil {
			return nil, fmt.Errorf("kilnutil: parsing config variable %s: %v", name, err)
		}
		o[i] = v
	}
	return o, nil
}

func getBool(cfg *viper.Viper, name string) (bool, error) {
	v, err := cast.ToBoolE(cfg.Get(name))
	if err != nil {
		return false, fmt.Errorf("kilnutil: parsing config variable %s: %v", name, err)
	}
	return v, nil
}

// Geometry unmarshals the kiln dimensions from a viper configuration.
func Geometry(cfg *viper.Viper) (kilnsim.Geometry, error) {
	v, err := getFloats(cfg, "Kiln.Radius", "Kiln.Length")
	if err != nil {
		return kilnsim.Geometry{}, err
	}
	return kilnsim.Geometry{Radius: v[0], Length: v[1]}, nil
}

// ControlConfig unmarshals a viper configuration for the fuel controller
// and the simulation run and checks that it is valid.
func ControlConfig(cfg *viper.Viper) (kilnsim.ControlConfig, error) {
	v, err := getFloats(cfg, "FuelRate", "FeedRate", "MotorSpeed", "Setpoint",
		"Kp", "Ki", "Kd", "MinFuelRate", "MaxFuelRate", "Dt", "Horizon",
		"InitialTemperature", "Quality.Good", "Quality.Partial")
	if err != nil {
		return kilnsim.ControlConfig{}, err
	}
	mode, err := kilnsim.ParseMode(os.ExpandEnv(cfg.GetString("Mode")))
	if err != nil {
		return kilnsim.ControlConfig{}, err
	}
	var bools [3]bool
	for i, name := range []string{"FeedCooling", "AntiWindup", "Quality.Relative"} {
		if bools[i], err = getBool(cfg, name); err != nil {
			return kilnsim.ControlConfig{}, err
		}
	}
	c := kilnsim.ControlConfig{
		BaseFuelRate:       v[0],
		FeedRate:           v[1],
		MotorSpeed:         v[2],
		Setpoint:           v[3],
		Kp:                 v[4],
		Ki:                 v[5],
		Kd:                 v[6],
		Mode:               mode,
		MinFuelRate:        v[7],
		MaxFuelRate:        v[8],
		Dt:                 v[9],
		Horizon:            v[10],
		InitialTemperature: v[11],
		FeedCooling:        bools[0],
		AntiWindup:         bools[1],
		Quality: kilnsim.QualityThresholds{
			Relative: bools[2],
			Good:     v[12],
			Partial:  v[13],
		},
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// SavingsConstants unmarshals the reference values for the savings
// estimate from a viper configuration.
func SavingsConstants(cfg *viper.Viper) (kilnsim.SavingsConstants, error) {
	v, err := getFloats(cfg, "Savings.BaselineFuelRate", "Savings.OperatingDays", "Savings.UnitPrice")
	if err != nil {
		return kilnsim.SavingsConstants{}, err
	}
	s := kilnsim.SavingsConstants{BaselineFuelRate: v[0], OperatingDays: v[1], UnitPrice: v[2]}
	if s.OperatingDays < 0 || s.OperatingDays > 366 {
		return s, fmt.Errorf("kilnutil: Savings.OperatingDays=%g but should be between 0 and 366", s.OperatingDays)
	}
	return s, nil
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file directory exists, and
// expands any environment variables. An empty name means no output.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	switch strings.ToLower(filepath.Ext(f)) {
	case ".csv", ".xlsx":
	default:
		return f, fmt.Errorf("kilnutil: OutputFile %q should end in .csv or .xlsx", f)
	}
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("kilnutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" && outputFile != "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if v == "" {
			return map[string]string{}, nil
		}
		b := bytes.NewBufferString(v)
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("kilnutil: parsing config variable %s: %v", varName, err)
		}
		return o, nil
	case nil:
		return map[string]string{}, nil
	default:
		return nil, fmt.Errorf("kilnutil: invalid type for config variable %s: %#v", varName, i)
	}
}

// fileConfig is the layout of a configuration file.
type fileConfig struct {
	Kiln struct {
		Radius float64
		Length float64
	}
	FuelRate           float64
	FeedRate           float64
	MotorSpeed         float64
	Setpoint           float64
	Kp, Ki, Kd         float64
	Mode               string
	MinFuelRate        float64
	MaxFuelRate        float64
	Dt                 float64
	Horizon            float64
	InitialTemperature float64
	FeedCooling        bool
	AntiWindup         bool
	Quality            struct {
		Relative bool
		Good     float64
		Partial  float64
	}
}

func newFileConfig(g kilnsim.Geometry, c kilnsim.ControlConfig) fileConfig {
	var f fileConfig
	f.Kiln.Radius, f.Kiln.Length = g.Radius, g.Length
	f.FuelRate = c.BaseFuelRate
	f.FeedRate = c.FeedRate
	f.MotorSpeed = c.MotorSpeed
	f.Setpoint = c.Setpoint
	f.Kp, f.Ki, f.Kd = c.Kp, c.Ki, c.Kd
	f.Mode = strings.ToLower(c.Mode.String())
	f.MinFuelRate, f.MaxFuelRate = c.MinFuelRate, c.MaxFuelRate
	f.Dt, f.Horizon = c.Dt, c.Horizon
	f.InitialTemperature = c.InitialTemperature
	f.FeedCooling, f.AntiWindup = c.FeedCooling, c.AntiWindup
	f.Quality.Relative = c.Quality.Relative
	f.Quality.Good, f.Quality.Partial = c.Quality.Good, c.Quality.Partial
	return f
}
