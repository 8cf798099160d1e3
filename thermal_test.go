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

package kilnsim

import (
	"math"
	"testing"

	"github.com/ctessum/unit"
)

const testTolerance = 1.e-8

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance {
		return true
	}
	return false
}

// scenarioGeometry is a full-size kiln.
var scenarioGeometry = Geometry{Radius: 5, Length: 80}

// smallGeometry is a kiln with a small thermal mass, which responds
// quickly enough for closed-loop behavior to show within a few hours.
var smallGeometry = Geometry{Radius: 0.5, Length: 2}

func TestGeometry(t *testing.T) {
	g := scenarioGeometry
	wantVolume := math.Pi * 25 * 80
	if different(g.Volume(), wantVolume, testTolerance) {
		t.Errorf("volume: have %g, want %g", g.Volume(), wantVolume)
	}
	c := DefaultConstants()
	wantMass := wantVolume * 1200
	if different(g.Mass(c.ClinkerDensity), wantMass, testTolerance) {
		t.Errorf("mass: have %g, want %g", g.Mass(c.ClinkerDensity), wantMass)
	}
	m := g.ThermalMass(c)
	if err := m.Check(unit.Dimensions{unit.MassDim: 1}); err != nil {
		t.Error(err)
	}
	if different(m.Value(), wantMass, testTolerance) {
		t.Errorf("thermal mass: have %g, want %g", m.Value(), wantMass)
	}
}

func TestGeometryValidate(t *testing.T) {
	for _, test := range []struct {
		g     Geometry
		field string
	}{
		{g: Geometry{Radius: 0, Length: 80}, field: "Kiln.Radius"},
		{g: Geometry{Radius: -1, Length: 80}, field: "Kiln.Radius"},
		{g: Geometry{Radius: 11, Length: 80}, field: "Kiln.Radius"},
		{g: Geometry{Radius: 5, Length: 0}, field: "Kiln.Length"},
		{g: Geometry{Radius: 5, Length: 201}, field: "Kiln.Length"},
		{g: Geometry{Radius: math.NaN(), Length: 80}, field: "Kiln.Radius"},
	} {
		_, err := New(test.g, nil, DefaultControlConfig())
		ce, ok := err.(*ConfigurationError)
		if !ok {
			t.Errorf("%+v: want a configuration error, have %v", test.g, err)
			continue
		}
		if ce.Field != test.field {
			t.Errorf("%+v: error field: have %s, want %s", test.g, ce.Field, test.field)
		}
	}
}

func TestEfficiency(t *testing.T) {
	c := DefaultConstants()
	for _, test := range []struct {
		speed, residence, efficiency float64
	}{
		{speed: 0.5, residence: 60, efficiency: 1},
		{speed: 1, residence: 30, efficiency: 1},
		{speed: 3, residence: 10, efficiency: 1. / 3},
		{speed: 10, residence: 3, efficiency: 0.1},
	} {
		if different(c.ResidenceTime(test.speed), test.residence, testTolerance) {
			t.Errorf("speed %g: residence time: have %g, want %g", test.speed, c.ResidenceTime(test.speed), test.residence)
		}
		if different(c.Efficiency(test.speed), test.efficiency, testTolerance) {
			t.Errorf("speed %g: efficiency: have %g, want %g", test.speed, c.Efficiency(test.speed), test.efficiency)
		}
	}
}

func TestTemperatureRate(t *testing.T) {
	c := DefaultConstants()
	g := scenarioGeometry
	mass := g.Mass(c.ClinkerDensity)

	t.Run("ambient", func(t *testing.T) {
		// No losses at ambient temperature.
		have := TemperatureRate(30, 600, 1500, g, c, 1./3, true)
		want := 600 * 32000. / 3600 / 3 / mass
		if different(have, want, testTolerance) {
			t.Errorf("have %g, want %g", have, want)
		}
	})
	t.Run("feed cooling", func(t *testing.T) {
		have := TemperatureRate(1030, 600, 1500, g, c, 1./3, true)
		want := (600*32000./3600/3 - 0.001*1000 - 1500*1000/mass) / mass
		if different(have, want, testTolerance) {
			t.Errorf("have %g, want %g", have, want)
		}
	})
	t.Run("no feed cooling", func(t *testing.T) {
		have := TemperatureRate(1030, 600, 1500, g, c, 1./3, false)
		want := (600*32000./3600/3 - 0.001*1000) / mass
		if different(have, want, testTolerance) {
			t.Errorf("have %g, want %g", have, want)
		}
	})
	t.Run("cooling", func(t *testing.T) {
		if r := TemperatureRate(1400, 0, 1500, g, c, 1, true); r >= 0 {
			t.Errorf("temperature should fall without fuel, have rate %g", r)
		}
	})
}

func TestProcessConstantsValidate(t *testing.T) {
	c := DefaultConstants()
	c.HeatingValue = 0
	if _, err := New(scenarioGeometry, c, DefaultControlConfig()); err == nil {
		t.Error("want an error for zero heating value")
	}
	c = DefaultConstants()
	c.HeatLossCoefficient = -1
	if _, err := New(scenarioGeometry, c, DefaultControlConfig()); err == nil {
		t.Error("want an error for negative heat loss coefficient")
	}
}
