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
	"fmt"
	"math"
	"testing"

	"github.com/ctessum/unit"
	"github.com/kr/pretty"
)

func TestClassify(t *testing.T) {
	for _, test := range []struct {
		T    float64
		q    QualityThresholds
		want Quality
	}{
		{T: 1400, q: DefaultQualityThresholds(), want: Good},
		{T: 1450, q: DefaultQualityThresholds(), want: Good},
		{T: 1300, q: DefaultQualityThresholds(), want: Partial},
		{T: 1250, q: DefaultQualityThresholds(), want: Partial},
		{T: 1249, q: DefaultQualityThresholds(), want: Poor},
		{T: 1350, q: AbsoluteQualityThresholds(), want: Good},
		{T: 1349, q: AbsoluteQualityThresholds(), want: Partial},
		{T: 1200, q: AbsoluteQualityThresholds(), want: Partial},
		{T: 1199, q: AbsoluteQualityThresholds(), want: Poor},
	} {
		if have := Classify(test.T, 1400, test.q); have != test.want {
			t.Errorf("T=%g, %+v: have %v, want %v", test.T, test.q, have, test.want)
		}
	}
	if s := fmt.Sprint(Partial); s != "Partial" {
		t.Errorf("have %s", s)
	}
}

func TestEstimateSavings(t *testing.T) {
	s := EstimateSavings(600, DefaultConstants(), DefaultSavingsConstants())
	massPerYear := unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1}
	for _, u := range []*unit.Unit{s.Fuel, s.CO2} {
		if err := u.Check(massPerYear); err != nil {
			t.Error(err)
		}
	}
	wantFuel := 100. * 330 * 24
	// Stored in kg/s over a 365-day year.
	if different(s.Fuel.Value(), wantFuel/(365*24*3600), testTolerance) {
		t.Errorf("fuel: have %g, want %g kg/s", s.Fuel.Value(), wantFuel/(365*24*3600))
	}
	if different(PerYear(s.Fuel), wantFuel, testTolerance) {
		t.Errorf("fuel: have %g, want %g kg/year", PerYear(s.Fuel), wantFuel)
	}
	if different(PerYear(s.CO2), wantFuel*3.17, testTolerance) {
		t.Errorf("CO2: have %g, want %g kg/year", PerYear(s.CO2), wantFuel*3.17)
	}
	if different(s.Money, wantFuel*15, testTolerance) {
		t.Errorf("money: have %g, want %g", s.Money, wantFuel*15)
	}

	// Running above the baseline costs more.
	s = EstimateSavings(800, DefaultConstants(), DefaultSavingsConstants())
	if PerYear(s.Fuel) >= 0 || s.Money >= 0 {
		t.Errorf("savings above the baseline should be negative: %v", s)
	}
}

func TestStatistics(t *testing.T) {
	cfg := DefaultControlConfig()
	cfg.Setpoint = 1000
	cfg.BaseFuelRate = 500
	cfg.Dt = 2
	history := []StepRecord{
		{Time: 0, Temperature: 900, ControlSignal: 100, FuelRate: 600, CO2Rate: 600 * 3.17},
		{Time: 2, Temperature: 1000, ControlSignal: 2000, FuelRate: 1500, CO2Rate: 1500 * 3.17},
		{Time: 4, Temperature: 1100, ControlSignal: -100, FuelRate: 400, CO2Rate: 400 * 3.17},
	}
	have := trajectoryStatistics(history, &cfg)
	want := Statistics{
		Steps:             3,
		MeanTemperature:   1000,
		StdDevTemperature: 100,
		PeakTemperature:   1100,
		Overshoot:         100,
		IAE:               400,
		MeanFuelRate:      2500. / 3,
		TotalCO2:          2500 * 3.17 * 2 / 3600,
		SaturatedFraction: 1. / 3,
	}
	for _, v := range [][3]interface{}{
		{"mean", have.MeanTemperature, want.MeanTemperature},
		{"std", have.StdDevTemperature, want.StdDevTemperature},
		{"fuel", have.MeanFuelRate, want.MeanFuelRate},
		{"CO2", have.TotalCO2, want.TotalCO2},
		{"saturated", have.SaturatedFraction, want.SaturatedFraction},
	} {
		if different(v[1].(float64), v[2].(float64), testTolerance) {
			t.Errorf("%s: have %g, want %g", v[0], v[1], v[2])
		}
	}
	have.MeanTemperature, have.StdDevTemperature = want.MeanTemperature, want.StdDevTemperature
	have.MeanFuelRate, have.TotalCO2 = want.MeanFuelRate, want.TotalCO2
	have.SaturatedFraction = want.SaturatedFraction
	if have != want {
		t.Errorf("statistics: %v", pretty.Diff(have, want))
	}

	if s := trajectoryStatistics(history[:1], &cfg); s.StdDevTemperature != 0 || s.Overshoot != 0 {
		t.Errorf("single step: %+v", s)
	}
	if s := trajectoryStatistics(nil, &cfg); s != (Statistics{}) {
		t.Errorf("no steps: %+v", s)
	}
}

func TestResultBeforeRun(t *testing.T) {
	e := newTestEngine(t, scenarioGeometry, DefaultControlConfig())
	r := e.Result()
	if r.FinalTemperature != 30 || r.Quality != Poor {
		t.Errorf("have %+v", r)
	}
	if absDifferent(r.CO2Rate, 600*3.17, testTolerance) {
		t.Errorf("CO2 rate: have %g, want %g", r.CO2Rate, 600*3.17)
	}
	if r.Statistics.Steps != 0 || math.IsNaN(r.Statistics.MeanTemperature) {
		t.Errorf("statistics: %+v", r.Statistics)
	}
}
