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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics are performance metrics of a simulated trajectory.
type Statistics struct {
	Steps             int
	MeanTemperature   float64 // [°C]
	StdDevTemperature float64 // [°C]
	PeakTemperature   float64 // [°C]
	Overshoot         float64 // peak temperature above the setpoint [°C]
	IAE               float64 // integral of absolute setpoint deviation [°C·s]
	MeanFuelRate      float64 // [kg/hr]
	TotalCO2          float64 // CO₂ emitted during the run [kg]

	// SaturatedFraction is the fraction of time steps in which the
	// controller output was limited by the actuator.
	SaturatedFraction float64
}

// Statistics calculates performance metrics from the step records so far.
// All values are zero if no steps have been taken.
func (e *Engine) Statistics() Statistics {
	return trajectoryStatistics(e.history, &e.config)
}

func trajectoryStatistics(history []StepRecord, c *ControlConfig) Statistics {
	n := len(history)
	if n == 0 {
		return Statistics{}
	}
	temps := make([]float64, n)
	dev := make([]float64, n)
	fuel := make([]float64, n)
	co2 := make([]float64, n)
	saturated := 0
	for i, r := range history {
		temps[i] = r.Temperature
		dev[i] = math.Abs(c.Setpoint - r.Temperature)
		fuel[i] = r.FuelRate
		co2[i] = r.CO2Rate
		if c.BaseFuelRate+r.ControlSignal != r.FuelRate {
			saturated++
		}
	}
	s := Statistics{Steps: n}
	s.MeanTemperature, s.StdDevTemperature = stat.MeanStdDev(temps, nil)
	if n == 1 {
		s.StdDevTemperature = 0
	}
	s.PeakTemperature = floats.Max(temps)
	s.Overshoot = math.Max(0, s.PeakTemperature-c.Setpoint)
	s.IAE = floats.Sum(dev) * c.Dt
	s.MeanFuelRate = stat.Mean(fuel, nil)
	s.TotalCO2 = floats.Sum(co2) * c.Dt / 3600
	s.SaturatedFraction = float64(saturated) / float64(n)
	return s
}
