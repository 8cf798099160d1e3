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

import "fmt"

// Quality is a classification of clinker quality based on the
// final kiln temperature.
type Quality int

const (
	// Good means the clinkering temperature was reached.
	Good Quality = iota
	// Partial means the material was only partially sintered.
	Partial
	// Poor means the temperature was too low for sintering.
	Poor
)

func (q Quality) String() string {
	switch q {
	case Good:
		return "Good"
	case Partial:
		return "Partial"
	case Poor:
		return "Poor"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// Classify returns the quality class of a final temperature T [°C]
// for the given setpoint and thresholds.
func Classify(T, setpoint float64, q QualityThresholds) Quality {
	good, partial := q.Good, q.Partial
	if q.Relative {
		good, partial = setpoint-q.Good, setpoint-q.Partial
	}
	switch {
	case T >= good:
		return Good
	case T >= partial:
		return Partial
	default:
		return Poor
	}
}

// SimulationResult summarizes the current state of a simulation.
type SimulationResult struct {
	FinalTemperature float64 // [°C]
	Quality          Quality
	CO2Rate          float64 // current emission rate [kg/hr]
	Savings          Savings
	Statistics       Statistics
}

// Result derives a summary from the current simulation state using
// DefaultSavingsConstants for the savings estimate. The current CO₂
// rate is that of the latest record, or that of the base fuel rate if
// no steps have been taken.
func (e *Engine) Result() SimulationResult {
	return e.ResultWith(DefaultSavingsConstants())
}

// ResultWith is like Result but uses the given savings constants.
func (e *Engine) ResultWith(s SavingsConstants) SimulationResult {
	T := e.Temperature()
	co2 := e.config.BaseFuelRate * e.constants.CO2Factor
	if n := len(e.history); n > 0 {
		co2 = e.history[n-1].CO2Rate
	}
	return SimulationResult{
		FinalTemperature: T,
		Quality:          Classify(T, e.config.Setpoint, e.config.Quality),
		CO2Rate:          co2,
		Savings:          EstimateSavings(e.config.BaseFuelRate, &e.constants, s),
		Statistics:       e.Statistics(),
	}
}
