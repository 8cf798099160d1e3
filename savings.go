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
	"github.com/ctessum/unit"
)

// SavingsConstants are the reference values for the savings estimate.
type SavingsConstants struct {
	BaselineFuelRate float64 // [kg/hr]
	OperatingDays    float64 // [days/year]
	UnitPrice        float64 // currency per kg fuel
}

// DefaultSavingsConstants returns a 700 kg/hr baseline at 330
// operating days per year.
func DefaultSavingsConstants() SavingsConstants {
	return SavingsConstants{
		BaselineFuelRate: 700,
		OperatingDays:    330,
		UnitPrice:        15,
	}
}

// Savings is an annual projection of the effect of running at a
// reduced fuel rate. Negative values mean more fuel is used than the
// baseline. Fuel and CO2 are mass rates stored in SI units [kg/s]
// averaged over a 365-day year; use PerYear to get kg/year.
type Savings struct {
	Fuel  *unit.Unit // [kg/s]
	CO2   *unit.Unit // [kg/s]
	Money float64    // per year
}

var massPerYear = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1}

const secondsPerYear = 365 * 24 * 3600.

// EstimateSavings returns the annual fuel, CO₂ and cost savings of running
// continuously at baseFuelRate [kg/hr] instead of the baseline fuel rate.
// It is a static comparison of rates, not the result of a simulation:
// the kiln is assumed to operate s.OperatingDays per year, 24 hours a day.
func EstimateSavings(baseFuelRate float64, c *ProcessConstants, s SavingsConstants) Savings {
	fuel := (s.BaselineFuelRate - baseFuelRate) * s.OperatingDays * 24 // kg/year
	return Savings{
		Fuel:  unit.New(fuel/secondsPerYear, massPerYear),
		CO2:   unit.New(fuel*c.CO2Factor/secondsPerYear, massPerYear),
		Money: fuel * s.UnitPrice,
	}
}

// PerYear converts a mass rate [kg/s] to kg per 365-day year.
func PerYear(u *unit.Unit) float64 {
	return u.Value() * secondsPerYear
}
