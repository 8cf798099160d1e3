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
	"strings"
)

// Mode is the operating mode of the fuel controller.
type Mode int

const (
	// Automatic mode adjusts the fuel rate with a PID controller.
	Automatic Mode = iota
	// Manual mode disengages the controller: the fuel rate equals
	// the base fuel rate.
	Manual
)

func (m Mode) String() string {
	switch m {
	case Automatic:
		return "Automatic"
	case Manual:
		return "Manual"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name (case-insensitive) into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automatic", "auto":
		return Automatic, nil
	case "manual":
		return Manual, nil
	default:
		return 0, fmt.Errorf("kilnsim: invalid mode %q; should be 'automatic' or 'manual'", s)
	}
}

// Limits of the accepted configuration values.
const (
	minBaseFuelRate = 100.
	maxBaseFuelRate = 1500.
	maxFeedRate     = 3000.
	minMotorSpeed   = 0.5
	maxMotorSpeed   = 10.
	minSetpoint     = 1000.
	maxSetpoint     = 1500.
	maxKp           = 20.
	maxKi           = 5.
	maxKd           = 10.
	minInitialTemp  = -50.
	maxRadius       = 10.
	maxLength       = 200.
)

// QualityThresholds define how the final kiln temperature is classified.
//
// If Relative is true, Good and Partial are offsets [°C] below the setpoint:
// a final temperature of at least setpoint-Good is Good and at least
// setpoint-Partial is Partial. Otherwise Good and Partial are absolute
// temperatures [°C].
type QualityThresholds struct {
	Relative bool
	Good     float64
	Partial  float64
}

// DefaultQualityThresholds are relative to the setpoint with a 150 °C
// partial-sintering band.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{Relative: true, Good: 0, Partial: 150}
}

// AbsoluteQualityThresholds are the fixed thresholds for a 1350 °C
// clinkering temperature.
func AbsoluteQualityThresholds() QualityThresholds {
	return QualityThresholds{Relative: false, Good: 1350, Partial: 1200}
}

func (q QualityThresholds) validate() error {
	if q.Relative {
		if q.Good < 0 {
			return &ConfigurationError{Field: "Quality.Good", Value: q.Good, Reason: "should be >=0"}
		}
		if q.Partial <= q.Good {
			return &ConfigurationError{Field: "Quality.Partial", Value: q.Partial,
				Reason: fmt.Sprintf("should be > Quality.Good (%g)", q.Good)}
		}
		return nil
	}
	if q.Partial >= q.Good {
		return &ConfigurationError{Field: "Quality.Partial", Value: q.Partial,
			Reason: fmt.Sprintf("should be < Quality.Good (%g)", q.Good)}
	}
	return nil
}

// ControlConfig holds the operator-adjustable parameters of a simulation.
// It can only be changed between runs.
type ControlConfig struct {
	BaseFuelRate float64 // [kg/hr]
	FeedRate     float64 // [kg/hr]
	MotorSpeed   float64 // [RPM]
	Setpoint     float64 // [°C]
	Kp, Ki, Kd   float64
	Mode         Mode

	// MinFuelRate and MaxFuelRate are the actuator limits [kg/hr].
	MinFuelRate, MaxFuelRate float64

	Dt                 float64 // time step [s]
	Horizon            float64 // run length [s]
	InitialTemperature float64 // [°C]

	// FeedCooling specifies whether the sensible heat absorbed by the feed
	// is included in the heat balance.
	FeedCooling bool

	// AntiWindup specifies whether integral accumulation is frozen while
	// the fuel rate is saturated. When false, the integral term accumulates
	// without limit.
	AntiWindup bool

	Quality QualityThresholds
}

// DefaultControlConfig returns a configuration with typical operating values.
func DefaultControlConfig() ControlConfig {
	return ControlConfig{
		BaseFuelRate:       600,
		FeedRate:           1500,
		MotorSpeed:         3,
		Setpoint:           1400,
		Kp:                 5,
		Ki:                 0.5,
		Kd:                 0.1,
		Mode:               Automatic,
		MinFuelRate:        100,
		MaxFuelRate:        1500,
		Dt:                 1,
		Horizon:            3600,
		InitialTemperature: 30,
		FeedCooling:        true,
		Quality:            DefaultQualityThresholds(),
	}
}

type bound struct {
	name     string
	v        float64
	min, max float64
}

// Validate checks that all values are within their allowed ranges
// and consistent with each other.
func (c *ControlConfig) Validate() error {
	for _, v := range []float64{c.BaseFuelRate, c.FeedRate, c.MotorSpeed, c.Setpoint, c.Kp, c.Ki,
		c.Kd, c.MinFuelRate, c.MaxFuelRate, c.Dt, c.Horizon, c.InitialTemperature} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: "ControlConfig", Value: v, Reason: "should be finite"}
		}
	}
	if c.MotorSpeed < minMotorSpeed {
		// Residence time is inversely proportional to speed.
		return &ConfigurationError{Field: "MotorSpeed", Value: c.MotorSpeed,
			Reason: fmt.Sprintf("zero or near-zero rotation speed is not allowed (minimum %g)", minMotorSpeed)}
	}
	for _, b := range []bound{
		{"FuelRate", c.BaseFuelRate, minBaseFuelRate, maxBaseFuelRate},
		{"FeedRate", c.FeedRate, 0, maxFeedRate},
		{"MotorSpeed", c.MotorSpeed, minMotorSpeed, maxMotorSpeed},
		{"Setpoint", c.Setpoint, minSetpoint, maxSetpoint},
		{"Kp", c.Kp, 0, maxKp},
		{"Ki", c.Ki, 0, maxKi},
		{"Kd", c.Kd, 0, maxKd},
	} {
		if b.v < b.min || b.v > b.max {
			return &ConfigurationError{Field: b.name, Value: b.v,
				Reason: fmt.Sprintf("should be in [%g, %g]", b.min, b.max)}
		}
	}
	if c.Mode != Automatic && c.Mode != Manual {
		return &ConfigurationError{Field: "Mode", Value: float64(c.Mode), Reason: "is not a valid mode"}
	}
	if c.MinFuelRate < 0 {
		return &ConfigurationError{Field: "MinFuelRate", Value: c.MinFuelRate, Reason: "should be >=0"}
	}
	if c.MinFuelRate >= c.MaxFuelRate {
		return &ConfigurationError{Field: "MinFuelRate", Value: c.MinFuelRate,
			Reason: fmt.Sprintf("should be < MaxFuelRate (%g)", c.MaxFuelRate)}
	}
	if c.BaseFuelRate < c.MinFuelRate || c.BaseFuelRate > c.MaxFuelRate {
		return &ConfigurationError{Field: "FuelRate", Value: c.BaseFuelRate,
			Reason: fmt.Sprintf("should be within the actuator limits [%g, %g]", c.MinFuelRate, c.MaxFuelRate)}
	}
	if !(c.Horizon > 0) {
		return &ConfigurationError{Field: "Horizon", Value: c.Horizon, Reason: "should be >0"}
	}
	if !(c.Dt > 0) || c.Dt > c.Horizon {
		return &ConfigurationError{Field: "Dt", Value: c.Dt,
			Reason: fmt.Sprintf("should be >0 and <= Horizon (%g)", c.Horizon)}
	}
	if c.InitialTemperature < minInitialTemp {
		return &ConfigurationError{Field: "InitialTemperature", Value: c.InitialTemperature,
			Reason: fmt.Sprintf("should be >= %g", minInitialTemp)}
	}
	return c.Quality.validate()
}
