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
	"time"

	"github.com/sirupsen/logrus"
)

// SimulationStatus holds information about the progress of a simulation.
type SimulationStatus struct {
	Step         int
	Time         float64       // simulation time [s]
	Temperature  float64       // [°C]
	FuelRate     float64       // [kg/hr]
	Walltime     time.Duration // since the first step
	StepWalltime time.Duration // since the last status
}

func (s *SimulationStatus) String() string {
	return fmt.Sprintf("Step %-6d  walltime=%6.3gs  Δwalltime=%4.2gs  "+
		"time=%6.0fs  T=%7.2f°C  fuel=%7.2fkg/hr",
		s.Step, s.Walltime.Seconds(), s.StepWalltime.Seconds(), s.Time,
		s.Temperature, s.FuelRate)
}

// Log returns a function that writes the simulation status to
// logger every n steps and at the last step of a run.
func Log(logger logrus.FieldLogger, n int) Manipulator {
	if n < 1 {
		n = 1
	}
	var startTime, lastTime time.Time
	return func(e *Engine) error {
		now := time.Now()
		if e.Steps() == 1 {
			startTime, lastTime = now, now
		}
		if e.Steps()%n != 0 && !e.finished() {
			return nil
		}
		r := e.history[len(e.history)-1]
		s := &SimulationStatus{
			Step:         e.Steps(),
			Time:         e.Time(),
			Temperature:  r.Temperature,
			FuelRate:     r.FuelRate,
			Walltime:     now.Sub(startTime),
			StepWalltime: now.Sub(lastTime),
		}
		lastTime = now
		logger.WithFields(logrus.Fields{
			"step":        s.Step,
			"time":        s.Time,
			"temperature": s.Temperature,
			"fuel_rate":   s.FuelRate,
			"error":       r.Error,
		}).Debug(s.String())
		return nil
	}
}

// ConvergenceStatus reports the change in temperature over a
// convergence check period.
type ConvergenceStatus struct {
	Time   float64
	Change float64 // [°C]
	Done   bool
}

func (c ConvergenceStatus) String() string {
	return fmt.Sprintf("time=%.0fs: temperature change = %.3g°C since last check", c.Time, c.Change)
}

// SteadyStateConvergenceCheck returns a function that ends a run early
// once the kiln temperature has changed by less than tolerance [°C]
// over a whole check period [s] of simulation time.
// If c is not nil, the status of each check is sent to it.
func SteadyStateConvergenceCheck(tolerance, period float64, c chan<- ConvergenceStatus) Manipulator {
	var lastCheck, lastTemp float64
	return func(e *Engine) error {
		if !(period > 0) {
			return fmt.Errorf("kilnsim: convergence check period must be >0 but is %g", period)
		}
		if e.Steps() == 1 {
			lastCheck, lastTemp = 0, e.config.InitialTemperature
		}
		t := e.Time()
		if t-lastCheck < period {
			return nil
		}
		T := e.Temperature()
		s := ConvergenceStatus{Time: t, Change: T - lastTemp}
		s.Done = math.Abs(s.Change) < tolerance
		lastCheck, lastTemp = t, T
		if c != nil {
			c <- s
		}
		if s.Done {
			e.Done = true
		}
		return nil
	}
}

// RunPeriodically returns a function that runs f every period [s] of
// simulation time.
func RunPeriodically(period float64, f Manipulator) Manipulator {
	var lastRun float64
	return func(e *Engine) error {
		if e.Steps() == 1 {
			lastRun = 0
		}
		if e.Time()-lastRun >= period {
			lastRun = e.Time()
			return f(e)
		}
		return nil
	}
}
