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
)

// Manipulator is a function that operates on a simulation engine.
// Manipulators are used to initialize a run, to observe or end it after
// each time step, and to export results once it is finished.
type Manipulator func(e *Engine) error

// State is the lifecycle state of an Engine.
type State int

const (
	// Idle means no run is in progress and the simulation state is at its
	// initial conditions.
	Idle State = iota
	// Running means the engine accepts Step calls.
	Running
	// Stopped means the run is paused or has reached its horizon.
	// The simulation state is retained.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StepRecord holds the result of a single time step.
type StepRecord struct {
	Time          float64 // beginning of the time step [s]
	Temperature   float64 // temperature at the end of the time step [°C]
	Error         float64 // setpoint minus temperature at the beginning of the step [°C]
	ControlSignal float64 // controller output before clamping [kg/hr]
	FuelRate      float64 // actuated fuel rate [kg/hr]
	CO2Rate       float64 // [kg/hr]
}

// SimulationState is a copy of the internal state of an Engine.
type SimulationState struct {
	Time        float64
	Temperature float64
	Integral    float64
	PrevError   float64
	History     []StepRecord
}

// Engine steps the kiln thermal model forward in time under
// feedback control. An Engine is not safe for concurrent use; run
// independent simulations with independent engines.
type Engine struct {
	// InitFuncs are run the first time the engine is started after
	// being configured or reset.
	InitFuncs []Manipulator

	// RunFuncs are run after every time step.
	RunFuncs []Manipulator

	// CleanupFuncs are run by Cleanup, which Run calls once the
	// simulation has finished.
	CleanupFuncs []Manipulator

	// Done can be set by a RunFunc to stop the simulation at the end
	// of the current time step.
	Done bool

	geometry   Geometry
	constants  ProcessConstants
	config     ControlConfig
	efficiency float64

	state       State
	initialized bool

	steps       int
	temperature float64
	pid         pid
	history     []StepRecord
}

// New returns a configured engine in the Idle state. If c is nil,
// DefaultConstants is used.
func New(g Geometry, c *ProcessConstants, cfg ControlConfig) (*Engine, error) {
	if c == nil {
		c = DefaultConstants()
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		geometry:  g,
		constants: *c,
	}
	if err := e.Configure(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure validates and applies a new control configuration and
// reinitializes the simulation state. It is only allowed while Idle.
func (e *Engine) Configure(cfg ControlConfig) error {
	if e.state != Idle {
		return &TransitionError{Op: "configure", From: e.state}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.config = cfg
	e.efficiency = e.constants.Efficiency(cfg.MotorSpeed)
	e.Reset()
	return nil
}

// Start begins or resumes a run. It has no effect if the engine is
// already running. A run that has reached its horizon must be Reset
// before it can be started again.
func (e *Engine) Start() error {
	switch e.state {
	case Running:
		return nil
	case Stopped:
		if e.finished() {
			return &TransitionError{Op: "start a finished run", From: e.state}
		}
	case Idle:
		if !e.initialized {
			for _, f := range e.InitFuncs {
				if err := f(e); err != nil {
					return fmt.Errorf("kilnsim: initializing run: %w", err)
				}
			}
			e.initialized = true
		}
	}
	e.state = Running
	return nil
}

// Stop pauses a running simulation. The simulation state is retained
// and the run can be resumed with Start. It has no effect if the engine
// is not running.
func (e *Engine) Stop() {
	if e.state == Running {
		e.state = Stopped
	}
}

// Reset returns the engine to the Idle state with the simulation state
// at its initial conditions.
func (e *Engine) Reset() {
	e.state = Idle
	e.initialized = false
	e.Done = false
	e.steps = 0
	e.temperature = e.config.InitialTemperature
	e.pid.reset()
	e.history = nil
}

// Step advances the simulation by one time step and returns the new
// record. It is only allowed while Running. When the run horizon is
// reached, or a RunFunc sets Done, the engine moves to Stopped.
func (e *Engine) Step() (StepRecord, error) {
	if e.state != Running {
		return StepRecord{}, &TransitionError{Op: "step", From: e.state}
	}
	c := &e.config
	T := e.Temperature()

	var errT, control float64
	if c.Mode == Automatic {
		errT = c.Setpoint - T
		control = e.pid.step(errT, c.Dt, c.Kp, c.Ki, c.Kd)
	}
	fuel, saturated := clamp(c.BaseFuelRate+control, c.MinFuelRate, c.MaxFuelRate)
	if saturated && c.AntiWindup && c.Mode == Automatic &&
		(fuel == c.MaxFuelRate && errT > 0 || fuel == c.MinFuelRate && errT < 0) {
		e.pid.freeze()
	}

	// Explicit Euler.
	dTdt := TemperatureRate(T, fuel, c.FeedRate, e.geometry, &e.constants, e.efficiency, c.FeedCooling)
	T += dTdt * c.Dt

	r := StepRecord{
		Time:          e.Time(),
		Temperature:   T,
		Error:         errT,
		ControlSignal: control,
		FuelRate:      fuel,
		CO2Rate:       fuel * e.constants.CO2Factor,
	}
	e.history = append(e.history, r)
	e.temperature = T
	e.steps++

	for _, f := range e.RunFuncs {
		if err := f(e); err != nil {
			e.state = Stopped
			return r, err
		}
	}
	if e.finished() {
		e.state = Stopped
	}
	return r, nil
}

// finished reports whether the run has reached its horizon or been
// marked as done.
func (e *Engine) finished() bool {
	// Allow for rounding in steps*Dt.
	return e.Done || e.Time() >= e.config.Horizon-1e-9*e.config.Dt
}

// Run runs the simulation to completion in a single call: it starts or
// resumes the engine, steps until the engine stops, and then runs the
// CleanupFuncs.
func (e *Engine) Run() error {
	if err := e.Start(); err != nil {
		return err
	}
	for e.state == Running {
		if _, err := e.Step(); err != nil {
			return fmt.Errorf("kilnsim: problem running simulation: %w", err)
		}
	}
	return e.Cleanup()
}

// Cleanup runs the CleanupFuncs.
func (e *Engine) Cleanup() error {
	for _, f := range e.CleanupFuncs {
		if err := f(e); err != nil {
			return fmt.Errorf("kilnsim: problem finishing simulation: %w", err)
		}
	}
	return nil
}

// State returns the lifecycle state of the engine.
func (e *Engine) State() State { return e.state }

// Time returns the elapsed simulation time [s].
func (e *Engine) Time() float64 { return float64(e.steps) * e.config.Dt }

// Steps returns the number of time steps taken since the last reset.
func (e *Engine) Steps() int { return e.steps }

// Temperature returns the current kiln temperature [°C]: the temperature
// of the latest record, or the initial temperature if there is none.
func (e *Engine) Temperature() float64 {
	if n := len(e.history); n > 0 {
		return e.history[n-1].Temperature
	}
	return e.config.InitialTemperature
}

// Config returns the current control configuration.
func (e *Engine) Config() ControlConfig { return e.config }

// Geometry returns the kiln geometry.
func (e *Engine) Geometry() Geometry { return e.geometry }

// Constants returns a copy of the process constants.
func (e *Engine) Constants() ProcessConstants { return e.constants }

// Efficiency returns the heat transfer efficiency at the configured
// rotation speed.
func (e *Engine) Efficiency() float64 { return e.efficiency }

// History returns a copy of the step records in time order.
func (e *Engine) History() []StepRecord {
	o := make([]StepRecord, len(e.history))
	copy(o, e.history)
	return o
}

// Snapshot returns a copy of the simulation state.
func (e *Engine) Snapshot() SimulationState {
	return SimulationState{
		Time:        e.Time(),
		Temperature: e.temperature,
		Integral:    e.pid.integral,
		PrevError:   e.pid.prevError,
		History:     e.History(),
	}
}
