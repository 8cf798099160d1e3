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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/kilnsim"
	"github.com/spatialmodel/kilnsim/internal/hash"
	"github.com/spf13/viper"
)

// Options hold the settings of a simulation run.
type Options struct {
	Geometry kilnsim.Geometry
	Control  kilnsim.ControlConfig
	Savings  kilnsim.SavingsConstants

	// LogFile is the path to the desired logfile location. If it is empty,
	// log messages are only written to the command output.
	LogFile string

	// LogLevel is the minimum level of log messages that are written.
	LogLevel logrus.Level

	// LogEvery is the number of steps between progress messages.
	LogEvery int

	// OutputFile is the path to the desired output file location. If it is
	// empty, no output file is written.
	OutputFile string

	// OutputVariables specifies which model variables should be included
	// in the output file.
	OutputVariables map[string]string

	// ConvergenceTolerance and ConvergencePeriod set up an early end to the
	// run once the kiln reaches steady state. A tolerance of zero disables
	// the check.
	ConvergenceTolerance, ConvergencePeriod float64

	// AddInit, AddRun, and AddCleanup specify functions beyond the default
	// functions to run at initialization, runtime, and cleanup, respectively.
	AddInit, AddRun, AddCleanup []kilnsim.Manipulator
}

// OptionsFromConfig unmarshals run options from a viper configuration.
func OptionsFromConfig(cfg *viper.Viper) (*Options, error) {
	g, err := Geometry(cfg)
	if err != nil {
		return nil, err
	}
	c, err := ControlConfig(cfg)
	if err != nil {
		return nil, err
	}
	s, err := SavingsConstants(cfg)
	if err != nil {
		return nil, err
	}
	level, err := logrus.ParseLevel(cfg.GetString("LogLevel"))
	if err != nil {
		return nil, fmt.Errorf("kilnutil: LogLevel: %v", err)
	}
	outputFile, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	o := &Options{
		Geometry:   g,
		Control:    c,
		Savings:    s,
		LogFile:    checkLogFile(cfg.GetString("LogFile"), outputFile),
		LogLevel:   level,
		LogEvery:   cfg.GetInt("LogEvery"),
		OutputFile: outputFile,
	}
	if outputFile != "" {
		vars, err := GetStringMapString("OutputVariables", cfg)
		if err != nil {
			return nil, err
		}
		if o.OutputVariables, err = checkOutputVars(vars); err != nil {
			return nil, err
		}
	}
	v, err := getFloats(cfg, "ConvergenceTolerance", "ConvergencePeriod")
	if err != nil {
		return nil, err
	}
	o.ConvergenceTolerance, o.ConvergencePeriod = v[0], v[1]
	return o, nil
}

// newLogger returns a logger that writes to w and, if logFile is not empty,
// to logFile. The returned function closes the log file.
func newLogger(w io.Writer, logFile string, level logrus.Level) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	if logFile == "" {
		logger.SetOutput(w)
		return logger, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("kilnutil: problem creating log file: %v", err)
	}
	logger.SetOutput(io.MultiWriter(w, f))
	return logger, f.Close, nil
}

// setup creates an engine with the manipulators requested in o.
func setup(o *Options, logger logrus.FieldLogger, live bool) (*kilnsim.Engine, error) {
	e, err := kilnsim.New(o.Geometry, nil, o.Control)
	if err != nil {
		return nil, err
	}
	var initFuncs, runFuncs, cleanupFuncs []kilnsim.Manipulator
	if o.OutputFile != "" {
		out, err := kilnsim.NewOutputter(o.OutputFile, o.OutputVariables, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("Parsed output variable expressions")
		initFuncs = append(initFuncs, out.CheckOutputVars())
		cleanupFuncs = append(cleanupFuncs, out.Output())
	}
	if !live {
		runFuncs = append(runFuncs, kilnsim.Log(logger, o.LogEvery))
	}
	if o.ConvergenceTolerance > 0 {
		cConverge := make(chan kilnsim.ConvergenceStatus, 1)
		runFuncs = append(runFuncs,
			kilnsim.SteadyStateConvergenceCheck(o.ConvergenceTolerance, o.ConvergencePeriod, cConverge),
			func(*kilnsim.Engine) error {
				select {
				case s := <-cConverge:
					logger.WithFields(logrus.Fields{
						"time":   s.Time,
						"change": s.Change,
					}).Info(s.String())
				default:
				}
				return nil
			})
	}
	e.InitFuncs = append(initFuncs, o.AddInit...)
	e.RunFuncs = append(runFuncs, o.AddRun...)
	e.CleanupFuncs = append(cleanupFuncs, o.AddCleanup...)
	return e, nil
}

// Batch runs a simulation to completion, logging to w, and returns the
// finished engine.
func Batch(w io.Writer, o *Options) (*kilnsim.Engine, error) {
	startTime := time.Now()
	logger, closeLog, err := newLogger(w, o.LogFile, o.LogLevel)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	e, err := setup(o, logger, false)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"radius":     o.Geometry.Radius,
		"length":     o.Geometry.Length,
		"setpoint":   o.Control.Setpoint,
		"mode":       o.Control.Mode,
		"efficiency": e.Efficiency(),
		"config":     hash.Hash(o.Geometry, o.Control),
	}).Info("Running simulation...")

	if err = e.Run(); err != nil {
		return nil, err
	}
	if o.OutputFile != "" {
		logger.WithField("file", o.OutputFile).Info("Wrote output")
	}
	logger.WithFields(logrus.Fields{
		"steps":       e.Steps(),
		"temperature": e.Temperature(),
	}).Infof("Elapsed time: %v", time.Since(startTime))
	return e, nil
}

// Live steps a simulation once every interval, writing each step record to
// w, until the run reaches its horizon or ctx is canceled. The cleanup
// functions are run in either case.
func Live(ctx context.Context, w io.Writer, o *Options, interval time.Duration) (*kilnsim.Engine, error) {
	logger, closeLog, err := newLogger(w, o.LogFile, o.LogLevel)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	e, err := setup(o, logger, true)
	if err != nil {
		return nil, err
	}
	err = Drive(ctx, e, interval, func(r kilnsim.StepRecord) {
		fmt.Fprintf(w, "t=%6.0fs  T=%8.2f°C  error=%8.2f°C  fuel=%7.2fkg/hr  CO₂=%8.2fkg/hr\n",
			r.Time, r.Temperature, r.Error, r.FuelRate, r.CO2Rate)
	})
	if err != nil && err != context.Canceled {
		return nil, err
	}
	if err == context.Canceled {
		logger.Info("Run interrupted")
	}
	if err := e.Cleanup(); err != nil {
		return nil, err
	}
	return e, nil
}
