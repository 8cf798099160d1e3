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
	"os/signal"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/kilnsim"
	"github.com/spatialmodel/kilnsim/internal/hash"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to KilnSim.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Kiln.Radius",
			usage: `
              Kiln.Radius is the internal radius of the kiln [m].`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Kiln.Length",
			usage: `
              Kiln.Length is the length of the kiln [m].`,
			defaultVal: 80.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "FuelRate",
			usage: `
              FuelRate is the base fuel feed rate [kg/hr], which the controller
              adjusts up or down. It must be between 100 and 1500 and within
              MinFuelRate and MaxFuelRate.`,
			shorthand:  "f",
			defaultVal: 600.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "FeedRate",
			usage: `
              FeedRate is the raw material feed rate [kg/hr], between 0 and 3000.`,
			defaultVal: 1500.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MotorSpeed",
			usage: `
              MotorSpeed is the kiln rotation speed [RPM], between 0.5 and 10.
              Slower rotation increases the material residence time.`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Setpoint",
			usage: `
              Setpoint is the target kiln temperature [°C], between 1000 and 1500.`,
			shorthand:  "t",
			defaultVal: 1400.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Kp",
			usage: `
              Kp is the proportional gain of the fuel controller, between 0 and 20.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Ki",
			usage: `
              Ki is the integral gain of the fuel controller, between 0 and 5.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Kd",
			usage: `
              Kd is the derivative gain of the fuel controller, between 0 and 10.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Mode",
			usage: `
              Mode is the controller mode: 'automatic' for feedback control or
              'manual' to run at the base fuel rate.`,
			defaultVal: "automatic",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MinFuelRate",
			usage: `
              MinFuelRate is the lower limit of the fuel actuator [kg/hr].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MaxFuelRate",
			usage: `
              MaxFuelRate is the upper limit of the fuel actuator [kg/hr].`,
			defaultVal: 1500.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Dt",
			usage: `
              Dt is the simulation time step [s].`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Horizon",
			usage: `
              Horizon is the length of the simulation [s]. The run stops once
              the simulation time reaches it.`,
			defaultVal: 3600.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InitialTemperature",
			usage: `
              InitialTemperature is the kiln temperature at the start of the
              simulation [°C].`,
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "FeedCooling",
			usage: `
              FeedCooling specifies whether the heat taken up by the incoming
              feed is included in the heat balance.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "AntiWindup",
			usage: `
              AntiWindup specifies whether the controller stops integrating the
              error while the fuel rate is at an actuator limit. If false, the
              integral term is never limited.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Quality.Relative",
			usage: `
              Quality.Relative specifies whether Quality.Good and Quality.Partial
              are offsets below the setpoint [°C] rather than absolute
              temperatures.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Quality.Good",
			usage: `
              Quality.Good is the threshold for good clinker quality [°C].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Quality.Partial",
			usage: `
              Quality.Partial is the threshold for partially sintered clinker [°C].`,
			defaultVal: 150.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location. It
              must end in '.csv' or '.xlsx' and can include environment
              variables. If it is empty, no output file is written.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies the columns of the output file as a map
              of column names to expressions of the step record variables
              (Time, Temperature, Error, ControlSignal, FuelRate, CO2Rate,
              Setpoint, and BaseFuelRate).`,
			defaultVal: map[string]string{
				"Time":        "Time",
				"Temperature": "Temperature",
				"FuelRate":    "FuelRate",
				"CO2Rate":     "CO2Rate",
			},
			flagsets: []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the
              logfile will be saved in the same location as the OutputFile,
              or not written if there is no OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages that are written:
              one of 'debug', 'info', 'warning', or 'error'.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogEvery",
			usage: `
              LogEvery is the number of time steps between progress messages.
              Progress messages are logged at the debug level.`,
			defaultVal: 600,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "ConvergenceTolerance",
			usage: `
              ConvergenceTolerance is the temperature change [°C] over
              ConvergencePeriod below which the kiln is considered to be at
              steady state and the run ends early. If it is zero, the run
              always continues to the horizon.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "ConvergencePeriod",
			usage: `
              ConvergencePeriod is the simulation time [s] between
              steady-state convergence checks.`,
			defaultVal: 600.0,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "interval",
			usage: `
              interval is the wall-clock time between time steps in a live run.`,
			shorthand:  "i",
			defaultVal: time.Second,
			flagsets:   []*pflag.FlagSet{liveCmd.Flags()},
		},
		{
			name: "Savings.BaselineFuelRate",
			usage: `
              Savings.BaselineFuelRate is the reference fuel rate [kg/hr] that
              savings are calculated against.`,
			defaultVal: 700.0,
			flagsets:   []*pflag.FlagSet{savingsCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "Savings.OperatingDays",
			usage: `
              Savings.OperatingDays is the number of days per year the kiln
              operates.`,
			defaultVal: 330.0,
			flagsets:   []*pflag.FlagSet{savingsCmd.Flags(), batchCmd.Flags()},
		},
		{
			name: "Savings.UnitPrice",
			usage: `
              Savings.UnitPrice is the price of fuel per kg.`,
			defaultVal: 15.0,
			flagsets:   []*pflag.FlagSet{savingsCmd.Flags(), batchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("KILN")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
			case int:
				set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
			case time.Duration:
				set.DurationP(option.name, option.shorthand, option.defaultVal.(time.Duration), option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	runCmd.AddCommand(batchCmd)
	runCmd.AddCommand(liveCmd)
	Root.AddCommand(savingsCmd)
	Root.AddCommand(configCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("kilnsim: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "kiln",
	Short: "A rotary cement kiln simulator.",
	Long: `KilnSim simulates the temperature of a rotary cement kiln under
feedback control of the fuel rate. Use the subcommands specified below to
access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'KILN_var' where 'var' is the
name of the variable to be set, with '.' replaced by '_' (for example
KILN_KILN_RADIUS).
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of KilnSim.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("KilnSim v%s\n", kilnsim.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a kiln simulation. Use the subcommands specified below to
choose a run mode.`,
	DisableAutoGenTag: true,
}

// batchCmd is a command that runs a simulation to its horizon.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a simulation to completion.",
	Long: `batch runs a simulation from the initial temperature to the end of the
horizon (or to steady state, if ConvergenceTolerance is set) as fast as
possible, then prints a summary and writes the trajectory to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := OptionsFromConfig(Cfg)
		if err != nil {
			return err
		}
		e, err := Batch(cmd.OutOrStdout(), o)
		if err != nil {
			return err
		}
		return printResult(cmd, e.ResultWith(o.Savings))
	},
	DisableAutoGenTag: true,
}

// liveCmd is a command that steps a simulation at a fixed wall-clock pace.
var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run a simulation in real time.",
	Long: `live steps a simulation once every interval and prints each time step
as it is calculated. The run ends at the horizon or when interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := OptionsFromConfig(Cfg)
		if err != nil {
			return err
		}
		interval := Cfg.GetDuration("interval")
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		e, err := Live(ctx, cmd.OutOrStdout(), o, interval)
		if err != nil {
			return err
		}
		return printResult(cmd, e.ResultWith(o.Savings))
	},
	DisableAutoGenTag: true,
}

// savingsCmd is a command that prints the annual savings projection.
var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Estimate annual savings.",
	Long: `savings estimates the annual fuel, CO₂, and cost savings of operating
continuously at FuelRate instead of Savings.BaselineFuelRate. It is a
comparison of rates only; no simulation is run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ControlConfig(Cfg)
		if err != nil {
			return err
		}
		s, err := SavingsConstants(Cfg)
		if err != nil {
			return err
		}
		sv := kilnsim.EstimateSavings(cfg.BaseFuelRate, kilnsim.DefaultConstants(), s)
		printSavings(cmd, sv)
		return nil
	},
	DisableAutoGenTag: true,
}

// configCmd is a command that prints the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration.",
	Long: `config prints the configuration that results from combining the
configuration file, environment variables, and command-line arguments, in
TOML format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := Geometry(Cfg)
		if err != nil {
			return err
		}
		cfg, err := ControlConfig(Cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# Configuration fingerprint: %s\n", hash.Hash(g, cfg))
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(newFileConfig(g, cfg))
	},
	DisableAutoGenTag: true,
}

func printResult(cmd *cobra.Command, r kilnsim.SimulationResult) error {
	cmd.Printf("Final temperature: %.2f °C\n", r.FinalTemperature)
	cmd.Printf("Clinker quality: %v\n", r.Quality)
	cmd.Printf("CO₂ emission rate: %.2f kg/hr\n", r.CO2Rate)
	s := r.Statistics
	cmd.Printf("Steps: %d, mean temperature: %.2f °C, peak: %.2f °C, overshoot: %.2f °C\n",
		s.Steps, s.MeanTemperature, s.PeakTemperature, s.Overshoot)
	cmd.Printf("Mean fuel rate: %.2f kg/hr, CO₂ emitted: %.2f kg, saturated: %.1f%%\n",
		s.MeanFuelRate, s.TotalCO2, s.SaturatedFraction*100)
	printSavings(cmd, r.Savings)
	return nil
}

func printSavings(cmd *cobra.Command, s kilnsim.Savings) {
	cmd.Printf("Annual fuel savings: %.0f kg\n", kilnsim.PerYear(s.Fuel))
	cmd.Printf("Annual CO₂ reduction: %.0f kg\n", kilnsim.PerYear(s.CO2))
	cmd.Printf("Annual cost savings: %.0f\n", s.Money)
}
