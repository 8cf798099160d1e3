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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/tealeg/xlsx"
)

// ModelVariables are the names of the per-step variables that can be used
// in output expressions. An output variable with the same name as a model
// variable shadows it in the expressions of other output variables; in its
// own expression the name still refers to the model variable, so
// "Temperature" = "kelvin(Temperature)" is allowed.
var ModelVariables = []string{"Time", "Temperature", "Error", "ControlSignal",
	"FuelRate", "CO2Rate", "Setpoint", "BaseFuelRate"}

// Outputter writes the step records of a simulation to a file.
//
// outputVariables maps the names of the output columns to expressions
// that define how the column should be calculated. Expressions can use
// ModelVariables, other output variables, and functions.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

// NewOutputter initializes a new Outputter and adds a set of default
// output functions:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'abs(x)' which returns the absolute value of x.
//
// 'kelvin(T)' which converts a temperature from °C to K.
//
// fileName must end in '.csv' or '.xlsx'.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":    oneArg("exp", math.Exp),
		"abs":    oneArg("abs", math.Abs),
		"kelvin": oneArg("kelvin", func(t float64) float64 { return t + 273.15 }),
	}
	for key, val := range outputFunctions {
		funcs[key] = val
	}
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv", ".xlsx":
	default:
		return nil, fmt.Errorf("kilnsim: output file %q must have extension .csv or .xlsx", fileName)
	}
	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("kilnsim: there are no output variables specified")
	}
	o := &Outputter{
		fileName:        fileName,
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: funcs,
	}
	for k, v := range outputVariables {
		o.outputVariables[k] = v
	}
	if err := o.expandReferences(); err != nil {
		return nil, err
	}
	return o, nil
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("kilnsim: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("kilnsim: invalid argument %v for function '%s'", args[0], name)
		}
		return f(v), nil
	}
}

// expandReferences replaces any output variable used in the expression of
// another output variable with the expression that defines it, compiles
// the expressions, and records the model variables that are needed.
// A reference without an exact match is matched to an output variable
// regardless of case, because configuration keys may have been lowercased.
func (o *Outputter) expandReferences() error {
	keys := make([]string, 0, len(o.outputVariables))
	lower := make(map[string]string, len(o.outputVariables))
	ambiguous := make(map[string]bool)
	for k := range o.outputVariables {
		keys = append(keys, k)
		lk := strings.ToLower(k)
		if _, ok := lower[lk]; ok {
			ambiguous[lk] = true
		}
		lower[lk] = k
	}
	sort.Strings(keys)
	lookup := func(v string) (string, bool) {
		if _, ok := o.outputVariables[v]; ok {
			return v, true
		}
		lk := strings.ToLower(v)
		if ambiguous[lk] {
			return "", false
		}
		k, ok := lower[lk]
		return k, ok
	}

	resolved := make(map[string]string, len(o.outputVariables))
	var resolve func(key string, stack []string) (string, error)
	resolve = func(key string, stack []string) (string, error) {
		if r, ok := resolved[key]; ok {
			return r, nil
		}
		for _, s := range stack {
			if s == key {
				return "", fmt.Errorf("kilnsim: output variables refer to each other in a cycle: %s",
					strings.Join(append(stack, key), " -> "))
			}
		}
		stack = append(stack, key)
		val := o.outputVariables[key]
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return "", fmt.Errorf("kilnsim: output variable %s: %v", key, err)
		}
		refs := make(map[string]string)
		var names []string
		for _, v := range removeDuplicates(expr.Vars()) {
			c, ok := lookup(v)
			if !ok || c == key {
				// A column's own name refers to the model variable.
				continue
			}
			r, err := resolve(c, stack)
			if err != nil {
				return "", err
			}
			refs[v] = "(" + r + ")"
			names = append(names, regexp.QuoteMeta(v))
		}
		if len(names) > 0 {
			re := regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\b`)
			val = re.ReplaceAllStringFunc(val, func(s string) string { return refs[s] })
		}
		resolved[key] = val
		return val, nil
	}

	o.modelVariables = nil
	o.expressions = make(map[string]*govaluate.EvaluableExpression, len(o.outputVariables))
	for _, key := range keys {
		val, err := resolve(key, nil)
		if err != nil {
			return err
		}
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("kilnsim: output variable %s: %v", key, err)
		}
		o.expressions[key] = expr
		o.modelVariables = append(o.modelVariables, expr.Vars()...)
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	sort.Strings(o.modelVariables)
	return nil
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

// CheckOutputVars returns a function that ensures the output variables
// can be calculated.
func (o *Outputter) CheckOutputVars() Manipulator {
	return func(e *Engine) error {
		known := make(map[string]struct{}, len(ModelVariables))
		for _, v := range ModelVariables {
			known[v] = struct{}{}
		}
		for _, v := range o.modelVariables {
			if _, ok := known[v]; !ok {
				return fmt.Errorf("kilnsim: undefined variable name '%s'", v)
			}
		}
		return nil
	}
}

// Columns returns the output column names in the order they are written.
func (o *Outputter) Columns() []string {
	cols := make([]string, 0, len(o.outputVariables))
	for k := range o.outputVariables {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Results evaluates the output expressions for every step record of e.
// The result maps column names to one value per record.
func (o *Outputter) Results(e *Engine) (map[string][]float64, error) {
	out := make(map[string][]float64, len(o.expressions))
	params := make(map[string]interface{}, len(ModelVariables))
	for key := range o.expressions {
		out[key] = make([]float64, len(e.history))
	}
	for i, r := range e.history {
		params["Time"] = r.Time
		params["Temperature"] = r.Temperature
		params["Error"] = r.Error
		params["ControlSignal"] = r.ControlSignal
		params["FuelRate"] = r.FuelRate
		params["CO2Rate"] = r.CO2Rate
		params["Setpoint"] = e.config.Setpoint
		params["BaseFuelRate"] = e.config.BaseFuelRate
		for key, expr := range o.expressions {
			v, err := expr.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("kilnsim: evaluating output variable %s: %v", key, err)
			}
			switch vv := v.(type) {
			case float64:
				out[key][i] = vv
			case bool:
				if vv {
					out[key][i] = 1
				}
			default:
				return nil, fmt.Errorf("kilnsim: output variable %s has non-numeric value %v", key, v)
			}
		}
	}
	return out, nil
}

// Output returns a function that writes the simulation results to the
// output file, one row per step record.
func (o *Outputter) Output() Manipulator {
	return func(e *Engine) error {
		results, err := o.Results(e)
		if err != nil {
			return err
		}
		cols := o.Columns()
		if strings.ToLower(filepath.Ext(o.fileName)) == ".xlsx" {
			return o.writeXLSX(cols, results, len(e.history))
		}
		return o.writeCSV(cols, results, len(e.history))
	}
}

func (o *Outputter) writeCSV(cols []string, results map[string][]float64, n int) error {
	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("kilnsim: creating output file: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		f.Close()
		return fmt.Errorf("kilnsim: writing output file: %v", err)
	}
	row := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			row[j] = strconv.FormatFloat(results[c][i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("kilnsim: writing output file: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("kilnsim: writing output file: %v", err)
	}
	return f.Close()
}

func (o *Outputter) writeXLSX(cols []string, results map[string][]float64, n int) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Simulation")
	if err != nil {
		return fmt.Errorf("kilnsim: creating output sheet: %v", err)
	}
	header := sheet.AddRow()
	for _, c := range cols {
		header.AddCell().Value = c
	}
	for i := 0; i < n; i++ {
		row := sheet.AddRow()
		for _, c := range cols {
			row.AddCell().SetFloat(results[c][i])
		}
	}
	if err := f.Save(o.fileName); err != nil {
		return fmt.Errorf("kilnsim: writing output file: %v", err)
	}
	return nil
}
