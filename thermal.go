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

	"github.com/ctessum/unit"
)

// Geometry holds the physical dimensions of the kiln.
type Geometry struct {
	Radius float64 // [m]
	Length float64 // [m]
}

// Volume returns the internal volume of the kiln cylinder [m³].
func (g Geometry) Volume() float64 {
	return math.Pi * g.Radius * g.Radius * g.Length
}

// Mass returns the mass of material in the kiln [kg] for the given
// bulk density [kg/m³].
func (g Geometry) Mass(density float64) float64 {
	return g.Volume() * density
}

// ThermalMass returns the mass of clinker in the kiln
// as a dimensioned quantity.
func (g Geometry) ThermalMass(c *ProcessConstants) *unit.Unit {
	return unit.New(g.Mass(c.ClinkerDensity), unit.Dimensions{unit.MassDim: 1})
}

func (g Geometry) validate() error {
	vars := []float64{g.Radius, g.Length}
	names := []string{"Kiln.Radius", "Kiln.Length"}
	limits := []float64{maxRadius, maxLength}
	for i, v := range vars {
		if !(v > 0) {
			return &ConfigurationError{Field: names[i], Value: v, Reason: "should be >0"}
		}
		if v > limits[i] {
			return &ConfigurationError{Field: names[i], Value: v,
				Reason: fmt.Sprintf("should be <= %g", limits[i])}
		}
	}
	return nil
}

// ProcessConstants are the process-wide physical constants of the model.
type ProcessConstants struct {
	HeatingValue        float64 // fuel lower heating value [kJ/kg]
	SpecificHeat        float64 // specific heat of the kiln contents [kJ/kg/°C]
	HeatLossCoefficient float64 // shell heat loss [kW/°C]
	AmbientTemperature  float64 // [°C]
	CO2Factor           float64 // [kg CO₂/kg fuel]
	ClinkerDensity      float64 // [kg/m³]

	// ReferenceRotation is the product of rotation speed and residence time
	// [min·RPM]; residence time is ReferenceRotation / speed.
	ReferenceRotation float64

	// ReferenceResidence is the residence time [min] above which longer
	// residence no longer improves heat transfer.
	ReferenceResidence float64
}

// DefaultConstants returns the constants for a coal-fired dry-process kiln.
func DefaultConstants() *ProcessConstants {
	return &ProcessConstants{
		HeatingValue:        32000,
		SpecificHeat:        1.0,
		HeatLossCoefficient: 0.001,
		AmbientTemperature:  30,
		CO2Factor:           3.17,
		ClinkerDensity:      1200,
		ReferenceRotation:   30,
		ReferenceResidence:  30,
	}
}

func (c *ProcessConstants) validate() error {
	vars := []float64{c.HeatingValue, c.SpecificHeat, c.CO2Factor, c.ClinkerDensity,
		c.ReferenceRotation, c.ReferenceResidence}
	names := []string{"HeatingValue", "SpecificHeat", "CO2Factor", "ClinkerDensity",
		"ReferenceRotation", "ReferenceResidence"}
	for i, v := range vars {
		if !(v > 0) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: names[i], Value: v, Reason: "should be >0"}
		}
	}
	if c.HeatLossCoefficient < 0 {
		return &ConfigurationError{Field: "HeatLossCoefficient", Value: c.HeatLossCoefficient,
			Reason: "should be >=0"}
	}
	if math.IsNaN(c.AmbientTemperature) || math.IsInf(c.AmbientTemperature, 0) {
		return &ConfigurationError{Field: "AmbientTemperature", Value: c.AmbientTemperature,
			Reason: "should be finite"}
	}
	return nil
}

// ResidenceTime returns the material residence time [min] at the
// given rotation speed [RPM]. speed must be > 0.
func (c *ProcessConstants) ResidenceTime(speed float64) float64 {
	return c.ReferenceRotation / speed
}

// Efficiency returns the fraction of the fuel heat that is transferred
// to the material at the given rotation speed [RPM]. Slower rotation
// increases residence time, up to a saturation point.
func (c *ProcessConstants) Efficiency(speed float64) float64 {
	return math.Min(1, c.ResidenceTime(speed)/c.ReferenceResidence)
}

// TemperatureRate returns the rate of change of the kiln temperature
// [°C/s] at temperature T [°C], given the actuated fuel rate and the feed
// rate [kg/hr] and the heat transfer efficiency.
// If feedCooling is true, sensible heat absorbed by the incoming feed
// is included as a loss term.
// All inputs are assumed to be already validated and clamped.
func TemperatureRate(T, fuelRate, feedRate float64, g Geometry, c *ProcessConstants,
	efficiency float64, feedCooling bool) float64 {
	mass := g.Mass(c.ClinkerDensity)
	heatInput := fuelRate * c.HeatingValue / 3600 // kJ/s
	effectiveHeat := heatInput * efficiency
	heatLoss := c.HeatLossCoefficient * (T - c.AmbientTemperature)
	var cooling float64
	if feedCooling {
		cooling = feedRate * c.SpecificHeat * (T - c.AmbientTemperature) / mass
	}
	return (effectiveHeat - heatLoss - cooling) / (mass * c.SpecificHeat)
}
