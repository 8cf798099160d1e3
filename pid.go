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

// pid holds the state of a PID controller.
type pid struct {
	integral  float64 // integral of error [°C·s]
	prevError float64 // [°C]

	lastIncrement float64 // integral added during the most recent step
}

// step advances the controller by dt for error e and returns the
// control signal.
func (p *pid) step(e, dt, kp, ki, kd float64) float64 {
	p.lastIncrement = e * dt
	p.integral += p.lastIncrement
	derivative := (e - p.prevError) / dt
	p.prevError = e
	return kp*e + ki*p.integral + kd*derivative
}

// freeze removes the integral accumulated during the most recent step.
func (p *pid) freeze() {
	p.integral -= p.lastIncrement
	p.lastIncrement = 0
}

func (p *pid) reset() {
	*p = pid{}
}

// clamp limits v to [min, max] and reports whether it was limited.
func clamp(v, min, max float64) (float64, bool) {
	if v < min {
		return min, true
	}
	if v > max {
		return max, true
	}
	return v, false
}
