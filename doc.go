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

// Package kilnsim is a lumped thermal model of a rotary cement kiln under
// feedback fuel control.
//
// The kiln contents are treated as a single well-mixed node whose
// temperature changes with the heat released by the fuel, shell losses
// and, optionally, the sensible heat taken up by the feed. The fuel rate is
// set by a PID controller acting on the difference between a temperature
// setpoint and the kiln temperature and is limited to the actuator range.
//
// An Engine owns the state of one simulation and advances it by explicit
// Euler steps of fixed length. It can be run to its horizon in one call
// or stepped incrementally by an external driver.
package kilnsim

// Version gives the version number.
const Version = "1.0.0"
