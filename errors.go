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
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned, wrapped in a *TransitionError, when an
// engine operation is not allowed in the engine's current state.
var ErrInvalidTransition = errors.New("kilnsim: invalid state transition")

// ConfigurationError reports an out-of-range or inconsistent configuration
// value. It is only returned when an engine is configured, never while a
// simulation is running.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("kilnsim: invalid configuration: %s=%g but %s", e.Field, e.Value, e.Reason)
}

// TransitionError reports an operation that was attempted in a state
// that does not allow it. The engine state is not modified.
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("kilnsim: cannot %s while %s", e.Op, e.From)
}

// Is allows errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
