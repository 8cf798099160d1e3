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
	"time"

	"github.com/spatialmodel/kilnsim"
)

// Drive starts e and steps it once every interval until it stops or ctx
// is done. f, if not nil, is called with each new record. The engine is
// left Stopped when ctx is done, so the run can be resumed.
// It returns ctx.Err() if ctx is done before the run finishes.
func Drive(ctx context.Context, e *kilnsim.Engine, interval time.Duration, f func(kilnsim.StepRecord)) error {
	if interval <= 0 {
		return fmt.Errorf("kilnutil: step interval must be >0 but is %v", interval)
	}
	if err := e.Start(); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for e.State() == kilnsim.Running {
		if err := ctx.Err(); err != nil {
			e.Stop()
			return err
		}
		select {
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case <-ticker.C:
			r, err := e.Step()
			if err != nil {
				return err
			}
			if f != nil {
				f(r)
			}
		}
	}
	return nil
}
