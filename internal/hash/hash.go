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

// Package hash calculates fingerprints of simulation settings, so that
// runs with identical settings can be recognized from their logs.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hex-encoded 128-bit fingerprint of the given objects.
// Objects that compare equal give equal fingerprints as long as all of
// them can be gob-encoded. If any of them cannot, the whole list is
// fingerprinted from a spew dump instead, so the result is not comparable
// with a fingerprint computed from gob encoding.
func Hash(objects ...interface{}) string {
	h := fnv.New128a()
	e := gob.NewEncoder(h)
	for _, o := range objects {
		if err := e.Encode(o); err != nil {
			// gob can't encode some values (e.g., NaN map keys or nil
			// pointers); fall back to a deterministic text dump.
			h.Reset()
			printer := spew.ConfigState{
				Indent:                  " ",
				SortKeys:                true,
				DisableMethods:          true,
				SpewKeys:                true,
				DisablePointerAddresses: true,
				DisableCapacities:       true,
			}
			for _, o := range objects {
				printer.Fprintf(h, "%#v", o)
			}
			break
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
