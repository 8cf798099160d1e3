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

package hash

import (
	"testing"

	"github.com/spatialmodel/kilnsim"
)

func TestHash(t *testing.T) {
	g := kilnsim.Geometry{Radius: 5, Length: 80}
	a := Hash(g, kilnsim.DefaultControlConfig())
	b := Hash(g, kilnsim.DefaultControlConfig())
	if a != b {
		t.Errorf("equal settings give different fingerprints: %s != %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("fingerprint %s should have 32 hex digits", a)
	}
	c := kilnsim.DefaultControlConfig()
	c.Kp = 4
	if Hash(g, c) == a {
		t.Error("different settings give the same fingerprint")
	}
}

func TestHashFallback(t *testing.T) {
	var p *kilnsim.Geometry
	a := Hash(p)
	if a != Hash(p) || len(a) != 32 {
		t.Errorf("fingerprint: %s", a)
	}
	// One object that cannot be encoded moves the whole list to the
	// fallback, which is still deterministic for equal objects.
	g1 := kilnsim.Geometry{Radius: 5, Length: 80}
	g2 := kilnsim.Geometry{Radius: 5, Length: 80}
	if Hash(g1, p) != Hash(g2, p) {
		t.Error("equal objects give different fallback fingerprints")
	}
	if Hash(g1, p) == Hash(g1) {
		t.Error("fallback fingerprint matches the encoded one")
	}
}
