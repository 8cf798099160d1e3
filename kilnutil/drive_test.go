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
	"testing"
	"time"

	"github.com/spatialmodel/kilnsim"
)

func newDriveEngine(t *testing.T, horizon float64) *kilnsim.Engine {
	cfg := kilnsim.DefaultControlConfig()
	cfg.Horizon = horizon
	e, err := kilnsim.New(kilnsim.Geometry{Radius: 5, Length: 80}, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestDrive(t *testing.T) {
	e := newDriveEngine(t, 10)
	var records []kilnsim.StepRecord
	start := time.Now()
	err := Drive(context.Background(), e, 5*time.Millisecond, func(r kilnsim.StepRecord) {
		records = append(records, r)
	})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Errorf("steps were not paced: 10 steps took %v", elapsed)
	}
	if len(records) != 10 {
		t.Errorf("have %d records, want 10", len(records))
	}
	if e.State() != kilnsim.Stopped {
		t.Errorf("state: have %v, want Stopped", e.State())
	}
}

func TestDriveCancel(t *testing.T) {
	e := newDriveEngine(t, 50)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := Drive(ctx, e, time.Millisecond, func(r kilnsim.StepRecord) {
		if r.Time == 4 {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Fatalf("have error %v, want %v", err, context.Canceled)
	}
	if e.State() != kilnsim.Stopped {
		t.Errorf("state: have %v, want Stopped", e.State())
	}
	if e.Steps() != 5 {
		t.Errorf("have %d steps, want 5", e.Steps())
	}

	// Resume where the run left off.
	if err := Drive(context.Background(), e, time.Millisecond, nil); err != nil {
		t.Fatal(err)
	}
	h := e.History()
	if len(h) != 50 {
		t.Fatalf("have %d records, want 50", len(h))
	}
	for i, r := range h {
		if r.Time != float64(i) {
			t.Fatalf("record %d has time %g", i, r.Time)
		}
	}
}

func TestDriveInvalid(t *testing.T) {
	e := newDriveEngine(t, 10)
	if err := Drive(context.Background(), e, 0, nil); err == nil {
		t.Error("want an error for a zero interval")
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	for e.State() == kilnsim.Running {
		if _, err := e.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if err := Drive(context.Background(), e, time.Millisecond, nil); err == nil {
		t.Error("want an error when driving a finished run")
	}
}
