// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := NewSeeded(Default(), 7)
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestPCG64SnapshotRestore(t *testing.T) {
	c := New(Default().New(3))
	c.Uint64()
	snap, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []int{c.IntN(100), c.IntN(100), c.IntN(100)}
	if err := c.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i, w := range want {
		if got := c.IntN(100); got != w {
			t.Fatalf("replay %d: got %d want %d", i, got, w)
		}
	}
}

func TestBoundedRange(t *testing.T) {
	c := New(Default().New(11))
	for i := 0; i < 10000; i++ {
		if v := c.IntN(8); v < 0 || v >= 8 {
			t.Fatalf("IntN out of range: %d", v)
		}
		if v := c.Float64(); v < 0 || v >= 1 {
			t.Fatalf("Float64 out of range: %v", v)
		}
	}
	if c.IntN(0) != -1 || c.UintN(0) != 0 {
		t.Fatalf("zero bound sentinels broken")
	}
}

func TestPick(t *testing.T) {
	c := New(NewScripted(2, 0, 5))
	src := []string{"A", "K", "Q"}
	got := []string{c.PickString(src), c.PickString(src), c.PickString(src)}
	want := []string{"Q", "A", "Q"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pick %d: got %s want %s", i, got[i], want[i])
		}
	}
	if c.PickString(nil) != "" {
		t.Fatalf("empty pick should be empty string")
	}
	if c.Pick(nil) != -1 {
		t.Fatalf("empty int pick should be -1")
	}
}

func TestScriptedCyclesAndRestores(t *testing.T) {
	s := NewScripted(1, 2, 3)
	if s.IntN(10) != 1 || s.IntN(10) != 2 {
		t.Fatalf("unexpected scripted sequence")
	}
	snap, _ := s.Snapshot()
	if s.IntN(10) != 3 || s.IntN(10) != 1 {
		t.Fatalf("scripted should cycle")
	}
	if err := s.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.IntN(10) != 3 {
		t.Fatalf("restore should rewind cursor")
	}
	if err := s.Restore([]byte{1}); err == nil {
		t.Fatalf("short snapshot should fail")
	}
	f := ScriptedFactory{Values: []uint64{4}}
	if f.New(1).IntN(10) != 4 || f.New(99).IntN(10) != 4 {
		t.Fatalf("factory must ignore seed")
	}
}
