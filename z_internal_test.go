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

package casinolab

import (
	"testing"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/slot"
	"github.com/zintix-labs/casinolab/spec"
)

func TestSeedMaker(t *testing.T) {
	a := newSeedMaker(42)
	b := newSeedMaker(42)
	seen := make(map[int64]bool, 1000)
	for i := 0; i < 1000; i++ {
		x, y := a.next(), b.next()
		if x != y {
			t.Fatalf("seed maker must be deterministic at %d: %d != %d", i, x, y)
		}
		if x < 0 {
			t.Fatalf("seed must be non-negative, got %d", x)
		}
		if seen[x] {
			t.Fatalf("duplicate seed %d at %d", x, i)
		}
		seen[x] = true
	}
}

func TestIsEngineFatal(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errs.NewFatal("engine"), true},
		{errs.Insolvency("platform broke"), false},
		{errs.Validation("bad bet"), false},
		{errs.NewWarn("warn"), false},
	}
	for _, c := range cases {
		if got := isEngineFatal(c.err); got != c.want {
			t.Fatalf("isEngineFatal(%v) = %v want %v", c.err, got, c.want)
		}
	}
}

func TestMachineSpinRejectsStakeOverflow(t *testing.T) {
	g, err := slot.NewSlotsGame(spec.DefaultGameSetting())
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Initialize(); err != nil {
		t.Fatal(err)
	}
	m := newMachineWithSeed(g, core.ScriptedFactory{Values: []uint64{0}}, 1)

	if _, err := m.Spin(slot.BetData{Lines: 4, BetPerLine: (1 << 62) + 25}); !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("overflowing stake must be rejected, got %v", err)
	}
	ev, err := m.Spin(slot.BetData{Lines: 10, BetPerLine: 1})
	if err != nil || ev.Payout != 150 {
		t.Fatalf("spin all aces: %+v %v", ev, err)
	}
}
