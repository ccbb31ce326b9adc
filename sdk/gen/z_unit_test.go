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

package gen

import (
	"testing"

	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/spec"
)

func TestGenShape(t *testing.T) {
	g, err := NewGridGenerator(spec.DefaultSlotsSetting())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	grid := g.Gen(core.New(core.Default().New(1)))
	if len(grid) != 5 {
		t.Fatalf("expected 5 reels, got %d", len(grid))
	}
	known := map[string]bool{"A": true, "K": true, "Q": true, "J": true, "10": true, "W": true, "S": true, "B": true}
	for r, reel := range grid {
		if len(reel) != 3 {
			t.Fatalf("reel %d: expected 3 rows, got %d", r, len(reel))
		}
		for _, id := range reel {
			if !known[id] {
				t.Fatalf("unknown symbol %q", id)
			}
		}
	}
}

func TestGenScriptedIsReelMajor(t *testing.T) {
	ss := &spec.SlotsSetting{
		Reels: 2, Rows: 2,
		Symbols: []spec.SymbolSetting{{ID: "A", Value: 1}, {ID: "B", Value: 1}, {ID: "C", Value: 1}},
	}
	g, err := NewGridGenerator(ss)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	grid := g.Gen(core.New(core.NewScripted(0, 1, 2, 0)))
	want := [][]string{{"A", "B"}, {"C", "A"}}
	for r := range want {
		for row := range want[r] {
			if grid[r][row] != want[r][row] {
				t.Fatalf("grid[%d][%d]=%s want %s", r, row, grid[r][row], want[r][row])
			}
		}
	}
	// 每次回傳的盤面互不共用
	grid2 := g.Gen(core.New(core.NewScripted(1)))
	grid2[0] = append(grid2[0], "X")
	if grid[1][0] != "C" {
		t.Fatalf("grids must not alias")
	}
}

func TestGenStripWeights(t *testing.T) {
	ss := &spec.SlotsSetting{
		Reels: 5, Rows: 3,
		Symbols: []spec.SymbolSetting{{ID: "A", Value: 1}, {ID: "B", Value: 1}},
		Strip:   []string{"A", "A", "A", "B"},
	}
	g, err := NewGridGenerator(ss)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	c := core.New(core.Default().New(42))
	counts := map[string]int{}
	for i := 0; i < 4000; i++ {
		for _, reel := range g.Gen(c) {
			for _, id := range reel {
				counts[id]++
			}
		}
	}
	total := float64(counts["A"] + counts["B"])
	if ratio := float64(counts["A"]) / total; ratio < 0.72 || ratio > 0.78 {
		t.Fatalf("A ratio should be near 0.75, got %.3f", ratio)
	}
}

func TestGenRejectsBadSetting(t *testing.T) {
	if _, err := NewGridGenerator(&spec.SlotsSetting{Reels: 0, Rows: 1}); err == nil {
		t.Fatalf("expected error for zero reels")
	}
}
