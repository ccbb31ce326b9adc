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

package calc

import (
	"slices"
	"testing"

	"github.com/zintix-labs/casinolab/spec"
)

// fromRows 以「列」的方式描述盤面，轉成 reel-major
func fromRows(rows ...[]string) [][]string {
	grid := make([][]string, len(rows[0]))
	for r := range grid {
		grid[r] = make([]string, len(rows))
		for row := range rows {
			grid[r][row] = rows[row][r]
		}
	}
	return grid
}

func newDefault(t *testing.T) *ScreenCalculator {
	t.Helper()
	sc, err := NewScreenCalculator(spec.DefaultSlotsSetting())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return sc
}

func TestTopLineWin(t *testing.T) {
	sc := newDefault(t)
	grid := fromRows(
		[]string{"A", "A", "A", "K", "K"},
		[]string{"J", "Q", "J", "Q", "J"},
		[]string{"Q", "J", "Q", "J", "Q"},
	)
	ev, err := sc.Evaluate(grid, 1, 10)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.TotalWin != 50 {
		t.Fatalf("expected 50, got %d", ev.TotalWin)
	}
	if len(ev.LineWins) != 1 || ev.LineWins[0].Line != 1 || ev.LineWins[0].Symbol != "A" || ev.LineWins[0].Run != 3 {
		t.Fatalf("unexpected line wins: %+v", ev.LineWins)
	}
	if !slices.Equal(ev.LineWins[0].Symbols, []string{"A", "A", "A", "K", "K"}) {
		t.Fatalf("line symbols wrong: %v", ev.LineWins[0].Symbols)
	}
	if len(ev.Features) != 0 {
		t.Fatalf("no feature expected, got %v", ev.Features)
	}
}

func TestScatterWithoutPaylines(t *testing.T) {
	sc := newDefault(t)
	grid := fromRows(
		[]string{"S", "A", "K", "Q", "J"},
		[]string{"A", "S", "K", "Q", "J"},
		[]string{"A", "K", "Q", "J", "S"},
	)
	ev, err := sc.Evaluate(grid, 0, 10)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.ScatterCount != 3 || ev.ScatterWin != 15*10*3 || ev.TotalWin != 450 {
		t.Fatalf("unexpected scatter result: %+v", ev)
	}
	if !slices.Equal(ev.Features, []Feature{FeatureFreeSpins}) {
		t.Fatalf("expected FREE_SPINS, got %v", ev.Features)
	}
	if len(ev.LineWins) != 0 {
		t.Fatalf("no line should be evaluated")
	}
}

func TestTwoScattersDoNotPay(t *testing.T) {
	sc := newDefault(t)
	grid := fromRows(
		[]string{"S", "A", "K", "Q", "J"},
		[]string{"A", "S", "K", "Q", "J"},
		[]string{"A", "K", "Q", "J", "10"},
	)
	ev, _ := sc.Evaluate(grid, 0, 10)
	if ev.TotalWin != 0 || len(ev.Features) != 0 || ev.ScatterCount != 2 {
		t.Fatalf("two scatters must not pay: %+v", ev)
	}
}

func TestLineRuns(t *testing.T) {
	cases := []struct {
		name    string
		top     []string
		win     int64
		symbol  string
		run     int
		feature []Feature
	}{
		{"wild substitutes", []string{"A", "W", "A", "K", "J"}, 5 * 10 * 1, "A", 3, nil},
		{"five of a kind", []string{"K", "K", "K", "K", "K"}, 4 * 10 * 3, "K", 5, nil},
		{"leading wild breaks", []string{"W", "A", "A", "A", "K"}, 5 * 10 * 1, "A", 3, nil},
		{"longest run wins", []string{"J", "J", "K", "K", "K"}, 4 * 10 * 1, "K", 3, nil},
		{"trailing wild extends", []string{"Q", "Q", "Q", "W", "10"}, 3 * 10 * 2, "Q", 4, nil},
		{"wild line", []string{"W", "W", "W", "W", "W"}, 10 * 10 * 3, "W", 5, []Feature{FeatureMultiplier}},
		{"short wild line", []string{"W", "W", "W", "W", "A"}, 10 * 10 * 2, "W", 4, nil},
		{"bonus line", []string{"B", "B", "B", "A", "K"}, 20 * 10 * 1, "B", 3, []Feature{FeatureBonusGame}},
	}
	sc := newDefault(t)
	for _, c := range cases {
		grid := fromRows(
			c.top,
			[]string{"J", "Q", "J", "Q", "J"},
			[]string{"Q", "J", "Q", "J", "Q"},
		)
		ev, err := sc.Evaluate(grid, 1, 10)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if ev.TotalWin != c.win {
			t.Fatalf("%s: win got %d want %d", c.name, ev.TotalWin, c.win)
		}
		if ev.LineWins[0].Symbol != c.symbol || ev.LineWins[0].Run != c.run {
			t.Fatalf("%s: got %s x%d", c.name, ev.LineWins[0].Symbol, ev.LineWins[0].Run)
		}
		if len(c.feature) == 0 {
			c.feature = []Feature{}
		}
		if !slices.Equal(ev.Features, c.feature) {
			t.Fatalf("%s: features got %v want %v", c.name, ev.Features, c.feature)
		}
	}
}

func TestLinesClamped(t *testing.T) {
	sc := newDefault(t)
	row := []string{"A", "A", "A", "A", "A"}
	grid := fromRows(row, row, row)
	all, _ := sc.Evaluate(grid, 99, 1)
	if len(all.LineWins) != 10 || all.TotalWin != 10*5*3 {
		t.Fatalf("lines above payline count should clamp to 10: %+v", all)
	}
	three, _ := sc.Evaluate(grid, 3, 1)
	if len(three.LineWins) != 3 || three.TotalWin != 3*5*3 {
		t.Fatalf("expected 3 lines evaluated: %+v", three)
	}
	for i, lw := range three.LineWins {
		if lw.Line != i+1 {
			t.Fatalf("paylines must be evaluated in id order, got %d at %d", lw.Line, i)
		}
	}
}

func TestOutOfRangeCellSkipped(t *testing.T) {
	ss := &spec.SlotsSetting{
		Reels: 3, Rows: 1,
		Symbols: []spec.SymbolSetting{{ID: "A", Name: "Ace", Value: 5}, {ID: "K", Name: "King", Value: 4}},
		Paylines: []spec.PaylineSetting{
			{ID: 1, Positions: [][]int{{0, 0}, {7, 0}, {1, 0}, {2, 3}, {2, 0}}},
		},
	}
	sc, err := NewScreenCalculator(ss)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	ev, err := sc.Evaluate([][]string{{"A"}, {"A"}, {"A"}}, 1, 2)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ev.TotalWin != 5*2*1 || len(ev.LineWins[0].Symbols) != 3 {
		t.Fatalf("out of range cells should be skipped: %+v", ev)
	}
}

func TestUnknownSymbolIsFatal(t *testing.T) {
	sc := newDefault(t)
	row := []string{"A", "A", "A", "A", "Z"}
	if _, err := sc.Evaluate(fromRows(row, row, row), 1, 1); err == nil {
		t.Fatalf("unknown symbol should fail")
	}
}

func TestLongestRunEmpty(t *testing.T) {
	if sym, run := longestRun(nil, 0); sym != -1 || run != 0 {
		t.Fatalf("empty sequence should give (-1,0), got (%d,%d)", sym, run)
	}
}
