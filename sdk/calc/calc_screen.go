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
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/spec"
)

// Feature 盤面觸發的特殊功能
type Feature string

const (
	FeatureFreeSpins  Feature = "FREE_SPINS"
	FeatureBonusGame  Feature = "BONUS_GAME"
	FeatureMultiplier Feature = "MULTIPLIER"
)

const (
	minLineRun        = 3 // 連線至少 3 格才計分
	minScatter        = 3
	multiplierWildRun = 5
)

// LineWin 單條連線中獎明細
type LineWin struct {
	Line    int      `json:"line"`
	Win     int64    `json:"win"`
	Symbols []string `json:"symbols"`
	Symbol  string   `json:"symbol"`
	Run     int      `json:"run"`
}

// Evaluation 一個盤面的完整評估結果
type Evaluation struct {
	TotalWin     int64     `json:"totalWin"`
	LineWins     []LineWin `json:"winningLines"`
	ScatterCount int       `json:"scatterCount"`
	ScatterWin   int64     `json:"scatterWin"`
	Features     []Feature `json:"specialFeatures"`
}

// ScreenCalculator 對盤面做連線與 scatter 計分。
//
// 計算器只讀設定，不持有任何每局狀態，可被多台機台共用。
type ScreenCalculator struct {
	ss     *spec.SlotsSetting
	values []int64
	wild   int
}

// NewScreenCalculator 從已初始化的 SlotsSetting 建立計算器
func NewScreenCalculator(ss *spec.SlotsSetting) (*ScreenCalculator, error) {
	if err := ss.Init(); err != nil {
		return nil, err
	}
	values := make([]int64, len(ss.Symbols))
	for i, s := range ss.Symbols {
		values[i] = s.Value
	}
	return &ScreenCalculator{ss: ss, values: values, wild: ss.Wild}, nil
}

// Evaluate 計算前 min(lines, 連線數) 條連線以及全盤 scatter。
//
// 盤面出現設定外的圖標時回傳 Fatal，這只會發生在盤面不是由本設定產生的情況。
func (sc *ScreenCalculator) Evaluate(grid [][]string, lines int, betPerLine int64) (*Evaluation, error) {
	idx, err := sc.index(grid)
	if err != nil {
		return nil, err
	}
	ev := &Evaluation{LineWins: []LineWin{}, Features: []Feature{}}

	n := min(max(lines, 0), len(sc.ss.Paylines))
	for i := 0; i < n; i++ {
		sc.calcLine(&sc.ss.Paylines[i], grid, idx, betPerLine, ev)
	}
	sc.calcScatter(idx, betPerLine, ev)
	return ev, nil
}

// index 把盤面轉成圖標索引，同形狀
func (sc *ScreenCalculator) index(grid [][]string) ([][]int, error) {
	out := make([][]int, len(grid))
	for r, reel := range grid {
		out[r] = make([]int, len(reel))
		for row, id := range reel {
			i, ok := sc.ss.SymbolIndex[id]
			if !ok {
				return nil, errs.Fatalf("grid[%d][%d] holds unknown symbol %q", r, row, id)
			}
			out[r][row] = i
		}
	}
	return out, nil
}
