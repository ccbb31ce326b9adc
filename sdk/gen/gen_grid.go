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
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/spec"
)

// GridGenerator 依設定的圖標列表，每格獨立等機率抽一個圖標。
//
// 生成器本身不持有亂數來源，亂數由呼叫端(機台)的 Core 提供，
// 因此同一個生成器可以被多台機台同時使用。
type GridGenerator struct {
	Reels int
	Rows  int
	strip []string
}

// NewGridGenerator 從已初始化的 SlotsSetting 建立生成器
func NewGridGenerator(ss *spec.SlotsSetting) (*GridGenerator, error) {
	if err := ss.Init(); err != nil {
		return nil, err
	}
	if len(ss.Strip) == 0 {
		return nil, errs.NewFatal("grid generator needs a non-empty strip")
	}
	strip := make([]string, len(ss.Strip))
	copy(strip, ss.Strip)
	return &GridGenerator{Reels: ss.Reels, Rows: ss.Rows, strip: strip}, nil
}

// Gen 產生 Reels 條、每條 Rows 格的盤面，每次回傳新的切片
func (g *GridGenerator) Gen(c *core.Core) [][]string {
	cells := make([]string, g.Reels*g.Rows)
	for i := range cells {
		cells[i] = c.PickString(g.strip)
	}
	grid := make([][]string, g.Reels)
	for r := range grid {
		grid[r] = cells[r*g.Rows : (r+1)*g.Rows : (r+1)*g.Rows]
	}
	return grid
}
