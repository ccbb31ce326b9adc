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
	"sync"

	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/slot"
)

// Machine 封裝一台「可對外開獎」的遊戲機台。
//
// 你可以把 Machine 視為 Game 的「外殼（shell）」：
//   - 對外：提供 Play（經過帳本）與 Spin（只開獎計分）入口。
//   - 對內：持有亂數核心（Core）；遊戲本身是無狀態的，多台機台共用同一個 Game。
//
// 並發語意：
//   - 同一台 Machine 的 Core 不能被多個 goroutine 同時取樣，mu 保護這件事。
//   - 要併發就建立多台 Machine（MachinePool / Simulator 負責）。
type Machine struct {
	gameID   string     // 遊戲 ID（用於觀測/日誌）
	game     slot.Game  // 遊戲邏輯，只讀
	core     *core.Core // 亂數核心，本機台獨佔
	mu       sync.Mutex // 防併發鎖：保護核心狀態
	initseed int64      // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// 同一個 PRNGFactory + 同一個 seed，會得到一致的開獎序列。
func newMachineWithSeed(g slot.Game, pf core.PRNGFactory, seed int64) *Machine {
	return &Machine{
		gameID:   g.Info().ID,
		game:     g,
		core:     core.NewSeeded(pf, seed),
		initseed: seed,
	}
}

// Play 以本機台的亂數核心完整結算一局(驗證、扣注、開獎、計分、雜湊、派彩)
func (m *Machine) Play(s *slot.Settler, req slot.BetRequest) (*slot.BetResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.PlaceBet(m.game, m.core, req)
}

// Spin 只開獎與計分，不經過帳本也不檢查上架狀態；模擬器與測試使用
//
// 請勿在正式結算流程使用
func (m *Machine) Spin(bet slot.BetData) (*slot.Evaluation, error) {
	stake, err := slot.StakeOf(bet)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.game.GenerateOutcome(m.core)
	return m.game.Evaluate(out, stake, bet)
}

// InitSeed 出生時的種子
func (m *Machine) InitSeed() int64 {
	return m.initseed
}

// SnapshotCore 取得 Core 狀態暫存
func (m *Machine) SnapshotCore() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態暫存
func (m *Machine) RestoreCore(src []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.Restore(src)
}
