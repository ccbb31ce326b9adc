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
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/slot"
)

// MachinePool 專門管理「某一款遊戲」的所有機台實例。
// 它透過兩個通道管理機台生命週期：
//  1. pool：健康且可用的機台，供 PlaceBet() 借出 / 歸還。
//  2. broken：在運作過程中發生 panic 或引擎錯誤的壞機台，送往此通道以便後續檢查或丟棄。
//
// 若某台機台於結算期間發生 panic 或引擎層 fatal error，該機台會被送至 broken，並立即補上一台新機以維持容量。
// 帳務類錯誤(餘額不足、平台無力支付)不代表機台狀態有問題，機台照常歸還。
type MachinePool struct {
	gameID        string
	game          slot.Game
	pf            core.PRNGFactory
	seedMaker     *seedMaker
	pool          chan *Machine // 可用機台的通道，用於取得和歸還機台
	broken        chan *Machine // 壞掉機台的通道，用於送修或丟棄壞掉機台
	done          chan struct{} // 關閉訊號：關閉後不再允許借機/歸還/補機
	closeOnce     sync.Once     // 確保 Close() 只執行一次
	poolsize      int           // 好機台
	rebuild       atomic.Int32  // 重起機台次數
	inflight      atomic.Int32  // 使用中
	panics        atomic.Int32  // panic 次數
	fatals        atomic.Int32  // fatal 次數（機台狀態不可信）
	closeReason   atomic.Value  // string: 關閉原因
	closeInflight atomic.Int32  // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32  // 關閉當下 pool 可用數量（len(pool) 快照）
	closeBroken   atomic.Int32  // 關閉當下 broken backlog（len(broken) 快照）
}

// newMachinePool 建立指定遊戲的機台池，n 至少為 1，預先建立 n 台機台放入 pool
func newMachinePool(n int, g slot.Game, pf core.PRNGFactory, seed int64) (*MachinePool, error) {
	if g == nil {
		return nil, errs.NewFatal("machine pool needs a game")
	}
	n = max(1, n)
	p := &MachinePool{
		gameID:    g.Info().ID,
		game:      g,
		pf:        pf,
		seedMaker: newSeedMaker(seed),
		pool:      make(chan *Machine, n),
		broken:    make(chan *Machine, 100),
		done:      make(chan struct{}),
		poolsize:  n,
	}

	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	for i := 0; i < n; i++ {
		p.pool <- newMachineWithSeed(g, pf, p.seedMaker.next())
	}
	return p, nil
}

// Close 進入關閉狀態：之後所有 PlaceBet() 直接回 error，歸還/補機時觀察 done 不再 send
func (p *MachinePool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *MachinePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（reason 只會被寫入一次）。
func (p *MachinePool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isEngineFatal 判斷錯誤是否代表「機台狀態不可信」需要淘汰/補機。
//
// 只有沒有領域分類的 Fatal 才算；Insolvency 雖是 Fatal，但屬於帳務問題，與機台無關。
func isEngineFatal(err error) bool {
	return errs.Level(err) == errs.Fatal && errs.KindOf(err) == errs.KindNone
}

// ctxErr 借機等待被取消；保留 ctx.Err() 讓上層區分 timeout 與 cancel
func ctxErr(err error) *errs.E {
	return &errs.E{Message: "bet canceled before a machine was available", Cause: err, ErrLv: errs.Warn}
}

// PlaceBet 借一台機台結算一局。
func (p *MachinePool) PlaceBet(ctx context.Context, s *slot.Settler, req slot.BetRequest) (res *slot.BetResult, err error) {
	var m *Machine
	select {
	case <-p.done:
		e := errs.NewFatal("machine pool closed: " + p.ClosedReason())
		return slot.FailResult(e.Message), e
	case <-ctx.Done():
		e := ctxErr(ctx.Err())
		return slot.FailResult(e.Message), e
	case m = <-p.pool:
		p.inflight.Add(1)
	}

	if m == nil {
		e := errs.NewFatal("machine pool got nil machine")
		return slot.FailResult(e.Message), e
	}

	var isPanic bool

	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			e := errs.NewFatal(fmt.Sprintf("machine %s panic : %v", p.gameID, r))
			res, err = slot.FailResult(e.Message), e
		}

		// 若已關閉，直接丟棄機台（不歸還、不補機）
		if p.Closed() {
			return
		}

		if isPanic || isEngineFatal(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			// 1) 壞機台送入 broken（避免阻塞）
			select {
			case p.broken <- m:
			default:
				// broken 滿代表連續故障：進入關閉狀態讓上層接管維護
				p.closeWithReason("overwhelmed_by_failures")
				return
			}

			// 2) 補一台新機台（維持容量）
			nm := newMachineWithSeed(p.game, p.pf, p.seedMaker.next())
			p.rebuild.Add(1)
			select {
			case <-p.done:
			case p.pool <- nm:
			}
			return
		}

		// 非引擎錯誤（驗證、餘額、平台無力支付）機台仍然健康：歸還 pool，err 原樣回傳
		select {
		case <-p.done:
		case p.pool <- m:
		}
	}()

	return m.Play(s, req)
}

func (p *MachinePool) PoolSize() int {
	return p.poolsize
}

func (p *MachinePool) Inflight() int {
	return int(p.inflight.Load())
}

func (p *MachinePool) ReBuild() int {
	return int(p.rebuild.Load())
}

func (p *MachinePool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (p *MachinePool) Panics() int {
	return int(p.panics.Load())
}

func (p *MachinePool) Fatals() int {
	return int(p.fatals.Load())
}

// Available 回傳當下 pool 可用機台數（len(pool)）。在高併發下為近似值。
func (p *MachinePool) Available() int {
	return len(p.pool)
}

// MachinePoolMetrics 「拉取式（pull）」觀測快照。
//
// Available/BrokenBacklog 來自 len(chan)，在高併發下是近似值。
// 關閉瞬間的快照（CloseInflight/CloseAvail/CloseBroken）只會在 Close 時寫入一次。
type MachinePoolMetrics struct {
	GameID        string `json:"game_id"`
	PoolSize      int    `json:"pool_size"`      // 目標容量（初始化指定）
	Available     int    `json:"available"`      // 當下可借出的機台數（len(pool)）
	Inflight      int    `json:"inflight"`       // 使用中（借出未歸還）
	BrokenBacklog int    `json:"broken_backlog"` // broken channel 當下 backlog（len(broken)）
	Rebuild       int    `json:"rebuild"`        // 補機次數
	Panics        int    `json:"panics"`         // panic 次數
	Fatals        int    `json:"fatals"`         // fatal 次數
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`

	CloseInflight int `json:"close_inflight"` // -1 表示尚未關閉
	CloseAvail    int `json:"close_avail"`
	CloseBroken   int `json:"close_broken"`
}

func (p *MachinePool) Metrics() MachinePoolMetrics {
	return MachinePoolMetrics{
		GameID:        p.gameID,
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}
