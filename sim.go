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
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/recorder"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/slot"
	"github.com/zintix-labs/casinolab/stats"
)

const capPrepare int = 100

// Simulator 用於模擬遊戲行為，可建立多台機台並平行紀錄統計。
//
// 模擬只開獎與計分，不經過帳本，也不看上架狀態；押注形狀仍依遊戲規則檢查。
type Simulator struct {
	GameID    string
	GameName  string
	game      slot.Game
	pf        core.PRNGFactory
	initSeed  int64
	seedmaker *seedMaker
	mBuf      []*Machine                // 併發執行機台實例
	rBuf      []*recorder.RoundRecorder // 併發遊戲紀錄員
}

func newSimulator(g slot.Game, pf core.PRNGFactory) (*Simulator, error) {
	seed, err := core.RandomSeed()
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newSimulatorWithSeed(g, pf, seed)
}

func newSimulatorWithSeed(g slot.Game, pf core.PRNGFactory, seed int64) (*Simulator, error) {
	if g == nil {
		return nil, errs.NewFatal("simulator needs a game")
	}
	info := g.Info()
	s := &Simulator{
		GameID:    info.ID,
		GameName:  info.Name,
		game:      g,
		pf:        pf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
		rBuf:      make([]*recorder.RoundRecorder, 0, capPrepare),
	}
	s.mBuf[0] = newMachineWithSeed(g, pf, s.initSeed)
	return s, nil
}

// InitSeed 模擬器的起始種子，相同種子與參數可重現同一份報表
func (s *Simulator) InitSeed() int64 {
	return s.initSeed
}

func (s *Simulator) valid(bet slot.BetData, rounds int) error {
	if rounds < 1 {
		return errs.NewWarn("round must > 0")
	}
	stake, err := slot.StakeOf(bet)
	if err != nil {
		return err
	}
	info := s.game.Info()
	info.IsActive = true
	return slot.ValidateSlots(info, stake, bet)
}

// Sim 單線模擬器：以一台機台連續跑指定 round 並回傳統計結果與用時
func (s *Simulator) Sim(bet slot.BetData, rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if err := s.valid(bet, rounds); err != nil {
		return nil, 0, err
	}
	r, err := recorder.NewRoundRecorder(s.GameName, s.GameID, bet)
	if err != nil {
		return nil, 0, err
	}
	s.rBuf = append(s.rBuf, r)
	m := s.mBuf[0]

	bar := pb.StartNew(rounds)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < rounds; i++ {
		ev, err := m.Spin(bet)
		if err != nil {
			bar.Finish()
			return nil, 0, err
		}
		r.Record(ev)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	return r.Done(), used, nil
}

// SimMP 平行執行多個機台，總計 rounds*mp 次開獎，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(bet slot.BetData, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if err := s.valid(bet, rounds); err != nil {
		return nil, 0, err
	}
	for len(s.mBuf) < mp {
		s.mBuf = append(s.mBuf, newMachineWithSeed(s.game, s.pf, s.seedmaker.next()))
	}
	for len(s.rBuf) < mp {
		r, err := recorder.NewRoundRecorder(s.GameName, s.GameID, bet)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	errCh := make(chan error, mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			m := s.mBuf[i]
			st := s.rBuf[i]
			for range rounds {
				ev, err := m.Spin(bet)
				if err != nil {
					errCh <- err
					return
				}
				st.Record(ev)
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, 0, err
	}

	merged, err := recorder.MergeRoundRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, 0, err
	}
	return merged.Done(), used, nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

// seedMaker 從一個起始種子派生出不重複的子種子(機台池補機、模擬器多機台)
type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next state 走全週期（不重複），再用可逆 mix63 打散
//
// 可能被多個 goroutine 同時呼叫（機台池補機），state 以 CAS 迴圈推進，每次呼叫取得唯一的下一個 state。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
