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

package recorder

import (
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/calc"
	"github.com/zintix-labs/casinolab/sdk/slot"
	"github.com/zintix-labs/casinolab/stats"
)

// featureNames 報表固定的功能順序
var featureNames = []calc.Feature{calc.FeatureFreeSpins, calc.FeatureBonusGame, calc.FeatureMultiplier}

// RoundRecorder 遊戲紀錄員
//
// RoundRecorder 只累積整數，Done 時才轉成統計報表。
// 不是併發安全的：每個 worker 持有自己的紀錄員，最後用 Merge 合併。
type RoundRecorder struct {
	GameName string
	GameID   string
	Bet      slot.BetData
	Amount   int64
	Basic    *BasicRecord
	Dist     *DistRecord
	Features map[calc.Feature]*FeatureRecord
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalBet      int64
	TotalWin      int64
	LineWin       int64
	ScatterWin    int64
	TotalWinSqSum float64 // 以押注為單位的贏倍平方和
	MaxWin        int64
	Hits          int
	Capped        int
	Rounds        int
}

// DistRecord 分數區間落點統計
type DistRecord struct {
	Bucket          *stats.WinBucket
	TotalWinCollect []int
}

type FeatureRecord struct {
	Count  int
	Rounds int
}

// NewRoundRecorder 以單一押注形狀建立紀錄員
func NewRoundRecorder(name, id string, bet slot.BetData) (*RoundRecorder, error) {
	if bet.Lines <= 0 || bet.BetPerLine <= 0 {
		return nil, errs.Fatalf("recorder bet err: lines=%d betPerLine=%d", bet.Lines, bet.BetPerLine)
	}
	amount := int64(bet.Lines) * bet.BetPerLine
	r := &RoundRecorder{
		GameName: name,
		GameID:   id,
		Bet:      bet,
		Amount:   amount,
		Basic:    new(BasicRecord),
		Dist: &DistRecord{
			Bucket:          stats.Buckets.GetBucketByBet(amount),
			TotalWinCollect: make([]int, len(stats.Buckets.WinBucketStr())),
		},
		Features: make(map[calc.Feature]*FeatureRecord, len(featureNames)),
	}
	for _, f := range featureNames {
		r.Features[f] = new(FeatureRecord)
	}
	return r, nil
}

// Record 紀錄一局。ev.Payout 為套用上限後的派彩；被封頂的局不拆分連線與 scatter 贏分
func (r *RoundRecorder) Record(ev *slot.Evaluation) {
	b := r.Basic
	b.Rounds++
	b.TotalBet += r.Amount
	b.TotalWin += ev.Payout
	mult := float64(ev.Payout) / float64(r.Amount)
	b.TotalWinSqSum += mult * mult
	if ev.Payout > b.MaxWin {
		b.MaxWin = ev.Payout
	}
	if ev.Payout > 0 {
		b.Hits++
	}
	r.Dist.TotalWinCollect[r.Dist.Bucket.Index(ev.Payout)]++

	if ev.Data == nil {
		return
	}
	if ev.Data.Capped {
		b.Capped++
	}
	if !ev.Data.Capped {
		var lineWin int64
		for _, lw := range ev.Data.WinningLines {
			lineWin += lw.Win
		}
		b.LineWin += lineWin
		b.ScatterWin += ev.Payout - lineWin
	}

	var seen [3]bool
	for _, f := range ev.Data.SpecialFeatures {
		fr, ok := r.Features[f]
		if !ok {
			continue
		}
		fr.Count++
		for i, name := range featureNames {
			if name == f && !seen[i] {
				seen[i] = true
				fr.Rounds++
			}
		}
	}
}

// MergeRoundRecorder 合併多個 worker 的紀錄，押注形狀必須一致
func MergeRoundRecorder(rs []*RoundRecorder) (*RoundRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewFatal("merge round record err : empty input")
	}
	r0 := rs[0]
	out, err := NewRoundRecorder(r0.GameName, r0.GameID, r0.Bet)
	if err != nil {
		return nil, err
	}
	for _, v := range rs {
		if v.GameID != r0.GameID {
			return nil, errs.NewFatal("merge round record err : different game")
		}
		if v.Bet != r0.Bet {
			return nil, errs.NewFatal("merge round record err : different bet")
		}
		out.Basic.TotalBet += v.Basic.TotalBet
		out.Basic.TotalWin += v.Basic.TotalWin
		out.Basic.LineWin += v.Basic.LineWin
		out.Basic.ScatterWin += v.Basic.ScatterWin
		out.Basic.TotalWinSqSum += v.Basic.TotalWinSqSum
		out.Basic.MaxWin = max(out.Basic.MaxWin, v.Basic.MaxWin)
		out.Basic.Hits += v.Basic.Hits
		out.Basic.Capped += v.Basic.Capped
		out.Basic.Rounds += v.Basic.Rounds
		for i, c := range v.Dist.TotalWinCollect {
			out.Dist.TotalWinCollect[i] += c
		}
		for f, fr := range v.Features {
			out.Features[f].Count += fr.Count
			out.Features[f].Rounds += fr.Rounds
		}
	}
	return out, nil
}

// Done 輸出統計報表(已計算完成)
func (r *RoundRecorder) Done() *stats.StatReport {
	b := r.Basic
	labels := append([]string{}, stats.Buckets.WinBucketStr()...)
	collect := append([]int{}, r.Dist.TotalWinCollect...)

	fr := &stats.FeatureReport{
		Names:  make([]string, 0, len(featureNames)),
		Count:  make(map[string]int, len(featureNames)),
		Rounds: make(map[string]int, len(featureNames)),
	}
	for _, f := range featureNames {
		name := string(f)
		fr.Names = append(fr.Names, name)
		fr.Count[name] = r.Features[f].Count
		fr.Rounds[name] = r.Features[f].Rounds
	}

	rep := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    r.GameName,
			GameID:      r.GameID,
			Bet:         r.Amount,
			Lines:       r.Bet.Lines,
			BetPerLine:  r.Bet.BetPerLine,
			TotalBet:    b.TotalBet,
			TotalWin:    b.TotalWin,
			LineWin:     b.LineWin,
			ScatterWin:  b.ScatterWin,
			HitRounds:   b.Hits,
			NoWinRounds: b.Rounds - b.Hits,
			Capped:      b.Capped,
			MaxWin:      b.MaxWin,
			Rounds:      b.Rounds,
		},
		Mult: &stats.MultReport{
			TotalWinMult:      float64(b.TotalWin) / float64(r.Amount),
			TotalWinMultSqSum: b.TotalWinSqSum,
			MaxWinMult:        float64(b.MaxWin) / float64(r.Amount),
		},
		Dist: &stats.DistReport{
			WinBucket:       labels,
			TotalWinCollect: collect,
		},
		Features: fr,
	}
	rep.Done()
	return rep
}
