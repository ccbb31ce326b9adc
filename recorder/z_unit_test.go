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

package recorder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/casinolab/recorder"
	"github.com/zintix-labs/casinolab/sdk/calc"
	"github.com/zintix-labs/casinolab/sdk/slot"
)

var bet = slot.BetData{Lines: 10, BetPerLine: 1}

func win(payout int64, lineWins []int64, features ...calc.Feature) *slot.Evaluation {
	lw := make([]calc.LineWin, len(lineWins))
	for i, w := range lineWins {
		lw[i] = calc.LineWin{Line: i + 1, Win: w}
	}
	return &slot.Evaluation{
		Payout: payout,
		Data:   &slot.GameData{WinningLines: lw, SpecialFeatures: features},
	}
}

func TestRecordAndDone(t *testing.T) {
	r, err := recorder.NewRoundRecorder("Classic Slots", "classic-slots", bet)
	require.NoError(t, err)

	r.Record(win(0, nil))
	r.Record(win(30, []int64{15, 15}))
	r.Record(win(45, []int64{15}, calc.FeatureFreeSpins))
	r.Record(win(60, []int64{60}, calc.FeatureBonusGame, calc.FeatureBonusGame))

	rep := r.Done()
	s := rep.Summary
	assert.Equal(t, 4, s.Rounds)
	assert.Equal(t, int64(40), s.TotalBet)
	assert.Equal(t, int64(135), s.TotalWin)
	assert.Equal(t, int64(105), s.LineWin)
	assert.Equal(t, int64(30), s.ScatterWin)
	assert.Equal(t, 3, s.HitRounds)
	assert.Equal(t, 1, s.NoWinRounds)
	assert.Equal(t, int64(60), s.MaxWin)
	assert.InDelta(t, 135.0/40.0, s.RTP, 1e-12)
	assert.InDelta(t, 0.75, s.HitRate, 1e-12)

	f := rep.Features
	assert.Equal(t, 2, f.Count["BONUS_GAME"])
	assert.Equal(t, 1, f.Rounds["BONUS_GAME"])
	assert.Equal(t, 1, f.Rounds["FREE_SPINS"])
	assert.Zero(t, f.Rounds["MULTIPLIER"])
	assert.InDelta(t, 0.25, f.Rate["BONUS_GAME"], 1e-12)
}

func TestCappedRoundsAreNotSplit(t *testing.T) {
	r, err := recorder.NewRoundRecorder("g", "g", bet)
	require.NoError(t, err)
	ev := win(50, []int64{150})
	ev.Data.Capped = true
	r.Record(ev)

	rep := r.Done()
	assert.Equal(t, 1, rep.Summary.Capped)
	assert.Equal(t, int64(50), rep.Summary.TotalWin)
	assert.Zero(t, rep.Summary.LineWin)
	assert.Zero(t, rep.Summary.ScatterWin)
}

func TestMerge(t *testing.T) {
	a, _ := recorder.NewRoundRecorder("g", "g", bet)
	b, _ := recorder.NewRoundRecorder("g", "g", bet)
	a.Record(win(20, []int64{20}))
	b.Record(win(0, nil))
	b.Record(win(100, []int64{100}, calc.FeatureMultiplier))

	m, err := recorder.MergeRoundRecorder([]*recorder.RoundRecorder{a, b})
	require.NoError(t, err)
	rep := m.Done()
	assert.Equal(t, 3, rep.Summary.Rounds)
	assert.Equal(t, int64(120), rep.Summary.TotalWin)
	assert.Equal(t, int64(100), rep.Summary.MaxWin)
	assert.Equal(t, 1, rep.Features.Rounds["MULTIPLIER"])

	total := 0
	for _, c := range rep.Dist.TotalWinCollect {
		total += c
	}
	assert.Equal(t, 3, total)

	other, _ := recorder.NewRoundRecorder("g", "g", slot.BetData{Lines: 5, BetPerLine: 2})
	_, err = recorder.MergeRoundRecorder([]*recorder.RoundRecorder{a, other})
	assert.Error(t, err)
	_, err = recorder.MergeRoundRecorder(nil)
	assert.Error(t, err)
}

func TestInvalidBet(t *testing.T) {
	_, err := recorder.NewRoundRecorder("g", "g", slot.BetData{Lines: 0, BetPerLine: 1})
	assert.Error(t, err)
}
