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

package slot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/fair"
	"github.com/zintix-labs/casinolab/ledger"
	"github.com/zintix-labs/casinolab/sdk/calc"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/slot"
	"github.com/zintix-labs/casinolab/spec"
)

// 預設圖標順序 A K Q J 10 W S B，Scripted 回放 index
var (
	allAces  = []uint64{0}
	allBonus = []uint64{7}
	// reel r row k = (3r+k)%5，任兩條相鄰 reel 的連線格都不相同
	noWin = []uint64{0, 1, 2, 3, 4}
)

var ts = time.UnixMilli(1_700_000_000_000)

func newGame(t *testing.T, mutate func(gs *spec.GameSetting)) *slot.SlotsGame {
	t.Helper()
	gs := spec.DefaultGameSetting()
	if mutate != nil {
		mutate(gs)
	}
	g, err := slot.NewSlotsGame(gs)
	require.NoError(t, err)
	require.NoError(t, g.Initialize())
	return g
}

func scripted(values []uint64) *core.Core {
	return core.New(core.NewScripted(values...))
}

type settleEnv struct {
	ledger  *ledger.Ledger
	settler *slot.Settler
	obs     *recordObserver
}

func newSettleEnv(t *testing.T, opts ...ledger.Option) *settleEnv {
	t.Helper()
	l, err := ledger.New(opts...)
	require.NoError(t, err)
	obs := &recordObserver{}
	return &settleEnv{
		ledger: l,
		obs:    obs,
		settler: &slot.Settler{
			Ledger:   l,
			Hasher:   fair.NewHasher(""),
			Observer: obs,
			Clock:    func() time.Time { return ts },
		},
	}
}

type recordObserver struct {
	rounds     int
	payouts    int64
	rejected   []errs.Kind
	insolvency int
}

func (o *recordObserver) ObserveRound(_ string, _, payout int64, _ []calc.Feature) {
	o.rounds++
	o.payouts += payout
}

func (o *recordObserver) ObserveRejected(_ string, kind errs.Kind) {
	o.rejected = append(o.rejected, kind)
}

func (o *recordObserver) ObserveInsolvency(string) { o.insolvency++ }

func tenLines(bpl int64) slot.BetData {
	return slot.BetData{Lines: 10, BetPerLine: bpl}
}

// ============================================================
// ** 驗證 **
// ============================================================

func TestValidateBoundaries(t *testing.T) {
	g := newGame(t, func(gs *spec.GameSetting) {
		gs.MinBet = 10
		gs.MaxBet = 100
	})
	cases := []struct {
		name   string
		amount int64
		bet    slot.BetData
		ok     bool
	}{
		{"min", 10, tenLines(1), true},
		{"max", 100, tenLines(10), true},
		{"below min", 9, slot.BetData{Lines: 9, BetPerLine: 1}, false},
		{"above max", 110, tenLines(11), false},
		{"shape mismatch", 20, tenLines(1), false},
		{"zero lines", 10, slot.BetData{Lines: 0, BetPerLine: 10}, false},
		{"negative bpl", 10, slot.BetData{Lines: 10, BetPerLine: -1}, false},
		{"not divisible", 100, slot.BetData{Lines: 3, BetPerLine: 33}, false},
		// 4 * (2^62 + 25) 在 int64 內會繞回 100
		{"overflow wraps to amount", 100, slot.BetData{Lines: 4, BetPerLine: (1 << 62) + 25}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := g.Validate(c.amount, c.bet)
			if c.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsKind(err, errs.KindValidation))
		})
	}
}

func TestValidateInactive(t *testing.T) {
	g := newGame(t, nil)
	g.SetActive(false)
	err := g.Validate(10, tenLines(1))
	assert.True(t, errs.IsKind(err, errs.KindValidation))
	assert.False(t, g.Info().IsActive)

	g.SetActive(true)
	assert.NoError(t, g.Validate(10, tenLines(1)))
}

func TestValidateBeforeInitialize(t *testing.T) {
	g, err := slot.NewSlotsGame(spec.DefaultGameSetting())
	require.NoError(t, err)
	err = g.Validate(10, tenLines(1))
	require.Error(t, err)
	assert.Equal(t, errs.Fatal, errs.Level(err))
}

func TestNewSlotsGameRejectsOtherType(t *testing.T) {
	gs := spec.DefaultGameSetting()
	gs.Type = "poker"
	_, err := slot.NewSlotsGame(gs)
	assert.Error(t, err)
	_, err = slot.NewSlotsGame(nil)
	assert.Error(t, err)
}

// ============================================================
// ** 開獎與計分 **
// ============================================================

func TestGenerateAndEvaluate(t *testing.T) {
	g := newGame(t, nil)

	out := g.GenerateOutcome(scripted(allAces))
	require.Len(t, out.Reels, 5)
	for _, reel := range out.Reels {
		assert.Equal(t, []string{"A", "A", "A"}, reel)
	}
	ev, err := g.Evaluate(out, 10, tenLines(1))
	require.NoError(t, err)
	// 10 條線，每條 5 連 A：5 * 1 * (5-2)
	assert.Equal(t, int64(150), ev.Payout)
	assert.Len(t, ev.Data.WinningLines, 10)
	assert.False(t, ev.Data.Capped)

	out = g.GenerateOutcome(scripted(noWin))
	ev, err = g.Evaluate(out, 10, tenLines(1))
	require.NoError(t, err)
	assert.Zero(t, ev.Payout)
	assert.Empty(t, ev.Data.WinningLines)
}

func TestEvaluateMaxWinCap(t *testing.T) {
	g := newGame(t, func(gs *spec.GameSetting) { gs.Slots.MaxWin = 5 })
	ev, err := g.Evaluate(g.GenerateOutcome(scripted(allAces)), 10, tenLines(1))
	require.NoError(t, err)
	assert.Equal(t, int64(50), ev.Payout)
	assert.True(t, ev.Data.Capped)
}

func TestStakeOf(t *testing.T) {
	v, err := slot.StakeOf(slot.BetData{Lines: 10, BetPerLine: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(50), v)

	_, err = slot.StakeOf(slot.BetData{Lines: 4, BetPerLine: (1 << 62) + 25})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
	_, err = slot.StakeOf(slot.BetData{Lines: 0, BetPerLine: 5})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestEvaluateMaxWinOverflowIsUncapped(t *testing.T) {
	// (2^62 + 1) * 4 繞回 4，不能因此把派彩壓到 4
	g := newGame(t, func(gs *spec.GameSetting) { gs.Slots.MaxWin = (1 << 62) + 1 })
	ev, err := g.Evaluate(g.GenerateOutcome(scripted(allAces)), 4, tenLines(1))
	require.NoError(t, err)
	assert.Equal(t, int64(150), ev.Payout)
	assert.False(t, ev.Data.Capped)
}

func TestBonusFeaturePerLine(t *testing.T) {
	g := newGame(t, nil)
	ev, err := g.Evaluate(g.GenerateOutcome(scripted(allBonus)), 10, tenLines(1))
	require.NoError(t, err)
	assert.Len(t, ev.Data.SpecialFeatures, 10)
	for _, f := range ev.Data.SpecialFeatures {
		assert.Equal(t, calc.FeatureBonusGame, f)
	}
}

// ============================================================
// ** 註冊表 **
// ============================================================

func TestRegistry(t *testing.T) {
	reg := slot.NewRegistry()
	g, err := slot.NewSlotsGame(spec.DefaultGameSetting())
	require.NoError(t, err)
	require.NoError(t, reg.Register(g))
	assert.Equal(t, 1, reg.Len())

	dup, _ := slot.NewSlotsGame(spec.DefaultGameSetting())
	assert.Error(t, reg.Register(dup))

	other := spec.DefaultGameSetting()
	other.ID = "another"
	g2, _ := slot.NewSlotsGame(other)
	require.NoError(t, reg.Register(g2))

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "another", all[0].Info().ID)
	assert.Equal(t, "classic-slots", all[1].Info().ID)
	assert.Len(t, reg.ByType(spec.GameSlots), 2)
	assert.Empty(t, reg.ByType("poker"))

	_, err = reg.Get("missing")
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	assert.True(t, errs.IsKind(reg.SetActive("missing", false), errs.KindNotFound))

	require.NoError(t, reg.SetActive("another", false))
	got, err := reg.Get("another")
	require.NoError(t, err)
	assert.False(t, got.Info().IsActive)
}

func TestRegistryInitializeFailure(t *testing.T) {
	ss := spec.DefaultSlotsSetting()
	ss.Reels = 0
	gs := &spec.GameSetting{ID: "broken", Type: spec.GameSlots, MinBet: 1, MaxBet: 10, IsActive: true, Slots: ss}
	g, err := slot.NewSlotsGame(gs)
	require.NoError(t, err)

	reg := slot.NewRegistry()
	assert.Error(t, reg.Register(g))
	assert.Zero(t, reg.Len())
}

func TestLogicRegistry(t *testing.T) {
	lr := slot.DefaultLogics()
	assert.True(t, lr.IsExist(spec.GameSlots))
	assert.Error(t, lr.Register(spec.GameSlots, slot.BuildSlots))

	g, err := lr.Build(spec.DefaultGameSetting())
	require.NoError(t, err)
	assert.Equal(t, "classic-slots", g.Info().ID)

	gs := spec.DefaultGameSetting()
	gs.Type = "poker"
	_, err = lr.Build(gs)
	assert.Error(t, err)

	extra := slot.NewLogicRegistry()
	require.NoError(t, extra.Register("poker", slot.BuildSlots))
	merged, err := slot.MergeLogicRegistry(lr, nil, extra)
	require.NoError(t, err)
	assert.True(t, merged.IsExist("poker"))
	assert.True(t, merged.IsExist(spec.GameSlots))

	_, err = slot.MergeLogicRegistry(lr, slot.DefaultLogics())
	assert.Error(t, err)
}

// ============================================================
// ** 結算 **
// ============================================================

func TestPlaceBetWin(t *testing.T) {
	env := newSettleEnv(t)
	require.NoError(t, env.ledger.GrantDefault("alice"))
	g := newGame(t, nil)

	req := slot.BetRequest{UserID: "alice", Amount: 10, Bet: tenLines(1)}
	res, err := env.settler.PlaceBet(g, scripted(allAces), req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, slot.OutcomeWin, res.Outcome)
	assert.Equal(t, int64(150), res.Payout)
	assert.Len(t, res.VerificationHash, fair.HashLen)
	assert.NotEmpty(t, res.RoundID)
	assert.Equal(t, ts, res.Timestamp)
	assert.Equal(t, int64(240), env.ledger.BalanceOf("alice"))

	// 雜湊可由相同輸入重算
	ok, err := fair.NewHasher("").Verify(res.VerificationHash, "alice", req.Bet, slot.Outcome{Reels: res.GameData.Reels}, ts)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, env.obs.rounds)
	assert.Equal(t, int64(150), env.obs.payouts)
	require.NoError(t, env.ledger.Audit())
}

func TestPlaceBetLoss(t *testing.T) {
	env := newSettleEnv(t)
	require.NoError(t, env.ledger.GrantDefault("bob"))
	g := newGame(t, nil)

	res, err := env.settler.PlaceBet(g, scripted(noWin), slot.BetRequest{UserID: "bob", Amount: 10, Bet: tenLines(1)})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, slot.OutcomeLoss, res.Outcome)
	assert.Zero(t, res.Payout)
	assert.Equal(t, int64(90), env.ledger.BalanceOf("bob"))

	hist := env.ledger.TransactionHistory("bob")
	require.Len(t, hist, 2)
	assert.Equal(t, ledger.TxBet, hist[0].Type)
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	env := newSettleEnv(t)
	g := newGame(t, nil)

	res, err := env.settler.PlaceBet(g, scripted(allAces), slot.BetRequest{UserID: "nobody", Amount: 10, Bet: tenLines(1)})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInsufficientFunds))
	assert.False(t, res.Success)
	assert.Nil(t, res.GameData)
	assert.Empty(t, res.VerificationHash)
	assert.Empty(t, env.ledger.Transactions())
	assert.Equal(t, []errs.Kind{errs.KindInsufficientFunds}, env.obs.rejected)
}

func TestPlaceBetValidationLeavesLedgerUntouched(t *testing.T) {
	env := newSettleEnv(t)
	require.NoError(t, env.ledger.GrantDefault("carol"))
	g := newGame(t, nil)

	res, err := env.settler.PlaceBet(g, scripted(allAces), slot.BetRequest{UserID: "carol", Amount: 10, Bet: tenLines(2)})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
	assert.False(t, res.Success)
	assert.Equal(t, int64(100), env.ledger.BalanceOf("carol"))
	assert.Len(t, env.ledger.Transactions(), 1)
}

func TestPlaceBetInsolvencyRefunds(t *testing.T) {
	env := newSettleEnv(t, ledger.WithGenesis(map[string]int64{ledger.ReserveAccount: 1_000_000}))
	require.NoError(t, env.ledger.GrantDefault("dave"))
	g := newGame(t, nil)

	res, err := env.settler.PlaceBet(g, scripted(allAces), slot.BetRequest{UserID: "dave", Amount: 10, Bet: tenLines(1)})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInsolvency))
	assert.False(t, res.Success)
	assert.Equal(t, int64(100), env.ledger.BalanceOf("dave"))
	assert.Equal(t, 1, env.obs.insolvency)

	last := env.ledger.TransactionHistory("dave")[0]
	assert.Equal(t, ledger.TxTransfer, last.Type)
	assert.Equal(t, "insolvency_refund", last.Metadata[ledger.MetaReason])
	require.NoError(t, env.ledger.Audit())
}

func TestPlaceBetCapped(t *testing.T) {
	env := newSettleEnv(t)
	require.NoError(t, env.ledger.GrantDefault("erin"))
	g := newGame(t, func(gs *spec.GameSetting) { gs.Slots.MaxWin = 5 })

	res, err := env.settler.PlaceBet(g, scripted(allAces), slot.BetRequest{UserID: "erin", Amount: 10, Bet: tenLines(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Payout)
	assert.True(t, res.GameData.Capped)
	assert.Equal(t, int64(140), env.ledger.BalanceOf("erin"))
}
