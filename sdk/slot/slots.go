package slot

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/calc"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/gen"
	"github.com/zintix-labs/casinolab/spec"
)

// SlotsGame 拉霸遊戲。設定在建立時複製一份，之後只讀；只有上架狀態可以切換。
type SlotsGame struct {
	setting *spec.GameSetting
	active  atomic.Bool

	initOnce sync.Once
	initErr  error
	inited   atomic.Bool
	gen      *gen.GridGenerator
	calc     *calc.ScreenCalculator
}

// NewSlotsGame 建立拉霸遊戲，尚未初始化
func NewSlotsGame(gs *spec.GameSetting) (*SlotsGame, error) {
	if gs == nil {
		return nil, errs.NewFatal("nil game setting")
	}
	if gs.Type != spec.GameSlots {
		return nil, errs.Fatalf("game %s is %q, not slots", gs.ID, gs.Type)
	}
	g := &SlotsGame{setting: gs.Clone()}
	g.active.Store(gs.IsActive)
	return g, nil
}

// BuildSlots 給 LogicRegistry 使用的 builder
func BuildSlots(gs *spec.GameSetting) (Game, error) {
	return NewSlotsGame(gs)
}

// Initialize 只會真正執行一次，之後回傳第一次的結果
func (g *SlotsGame) Initialize() error {
	g.initOnce.Do(func() {
		if err := g.setting.Init(); err != nil {
			g.initErr = err
			return
		}
		gg, err := gen.NewGridGenerator(g.setting.Slots)
		if err != nil {
			g.initErr = err
			return
		}
		sc, err := calc.NewScreenCalculator(g.setting.Slots)
		if err != nil {
			g.initErr = err
			return
		}
		g.gen, g.calc = gg, sc
		g.inited.Store(true)
	})
	return g.initErr
}

func (g *SlotsGame) Info() Info {
	gs := g.setting
	return Info{
		ID:       gs.ID,
		Name:     gs.Name,
		Type:     gs.Type,
		MinBet:   gs.MinBet,
		MaxBet:   gs.MaxBet,
		IsActive: g.active.Load(),
	}
}

// Setting 回傳設定副本
func (g *SlotsGame) Setting() *spec.GameSetting {
	return g.setting.Clone()
}

func (g *SlotsGame) SetActive(active bool) {
	g.active.Store(active)
}

func (g *SlotsGame) Validate(amount int64, bet BetData) error {
	if !g.inited.Load() {
		return errs.NewFatal("game used before initialize: " + g.setting.ID)
	}
	return ValidateSlots(g.Info(), amount, bet)
}

func (g *SlotsGame) GenerateOutcome(c *core.Core) Outcome {
	return Outcome{Reels: g.gen.Gen(c)}
}

// Evaluate 計分並套用單局派彩上限(MaxWin > 0 時)
func (g *SlotsGame) Evaluate(o Outcome, amount int64, bet BetData) (*Evaluation, error) {
	ev, err := g.calc.Evaluate(o.Reels, bet.Lines, bet.BetPerLine)
	if err != nil {
		return nil, err
	}
	data := &GameData{
		Reels:           o.Reels,
		WinningLines:    ev.LineWins,
		SpecialFeatures: ev.Features,
		ScatterCount:    ev.ScatterCount,
	}
	payout := ev.TotalWin
	if limit, ok := winLimit(g.setting.Slots.MaxWin, amount); ok && payout > limit {
		payout = limit
		data.Capped = true
	}
	return &Evaluation{Payout: payout, Data: data}, nil
}

// winLimit 回傳 maxWin * amount；maxWin 為 0 或乘積超出 int64 時視為不設上限
func winLimit(maxWin, amount int64) (int64, bool) {
	if maxWin <= 0 || amount <= 0 || maxWin > math.MaxInt64/amount {
		return 0, false
	}
	return maxWin * amount, true
}
