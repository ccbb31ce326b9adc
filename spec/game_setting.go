package spec

import (
	"github.com/zintix-labs/casinolab/errs"
)

// GameType 遊戲種類，決定使用哪個 builder 建立遊戲
type GameType string

const (
	GameSlots GameType = "slots"
)

// GameSetting 一款遊戲上架所需的所有設定。
//
// Slots 只在 Type == slots 時需要；其他遊戲種類自帶各自的設定區塊。
type GameSetting struct {
	ID       string        `yaml:"id"        json:"id"`
	Name     string        `yaml:"name"      json:"name"`
	Type     GameType      `yaml:"type"      json:"type"`
	MinBet   int64         `yaml:"min_bet"   json:"min_bet"`
	MaxBet   int64         `yaml:"max_bet"   json:"max_bet"`
	IsActive bool          `yaml:"is_active" json:"is_active"`
	Slots    *SlotsSetting `yaml:"slots"     json:"slots,omitempty"`
}

// Init 檢查並填入衍生欄位，可重複呼叫
func (gs *GameSetting) Init() error {
	if gs.ID == "" {
		return errs.NewFatal("game id is empty")
	}
	if gs.Name == "" {
		gs.Name = gs.ID
	}
	if gs.MinBet < 1 {
		return errs.Fatalf("game %s err: min_bet must > 0", gs.ID)
	}
	if gs.MaxBet < gs.MinBet {
		return errs.Fatalf("game %s err: max_bet %d < min_bet %d", gs.ID, gs.MaxBet, gs.MinBet)
	}
	switch gs.Type {
	case GameSlots:
		if gs.Slots == nil {
			return errs.Fatalf("game %s err: slots type without slots block", gs.ID)
		}
		if err := gs.Slots.Init(); err != nil {
			return errs.WrapWithExtra(err, "slots setting invalid", gs.ID)
		}
	case "":
		return errs.Fatalf("game %s err: empty type", gs.ID)
	}
	return nil
}

// Clone 深拷貝，讓註冊表持有的設定不會被外部改動
func (gs *GameSetting) Clone() *GameSetting {
	c := *gs
	if gs.Slots != nil {
		c.Slots = gs.Slots.Clone()
	}
	return &c
}
