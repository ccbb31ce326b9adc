package spec

import (
	"slices"

	"github.com/zintix-labs/casinolab/errs"
)

// SymbolKind 特殊圖標種類
type SymbolKind string

const (
	KindNormal  SymbolKind = ""
	KindWild    SymbolKind = "wild"
	KindScatter SymbolKind = "scatter"
	KindBonus   SymbolKind = "bonus"
)

// 未指定 kind 的特殊圖標依名稱歸類
var kindByName = map[string]SymbolKind{
	"Wild":    KindWild,
	"Scatter": KindScatter,
	"Bonus":   KindBonus,
}

// SymbolSetting 單一圖標，Value 為賠付倍數
type SymbolSetting struct {
	ID        string     `yaml:"id"         json:"id"`
	Name      string     `yaml:"name"       json:"name"`
	Value     int64      `yaml:"value"      json:"value"`
	IsSpecial bool       `yaml:"is_special" json:"isSpecial"`
	Kind      SymbolKind `yaml:"kind"       json:"kind,omitempty"`
}

// Position 盤面座標
type Position struct {
	Reel int `json:"reel"`
	Row  int `json:"row"`
}

// PaylineSetting 連線設定，Positions 以 [reel,row] 表示
type PaylineSetting struct {
	ID        int        `yaml:"id"        json:"id"`
	Name      string     `yaml:"name"      json:"name"`
	Positions [][]int    `yaml:"positions" json:"positions"`
	Cells     []Position `yaml:"-"         json:"-"`
}

// SlotsSetting 拉霸設定
//
// Strip 為抽樣用的圖標列表，重複的 id 代表較高權重；空值時使用 Symbols 的順序各一次。
// MaxWin 為單局派彩上限(總押注的倍數)，0 代表不設上限。
type SlotsSetting struct {
	Reels    int              `yaml:"reels"    json:"reels"`
	Rows     int              `yaml:"rows"     json:"rows"`
	Symbols  []SymbolSetting  `yaml:"symbols"  json:"symbols"`
	Strip    []string         `yaml:"strip"    json:"strip,omitempty"`
	Paylines []PaylineSetting `yaml:"paylines" json:"paylines"`
	MaxWin   int64            `yaml:"max_win"  json:"max_win,omitempty"`

	SymbolIndex map[string]int `yaml:"-" json:"-"`
	Wild        int            `yaml:"-" json:"-"` // Symbols 中的索引，-1 表示沒有
	Scatter     int            `yaml:"-" json:"-"`
	Bonus       int            `yaml:"-" json:"-"`
	initFlag    bool
}

// Init 檢查設定並賦值
func (ss *SlotsSetting) Init() error {
	if ss.initFlag {
		return nil
	}
	if ss.Reels < 1 || ss.Rows < 1 {
		return errs.Fatalf("invalid grid dimensions: reels=%d rows=%d", ss.Reels, ss.Rows)
	}
	if len(ss.Symbols) == 0 {
		return errs.NewFatal("symbols is empty")
	}
	if ss.MaxWin < 0 {
		return errs.NewFatal("max_win must >= 0")
	}

	ss.SymbolIndex = make(map[string]int, len(ss.Symbols))
	ss.Wild, ss.Scatter, ss.Bonus = -1, -1, -1
	for i := range ss.Symbols {
		sym := &ss.Symbols[i]
		if sym.ID == "" {
			return errs.Fatalf("symbol at %d has empty id", i)
		}
		if _, dup := ss.SymbolIndex[sym.ID]; dup {
			return errs.Fatalf("duplicate symbol id %s", sym.ID)
		}
		if sym.Value < 0 {
			return errs.Fatalf("symbol %s has negative value", sym.ID)
		}
		ss.SymbolIndex[sym.ID] = i
		if sym.Kind == KindNormal && sym.IsSpecial {
			sym.Kind = kindByName[sym.Name]
		}
		if sym.Kind != KindNormal {
			sym.IsSpecial = true
		}
		if err := ss.markKind(sym.Kind, i); err != nil {
			return err
		}
	}

	if len(ss.Strip) == 0 {
		ss.Strip = make([]string, len(ss.Symbols))
		for i, sym := range ss.Symbols {
			ss.Strip[i] = sym.ID
		}
	}
	for _, id := range ss.Strip {
		if _, ok := ss.SymbolIndex[id]; !ok {
			return errs.Fatalf("strip references unknown symbol %s", id)
		}
	}

	// 連線依 id 遞增排序，評估時取前 n 條
	seen := make(map[int]bool, len(ss.Paylines))
	for i := range ss.Paylines {
		pl := &ss.Paylines[i]
		if seen[pl.ID] {
			return errs.Fatalf("duplicate payline id %d", pl.ID)
		}
		seen[pl.ID] = true
		pl.Cells = make([]Position, len(pl.Positions))
		for j, p := range pl.Positions {
			if len(p) != 2 || p[0] < 0 || p[1] < 0 {
				return errs.Fatalf("payline %d position %d must be [reel,row] >= 0", pl.ID, j)
			}
			pl.Cells[j] = Position{Reel: p[0], Row: p[1]}
		}
	}
	slices.SortStableFunc(ss.Paylines, func(a, b PaylineSetting) int { return a.ID - b.ID })

	ss.initFlag = true
	return nil
}

func (ss *SlotsSetting) markKind(k SymbolKind, idx int) error {
	var slot *int
	switch k {
	case KindWild:
		slot = &ss.Wild
	case KindScatter:
		slot = &ss.Scatter
	case KindBonus:
		slot = &ss.Bonus
	case KindNormal:
		return nil
	default:
		return errs.Fatalf("unknown symbol kind %q", k)
	}
	if *slot >= 0 {
		return errs.Fatalf("more than one %s symbol", k)
	}
	*slot = idx
	return nil
}

// Symbol 依 id 取圖標
func (ss *SlotsSetting) Symbol(id string) (SymbolSetting, bool) {
	i, ok := ss.SymbolIndex[id]
	if !ok {
		return SymbolSetting{}, false
	}
	return ss.Symbols[i], true
}

// Clone 深拷貝(含衍生欄位)
func (ss *SlotsSetting) Clone() *SlotsSetting {
	c := *ss
	c.Symbols = slices.Clone(ss.Symbols)
	c.Strip = slices.Clone(ss.Strip)
	c.Paylines = make([]PaylineSetting, len(ss.Paylines))
	for i, pl := range ss.Paylines {
		pl.Positions = slices.Clone(pl.Positions)
		pl.Cells = slices.Clone(pl.Cells)
		c.Paylines[i] = pl
	}
	if ss.SymbolIndex != nil {
		c.SymbolIndex = make(map[string]int, len(ss.SymbolIndex))
		for k, v := range ss.SymbolIndex {
			c.SymbolIndex[k] = v
		}
	}
	return &c
}
