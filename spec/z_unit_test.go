package spec

import (
	"testing"
)

const sampleYAML = `
id: mini
name: Mini Slots
type: slots
min_bet: 2
max_bet: 50
is_active: true
slots:
  reels: 3
  rows: 1
  symbols:
    - {id: A, name: Ace, value: 5}
    - {id: W, name: Wild, value: 10, is_special: true}
    - {id: X, name: Star, value: 7, kind: scatter}
  strip: [A, A, W, X]
  paylines:
    - {id: 2, name: Second, positions: [[0,0],[1,0],[2,0]]}
    - {id: 1, name: First, positions: [[0,0],[1,0],[2,0]]}
`

func TestGetGameSettingByYAML(t *testing.T) {
	gs, err := GetGameSettingByYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	ss := gs.Slots
	if gs.MinBet != 2 || gs.MaxBet != 50 || !gs.IsActive {
		t.Fatalf("bet bounds not parsed: %+v", gs)
	}
	if ss.Paylines[0].ID != 1 || ss.Paylines[1].ID != 2 {
		t.Fatalf("paylines must be sorted by id")
	}
	if ss.Paylines[0].Cells[2] != (Position{Reel: 2, Row: 0}) {
		t.Fatalf("cells not derived: %+v", ss.Paylines[0].Cells)
	}
	if ss.Wild != 1 || ss.Scatter != 2 || ss.Bonus != -1 {
		t.Fatalf("kind index wrong: wild=%d scatter=%d bonus=%d", ss.Wild, ss.Scatter, ss.Bonus)
	}
	if !ss.Symbols[2].IsSpecial {
		t.Fatalf("explicit kind implies special")
	}
	if len(ss.Strip) != 4 {
		t.Fatalf("strip should be kept: %v", ss.Strip)
	}
}

func TestGetGameSettingByJSON(t *testing.T) {
	js := `{"id":"j","type":"slots","min_bet":1,"max_bet":1,"is_active":false,
	"slots":{"reels":1,"rows":1,"symbols":[{"id":"A","name":"Ace","value":1}],"paylines":[]}}`
	gs, err := GetGameSettingByJSON([]byte(js))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if gs.Name != "j" {
		t.Fatalf("name should default to id, got %q", gs.Name)
	}
	if len(gs.Slots.Strip) != 1 || gs.Slots.Strip[0] != "A" {
		t.Fatalf("strip should default to symbol ids: %v", gs.Slots.Strip)
	}
}

func TestDefaultSetting(t *testing.T) {
	gs := DefaultGameSetting()
	ss := gs.Slots
	if ss.Reels != 5 || ss.Rows != 3 || len(ss.Symbols) != 8 || len(ss.Paylines) != 10 {
		t.Fatalf("default shape wrong")
	}
	if ss.Symbols[ss.Wild].ID != "W" || ss.Symbols[ss.Scatter].ID != "S" || ss.Symbols[ss.Bonus].ID != "B" {
		t.Fatalf("special symbols should be derived from names")
	}
	if sym, ok := ss.Symbol("A"); !ok || sym.Value != 5 {
		t.Fatalf("lookup A failed")
	}
	if _, ok := ss.Symbol("nope"); ok {
		t.Fatalf("unknown symbol should miss")
	}
}

func TestInvalidSettings(t *testing.T) {
	cases := map[string]func(gs *GameSetting){
		"empty id":        func(gs *GameSetting) { gs.ID = "" },
		"min bet zero":    func(gs *GameSetting) { gs.MinBet = 0 },
		"max < min":       func(gs *GameSetting) { gs.MaxBet = 0 },
		"no slots":        func(gs *GameSetting) { gs.Slots = nil },
		"no type":         func(gs *GameSetting) { gs.Type = "" },
		"zero reels":      func(gs *GameSetting) { gs.Slots.Reels = 0 },
		"dup symbol":      func(gs *GameSetting) { gs.Slots.Symbols[1].ID = "A" },
		"bad strip":       func(gs *GameSetting) { gs.Slots.Strip = []string{"A", "Z"} },
		"dup payline":     func(gs *GameSetting) { gs.Slots.Paylines[1].ID = 1 },
		"bad position":    func(gs *GameSetting) { gs.Slots.Paylines[0].Positions[0] = []int{1} },
		"two wilds":       func(gs *GameSetting) { gs.Slots.Symbols[0].Kind = KindWild },
		"unknown kind":    func(gs *GameSetting) { gs.Slots.Symbols[0].Kind = "mega" },
		"negative maxwin": func(gs *GameSetting) { gs.Slots.MaxWin = -1 },
	}
	for name, mutate := range cases {
		gs := &GameSetting{ID: "g", Type: GameSlots, MinBet: 1, MaxBet: 10, Slots: DefaultSlotsSetting()}
		mutate(gs)
		if err := gs.Init(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	gs := DefaultGameSetting()
	c := gs.Clone()
	c.Slots.Symbols[0].Value = 999
	c.Slots.SymbolIndex["new"] = 1
	if gs.Slots.Symbols[0].Value == 999 {
		t.Fatalf("clone shares symbols")
	}
	if _, ok := gs.Slots.SymbolIndex["new"]; ok {
		t.Fatalf("clone shares index")
	}
}
