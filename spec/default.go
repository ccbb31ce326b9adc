package spec

// DefaultSlotsSetting 經典 5x3 拉霸：5 張一般牌、Wild/Scatter/Bonus 各一、10 條連線
func DefaultSlotsSetting() *SlotsSetting {
	return &SlotsSetting{
		Reels: 5,
		Rows:  3,
		Symbols: []SymbolSetting{
			{ID: "A", Name: "Ace", Value: 5},
			{ID: "K", Name: "King", Value: 4},
			{ID: "Q", Name: "Queen", Value: 3},
			{ID: "J", Name: "Jack", Value: 2},
			{ID: "10", Name: "Ten", Value: 1},
			{ID: "W", Name: "Wild", Value: 10, IsSpecial: true},
			{ID: "S", Name: "Scatter", Value: 15, IsSpecial: true},
			{ID: "B", Name: "Bonus", Value: 20, IsSpecial: true},
		},
		Paylines: []PaylineSetting{
			{ID: 1, Name: "Top", Positions: [][]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}},
			{ID: 2, Name: "Middle", Positions: [][]int{{0, 1}, {1, 1}, {2, 1}, {3, 1}, {4, 1}}},
			{ID: 3, Name: "Bottom", Positions: [][]int{{0, 2}, {1, 2}, {2, 2}, {3, 2}, {4, 2}}},
			{ID: 4, Name: "V-Shape", Positions: [][]int{{0, 0}, {1, 1}, {2, 2}, {3, 1}, {4, 0}}},
			{ID: 5, Name: "Inverted V", Positions: [][]int{{0, 2}, {1, 1}, {2, 0}, {3, 1}, {4, 2}}},
			{ID: 6, Name: "Zigzag Top", Positions: [][]int{{0, 0}, {1, 1}, {2, 0}, {3, 1}, {4, 0}}},
			{ID: 7, Name: "Zigzag Bottom", Positions: [][]int{{0, 2}, {1, 1}, {2, 2}, {3, 1}, {4, 2}}},
			{ID: 8, Name: "Diagonal TL-BR", Positions: [][]int{{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}}},
			{ID: 9, Name: "Diagonal BL-TR", Positions: [][]int{{0, 2}, {1, 2}, {2, 1}, {3, 0}, {4, 0}}},
			{ID: 10, Name: "Steps Up", Positions: [][]int{{0, 1}, {1, 0}, {2, 1}, {3, 0}, {4, 1}}},
		},
	}
}

// DefaultGameSetting 預設上架的經典拉霸，已初始化
func DefaultGameSetting() *GameSetting {
	gs := &GameSetting{
		ID:       "classic-slots",
		Name:     "Classic Slots",
		Type:     GameSlots,
		MinBet:   1,
		MaxBet:   1000,
		IsActive: true,
		Slots:    DefaultSlotsSetting(),
	}
	if err := gs.Init(); err != nil {
		panic(err)
	}
	return gs
}
