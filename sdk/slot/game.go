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

package slot

import (
	"time"

	"github.com/zintix-labs/casinolab/sdk/calc"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/spec"
)

// Game 一種遊戲對外的能力介面。
//
// 實作必須在 Initialize 之後才能被使用；Registry.Register 負責呼叫 Initialize。
// GenerateOutcome 是唯一消耗亂數的步驟，亂數一律來自呼叫端傳入的 Core，
// 其餘方法都是輸入的純函數，可被多個 goroutine 同時呼叫。
type Game interface {
	Info() Info
	Initialize() error
	Validate(amount int64, bet BetData) error
	GenerateOutcome(c *core.Core) Outcome
	Evaluate(o Outcome, amount int64, bet BetData) (*Evaluation, error)
	SetActive(active bool)
}

// Info 遊戲的基本資料
type Info struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     spec.GameType `json:"type"`
	MinBet   int64         `json:"minBet"`
	MaxBet   int64         `json:"maxBet"`
	IsActive bool          `json:"isActive"`
}

// BetData 遊戲專屬的押注形狀。目前只有拉霸欄位。
type BetData struct {
	Lines      int   `json:"lines"`
	BetPerLine int64 `json:"betPerLine"`
}

// BetRequest 一次下注請求，只在結算過程中存在
type BetRequest struct {
	UserID string  `json:"userId"`
	Amount int64   `json:"amount"`
	Bet    BetData `json:"betData"`
}

// Outcome 原始開獎結果，拉霸為 reel-major 的圖標盤面
type Outcome struct {
	Reels [][]string `json:"reels"`
}

// GameData 開獎結果與計分明細
type GameData struct {
	Reels           [][]string     `json:"reels"`
	WinningLines    []calc.LineWin `json:"winningLines"`
	SpecialFeatures []calc.Feature `json:"specialFeatures"`
	ScatterCount    int            `json:"scatterCount"`
	Capped          bool           `json:"capped,omitempty"`
}

// Evaluation 計分後的派彩
type Evaluation struct {
	Payout int64
	Data   *GameData
}

const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
)

// BetResult 回給呼叫端的結算結果，核心不保存
type BetResult struct {
	Success          bool      `json:"success"`
	Payout           int64     `json:"payout"`
	Outcome          string    `json:"outcome"`
	GameData         *GameData `json:"gameData,omitempty"`
	VerificationHash string    `json:"verificationHash"`
	RoundID          string    `json:"roundId,omitempty"`
	Timestamp        time.Time `json:"timestamp,omitzero"`
}

// FailResult 失敗的結算結果，Outcome 放人類可讀的原因
func FailResult(reason string) *BetResult {
	return &BetResult{Success: false, Payout: 0, Outcome: reason}
}
