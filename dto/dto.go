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

package dto

import (
	"time"

	"github.com/zintix-labs/casinolab/ledger"
	"github.com/zintix-labs/casinolab/sdk/slot"
)

// BetRequest 下注請求(HTTP body)
type BetRequest struct {
	UserID     string `json:"userId"`
	Amount     int64  `json:"amount"`
	Lines      int    `json:"lines"`
	BetPerLine int64  `json:"betPerLine"`
}

func (r BetRequest) ToSlot() slot.BetRequest {
	return slot.BetRequest{
		UserID: r.UserID,
		Amount: r.Amount,
		Bet:    slot.BetData{Lines: r.Lines, BetPerLine: r.BetPerLine},
	}
}

// BetResult 結算結果加上格式化後的派彩
type BetResult struct {
	*slot.BetResult
	PayoutDisplay string `json:"payoutDisplay"`
	Balance       Amount `json:"balance"`
}

func NewBetResult(r *slot.BetResult, balance int64, decimals int32) BetResult {
	return BetResult{
		BetResult:     r,
		PayoutDisplay: FormatAmount(r.Payout, decimals),
		Balance:       NewAmount(balance, decimals),
	}
}

type TransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type Balance struct {
	Address string `json:"address"`
	Balance Amount `json:"balance"`
}

type Tx struct {
	ID        string            `json:"id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Amount    Amount            `json:"amount"`
	Timestamp time.Time         `json:"timestamp"`
	Type      ledger.TxType     `json:"type"`
	Status    ledger.TxStatus   `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func NewTxs(txs []ledger.Transaction, decimals int32) []Tx {
	out := make([]Tx, len(txs))
	for i, t := range txs {
		out[i] = Tx{
			ID:        t.ID,
			From:      t.From,
			To:        t.To,
			Amount:    NewAmount(t.Amount, decimals),
			Timestamp: t.Timestamp,
			Type:      t.Type,
			Status:    t.Status,
			Metadata:  t.Metadata,
		}
	}
	return out
}

type Holder struct {
	Rank    int    `json:"rank"`
	Address string `json:"address"`
	Balance Amount `json:"balance"`
}

func NewHolders(hs []ledger.Holder, decimals int32) []Holder {
	out := make([]Holder, len(hs))
	for i, h := range hs {
		out[i] = Holder{Rank: i + 1, Address: h.Address, Balance: NewAmount(h.Balance, decimals)}
	}
	return out
}

type Token struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int32  `json:"decimals"`
	TotalSupply Amount `json:"totalSupply"`
	Burned      Amount `json:"burned"`
	Minted      Amount `json:"minted"`
}

func NewToken(info ledger.TokenInfo, burned, minted int64) Token {
	return Token{
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: NewAmount(info.TotalSupply, info.Decimals),
		Burned:      NewAmount(burned, info.Decimals),
		Minted:      NewAmount(minted, info.Decimals),
	}
}

// VerifyRequest 重算驗證雜湊所需的輸入；Timestamp 為 unix 毫秒
type VerifyRequest struct {
	UserID    string       `json:"userId"`
	BetData   slot.BetData `json:"betData"`
	Outcome   slot.Outcome `json:"outcome"`
	Timestamp int64        `json:"timestamp"`
	Hash      string       `json:"verificationHash"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Hash  string `json:"recomputedHash"`
}

// Error 錯誤回應
type Error struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
