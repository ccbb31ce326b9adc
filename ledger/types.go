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

package ledger

import (
	"maps"
	"time"
)

// 平台帳戶與哨兵地址
const (
	ReserveAccount    = "platform-reserve"
	CollectionAccount = "platform-account"
	BurnAddress       = "burn-address"
	MintAddress       = "mint-address"
)

// DefaultGrant 新用戶贈送額度
const DefaultGrant int64 = 100

// 交易 metadata 的 key / reason
const (
	MetaReason = "reason"
	MetaGameID = "gameId"

	ReasonNewUserGrant = "new_user_grant"
	ReasonTokenBurn    = "token_burn"
	ReasonTokenMint    = "token_mint"
)

// TokenInfo 代幣基本資料；TotalSupply 以最小單位計
type TokenInfo struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply int64  `json:"totalSupply"`
	Decimals    int32  `json:"decimals"`
}

func DefaultToken() TokenInfo {
	return TokenInfo{
		Name:        "2xBDamageToken",
		Symbol:      "2XBD",
		TotalSupply: 1_000_000,
		Decimals:    2,
	}
}

// DefaultGenesis 創世分配：準備金 900,000，收款帳戶 100,000(用於派彩)
func DefaultGenesis() map[string]int64 {
	return map[string]int64{
		ReserveAccount:    900_000,
		CollectionAccount: 100_000,
	}
}

type TxType string

const (
	TxTransfer     TxType = "transfer"
	TxDeposit      TxType = "deposit"
	TxWithdrawal   TxType = "withdrawal"
	TxBet          TxType = "bet"
	TxWin          TxType = "win"
	TxInitialGrant TxType = "initial_grant"
	TxFee          TxType = "fee"
)

type TxStatus string

const (
	StatusPending   TxStatus = "pending"
	StatusCompleted TxStatus = "completed"
	StatusFailed    TxStatus = "failed"
)

// Transaction 寫入後不可變；對外一律回傳副本
type Transaction struct {
	ID        string            `json:"id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Amount    int64             `json:"amount"`
	Timestamp time.Time         `json:"timestamp"`
	Type      TxType            `json:"type"`
	Status    TxStatus          `json:"status"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (t Transaction) clone() Transaction {
	t.Metadata = maps.Clone(t.Metadata)
	return t
}

// Involves 交易是否與地址相關
func (t Transaction) Involves(addr string) bool {
	return t.From == addr || t.To == addr
}

// Holder 持有人排行的一筆
type Holder struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}
