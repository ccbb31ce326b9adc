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

// Package fair 產生牌局的驗證雜湊。
//
// 雜湊只證明「記錄下來的輸入產生了記錄下來的結果」，
// 沒有事前承諾(commit)，不能證明伺服器沒有在事後挑選結果。
// 需要重算的呼叫端必須把 timestamp 與雜湊一起保存。
package fair

import (
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/zintix-labs/casinolab/errs"
	"lukechampine.com/blake3"
)

// DefaultServerSeed 未設定時使用的伺服器種子
const DefaultServerSeed = "2xBDamageToken-server-seed"

// HashLen 十六進位字元數
const HashLen = 64

// Hasher 以固定的伺服器種子計算雜湊，建立後唯讀，可併發使用
type Hasher struct {
	serverSeed string
}

func NewHasher(serverSeed string) *Hasher {
	if serverSeed == "" {
		serverSeed = DefaultServerSeed
	}
	return &Hasher{serverSeed: serverSeed}
}

// payload 欄位順序固定；encoding/json 對 map 依 key 排序，因此序列化結果是決定性的
type payload struct {
	UserID     string `json:"userId"`
	BetData    any    `json:"betData"`
	Outcome    any    `json:"outcome"`
	Timestamp  int64  `json:"timestamp"`
	ServerSeed string `json:"serverSeed"`
}

// Canonical 回傳參與雜湊的序列化內容
func (h *Hasher) Canonical(userID string, betData any, outcome any, ts time.Time) ([]byte, error) {
	b, err := json.Marshal(payload{
		UserID:     userID,
		BetData:    betData,
		Outcome:    outcome,
		Timestamp:  ts.UnixMilli(),
		ServerSeed: h.serverSeed,
	})
	if err != nil {
		return nil, errs.Wrap(err, "canonical encode failed")
	}
	return b, nil
}

// Hash BLAKE3-256，小寫十六進位
func (h *Hasher) Hash(userID string, betData any, outcome any, ts time.Time) (string, error) {
	b, err := h.Canonical(userID, betData, outcome, ts)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Verify 重算並以常數時間比較
func (h *Hasher) Verify(hash string, userID string, betData any, outcome any, ts time.Time) (bool, error) {
	got, err := h.Hash(userID, betData, outcome, ts)
	if err != nil {
		return false, err
	}
	return Equal(got, hash), nil
}

// Equal 常數時間比較兩個雜湊字串
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
