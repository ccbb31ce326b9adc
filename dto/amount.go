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
	"math"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/casinolab/errs"
)

// Amount 代幣金額：Raw 為最小單位整數，Display 依 decimals 格式化(例如 12345 → "123.45")
type Amount struct {
	Raw     int64  `json:"raw"`
	Display string `json:"display"`
}

func NewAmount(raw int64, decimals int32) Amount {
	return Amount{Raw: raw, Display: FormatAmount(raw, decimals)}
}

// FormatAmount 最小單位 → 顯示字串，固定 decimals 位小數
func FormatAmount(raw int64, decimals int32) string {
	return decimal.New(raw, -decimals).StringFixed(decimals)
}

var maxRaw = decimal.NewFromInt(math.MaxInt64)

// ParseAmount 顯示字串 → 最小單位。小數位超過 decimals 時拒絕，不做四捨五入
func ParseAmount(s string, decimals int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errs.Validationf("invalid amount %q", s)
	}
	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return 0, errs.Validationf("amount %q has more than %d decimals", s, decimals)
	}
	if !shifted.IsPositive() {
		return 0, errs.Validationf("amount %q must be positive", s)
	}
	if shifted.GreaterThan(maxRaw) {
		return 0, errs.Validationf("amount %q out of range", s)
	}
	return shifted.IntPart(), nil
}
