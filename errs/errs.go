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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 領域錯誤分類，讓呼叫端(UI / HTTP)不用比對字串就能分支
type Kind uint8

const (
	KindNone Kind = iota
	KindValidation
	KindInsufficientFunds
	KindInsolvency
	KindNotFound
)

var kindMap = map[Kind]string{
	KindNone:              "",
	KindValidation:        "validation_failure",
	KindInsufficientFunds: "insufficient_funds",
	KindInsolvency:        "platform_insolvency",
	KindNotFound:          "not_found",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文；Cause 串接下層錯誤；
// ErrLv 表示嚴重度；Kind 表示領域分類(可為 KindNone)。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s", ErrLv(e.ErrLv))
	if e.Kind != KindNone {
		base += " kind=" + e.Kind.String()
	}
	base += " " + e.Message
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// ============================================================
// ** 領域錯誤 **
// ============================================================

// Validation 下注格式/金額/遊戲狀態不合法，不會有任何狀態變更
func Validation(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindValidation}
}

func Validationf(format string, a ...any) *E {
	return Validation(fmt.Sprintf(format, a...))
}

// Insufficient 付款方餘額不足(用戶端問題)
func Insufficient(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindInsufficientFunds}
}

// Insolvency 平台帳戶無法支付派彩或贈送。
// 這代表營運端帳務錯誤，固定為 Fatal，上層必須告警而不是吞掉。
func Insolvency(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Kind: KindInsolvency}
}

func NotFound(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindNotFound}
}

// Wrap 以給定訊息包裝底層錯誤。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	return WrapWithExtra(cause, msg, "")
}

// WrapWithExtra 同 Wrap，並附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	errLv, kind := Fatal, KindNone
	if e, ok := AsErr(cause); ok {
		errLv, kind = e.ErrLv, e.Kind
	}
	r := NewWithExtra(errLv, msg, extra)
	r.Kind = kind
	r.Cause = cause
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// KindOf 取出錯誤鏈上第一個 *E 的 Kind，非本包錯誤回傳 KindNone
func KindOf(err error) Kind {
	if e, ok := AsErr(err); ok {
		return e.Kind
	}
	return KindNone
}

func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Level 取出錯誤等級，非本包錯誤視為 Fatal
func Level(err error) ErrLevel {
	if err == nil {
		return None
	}
	if e, ok := AsErr(err); ok {
		return e.ErrLv
	}
	return Fatal
}
