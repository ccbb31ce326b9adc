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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/casinolab/dto"
	"github.com/zintix-labs/casinolab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel          → 504/408（請求生命週期問題）
//   - KindValidation              → 400
//   - KindInsufficientFunds       → 402
//   - KindNotFound                → 404
//   - KindInsolvency              → 503（平台帳戶無力支付，營運端問題）
//   - 其餘 errs.Warn              → 400
//   - errs.Fatal / 非本包錯誤     → 500
//
// 注意：本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	// 1) 先處理 context 取消/超時（即使被 wrap 也能被 errors.Is 命中）
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	// 2) 領域分類優先於分級
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInsolvency:
		return http.StatusServiceUnavailable
	}

	if errs.Level(err) == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫回 {"error": msg, "kind": kind}。
// 500 只回固定訊息，細節留在 log。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	body := dto.Error{Error: message(err), Kind: errs.KindOf(err).String()}
	if status == http.StatusInternalServerError {
		body = dto.Error{Error: http.StatusText(status)}
	}
	WriteJSON(w, status, body)
}

// message 取最外層 *errs.E 的主訊息，不帶 errlv 前綴
func message(err error) string {
	if e, ok := errs.AsErr(err); ok && e.Message != "" {
		if e.Cause != nil {
			if inner, ok := errs.AsErr(e.Cause); ok && inner.Message != "" {
				return e.Message + ": " + inner.Message
			}
		}
		return e.Message
	}
	return err.Error()
}

// WriteJSON 寫出 JSON 回應
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	default:
		log.Debug(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
