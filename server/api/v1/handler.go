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

// Package v1 是 /v1 底下的 JSON API。handler 只做解碼、呼叫平台、編碼，不含任何結算邏輯。
package v1

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/casinolab"
	"github.com/zintix-labs/casinolab/dto"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/fair"
	"github.com/zintix-labs/casinolab/server/httperr"
	"github.com/zintix-labs/casinolab/server/svrcfg"
	"github.com/zintix-labs/casinolab/spec"
)

const maxBody = 1 << 16

type Handler struct {
	p          *casinolab.Platform
	log        *slog.Logger
	betTimeout time.Duration
}

func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Platform == nil {
		return nil, errs.NewFatal("platform is required")
	}
	return &Handler{p: sCfg.Platform, log: sCfg.Log, betTimeout: sCfg.BetTimeout}, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Log(h.log, r.Method+" "+r.URL.Path, err)
	httperr.Errs(w, err)
}

// decode 限制 body 大小並拒絕未知欄位
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Validationf("invalid json body: %v", err)
	}
	return nil
}

// ============================================================
// ** 遊戲 **
// ============================================================

// Games GET /v1/games?type=slots
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	if t := r.URL.Query().Get("type"); t != "" {
		httperr.WriteJSON(w, http.StatusOK, h.p.GamesByType(spec.GameType(t)))
		return
	}
	httperr.WriteJSON(w, http.StatusOK, h.p.Games())
}

// Game GET /v1/games/{id}
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	g, err := h.p.Game(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, g.Info())
}

// Bet POST /v1/games/{id}/bet
func (h *Handler) Bet(w http.ResponseWriter, r *http.Request) {
	req := dto.BetRequest{}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.UserID == "" {
		h.fail(w, r, errs.Validation("userId is required"))
		return
	}

	// 請求解析完成，設置超時 context；只影響等待機台
	ctx, cancel := context.WithTimeout(r.Context(), h.betTimeout)
	defer cancel()

	res, err := h.p.PlaceBet(ctx, chi.URLParam(r, "id"), req.ToSlot())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	l := h.p.Ledger()
	httperr.WriteJSON(w, http.StatusOK, dto.NewBetResult(res, l.BalanceOf(req.UserID), l.TokenInfo().Decimals))
}

// ============================================================
// ** 帳本 **
// ============================================================

// Grant POST /v1/users/{addr}/grant?amount=1.50
//
// amount 為顯示金額(依代幣 decimals)，省略時使用新用戶預設額度
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "addr")
	l := h.p.Ledger()
	dec := l.TokenInfo().Decimals

	var err error
	if s := r.URL.Query().Get("amount"); s != "" {
		var amount int64
		if amount, err = dto.ParseAmount(s, dec); err == nil {
			err = l.GrantInitialTokens(addr, amount)
		}
	} else {
		err = l.GrantDefault(addr)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httperr.WriteJSON(w, http.StatusCreated, dto.Balance{Address: addr, Balance: dto.NewAmount(l.BalanceOf(addr), dec)})
}

// Balance GET /v1/users/{addr}/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "addr")
	l := h.p.Ledger()
	httperr.WriteJSON(w, http.StatusOK, dto.Balance{Address: addr, Balance: dto.NewAmount(l.BalanceOf(addr), l.TokenInfo().Decimals)})
}

// History GET /v1/users/{addr}/history，新到舊
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	l := h.p.Ledger()
	txs := l.TransactionHistory(chi.URLParam(r, "addr"))
	httperr.WriteJSON(w, http.StatusOK, dto.NewTxs(txs, l.TokenInfo().Decimals))
}

// Transfer POST /v1/transfer
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	req := dto.TransferRequest{}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	l := h.p.Ledger()
	if err := l.Transfer(req.From, req.To, req.Amount, nil); err != nil {
		h.fail(w, r, err)
		return
	}
	dec := l.TokenInfo().Decimals
	httperr.WriteJSON(w, http.StatusOK, []dto.Balance{
		{Address: req.From, Balance: dto.NewAmount(l.BalanceOf(req.From), dec)},
		{Address: req.To, Balance: dto.NewAmount(l.BalanceOf(req.To), dec)},
	})
}

// Token GET /v1/token
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	l := h.p.Ledger()
	httperr.WriteJSON(w, http.StatusOK, dto.NewToken(l.TokenInfo(), l.TotalBurned(), l.TotalMinted()))
}

// Holders GET /v1/holders?limit=10
func (h *Handler) Holders(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.fail(w, r, errs.Validationf("invalid limit %q", s))
			return
		}
		limit = n
	}
	l := h.p.Ledger()
	httperr.WriteJSON(w, http.StatusOK, dto.NewHolders(l.TopHolders(limit), l.TokenInfo().Decimals))
}

// ============================================================
// ** 驗證 **
// ============================================================

// Verify POST /v1/verify 以相同輸入重算雜湊
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	req := dto.VerifyRequest{}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Hash == "" {
		h.fail(w, r, errs.Validation("verificationHash is required"))
		return
	}
	ts := time.UnixMilli(req.Timestamp)
	hash, err := h.p.Hasher().Hash(req.UserID, req.BetData, req.Outcome, ts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, dto.VerifyResponse{Valid: fair.Equal(hash, req.Hash), Hash: hash})
}
