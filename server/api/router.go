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

package api

import (
	"net/http"

	v1 "github.com/zintix-labs/casinolab/server/api/v1"
	"github.com/zintix-labs/casinolab/server/httperr"
	"github.com/zintix-labs/casinolab/server/netsvr"
	"github.com/zintix-labs/casinolab/server/netsvr/middleware"
	"github.com/zintix-labs/casinolab/server/svrcfg"
)

// RegisterRoutes 註冊 middleware 與所有路由。
// 有設定限流時回傳 RateLimiter，呼叫端負責定期 Sweep(見 RateLimiter.Run)。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (*middleware.RateLimiter, error) {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return nil, err
	}
	rl := registerMiddleware(svr, sCfg) // 1. 註冊 middleware
	registerOps(svr, sCfg)              // 2. 健康檢查、指標
	registerV1API(svr, h)               // 3. 註冊 v1 api
	return rl, nil
}

// 註冊 middleware，順序有意義：request id 最先，壓縮最後
func registerMiddleware(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) *middleware.RateLimiter {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.RealIP)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	if sCfg.Metrics != nil {
		svr.Use(sCfg.Metrics.Instrument)
	}
	svr.Use(middleware.CORS(sCfg.CORSOrigins))

	var rl *middleware.RateLimiter
	if sCfg.RateLimit > 0 {
		rl = middleware.NewRateLimiter(sCfg.RateLimit, sCfg.RateBurst, sCfg.Log)
		svr.Use(rl.Handler)
	}
	svr.Use(middleware.CompressionExcept("/metrics"))
	return rl
}

func registerOps(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) {
	p := sCfg.Platform
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]any{"status": "ok", "games": len(p.Games())}
		if p.Closed() {
			status, body["status"] = http.StatusServiceUnavailable, "closed"
		}
		httperr.WriteJSON(w, status, body)
	})
	if sCfg.Metrics != nil {
		svr.Mount("/metrics", sCfg.Metrics.Handler())
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, h *v1.Handler) {
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", h.Games)
		vOne.Get("/games/{id}", h.Game)
		vOne.Post("/games/{id}/bet", h.Bet)

		vOne.Post("/users/{addr}/grant", h.Grant)
		vOne.Get("/users/{addr}/balance", h.Balance)
		vOne.Get("/users/{addr}/history", h.History)
		vOne.Post("/transfer", h.Transfer)

		vOne.Get("/token", h.Token)
		vOne.Get("/holders", h.Holders)
		vOne.Post("/verify", h.Verify)
	})
}
