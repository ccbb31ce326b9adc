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

package svrcfg

import (
	"log/slog"
	"strings"
	"time"

	"github.com/zintix-labs/casinolab"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/metrics"
	"github.com/zintix-labs/casinolab/server/logger"
)

const (
	DefaultAddr       = ":5808"
	DefaultBetTimeout = 5 * time.Second
	DefaultRateBurst  = 20
)

type SvrCfg struct {
	Log      *slog.Logger
	Addr     string
	Platform *casinolab.Platform
	Metrics  *metrics.Metrics // 可為 nil，nil 時不掛 /metrics

	// 每個來源 IP 每秒允許的請求數，<= 0 表示不限流
	RateLimit float64
	RateBurst int

	CORSOrigins []string
	BetTimeout  time.Duration
}

// Valid 檢查必要依賴並補齊預設值
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.Platform == nil {
		return errs.NewFatal("platform is required")
	}
	if sc.Platform.Closed() {
		return errs.NewFatal("platform already closed")
	}

	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if !strings.Contains(sc.Addr, ":") {
		return errs.NewFatal("invalid listen address: " + sc.Addr)
	}
	if sc.BetTimeout <= 0 {
		sc.BetTimeout = DefaultBetTimeout
	}
	if sc.RateLimit > 0 && sc.RateBurst <= 0 {
		sc.RateBurst = DefaultRateBurst
	}
	if len(sc.CORSOrigins) == 0 {
		sc.CORSOrigins = []string{"*"}
	}
	return nil
}
