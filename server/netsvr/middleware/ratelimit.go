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

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/zintix-labs/casinolab/dto"
	"github.com/zintix-labs/casinolab/server/httperr"
	"golang.org/x/time/rate"
)

// RateLimiter 以來源 IP 為 key 的 token bucket 限流
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	log      *slog.Logger
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter rps 為每秒補充的請求數，burst 為瞬間上限
func NewRateLimiter(rps float64, burst int, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*visitor, 256),
		rate:     rate.Limit(rps),
		burst:    max(1, burst),
		ttl:      10 * time.Minute,
		log:      log,
	}
}

func (rl *RateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = v
	}
	v.seen = now
	return v.lim
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if !rl.limiter(key, time.Now()).Allow() {
			if rl.log != nil {
				rl.log.Warn("http.rate_limited", slog.String("remote", key), slog.String("path", r.URL.Path))
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(1/float64(rl.rate)))))
			httperr.WriteJSON(w, http.StatusTooManyRequests, dto.Error{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep 移除 ttl 內沒有出現過的來源，回傳移除數量
func (rl *RateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	n := 0
	for k, v := range rl.limiters {
		if now.Sub(v.seen) > rl.ttl {
			delete(rl.limiters, k)
			n++
		}
	}
	return n
}

// Run 定期 Sweep 直到 ctx 結束
func (rl *RateLimiter) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			rl.Sweep(now)
		}
	}
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// clientIP 優先使用 chi RealIP 改寫後的 RemoteAddr，去掉 port
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
