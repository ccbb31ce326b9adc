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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// App 是一個簡單的生命週期管理器，負責啟動所有註冊的 Component，並在收到 OS 信號或任一 Component 發生錯誤時，協調優雅關閉。
type App struct {
	comps   []Component
	timeout time.Duration
}

const defaultShutdownTimeout = 5 * time.Second

// New 建立一個新的 App 實例。
func New() *App { return &App{timeout: defaultShutdownTimeout} }

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將一個 Component 註冊到 App 中，該 Component 將在 Run 時被管理。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// SetShutdownTimeout 設定優雅關閉的期限，<= 0 時維持預設 5 秒
func (a *App) SetShutdownTimeout(td time.Duration) {
	if td > 0 {
		a.timeout = td
	}
}

// Run 啟動所有註冊的 Component，阻塞直到收到 SIGINT/SIGTERM 或任一 Component 的 Run 返回。
//   - 收到終止信號：優雅關閉並返回 nil。
//   - Component Run 返回錯誤：優雅關閉並返回該錯誤。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但以 ctx 結束取代 OS 信號
func (a *App) RunContext(ctx context.Context) error {
	// errCh 用於收集任一 Component 首次返回的錯誤
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	select {
	case <-ctx.Done():
		a.gracefulShutdown(a.timeout)
		return nil
	case err := <-errCh:
		a.gracefulShutdown(a.timeout)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// gracefulShutdown 在給定的 timeout 內依序呼叫所有 Component.Shutdown。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown err: %v\n", err)
		}
	}
}
