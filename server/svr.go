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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/server/api"
	"github.com/zintix-labs/casinolab/server/app"
	"github.com/zintix-labs/casinolab/server/netsvr"
	"github.com/zintix-labs/casinolab/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 logger、平台）。
//  2. 依 SvrCfg.Addr 建立 HTTP server（netsvr）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，阻塞到收到終止信號或 server 出錯。
//
// Run 不綁定任何檔案路徑或環境變數策略；所有依賴都透過 SvrCfg 注入。
// 平台本身的生命週期(Close)由呼叫端負責。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run() 相同，但允許呼叫端注入自訂的 NetSvr
// （例如自己包裝的 adapter、額外的 server option、或把生命週期接到既有框架）。
//
// svr 必須非 nil，且若是 ChiAdapter 會要求 Ready() 為 true（避免注入不完整的 server）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	// 註冊 Api
	rl, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if rl != nil {
		go rl.Run(ctx, time.Minute)
	}

	// 運行
	a := app.NewWith(svr)
	sCfg.Log.Info("[casinolab] listening", slog.String("addr", sCfg.Addr), slog.Int("games", len(sCfg.Platform.Games())))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[casinolab] stopped")
	return nil
}
