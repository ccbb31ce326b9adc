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

package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zintix-labs/casinolab"
	"github.com/zintix-labs/casinolab/configs"
	"github.com/zintix-labs/casinolab/ledger"
	"github.com/zintix-labs/casinolab/metrics"
	"github.com/zintix-labs/casinolab/server"
	"github.com/zintix-labs/casinolab/server/logger"
	"github.com/zintix-labs/casinolab/server/svrcfg"
)

// 平台 HTTP 入口：內建遊戲設定 + 選配的外部設定目錄，
// 收到 SIGINT/SIGTERM 後優雅關閉，必要時把帳本快照寫到檔案。
func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	log, ah := logger.NewAsync(4096, cfg.LogMode)
	defer ah.Close()

	var p *casinolab.Platform
	m := metrics.New(func() []casinolab.MachinePoolMetrics { return p.PoolMetrics() })
	m.WatchLogDrops(ah.Dropped)

	l, err := ledger.New(ledger.WithLogger(log), ledger.WithObserver(m))
	if err != nil {
		return err
	}
	p, err = casinolab.New(
		casinolab.WithLedger(l),
		casinolab.WithLogger(log),
		casinolab.WithObserver(m),
		casinolab.WithServerSeed(cfg.ServerSeed),
		casinolab.WithPoolSize(cfg.PoolSize),
	)
	if err != nil {
		return err
	}
	defer p.Close()

	sources := []fs.FS{configs.FS}
	if cfg.ConfigDir != "" {
		sources = append(sources, os.DirFS(cfg.ConfigDir))
	}
	if err := p.RegisterAll(sources...); err != nil {
		return err
	}

	err = server.Run(&svrcfg.SvrCfg{
		Log:       log,
		Addr:      cfg.Addr,
		Platform:  p,
		Metrics:   m,
		RateLimit: cfg.RateLimit,
	})

	if cfg.Snapshot != "" {
		if serr := dumpSnapshot(l, cfg.Snapshot); serr != nil {
			log.Error("ledger snapshot failed", slog.Any("err", serr))
		} else {
			log.Info("ledger snapshot written", slog.String("path", cfg.Snapshot))
		}
	}
	if aerr := l.Audit(); aerr != nil {
		log.Error("ledger audit failed at shutdown", slog.Any("err", aerr))
	}
	return err
}

func dumpSnapshot(l *ledger.Ledger, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := l.WriteSnapshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
