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
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/server/logger"
)

const envPrefix = "CASINOLAB_"

type config struct {
	Addr       string
	LogMode    logger.LogMode
	ServerSeed string
	RateLimit  float64
	PoolSize   int
	ConfigDir  string
	Snapshot   string
}

// loadConfig 旗標優先，其次是環境變數(含 .env)，最後是預設值。
// .env 不存在不算錯誤。
func loadConfig(args []string) (*config, error) {
	fset := flag.NewFlagSet("svr", flag.ContinueOnError)
	envFile := fset.String("env", ".env", "dotenv file to load before reading CASINOLAB_* variables")
	addr := fset.String("addr", "", "listen address (env CASINOLAB_ADDR, default :5808)")
	mode := fset.String("log-mode", "", "log mode: dev|prod|silence (env CASINOLAB_LOG_MODE)")
	seed := fset.String("server-seed", "", "server seed for verification hashes (env CASINOLAB_SERVER_SEED)")
	rl := fset.Float64("rate-limit", -1, "requests per second per client ip, 0 disables (env CASINOLAB_RATE_LIMIT)")
	pool := fset.Int("pool", 8, "machines per game")
	dir := fset.String("configs", "", "extra directory of game settings (yaml/json) loaded after the embedded ones")
	snap := fset.String("snapshot", "", "write a zstd ledger snapshot to this path on shutdown")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.WrapWithExtra(err, "load dotenv", *envFile)
	}

	cfg := &config{
		Addr:       pick(*addr, os.Getenv(envPrefix+"ADDR")),
		ServerSeed: pick(*seed, os.Getenv(envPrefix+"SERVER_SEED")),
		PoolSize:   *pool,
		ConfigDir:  *dir,
		Snapshot:   *snap,
	}

	lm, err := logger.ParseLogMode(pick(*mode, os.Getenv(envPrefix+"LOG_MODE")))
	if err != nil {
		return nil, err
	}
	cfg.LogMode = lm

	cfg.RateLimit = *rl
	if cfg.RateLimit < 0 {
		cfg.RateLimit = 0
		if s := os.Getenv(envPrefix + "RATE_LIMIT"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 {
				return nil, errs.Validationf("invalid %sRATE_LIMIT %q", envPrefix, s)
			}
			cfg.RateLimit = v
		}
	}
	if cfg.PoolSize < 1 {
		return nil, errs.Validation("pool must be >= 1")
	}
	return cfg, nil
}

func pick(flagVal, envVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return envVal
}
