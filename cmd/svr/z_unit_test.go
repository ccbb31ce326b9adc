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
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/casinolab/server/logger"
)

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("CASINOLAB_ADDR=:7000\nCASINOLAB_LOG_MODE=prod\nCASINOLAB_RATE_LIMIT=2.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"CASINOLAB_ADDR", "CASINOLAB_LOG_MODE", "CASINOLAB_RATE_LIMIT", "CASINOLAB_SERVER_SEED"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := loadConfig([]string{"-env", env, "-addr", ":9000"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9000" {
		t.Fatalf("flag must win over env, got %s", cfg.Addr)
	}
	if cfg.LogMode != logger.ModeProd || cfg.RateLimit != 2.5 {
		t.Fatalf("env values not applied: %+v", cfg)
	}

	cfg, err = loadConfig([]string{"-env", filepath.Join(dir, "missing.env"), "-rate-limit", "0"})
	if err != nil {
		t.Fatalf("missing dotenv must be ignored: %v", err)
	}
	if cfg.RateLimit != 0 {
		t.Fatalf("explicit flag 0 must disable limiter, got %v", cfg.RateLimit)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.env")
	if _, err := loadConfig([]string{"-env", missing, "-log-mode", "loud"}); err == nil {
		t.Fatalf("bad log mode must fail")
	}
	if _, err := loadConfig([]string{"-env", missing, "-pool", "0"}); err == nil {
		t.Fatalf("pool 0 must fail")
	}
	if _, err := loadConfig([]string{"-nope"}); err == nil {
		t.Fatalf("unknown flag must fail")
	}
}
