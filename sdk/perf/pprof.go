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

// Package perf 給 CLI 用的 pprof 包裝：跑完(或跑的同時)把 profile 寫到指定目錄。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/casinolab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Mode 支援的 profile 種類
type Mode string

const (
	ModeNone   Mode = ""
	ModeCPU    Mode = "cpu"
	ModeHeap   Mode = "heap"
	ModeAllocs Mode = "allocs"
)

// Run 依 mode 包住 exe 執行，回傳寫出的檔案路徑(ModeNone 時為空字串)。
//
// cpu 在 exe 執行期間取樣；heap 與 allocs 在 exe 結束後拍一次快照。
// cpu 檔可以直接當作 pgo 的 default.pgo 使用。
//
//	go run ./cmd/sim -rounds 5000000 -p cpu
func Run(mode Mode, dir string, exe func()) (string, error) {
	switch mode {
	case ModeNone:
		exe()
		return "", nil
	case ModeCPU, ModeHeap, ModeAllocs:
	default:
		return "", errs.Validationf("unknown pprof mode %q (cpu|heap|allocs)", mode)
	}

	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "create profiling dir")
	}
	path := filepath.Join(dir, string(mode)+".pprof")
	f, err := os.Create(path)
	if err != nil {
		return "", errs.WrapWithExtra(err, "create profile", path)
	}
	defer f.Close()

	if mode == ModeCPU {
		if err := pprof.StartCPUProfile(f); err != nil {
			return "", errs.Wrap(err, "start cpu profile")
		}
		exe()
		pprof.StopCPUProfile()
		return path, nil
	}

	exe()
	if mode == ModeHeap {
		// 盡量讓快照貼近最新狀態(live objects)
		runtime.GC()
	}
	if err := pprof.Lookup(string(mode)).WriteTo(f, 0); err != nil {
		return "", errs.Wrap(err, "write profile")
	}
	return path, nil
}
