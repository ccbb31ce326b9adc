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
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/zintix-labs/casinolab"
	"github.com/zintix-labs/casinolab/configs"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/perf"
	"github.com/zintix-labs/casinolab/sdk/slot"
	"github.com/zintix-labs/casinolab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 蒙地卡羅模擬：不經過帳本，直接以機台連續開獎並輸出 RTP / 命中率報表。
//
//	go run ./cmd/sim -game classic-slots -lines 10 -bpl 1 -rounds 1000000 -workers 8
func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	var runErr error
	path, err := perf.Run(cfg.pprof, cfg.pprofDir, func() { runErr = execute(cfg) })
	if err == nil {
		err = runErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if path != "" {
		fmt.Fprintln(os.Stderr, "profile written:", path)
	}
}

type config struct {
	game      string
	lines     int
	bpl       int64
	rounds    int
	workers   int
	seed      int64
	output    string
	configDir string
	pprof     perf.Mode
	pprofDir  string
}

func parseFlags(args []string) (*config, error) {
	cfg := new(config)
	fset := flag.NewFlagSet("sim", flag.ContinueOnError)
	fset.StringVar(&cfg.game, "game", "classic-slots", "target game id")
	fset.IntVar(&cfg.lines, "lines", 10, "paylines per round")
	fset.Int64Var(&cfg.bpl, "bpl", 1, "bet per line")
	fset.IntVar(&cfg.rounds, "rounds", 1_000_000, "rounds per worker")
	fset.IntVar(&cfg.workers, "workers", 1, "number of workers")
	fset.Int64Var(&cfg.seed, "seed", 0, "int64 seed, 0 for a random seed")
	fset.StringVar(&cfg.output, "o", "table", "output: table|json|yaml")
	fset.StringVar(&cfg.configDir, "configs", "", "extra directory of game settings")
	pp := fset.String("p", "", "pprof: '', cpu, heap, allocs")
	fset.StringVar(&cfg.pprofDir, "pdir", perf.DefaultDir, "pprof output directory")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	cfg.pprof = perf.Mode(*pp)
	return cfg, cfg.valid()
}

func (cfg *config) valid() error {
	if cfg.rounds < 1 {
		return errs.Validation("rounds must > 0")
	}
	if cfg.workers < 1 {
		return errs.Validation("workers must > 0")
	}
	switch cfg.output {
	case "table", "json", "yaml":
	default:
		return errs.Validationf("unknown output %q", cfg.output)
	}
	return nil
}

func execute(cfg *config) error {
	p, err := casinolab.New(casinolab.WithPoolSize(1))
	if err != nil {
		return err
	}
	defer p.Close()

	sources := []fs.FS{configs.FS}
	if cfg.configDir != "" {
		sources = append(sources, os.DirFS(cfg.configDir))
	}
	if err := p.RegisterAll(sources...); err != nil {
		return err
	}
	s, err := p.NewSimulator(cfg.game, cfg.seed)
	if err != nil {
		return err
	}

	bet := slot.BetData{Lines: cfg.lines, BetPerLine: cfg.bpl}
	table := cfg.output == "table"
	if table {
		green, reset := "\033[1;32m", "\033[0m"
		pr := message.NewPrinter(language.English)
		pr.Printf("%s[GAME:%s] [BET:%d x %d] [WORKERS:%d] [ROUNDS:%d] [SEED:%d]%s\n",
			green, s.GameName, cfg.lines, cfg.bpl, cfg.workers, cfg.workers*cfg.rounds, s.InitSeed(), reset)
	}

	var (
		st   *stats.StatReport
		used time.Duration
	)
	if cfg.workers == 1 {
		st, used, err = s.Sim(bet, cfg.rounds, table)
	} else {
		st, used, err = s.SimMP(bet, cfg.rounds, cfg.workers, table)
	}
	if err != nil {
		return err
	}
	return report(os.Stdout, cfg.output, st, used)
}

func report(w io.Writer, output string, st *stats.StatReport, used time.Duration) error {
	if r, ok := stats.RenderFor(output); ok {
		return st.WriteWith(w, r)
	}
	st.StdOut(used)
	return nil
}
