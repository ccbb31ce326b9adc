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

// Package casinolab 提供平台的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Platform 把下列地基組裝在一起：
//  1. Ledger：代幣帳本，所有押注與派彩的唯一真實來源。
//  2. Registry / LogicRegistry：上架的遊戲，以及「如何依設定建出遊戲」的 builders。
//  3. MachinePool：每款遊戲一組機台，每台機台持有自己的亂數核心，不共用。
//  4. Hasher：可驗證公平性的雜湊。
//
// 設定檔來源一律以 fs.FS 注入（go:embed 或 os.DirFS），Platform 不處理路徑。
//
// 典型使用情境：
//   - 後端服務（HTTP）：handler 只呼叫 Platform.PlaceBet 與 Ledger 查詢。
//   - 模擬器（sim）：由 Platform.NewSimulator 建立多台機台大量開獎，不經過帳本。
package casinolab

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/casinolab/catalog"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/fair"
	"github.com/zintix-labs/casinolab/ledger"
	"github.com/zintix-labs/casinolab/sdk/core"
	"github.com/zintix-labs/casinolab/sdk/slot"
	"github.com/zintix-labs/casinolab/spec"
)

const defaultPoolSize = 8

// Platform 組裝器與運行入口。建立後可被多個 goroutine 同時使用。
type Platform struct {
	log      *slog.Logger
	clock    func() time.Time
	ledger   *ledger.Ledger
	hasher   *fair.Hasher
	logics   *slot.LogicRegistry
	games    *slot.Registry
	settler  *slot.Settler
	observer slot.Observer
	pf       core.PRNGFactory
	seeds    *seedMaker
	poolSize int

	mu    sync.RWMutex
	pools map[string]*MachinePool

	done      chan struct{}
	closeOnce sync.Once
}

type config struct {
	log        *slog.Logger
	clock      func() time.Time
	ledger     *ledger.Ledger
	serverSeed string
	pf         core.PRNGFactory
	seed       int64
	seedSet    bool
	poolSize   int
	observer   slot.Observer
	logics     []*slot.LogicRegistry
}

type Option func(*config)

// WithLedger 使用外部建立的帳本(例如掛了指標觀察者或從快照還原的帳本)
func WithLedger(l *ledger.Ledger) Option {
	return func(c *config) { c.ledger = l }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithServerSeed 驗證雜湊使用的伺服器種子，空字串代表預設值
func WithServerSeed(seed string) Option {
	return func(c *config) { c.serverSeed = seed }
}

func WithPRNG(pf core.PRNGFactory) Option {
	return func(c *config) {
		if pf != nil {
			c.pf = pf
		}
	}
}

// WithSeed 固定機台種子的起點，讓整個平台的開獎序列可重現
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithPoolSize 每款遊戲的機台數，至少 1
func WithPoolSize(n int) Option {
	return func(c *config) { c.poolSize = n }
}

func WithObserver(o slot.Observer) Option {
	return func(c *config) { c.observer = o }
}

// WithLogics 追加遊戲種類 builders，與內建的 slots 合併；重複種類會讓 New 失敗
func WithLogics(regs ...*slot.LogicRegistry) Option {
	return func(c *config) { c.logics = append(c.logics, regs...) }
}

// New 建立平台。沒有指定帳本時，以預設創世分配建立一本新的。
func New(opts ...Option) (*Platform, error) {
	cfg := &config{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    time.Now,
		pf:       core.Default(),
		poolSize: defaultPoolSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if !cfg.seedSet {
		seed, err := core.RandomSeed()
		if err != nil {
			return nil, errs.Wrap(err, "new crypto seed error in go std lib")
		}
		cfg.seed = seed
	}

	l := cfg.ledger
	if l == nil {
		var err error
		l, err = ledger.New(ledger.WithLogger(cfg.log), ledger.WithClock(cfg.clock))
		if err != nil {
			return nil, err
		}
	}

	logics, err := slot.MergeLogicRegistry(append([]*slot.LogicRegistry{slot.DefaultLogics()}, cfg.logics...)...)
	if err != nil {
		return nil, err
	}

	hasher := fair.NewHasher(cfg.serverSeed)
	p := &Platform{
		log:      cfg.log,
		clock:    cfg.clock,
		ledger:   l,
		hasher:   hasher,
		logics:   logics,
		games:    slot.NewRegistry(),
		observer: cfg.observer,
		pf:       cfg.pf,
		seeds:    newSeedMaker(cfg.seed),
		poolSize: max(1, cfg.poolSize),
		pools:    make(map[string]*MachinePool, 8),
		done:     make(chan struct{}),
	}
	p.settler = &slot.Settler{
		Ledger:   l,
		Hasher:   hasher,
		Observer: cfg.observer,
		Log:      cfg.log,
		Clock:    cfg.clock,
	}
	return p, nil
}

// ============================================================
// ** 註冊 **
// ============================================================

// RegisterGame 初始化並上架遊戲，同時建立該遊戲的機台池
func (p *Platform) RegisterGame(g slot.Game) error {
	if p.Closed() {
		return errs.NewFatal("platform closed")
	}
	if err := p.games.Register(g); err != nil {
		return err
	}
	info := g.Info()
	mp, err := newMachinePool(p.poolSize, g, p.pf, p.seeds.next())
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.pools[info.ID] = mp
	p.mu.Unlock()
	p.log.Info("game registered", "game", info.ID, "type", info.Type, "active", info.IsActive, "pool", p.poolSize)
	return nil
}

// RegisterSetting 依設定的種類找 builder 建立遊戲後上架
func (p *Platform) RegisterSetting(gs *spec.GameSetting) error {
	if gs == nil {
		return errs.NewFatal("nil game setting")
	}
	g, err := p.logics.Build(gs)
	if err != nil {
		return errs.WrapWithExtra(err, "build game failed", gs.ID)
	}
	return p.RegisterGame(g)
}

// RegisterAll 讀取所有設定來源後依 id 順序上架。
//
// 讀取與解析是 fail-fast 且先於任何上架：只要有一個檔案有問題，什麼都不會上架。
// 上架途中失敗(例如 id 已存在)則停在該遊戲，之前的遊戲保持上架。
func (p *Platform) RegisterAll(cfgs ...fs.FS) error {
	gss, err := catalog.Load(cfgs...)
	if err != nil {
		return err
	}
	for _, gs := range gss {
		if err := p.RegisterSetting(gs); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// ** 查詢 **
// ============================================================

func (p *Platform) Game(id string) (slot.Game, error) {
	return p.games.Get(id)
}

// Games 所有上架遊戲的基本資料，依 id 排序
func (p *Platform) Games() []slot.Info {
	return infos(p.games.All())
}

func (p *Platform) GamesByType(t spec.GameType) []slot.Info {
	return infos(p.games.ByType(t))
}

func (p *Platform) SetActive(id string, active bool) error {
	if err := p.games.SetActive(id, active); err != nil {
		return err
	}
	p.log.Info("game active changed", "game", id, "active", active)
	return nil
}

func (p *Platform) Ledger() *ledger.Ledger { return p.ledger }

func (p *Platform) Hasher() *fair.Hasher { return p.hasher }

// Verify 以相同輸入重算雜湊並比對
func (p *Platform) Verify(hash, userID string, bet slot.BetData, outcome slot.Outcome, ts time.Time) (bool, error) {
	return p.hasher.Verify(hash, userID, bet, outcome, ts)
}

// PoolMetrics 每款遊戲的機台池快照，依 id 排序
func (p *Platform) PoolMetrics() []MachinePoolMetrics {
	games := p.games.All()
	out := make([]MachinePoolMetrics, 0, len(games))
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, g := range games {
		if mp, ok := p.pools[g.Info().ID]; ok {
			out = append(out, mp.Metrics())
		}
	}
	return out
}

// ============================================================
// ** 結算 **
// ============================================================

// PlaceBet 對指定遊戲結算一局。
//
// 回傳值與 slot.Settler.PlaceBet 相同：失敗時同時有 Success=false 的結果與錯誤。
// ctx 只影響「等待機台」這一段；一旦開始結算就會完整跑完，不會半途中斷帳務。
func (p *Platform) PlaceBet(ctx context.Context, gameID string, req slot.BetRequest) (*slot.BetResult, error) {
	select {
	case <-p.done:
		err := errs.NewFatal("platform closed")
		return slot.FailResult(err.Message), err
	default:
	}

	p.mu.RLock()
	mp, ok := p.pools[gameID]
	p.mu.RUnlock()
	if !ok {
		err := errs.NotFound("game not found: " + gameID)
		if p.observer != nil {
			p.observer.ObserveRejected(gameID, errs.KindNotFound)
		}
		return slot.FailResult(err.Message), err
	}
	return mp.PlaceBet(ctx, p.settler, req)
}

// NewSimulator 為指定遊戲建立模擬器；seed 為 0 時使用隨機種子
func (p *Platform) NewSimulator(gameID string, seed int64) (*Simulator, error) {
	g, err := p.games.Get(gameID)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		return newSimulator(g, p.pf)
	}
	return newSimulatorWithSeed(g, p.pf, seed)
}

// ============================================================
// ** 生命週期 **
// ============================================================

// Close 關閉平台與所有機台池，可重複呼叫。帳本不受影響，仍可查詢。
func (p *Platform) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.mu.RLock()
		defer p.mu.RUnlock()
		for _, mp := range p.pools {
			mp.Close()
		}
		p.log.Info("platform closed", "games", len(p.pools))
	})
}

func (p *Platform) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func infos(gs []slot.Game) []slot.Info {
	out := make([]slot.Info, len(gs))
	for i, g := range gs {
		out[i] = g.Info()
	}
	return out
}
