package slot

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/spec"
)

// Registry 持有所有上架的遊戲實例。沒有下架，生命週期等同 process。
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Game, 16)}
}

// Register 呼叫遊戲的 Initialize 後登記；初始化失敗或 id 重複都不會登記
func (r *Registry) Register(g Game) error {
	if g == nil {
		return errs.NewFatal("nil game")
	}
	id := g.Info().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; ok {
		return errs.Fatalf("duplicate game id %s", id)
	}
	if err := g.Initialize(); err != nil {
		return errs.WrapWithExtra(err, "game initialize failed", id)
	}
	r.games[id] = g
	return nil
}

func (r *Registry) Get(id string) (Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, errs.NotFound("game not found: " + id)
	}
	return g, nil
}

// All 依 id 排序
func (r *Registry) All() []Game {
	r.mu.RLock()
	out := make([]Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Game) int { return strings.Compare(a.Info().ID, b.Info().ID) })
	return out
}

func (r *Registry) ByType(t spec.GameType) []Game {
	all := r.All()
	out := all[:0]
	for _, g := range all {
		if g.Info().Type == t {
			out = append(out, g)
		}
	}
	return out
}

// SetActive 切換上架狀態，驗證器會讀到新值
func (r *Registry) SetActive(id string, active bool) error {
	g, err := r.Get(id)
	if err != nil {
		return err
	}
	g.SetActive(active)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// ============================================================
// ** 遊戲種類 builder 註冊表 **
// ============================================================

// Builder 依設定建立一個尚未初始化的遊戲
type Builder func(gs *spec.GameSetting) (Game, error)

type LogicRegistry struct {
	builders map[spec.GameType]Builder
}

func NewLogicRegistry() *LogicRegistry {
	return &LogicRegistry{
		builders: make(map[spec.GameType]Builder, 8),
	}
}

// DefaultLogics 內建的遊戲種類
func DefaultLogics() *LogicRegistry {
	lr := NewLogicRegistry()
	_ = lr.Register(spec.GameSlots, BuildSlots)
	return lr
}

func (r *LogicRegistry) Register(t spec.GameType, b Builder) error {
	if _, ok := r.builders[t]; ok {
		return errs.Fatalf("duplicate builder for game type %s", t)
	}
	r.builders[t] = b
	return nil
}

func (r *LogicRegistry) Build(gs *spec.GameSetting) (Game, error) {
	b, ok := r.builders[gs.Type]
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("no builder for game type: %s", gs.Type))
	}
	return b(gs)
}

func (r *LogicRegistry) IsExist(t spec.GameType) bool {
	_, ok := r.builders[t]
	return ok
}

// MergeLogicRegistry 合併多個註冊表，重複的種類一律視為錯誤
func MergeLogicRegistry(regs ...*LogicRegistry) (*LogicRegistry, error) {
	lr := NewLogicRegistry()
	origin := make(map[spec.GameType]int, 8)
	for i, r := range regs {
		if r == nil {
			continue
		}
		for t, b := range r.builders {
			if _, ok := lr.builders[t]; ok {
				return nil, errs.Fatalf("duplicate game type %s (registry #%d and #%d)", t, origin[t], i)
			}
			lr.builders[t] = b
			origin[t] = i
		}
	}
	return lr, nil
}
