package ledger

import (
	"log/slog"
	"maps"
	"time"

	"github.com/zintix-labs/casinolab/errs"
)

// Observer 帳本操作觀察者(指標)。kind 為 KindNone 表示成功
type Observer interface {
	ObserveLedgerOp(op string, kind errs.Kind, amount int64)
}

type Option func(*Ledger)

func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithIDGen 替換交易 id 產生器，必須回傳不重複的 id
func WithIDGen(gen func(time.Time) string) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

func WithToken(t TokenInfo) Option {
	return func(l *Ledger) { l.token = t }
}

// WithGenesis 創世分配，總和必須等於 TokenInfo.TotalSupply
func WithGenesis(g map[string]int64) Option {
	return func(l *Ledger) { l.genesisAlloc = maps.Clone(g) }
}

func WithObserver(o Observer) Option {
	return func(l *Ledger) { l.obs = o }
}
