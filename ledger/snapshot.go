package ledger

import (
	"encoding/json"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/casinolab/errs"
)

// Snapshot 帳本狀態匯出(zstd 壓縮的 JSON)，供稽核與除錯使用，不是持久化方案。
type Snapshot struct {
	Version  int              `json:"version"`
	TakenAt  time.Time        `json:"takenAt"`
	Token    TokenInfo        `json:"token"`
	Genesis  int64            `json:"genesis"`
	Minted   int64            `json:"minted"`
	Burned   int64            `json:"burned"`
	Balances map[string]int64 `json:"balances"`
	Txs      []Transaction    `json:"transactions"`
}

const snapshotVersion = 1

// Snapshot 取出一致的狀態副本
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	txs := make([]Transaction, len(l.txs))
	for i, t := range l.txs {
		txs[i] = t.clone()
	}
	return Snapshot{
		Version:  snapshotVersion,
		TakenAt:  l.clock(),
		Token:    l.token,
		Genesis:  l.genesis,
		Minted:   l.minted,
		Burned:   l.burned,
		Balances: maps.Clone(l.balances),
		Txs:      txs,
	}
}

// WriteSnapshot 以 zstd 壓縮寫出
func (l *Ledger) WriteSnapshot(w io.Writer) error {
	snap := l.Snapshot()
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "zstd writer")
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return errs.Wrap(err, "encode snapshot")
	}
	if err := enc.Close(); err != nil {
		return errs.Wrap(err, "flush snapshot")
	}
	return nil
}

// ReadSnapshot 解壓並解析快照，不改動任何帳本
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec, err := zstd.NewReader(r)
	if err != nil {
		return snap, errs.Wrap(err, "zstd reader")
	}
	defer dec.Close()
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return snap, errs.Wrap(err, "decode snapshot")
	}
	if snap.Version != snapshotVersion {
		return snap, errs.Fatalf("unsupported snapshot version %d", snap.Version)
	}
	return snap, nil
}

// Restore 以快照取代目前狀態；快照不守恆時拒絕且不改動
func (l *Ledger) Restore(snap Snapshot) error {
	next := &Ledger{
		token:    snap.Token,
		genesis:  snap.Genesis,
		minted:   snap.Minted,
		burned:   snap.Burned,
		balances: maps.Clone(snap.Balances),
	}
	if next.balances == nil {
		next.balances = make(map[string]int64)
	}
	if err := next.auditLocked(); err != nil {
		return errs.Wrap(err, "snapshot violates conservation")
	}
	txs := slices.Clone(snap.Txs)
	for i := range txs {
		txs[i] = txs[i].clone()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.token = next.token
	l.genesis = next.genesis
	l.minted = next.minted
	l.burned = next.burned
	l.balances = next.balances
	l.txs = txs
	l.log.Info("ledger restored from snapshot", "txs", len(txs), "supply", l.token.TotalSupply)
	return nil
}
