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

// Package ledger 代幣帳本：所有餘額與只增不改的交易紀錄。
//
// 整個帳本由單一互斥鎖保護，每個「先讀後寫」的操作(轉帳、贈送、下注、派彩、銷毀)
// 都在同一個臨界區內完成檢查、改餘額、寫交易，因此不會出現扣了款沒入帳，
// 也不會有兩個併發操作讀到同一個舊餘額而雙雙成功。
//
// 守恆：sum(餘額) == TotalSupply，且 TotalSupply + 已銷毀 == 創世供給 + 已增發。
package ledger

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/casinolab/errs"
)

// Ledger 帳本，請以 New 建立並注入給使用者，不要做成全域單例。
type Ledger struct {
	mu       sync.Mutex
	token    TokenInfo
	genesis  int64
	minted   int64
	burned   int64
	balances map[string]int64
	txs      []Transaction

	genesisAlloc map[string]int64
	log          *slog.Logger
	clock        func() time.Time
	newID        func(time.Time) string
	obs          Observer
}

// New 建立帳本並完成創世分配
func New(opts ...Option) (*Ledger, error) {
	l := &Ledger{
		token:        DefaultToken(),
		genesisAlloc: DefaultGenesis(),
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:        time.Now,
		newID:        defaultTxID,
	}
	for _, opt := range opts {
		opt(l)
	}

	var sum int64
	for addr, amt := range l.genesisAlloc {
		if addr == "" || amt < 0 {
			return nil, errs.Fatalf("invalid genesis allocation %q=%d", addr, amt)
		}
		sum += amt
	}
	if sum != l.token.TotalSupply {
		return nil, errs.Fatalf("genesis allocation %d != total supply %d", sum, l.token.TotalSupply)
	}
	l.genesis = sum
	l.balances = make(map[string]int64, len(l.genesisAlloc)+64)
	for addr, amt := range l.genesisAlloc {
		if amt > 0 {
			l.balances[addr] = amt
		}
	}
	l.txs = make([]Transaction, 0, 1024)
	return l, nil
}

// defaultTxID tx_<毫秒>_<uuid>
func defaultTxID(now time.Time) string {
	return fmt.Sprintf("tx_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// ============================================================
// ** 查詢 **
// ============================================================

// BalanceOf 未知地址回傳 0
func (l *Ledger) BalanceOf(addr string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

func (l *Ledger) TokenInfo() TokenInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token
}

func (l *Ledger) TotalBurned() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.burned
}

func (l *Ledger) TotalMinted() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minted
}

// Transactions 完整交易紀錄副本，舊到新
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.txs))
	for i, t := range l.txs {
		out[i] = t.clone()
	}
	return out
}

// TransactionHistory 與地址相關的交易，新到舊(以寫入順序為準)
func (l *Ledger) TransactionHistory(addr string) []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, 0, 16)
	for i := len(l.txs) - 1; i >= 0; i-- {
		if l.txs[i].Involves(addr) {
			out = append(out, l.txs[i].clone())
		}
	}
	return out
}

// TopHolders 依餘額遞減，同餘額依地址遞增；limit <= 0 回傳全部。零餘額不列入
func (l *Ledger) TopHolders(limit int) []Holder {
	l.mu.Lock()
	out := make([]Holder, 0, len(l.balances))
	for addr, bal := range l.balances {
		if bal > 0 {
			out = append(out, Holder{Address: addr, Balance: bal})
		}
	}
	l.mu.Unlock()

	slices.SortFunc(out, func(a, b Holder) int {
		if c := cmp.Compare(b.Balance, a.Balance); c != 0 {
			return c
		}
		return strings.Compare(a.Address, b.Address)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Audit 檢查守恆；回傳 Fatal 代表帳務錯誤
func (l *Ledger) Audit() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.auditLocked()
}

func (l *Ledger) auditLocked() error {
	var sum int64
	for addr, bal := range l.balances {
		if bal < 0 {
			return errs.Fatalf("negative balance %s=%d", addr, bal)
		}
		sum += bal
	}
	if sum != l.token.TotalSupply {
		return errs.Fatalf("sum of balances %d != total supply %d", sum, l.token.TotalSupply)
	}
	if l.token.TotalSupply+l.burned != l.genesis+l.minted {
		return errs.Fatalf("supply %d + burned %d != genesis %d + minted %d", l.token.TotalSupply, l.burned, l.genesis, l.minted)
	}
	return nil
}

// ============================================================
// ** 狀態變更 **
// ============================================================

// Transfer 一般轉帳
func (l *Ledger) Transfer(from, to string, amount int64, meta map[string]string) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("transfer", err, amount)
	}
	if from == "" || to == "" {
		return l.fail("transfer", errs.Validation("address must not be empty"), amount)
	}
	if from == to {
		return l.fail("transfer", errs.Validation("cannot transfer to the same address"), amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[from]; bal < amount {
		return l.fail("transfer", errs.Insufficient(fmt.Sprintf("balance %d < amount %d", bal, amount)), amount)
	}
	l.move(from, to, amount, TxTransfer, maps.Clone(meta))
	return l.ok("transfer", amount)
}

// GrantInitialTokens 一次性贈送：地址已有餘額就拒絕；準備金不足屬於平台問題
func (l *Ledger) GrantInitialTokens(addr string, amount int64) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("grant", err, amount)
	}
	if addr == "" || isPlatform(addr) {
		return l.fail("grant", errs.Validationf("cannot grant to %q", addr), amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[addr]; bal > 0 {
		return l.fail("grant", errs.Validationf("address %s already holds %d, grant is one-time", addr, bal), amount)
	}
	if res := l.balances[ReserveAccount]; res < amount {
		l.log.Error("reserve cannot cover initial grant", "reserve", res, "amount", amount, "addr", addr)
		return l.fail("grant", errs.Insolvency(fmt.Sprintf("reserve %d < grant %d", res, amount)), amount)
	}
	l.move(ReserveAccount, addr, amount, TxInitialGrant, map[string]string{MetaReason: ReasonNewUserGrant})
	l.log.Info("initial tokens granted", "addr", addr, "amount", amount)
	return l.ok("grant", amount)
}

// GrantDefault 以 DefaultGrant 贈送
func (l *Ledger) GrantDefault(addr string) error {
	return l.GrantInitialTokens(addr, DefaultGrant)
}

// ProcessBet 押注：用戶 → 收款帳戶
func (l *Ledger) ProcessBet(userID string, amount int64, gameID string) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("bet", err, amount)
	}
	if userID == "" || isPlatform(userID) {
		return l.fail("bet", errs.Validationf("invalid bettor %q", userID), amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[userID]; bal < amount {
		return l.fail("bet", errs.Insufficient(fmt.Sprintf("balance %d < bet %d", bal, amount)), amount)
	}
	l.move(userID, CollectionAccount, amount, TxBet, map[string]string{MetaGameID: gameID})
	return l.ok("bet", amount)
}

// ProcessWin 派彩：收款帳戶 → 用戶。收款帳戶不足代表平台無力支付
func (l *Ledger) ProcessWin(userID string, amount int64, gameID string) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("win", err, amount)
	}
	if userID == "" || isPlatform(userID) {
		return l.fail("win", errs.Validationf("invalid winner %q", userID), amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[CollectionAccount]; bal < amount {
		l.log.Error("platform insolvent", "collection", bal, "payout", amount, "user", userID, "game", gameID)
		return l.fail("win", errs.Insolvency(fmt.Sprintf("collection %d < payout %d", bal, amount)), amount)
	}
	l.move(CollectionAccount, userID, amount, TxWin, map[string]string{MetaGameID: gameID})
	return l.ok("win", amount)
}

// RefundBet 退回押注(收款帳戶 → 用戶)，記為 transfer
func (l *Ledger) RefundBet(userID string, amount int64, gameID string, reason string) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("refund", err, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[CollectionAccount]; bal < amount {
		return l.fail("refund", errs.Insolvency(fmt.Sprintf("collection %d < refund %d", bal, amount)), amount)
	}
	l.move(CollectionAccount, userID, amount, TxTransfer, map[string]string{MetaGameID: gameID, MetaReason: reason})
	l.log.Warn("bet refunded", "user", userID, "amount", amount, "game", gameID, "reason", reason)
	return l.ok("refund", amount)
}

// Mint 增發到準備金。沒有權限檢查，需要時由呼叫端限制
func (l *Ledger) Mint(amount int64) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("mint", err, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.token.TotalSupply > math.MaxInt64-amount {
		return l.fail("mint", errs.Validationf("mint %d overflows supply %d", amount, l.token.TotalSupply), amount)
	}
	l.token.TotalSupply += amount
	l.minted += amount
	l.balances[ReserveAccount] += amount
	l.append(MintAddress, ReserveAccount, amount, TxDeposit, map[string]string{MetaReason: ReasonTokenMint})
	l.log.Info("tokens minted", "amount", amount, "supply", l.token.TotalSupply)
	return l.ok("mint", amount)
}

// Burn 銷毀：扣餘額並減少總供給，交易記到銷毀地址
func (l *Ledger) Burn(addr string, amount int64) error {
	if err := checkAmount(amount); err != nil {
		return l.fail("burn", err, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal := l.balances[addr]; bal < amount {
		return l.fail("burn", errs.Insufficient(fmt.Sprintf("balance %d < burn %d", bal, amount)), amount)
	}
	l.debit(addr, amount)
	l.token.TotalSupply -= amount
	l.burned += amount
	l.append(addr, BurnAddress, amount, TxFee, map[string]string{MetaReason: ReasonTokenBurn})
	l.log.Info("tokens burned", "addr", addr, "amount", amount, "supply", l.token.TotalSupply)
	return l.ok("burn", amount)
}

// ============================================================
// ** 以下內部方法 (呼叫端須持有 mu) **
// ============================================================

func (l *Ledger) move(from, to string, amount int64, typ TxType, meta map[string]string) {
	l.debit(from, amount)
	l.balances[to] += amount
	l.append(from, to, amount, typ, meta)
}

// debit 餘額歸零時移除，避免 map 無限成長
func (l *Ledger) debit(addr string, amount int64) {
	if nb := l.balances[addr] - amount; nb == 0 {
		delete(l.balances, addr)
	} else {
		l.balances[addr] = nb
	}
}

func (l *Ledger) append(from, to string, amount int64, typ TxType, meta map[string]string) {
	now := l.clock()
	l.txs = append(l.txs, Transaction{
		ID:        l.newID(now),
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: now,
		Type:      typ,
		Status:    StatusCompleted,
		Metadata:  meta,
	})
}

func (l *Ledger) ok(op string, amount int64) error {
	if l.obs != nil {
		l.obs.ObserveLedgerOp(op, errs.KindNone, amount)
	}
	return nil
}

func (l *Ledger) fail(op string, err *errs.E, amount int64) error {
	if l.obs != nil {
		l.obs.ObserveLedgerOp(op, err.Kind, amount)
	}
	return err
}

func checkAmount(amount int64) *errs.E {
	if amount <= 0 {
		return errs.Validationf("amount must be positive, got %d", amount)
	}
	return nil
}

func isPlatform(addr string) bool {
	switch addr {
	case ReserveAccount, CollectionAccount, BurnAddress, MintAddress:
		return true
	}
	return false
}
