package slot

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/calc"
	"github.com/zintix-labs/casinolab/sdk/core"
)

// Ledger 結算需要的帳本能力
type Ledger interface {
	ProcessBet(userID string, amount int64, gameID string) error
	ProcessWin(userID string, amount int64, gameID string) error
	RefundBet(userID string, amount int64, gameID string, reason string) error
}

// Hasher 產生驗證雜湊
type Hasher interface {
	Hash(userID string, betData any, outcome any, ts time.Time) (string, error)
}

// Observer 結算事件的觀察者(指標)，可為 nil
type Observer interface {
	ObserveRound(gameID string, amount, payout int64, features []calc.Feature)
	ObserveRejected(gameID string, kind errs.Kind)
	ObserveInsolvency(gameID string)
}

// Settler 一局的完整結算流程：驗證 → 扣注 → 開獎 → 計分 → 雜湊 → 派彩。
//
// 扣注在開獎之前，沒有餘額的玩家不會看到開獎結果。
// 派彩因平台帳戶不足失敗時，退回本局押注並回傳 Insolvency。
type Settler struct {
	Ledger   Ledger
	Hasher   Hasher
	Observer Observer
	Log      *slog.Logger
	Clock    func() time.Time
}

func (s *Settler) logger() *slog.Logger {
	if s.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Log
}

func (s *Settler) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// PlaceBet 對單一遊戲結算一局。失敗時同時回傳 Success=false 的結果與錯誤，
// 呼叫端可以只看結果分支，也可以依 errs.Kind 處理。
func (s *Settler) PlaceBet(g Game, c *core.Core, req BetRequest) (*BetResult, error) {
	info := g.Info()
	log := s.logger().With("game", info.ID, "user", req.UserID)

	if err := g.Validate(req.Amount, req.Bet); err != nil {
		log.Debug("bet rejected", "amount", req.Amount, "reason", err.Error())
		s.rejected(info.ID, err)
		return FailResult(reason(err)), err
	}
	if err := s.Ledger.ProcessBet(req.UserID, req.Amount, info.ID); err != nil {
		log.Debug("bet not debited", "amount", req.Amount, "reason", err.Error())
		s.rejected(info.ID, err)
		return FailResult(reason(err)), err
	}

	outcome, ev, err := play(g, c, req)
	if err != nil {
		log.Error("round failed, refunding stake", "err", err)
		if rerr := s.Ledger.RefundBet(req.UserID, req.Amount, info.ID, "evaluate_failed"); rerr != nil {
			log.Error("refund failed", "err", rerr)
		}
		return FailResult(reason(err)), err
	}

	ts := s.now()
	hash, err := s.Hasher.Hash(req.UserID, req.Bet, outcome, ts)
	if err != nil {
		log.Error("hash failed, refunding stake", "err", err)
		if rerr := s.Ledger.RefundBet(req.UserID, req.Amount, info.ID, "hash_failed"); rerr != nil {
			log.Error("refund failed", "err", rerr)
		}
		return FailResult(reason(err)), errs.Wrap(err, "verification hash")
	}

	if ev.Payout > 0 {
		if err := s.Ledger.ProcessWin(req.UserID, ev.Payout, info.ID); err != nil {
			log.Error("platform cannot cover payout", "payout", ev.Payout, "err", err)
			if s.Observer != nil && errs.IsKind(err, errs.KindInsolvency) {
				s.Observer.ObserveInsolvency(info.ID)
			}
			if rerr := s.Ledger.RefundBet(req.UserID, req.Amount, info.ID, "insolvency_refund"); rerr != nil {
				log.Error("refund failed", "err", rerr)
			}
			return FailResult(reason(err)), err
		}
	}

	label := OutcomeLoss
	if ev.Payout > 0 {
		label = OutcomeWin
	}
	if s.Observer != nil {
		s.Observer.ObserveRound(info.ID, req.Amount, ev.Payout, ev.Data.SpecialFeatures)
	}
	log.Debug("round settled", "amount", req.Amount, "payout", ev.Payout, "hash", hash)
	return &BetResult{
		Success:          true,
		Payout:           ev.Payout,
		Outcome:          label,
		GameData:         ev.Data,
		VerificationHash: hash,
		RoundID:          uuid.NewString(),
		Timestamp:        ts,
	}, nil
}

// play 開獎與計分。已扣注後發生的 panic 轉成 Fatal 錯誤，讓呼叫端能退回押注
func play(g Game, c *core.Core, req BetRequest) (o Outcome, ev *Evaluation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Fatalf("round panic: %v", r)
		}
	}()
	o = g.GenerateOutcome(c)
	ev, err = g.Evaluate(o, req.Amount, req.Bet)
	return o, ev, err
}

func (s *Settler) rejected(gameID string, err error) {
	if s.Observer != nil {
		s.Observer.ObserveRejected(gameID, errs.KindOf(err))
	}
}

// reason 取出給使用者看的訊息(不含等級前綴)
func reason(err error) string {
	if e, ok := errs.AsErr(err); ok {
		return e.Message
	}
	return err.Error()
}
