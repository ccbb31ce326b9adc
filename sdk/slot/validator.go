package slot

import (
	"math"

	"github.com/zintix-labs/casinolab/errs"
)

// ValidateBase 所有遊戲共用的檢查：上下限與上架狀態
func ValidateBase(info Info, amount int64) error {
	if !info.IsActive {
		return errs.Validationf("game %s is not active", info.ID)
	}
	if amount < info.MinBet {
		return errs.Validationf("bet %d below minimum %d", amount, info.MinBet)
	}
	if amount > info.MaxBet {
		return errs.Validationf("bet %d above maximum %d", amount, info.MaxBet)
	}
	return nil
}

// ValidateSlots 拉霸的押注形狀：lines * betPerLine 必須剛好等於押注金額，不做任何進位
func ValidateSlots(info Info, amount int64, bet BetData) error {
	if err := ValidateBase(info, amount); err != nil {
		return err
	}
	if bet.Lines <= 0 {
		return errs.Validation("lines must be a positive integer")
	}
	if bet.BetPerLine <= 0 {
		return errs.Validation("betPerLine must be positive")
	}
	// 以除法比對，避免 lines * betPerLine 溢位後剛好繞回 amount
	lines := int64(bet.Lines)
	if amount%lines != 0 || amount/lines != bet.BetPerLine {
		return errs.Validationf("lines %d * betPerLine %d != amount %d", bet.Lines, bet.BetPerLine, amount)
	}
	return nil
}

// StakeOf 由押注形狀算出總押注，乘積超出 int64 時回傳 Validation 錯誤
func StakeOf(bet BetData) (int64, error) {
	if bet.Lines <= 0 || bet.BetPerLine <= 0 {
		return 0, errs.Validationf("invalid bet shape lines=%d betPerLine=%d", bet.Lines, bet.BetPerLine)
	}
	lines := int64(bet.Lines)
	if bet.BetPerLine > math.MaxInt64/lines {
		return 0, errs.Validationf("lines %d * betPerLine %d overflows", bet.Lines, bet.BetPerLine)
	}
	return lines * bet.BetPerLine, nil
}
