package calc

import (
	"github.com/zintix-labs/casinolab/spec"
)

// calcLine 單條連線：投影、找最長連續串、計分
func (sc *ScreenCalculator) calcLine(pl *spec.PaylineSetting, grid [][]string, idx [][]int, betPerLine int64, ev *Evaluation) {
	syms := make([]string, 0, len(pl.Cells))
	seq := make([]int, 0, len(pl.Cells))
	for _, p := range pl.Cells {
		// 超出盤面的座標直接略過該格
		if p.Reel >= len(idx) || p.Row >= len(idx[p.Reel]) {
			continue
		}
		syms = append(syms, grid[p.Reel][p.Row])
		seq = append(seq, idx[p.Reel][p.Row])
	}

	sym, run := longestRun(seq, sc.wild)
	if run < minLineRun {
		return
	}
	win := sc.values[sym] * betPerLine * int64(run-(minLineRun-1))
	if win > 0 {
		ev.TotalWin += win
		ev.LineWins = append(ev.LineWins, LineWin{
			Line:    pl.ID,
			Win:     win,
			Symbols: syms,
			Symbol:  sc.ss.Symbols[sym].ID,
			Run:     run,
		})
	}

	switch {
	case sym == sc.ss.Wild && run >= multiplierWildRun:
		ev.Features = append(ev.Features, FeatureMultiplier)
	case sym == sc.ss.Bonus:
		ev.Features = append(ev.Features, FeatureBonusGame)
	}
}

// longestRun 由左至右找最長連續串。
//
// 每格若等於目前串的符號或是 wild 就延長；否則以該格重新起串。
// 以 wild 起頭的串，其符號就是 wild，之後只有 wild 能延長。
// 同長度時保留較早出現的串。回傳串的符號索引與長度，空序列回傳 (-1, 0)。
func longestRun(seq []int, wild int) (sym int, run int) {
	sym = -1
	cur, curRun := -1, 0
	for i, s := range seq {
		if i > 0 && (s == cur || (wild >= 0 && s == wild)) {
			curRun++
		} else {
			cur, curRun = s, 1
		}
		if curRun > run {
			sym, run = cur, curRun
		}
	}
	return sym, run
}
