package calc

// calcScatter 全盤計數，與連線無關
func (sc *ScreenCalculator) calcScatter(idx [][]int, betPerLine int64, ev *Evaluation) {
	scatter := sc.ss.Scatter
	if scatter < 0 {
		return
	}
	count := 0
	for _, reel := range idx {
		for _, s := range reel {
			if s == scatter {
				count++
			}
		}
	}
	ev.ScatterCount = count
	if count < minScatter {
		return
	}
	ev.ScatterWin = sc.values[scatter] * betPerLine * int64(count)
	ev.TotalWin += ev.ScatterWin
	ev.Features = append(ev.Features, FeatureFreeSpins)
}
