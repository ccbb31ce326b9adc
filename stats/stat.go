package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 遊戲統計報告
type StatReport struct {
	Summary  *SummaryReport `json:"Summary"`
	Mult     *MultReport    `json:"Mult"`
	Dist     *DistReport    `json:"Dist"`
	Features *FeatureReport `json:"Features"`
	isDone   bool
}

type SummaryReport struct {
	GameName    string  `json:"GameName"`
	GameID      string  `json:"GameId"`
	Bet         int64   `json:"Bet"`
	Lines       int     `json:"Lines"`
	BetPerLine  int64   `json:"BetPerLine"`
	TotalBet    int64   `json:"TotalBet"`
	TotalWin    int64   `json:"TotalWin"`
	LineWin     int64   `json:"LineWin"`
	ScatterWin  int64   `json:"ScatterWin"`
	RTP         float64 `json:"RTP"`
	RtpCI       CI      `json:"RtpCI"`
	Std         float64 `json:"Std"`
	Cv          float64 `json:"Cv"`
	HitRounds   int     `json:"HitRounds"`
	HitRate     float64 `json:"HitRate"`
	HitRateCI   CI      `json:"HitRateCI"`
	NoWinRounds int     `json:"NoWinRounds"`
	Capped      int     `json:"Capped"`
	MaxWin      int64   `json:"MaxWin"`
	Rounds      int     `json:"Rounds"`
}

// MultReport 贏倍統計
//
// 紀錄時不紀錄，避免轉型成本。紀錄完成後Done()會將結果整理填入
type MultReport struct {
	TotalWinMult      float64 `json:"TotalWinMult"`
	TotalWinMultSqSum float64 `json:"TotalWinMultSqSum"` // 平方和
	MaxWinMult        float64 `json:"MaxWinMult"`
}

// DistReport 分數區間落點統計
type DistReport struct {
	WinBucket       []string  `json:"WinBucket"`
	TotalWinCollect []int     `json:"TotalWinCollect"`
	TotalWinDist    []float64 `json:"TotalWinDist"`
}

// FeatureReport 特殊功能觸發統計。
// Count 為觸發次數(同一局多條線各算一次)，Rounds 為至少觸發一次的局數
type FeatureReport struct {
	Names  []string           `json:"Names"`
	Count  map[string]int     `json:"Count"`
	Rounds map[string]int     `json:"Rounds"`
	Rate   map[string]float64 `json:"Rate"`
	RateCI map[string]CI      `json:"RateCI"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有遊戲統計過程因為性能原因只處理整數的紀錄，所以統計完成後
// 請使用 Done 來通知統計已經完成，可以一次性計算統計結果
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	s.Summary.HitRate, s.Summary.HitRateCI = proportionCICP(s.Summary.HitRounds, s.Summary.Rounds, 0.95)

	if s.Dist != nil && s.Summary.Rounds > 0 {
		s.Dist.TotalWinDist = make([]float64, len(s.Dist.TotalWinCollect))
		for i, c := range s.Dist.TotalWinCollect {
			s.Dist.TotalWinDist[i] = float64(c) / float64(s.Summary.Rounds)
		}
	}
	if s.Features != nil {
		s.Features.Rate = make(map[string]float64, len(s.Features.Names))
		s.Features.RateCI = make(map[string]CI, len(s.Features.Names))
		for _, name := range s.Features.Names {
			p, ci := proportionCICP(s.Features.Rounds[name], s.Summary.Rounds, 0.95)
			s.Features.Rate[name] = p
			s.Features.RateCI[name] = ci
		}
	}
	s.isDone = true
}

// Rtp 回傳整體 RTP（總贏分 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return float64(s.Summary.TotalWin) / float64(s.Summary.TotalBet)
}

// Std 回傳單局贏倍的標準差（以單局押注為基礎）
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 || s.Summary.Bet == 0 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	winMultPow := s.Mult.TotalWinMult * s.Mult.TotalWinMult
	variance := (s.Mult.TotalWinMultSqSum - winMultPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏分的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	std := s.Std()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	return CI{
		Lo: max(rtp-1.96*rtpSe, 0.0),
		Hi: rtp + 1.96*rtpSe,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 將用時與摘要表格印到 stdout
func (s *StatReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	fmt.Println(fmtTable(s.Summary.GameName, sk, sm))
	if s.Features != nil && len(s.Features.Names) > 0 {
		fk, fm := s.fmtFeatures()
		fmt.Println(fmtTable("Features", fk, fm))
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", s.Summary.GameName),
		"Game ID":      s.Summary.GameID,
		"Bet":          p.Sprintf("%d (%d x %d)", s.Summary.Bet, s.Summary.Lines, s.Summary.BetPerLine),
		"Total Rounds": p.Sprintf("%d", s.Summary.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*s.Summary.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.RtpCI.Lo, 100.0*s.Summary.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%d", s.Summary.TotalBet),
		"Total Win":    p.Sprintf("%d", s.Summary.TotalWin),
		"Line Win":     p.Sprintf("%d", s.Summary.LineWin),
		"Scatter Win":  p.Sprintf("%d", s.Summary.ScatterWin),
		"Hit Rate":     p.Sprintf("%.2f %% [%.2f%%,%.2f%%]", 100.0*s.Summary.HitRate, 100.0*s.Summary.HitRateCI.Lo, 100.0*s.Summary.HitRateCI.Hi),
		"NoWin Rounds": p.Sprintf("%d", s.Summary.NoWinRounds),
		"Capped":       p.Sprintf("%d", s.Summary.Capped),
		"Max Win":      p.Sprintf("%d", s.Summary.MaxWin),
		"STD":          p.Sprintf("%.3f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Bet", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Win", "Line Win", "Scatter Win", "Hit Rate", "NoWin Rounds", "Capped", "Max Win", "STD", "CV"}
	return keys, basic
}

func (s *StatReport) fmtFeatures() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	out := make(map[string]string, len(s.Features.Names))
	for _, name := range s.Features.Names {
		ci := s.Features.RateCI[name]
		out[name] = p.Sprintf("%d / %d rounds (%.3f%% [%.3f%%,%.3f%%])",
			s.Features.Count[name], s.Features.Rounds[name],
			100.0*s.Features.Rate[name], 100.0*ci.Lo, 100.0*ci.Hi)
	}
	return s.Features.Names, out
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}
	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}
