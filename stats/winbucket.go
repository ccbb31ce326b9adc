package stats

import "sync"

const (
	maxLutMult int64 = 2000
	maxMult    int64 = 10000
)

// WinBuckets
//
// 用來快速定位得分 ->  分桶位置 O(1)
//
// 請勿修改預設值
//   - win區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
type WinBuckets struct {
	mu           sync.Mutex
	winBucket    []int64
	winBucketStr []string
	winBucketMap map[int64]*WinBucket
}

type WinBucket struct {
	maxCheckWin      int64
	lutMaxWin        int64
	winBucketByScore []int64
	winBucketLUT     []int
	justOverIdx      int
	maxIdx           int
}

// Buckets 全域共用的分桶表，依單局押注快取
var Buckets *WinBuckets = &WinBuckets{
	winBucket:    []int64{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	winBucketStr: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
	winBucketMap: make(map[int64]*WinBucket),
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.winBucketStr
}

// GetBucketByBet 取得以 bet 為 1 倍的分桶；bet 必須 > 0
func (b *WinBuckets) GetBucketByBet(bet int64) *WinBucket {
	b.mu.Lock()
	defer b.mu.Unlock()
	result, exist := b.winBucketMap[bet]
	if !exist {
		result = b.buildBucket(bet)
		b.winBucketMap[bet] = result
	}
	return result
}

func (b *WinBuckets) buildBucket(bet int64) *WinBucket {
	// LUT 只建到 2000 倍，再往上用比較
	maxLut := bet * maxLutMult

	winGp := make([]int64, len(b.winBucket))
	for i, v := range b.winBucket {
		winGp[i] = bet * v
	}

	lut := make([]int, maxLut) // lut[win] = idx
	idx := 1
	last := len(winGp) - 1
	for i := int64(1); i < maxLut; i++ {
		for idx < last && i >= winGp[idx] {
			idx++
		}
		lut[i] = idx
	}

	return &WinBucket{
		maxCheckWin:      bet * maxMult,
		lutMaxWin:        maxLut,
		winBucketByScore: winGp,
		winBucketLUT:     lut,
		justOverIdx:      len(winGp) - 1,
		maxIdx:           len(winGp),
	}
}

func (wb *WinBucket) Index(win int64) int {
	if win <= 0 {
		return 0
	}
	if win >= wb.lutMaxWin {
		if win >= wb.maxCheckWin {
			return wb.maxIdx
		}
		return wb.justOverIdx
	}
	return wb.winBucketLUT[win]
}
