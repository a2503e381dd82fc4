package usecase

import (
	"sort"
	"time"
)

// DateRange はあるティアに欠けているデータ点キーの閉区間 [Start, End] です。
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MissingRanges は必要キー集合と観測済みキー集合を比較し、欠けている
// 連続区間の最小集合を昇順で返します。
//
// 状態遷移法による線形走査: 欠落キーに出会ったら区間を開き、存在キーに
// 出会ったら直前のキーで閉じる。番兵で末尾の区間を閉じます。
// その後、各区間の End を safeDate に切り詰め、Start が safeDate を超える
// （全体が未来の）区間は捨てます。
//
// required はソート済みを仮定せず、防御的にソート・重複排除します。
func MissingRanges(required, observed []time.Time, safeDate time.Time) []DateRange {
	if len(required) == 0 {
		return nil
	}

	req := sortedUnique(required)
	have := make(map[int64]struct{}, len(observed))
	for _, d := range observed {
		have[d.UnixNano()] = struct{}{}
	}

	var (
		ranges  []DateRange
		gapOpen bool
		gapFrom time.Time
	)
	for i := 0; i <= len(req); i++ {
		missing := false
		if i < len(req) {
			_, ok := have[req[i].UnixNano()]
			missing = !ok
		}
		switch {
		case missing && !gapOpen:
			gapOpen = true
			gapFrom = req[i]
		case !missing && gapOpen:
			ranges = append(ranges, DateRange{Start: gapFrom, End: req[i-1]})
			gapOpen = false
		}
	}

	if safeDate.IsZero() {
		return ranges
	}
	out := ranges[:0]
	for _, r := range ranges {
		if r.Start.After(safeDate) {
			continue
		}
		if r.End.After(safeDate) {
			r.End = safeDate
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedUnique(keys []time.Time) []time.Time {
	out := make([]time.Time, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	n := 0
	for i, d := range out {
		if i > 0 && d.Equal(out[n-1]) {
			continue
		}
		out[n] = d
		n++
	}
	return out[:n]
}
