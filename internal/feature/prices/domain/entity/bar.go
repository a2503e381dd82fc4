// Package entity は株価時系列データのドメインモデルを定義します。
package entity

import (
	"sort"
	"time"
)

// Bar は1つの価格データ点（ローソク足1本）を表します。
// Key は daily/weekly では取引日（UTC 0時）、hourly ではタイムスタンプです。
type Bar struct {
	Ticker string
	Period Period
	Key    time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64

	Turnover      int64   // 成交額
	Amplitude     float64 // 振幅(%)
	ChangePercent float64 // 涨跌幅(%)
	Change        float64 // 涨跌額
	TurnoverRate  float64 // 換手率(%)
}

// Series は同一 (ticker, period) の価格データ点の列です。
// 正規化後は Key 昇順・重複なしであることを不変条件とします。
type Series []Bar

// Keys は全データ点の Key を出現順に返します。
func (s Series) Keys() []time.Time {
	keys := make([]time.Time, 0, len(s))
	for _, b := range s {
		keys = append(keys, b.Key)
	}
	return keys
}

// FilterRange は [start, end] に含まれるデータ点だけを返します。
// start / end がゼロ値の場合、その側は制限しません。
func (s Series) FilterRange(start, end time.Time) Series {
	out := make(Series, 0, len(s))
	for _, b := range s {
		if !start.IsZero() && b.Key.Before(start) {
			continue
		}
		if !end.IsZero() && b.Key.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Normalize は Key で昇順ソートし、同一 Key の重複を後勝ちで取り除いた
// 新しい Series を返します。レシーバは変更しません。
func (s Series) Normalize() Series {
	if len(s) == 0 {
		return Series{}
	}
	byKey := make(map[int64]Bar, len(s))
	for _, b := range s {
		byKey[b.Key.UnixNano()] = b
	}
	out := make(Series, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Before(out[j].Key) })
	return out
}

// DateKey は時刻情報を落とした日付キー（UTC 0時）を返します。
// 日付系データ点の Key はシステム境界でこれに正規化します。
func DateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
