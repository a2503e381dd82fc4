// Package usecase は株価時系列の多層キャッシュ解決ロジックを実装します。
package usecase

import (
	"context"
	"time"

	"stockaivo/internal/feature/prices/domain/entity"
)

// MarketCalendar は取引カレンダーと市場時刻の読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketCalendar interface {
	// SessionDates は [start, end] の取引日（日付キー）を昇順で返します。
	// バックエンド障害時は実装側でヒューリスティックに縮退し、エラーは返しません。
	SessionDates(ctx context.Context, start, end time.Time) []time.Time
	// SafePeriodEnd は現時点で確定済みとみなせる最新のデータ点キーを返します。
	// weekly が真の場合は進行中の週を確定扱いしないよう、直近で週が閉じた
	// 「週の最終取引日」まで戻します。
	SafePeriodEnd(ctx context.Context, weekly bool) time.Time
}

// RequiredDates は (period, start, end) のウィンドウが完全であるために
// 存在すべきデータ点キーの集合を昇順で返します。
//
//   - hourly / daily: 範囲内の全取引日
//   - weekly: 各 ISO 週の最終取引日のうち、それ自体が範囲内にあるもの
//
// start > end、または取引日がひとつもない場合は空を返します。
// 空の必要集合は「取得すべきものがない」ことを意味し、エラーではありません。
func RequiredDates(ctx context.Context, cal MarketCalendar, period entity.Period, start, end time.Time) []time.Time {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil
	}
	start = entity.DateKey(start)
	end = entity.DateKey(end)

	if period != entity.PeriodWeekly {
		return cal.SessionDates(ctx, start, end)
	}

	// 週の最終取引日を正しく判定するため、end を含む ISO 週の末尾まで
	// 余分にセッションを引いてから範囲内に絞る。
	extended := end.AddDate(0, 0, 7-isoWeekday(end))
	dates := cal.SessionDates(ctx, start, extended)

	var out []time.Time
	for i, d := range dates {
		last := i+1 == len(dates)
		if !last {
			y1, w1 := d.ISOWeek()
			y2, w2 := dates[i+1].ISOWeek()
			if y1 == y2 && w1 == w2 {
				continue // 同じ週にまだ取引日がある
			}
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// isoWeekday は月曜=1 .. 日曜=7 を返します。
func isoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
