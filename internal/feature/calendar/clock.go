package calendar

import (
	"context"
	"log/slog"
	"time"
)

// DefaultGracePeriod は市場クローズ後、その日のデータを確定扱いする
// までの猶予時間です。終値の配信遅延を吸収します。
const DefaultGracePeriod = time.Hour

// Clock は壁時計と取引カレンダーから「安全基準日」を導出します。
// 安全基準日とは、その時点で確定済みとみなせる最新のデータ点キーです。
// 進行中のセッションやクローズ直後の猶予時間中の日付は返しません。
type Clock struct {
	cal   *Service
	grace time.Duration
	now   func() time.Time
}

func NewClock(cal *Service) *Clock {
	return &Clock{cal: cal, grace: DefaultGracePeriod, now: time.Now}
}

// SafeDate は1回の解決呼び出しで使い回す安全基準日（日付キー）を返します。
//
//   - 本日セッションあり・開場前または場中: 前営業日
//   - 本日セッションあり・クローズ後だが猶予時間内: 前営業日
//   - 本日セッションあり・猶予時間経過後: 本日
//   - 本日セッションなし: 直近の営業日
//   - カレンダー取得不能: 保守的に昨日
func (c *Clock) SafeDate(ctx context.Context) time.Time {
	now := c.now()
	today := dateOf(now)

	sessions := c.cal.Sessions(ctx, today.AddDate(0, 0, -14), today)
	if len(sessions) == 0 {
		slog.Warn("no sessions available for safe-date computation, falling back to yesterday")
		return today.AddDate(0, 0, -1)
	}

	last := sessions[len(sessions)-1]
	if !last.Date.Equal(today) {
		// 本日は非営業日。直近営業日は（猶予時間の有無に関わらず）確定済み。
		return last.Date
	}

	if now.Before(last.Close.Add(c.grace)) {
		// 開場前・場中・クローズ後の猶予時間内は本日分を未確定とみなす。
		if len(sessions) < 2 {
			return today.AddDate(0, 0, -1)
		}
		return sessions[len(sessions)-2].Date
	}
	return last.Date
}

// SessionDates は基礎カレンダーへの委譲です。呼び出し側が安全基準日と
// 取引日の両方を1つの依存として扱えるようにします。
func (c *Clock) SessionDates(ctx context.Context, start, end time.Time) []time.Time {
	return c.cal.SessionDates(ctx, start, end)
}

// SafePeriodEnd は足種に応じた安全な期間終端を返します。
// weekly では進行中の週を確定扱いしないよう、安全基準日以前で
// 直近の「週の最終取引日」を返します。それ以外は SafeDate と同じです。
func (c *Clock) SafePeriodEnd(ctx context.Context, weekly bool) time.Time {
	safe := c.SafeDate(ctx)
	if !weekly {
		return safe
	}
	// 安全基準日を含む ISO 週の末尾までセッションを引く。安全基準日の後に
	// 同じ週の取引日が残っていなければ、その週は安全基準日で閉じている。
	extended := safe.AddDate(0, 0, 7-isoWeekday(safe))
	dates := c.cal.SessionDates(ctx, safe.AddDate(0, 0, -21), extended)
	for i := len(dates) - 1; i >= 0; i-- {
		if dates[i].After(safe) {
			continue
		}
		if isWeekLastSession(dates, i) {
			return dates[i]
		}
	}
	return safe
}

// isWeekLastSession は dates[i] がその ISO 週の最終取引日かどうかを返します。
// 後続の取引日が翌週以降に属する場合に真です。
func isWeekLastSession(dates []time.Time, i int) bool {
	if i+1 >= len(dates) {
		return true
	}
	y1, w1 := dates[i].ISOWeek()
	y2, w2 := dates[i+1].ISOWeek()
	return y1 != y2 || w1 != w2
}

// isoWeekday は月曜=1 .. 日曜=7 を返します。
func isoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
