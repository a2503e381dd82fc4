package calendar

import (
	"context"
	"time"
)

// NYSE はニューヨーク証券取引所のセッション予定を祝日規則から計算する
// SessionSource 実装です。外部サービスへの依存はありません。
// 短縮取引日（感謝祭翌日など）は通常時間として扱います。
type NYSE struct {
	loc *time.Location
}

func NewNYSE() (*NYSE, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, err
	}
	return &NYSE{loc: loc}, nil
}

// Sessions は [start, end] の取引セッションを昇順で返します。
func (n *NYSE) Sessions(_ context.Context, start, end time.Time) ([]Session, error) {
	var out []Session
	holidays := map[time.Time]struct{}{}
	for y := start.Year(); y <= end.Year(); y++ {
		for _, h := range marketHolidays(y) {
			holidays[h] = struct{}{}
		}
	}
	for d := dateOf(start); !d.After(dateOf(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := holidays[d]; ok {
			continue
		}
		open := time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, n.loc)
		close := time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, n.loc)
		out = append(out, Session{Date: d, Open: open, Close: close})
	}
	return out, nil
}

// marketHolidays は year の NYSE 休場日（振替後）を返します。
func marketHolidays(year int) []time.Time {
	days := []time.Time{
		observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),                // 元日
		nthWeekday(year, time.January, time.Monday, 3),                                  // キング牧師記念日
		nthWeekday(year, time.February, time.Monday, 3),                                 // 大統領の日
		goodFriday(year),                                                                // 聖金曜日
		lastWeekday(year, time.May, time.Monday),                                        // 戦没者追悼記念日
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),                   // 独立記念日
		nthWeekday(year, time.September, time.Monday, 1),                                // 労働者の日
		nthWeekday(year, time.November, time.Thursday, 4),                               // 感謝祭
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),              // クリスマス
	}
	if year >= 2022 {
		days = append(days, observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC))) // ジューンティーンス
	}
	return days
}

// observed は土曜を前日の金曜、日曜を翌日の月曜に振り替えます。
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday は month の第 n wd 曜日を返します。
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday は month の最終 wd 曜日を返します。
func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(wd) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// goodFriday は復活祭（グレゴリオ暦の匿名アルゴリズム）の2日前を返します。
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.AddDate(0, 0, -2)
}
