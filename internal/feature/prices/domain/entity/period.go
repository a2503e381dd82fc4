package entity

import (
	"fmt"
	"time"
)

// Period は時系列データの足種（バケットの粒度）を表す閉じた列挙型です。
type Period string

const (
	PeriodHourly Period = "hourly"
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// Valid は既知の足種かどうかを返します。
func (p Period) Valid() bool {
	switch p {
	case PeriodHourly, PeriodDaily, PeriodWeekly:
		return true
	}
	return false
}

// ParsePeriod は文字列を Period に変換します。未知の値はエラーになります。
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.Valid() {
		return "", fmt.Errorf("unsupported period %q", s)
	}
	return p, nil
}

// RangeOption は既定の取得期間を表す閉じた列挙型です。
// 動的な "past_30_days" のような文字列の代わりに使います。
type RangeOption string

const (
	RangePast30Days  RangeOption = "past_30_days"
	RangePast90Days  RangeOption = "past_90_days"
	RangePast180Days RangeOption = "past_180_days"
	RangePastYear    RangeOption = "past_year"
)

// Window は基準日 ref を終端とする [start, end] を返します。純粋関数です。
func (o RangeOption) Window(ref time.Time) (time.Time, time.Time) {
	end := DateKey(ref)
	switch o {
	case RangePast30Days:
		return end.AddDate(0, 0, -30), end
	case RangePast90Days:
		return end.AddDate(0, 0, -90), end
	case RangePast180Days:
		return end.AddDate(0, 0, -180), end
	case RangePastYear:
		return end.AddDate(-1, 0, 0), end
	}
	return end.AddDate(0, 0, -30), end
}

// DefaultRange は足種ごとの既定の取得期間を返します。
// 日付未指定のリクエストにはこの期間が適用されます。
func DefaultRange(p Period) RangeOption {
	switch p {
	case PeriodWeekly:
		return RangePast180Days
	default:
		return RangePast30Days
	}
}
