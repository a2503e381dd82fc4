package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
)

// mockCalendar はMarketCalendarインターフェースのモック実装です。
type mockCalendar struct {
	SessionDatesFunc  func(start, end time.Time) []time.Time
	SafePeriodEndFunc func(weekly bool) time.Time
}

func (m *mockCalendar) SessionDates(_ context.Context, start, end time.Time) []time.Time {
	if m.SessionDatesFunc != nil {
		return m.SessionDatesFunc(start, end)
	}
	return weekdaysBetween(start, end)
}

func (m *mockCalendar) SafePeriodEnd(_ context.Context, weekly bool) time.Time {
	if m.SafePeriodEndFunc != nil {
		return m.SafePeriodEndFunc(weekly)
	}
	return time.Time{}
}

// weekdaysBetween は [start, end] の平日を昇順で返すテスト用ヘルパーです。
func weekdaysBetween(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

func TestRequiredDates_Daily(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cal := &mockCalendar{}

	// 2025-06-02(月) 〜 2025-06-06(金)
	got := usecase.RequiredDates(ctx, cal, entity.PeriodDaily,
		date(2025, time.June, 2), date(2025, time.June, 8))

	want := []time.Time{
		date(2025, time.June, 2),
		date(2025, time.June, 3),
		date(2025, time.June, 4),
		date(2025, time.June, 5),
		date(2025, time.June, 6),
	}
	assert.Equal(t, want, got)
}

func TestRequiredDates_Weekly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cal := &mockCalendar{}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []time.Time
	}{
		{
			// 終端が水曜: 進行中の週の金曜は範囲外なので、前週の金曜だけが必要。
			name:  "in-progress week is excluded",
			start: date(2025, time.June, 2),
			end:   date(2025, time.June, 11),
			want:  []time.Time{date(2025, time.June, 6)},
		},
		{
			// 終端が金曜: その週の最終取引日が範囲内に収まるので含まれる。
			name:  "week ending on range end is included",
			start: date(2025, time.June, 2),
			end:   date(2025, time.June, 13),
			want:  []time.Time{date(2025, time.June, 6), date(2025, time.June, 13)},
		},
		{
			// 週の途中から始まっても、その週の最終取引日は必要集合に入る。
			name:  "partial first week still contributes its last session",
			start: date(2025, time.June, 4),
			end:   date(2025, time.June, 13),
			want:  []time.Time{date(2025, time.June, 6), date(2025, time.June, 13)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := usecase.RequiredDates(ctx, cal, entity.PeriodWeekly, tt.start, tt.end)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiredDates_DegenerateWindows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cal := &mockCalendar{}

	assert.Nil(t, usecase.RequiredDates(ctx, cal, entity.PeriodDaily,
		date(2025, time.June, 10), date(2025, time.June, 2)), "start after end")
	assert.Nil(t, usecase.RequiredDates(ctx, cal, entity.PeriodDaily,
		time.Time{}, date(2025, time.June, 2)), "zero start")
	assert.Empty(t, usecase.RequiredDates(ctx, cal, entity.PeriodDaily,
		date(2025, time.June, 7), date(2025, time.June, 8)), "weekend only window")
}
