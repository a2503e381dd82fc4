package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockaivo/internal/feature/prices/domain/entity"
)

func day(d int) time.Time {
	return time.Date(2025, time.February, d, 0, 0, 0, 0, time.UTC)
}

func TestSeries_Normalize(t *testing.T) {
	t.Parallel()

	s := entity.Series{
		{Key: day(3), Close: 1},
		{Key: day(1), Close: 2},
		{Key: day(3), Close: 9}, // 重複。後勝ちで残る。
		{Key: day(2), Close: 3},
	}

	got := s.Normalize()

	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, got.Keys())
	assert.Equal(t, 9.0, got[2].Close)
	assert.Len(t, s, 4, "receiver must stay untouched")
	assert.Empty(t, entity.Series(nil).Normalize())
}

func TestSeries_FilterRange(t *testing.T) {
	t.Parallel()

	s := entity.Series{{Key: day(1)}, {Key: day(2)}, {Key: day(3)}}

	assert.Len(t, s.FilterRange(day(2), day(3)), 2)
	assert.Len(t, s.FilterRange(time.Time{}, day(2)), 2, "zero start is unbounded")
	assert.Len(t, s.FilterRange(day(2), time.Time{}), 2, "zero end is unbounded")
	assert.Len(t, s.FilterRange(time.Time{}, time.Time{}), 3)
	assert.Empty(t, s.FilterRange(day(10), day(20)))
}

func TestDateKey(t *testing.T) {
	t.Parallel()

	got := entity.DateKey(time.Date(2025, time.February, 3, 18, 45, 12, 99, time.UTC))
	assert.Equal(t, day(3), got)
}
