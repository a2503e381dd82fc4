package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
)

func bar(d time.Time, close float64) entity.Bar {
	return entity.Bar{Ticker: "AAPL", Period: entity.PeriodDaily, Key: d, Close: close}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	d1 := date(2025, time.March, 3)
	d2 := date(2025, time.March, 4)
	d3 := date(2025, time.March, 5)

	t.Run("later fragments win on duplicate keys", func(t *testing.T) {
		t.Parallel()
		got := usecase.Merge(
			entity.Series{bar(d1, 100), bar(d2, 200)},
			entity.Series{bar(d2, 250), bar(d3, 300)},
		)
		want := entity.Series{bar(d1, 100), bar(d2, 250), bar(d3, 300)}
		assert.Equal(t, want, got)
	})

	t.Run("output is sorted regardless of input order", func(t *testing.T) {
		t.Parallel()
		got := usecase.Merge(entity.Series{bar(d3, 3), bar(d1, 1), bar(d2, 2)})
		assert.Equal(t, []time.Time{d1, d2, d3}, got.Keys())
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		once := usecase.Merge(entity.Series{bar(d2, 2), bar(d1, 1)})
		twice := usecase.Merge(once)
		assert.Equal(t, once, twice)
	})

	t.Run("empty and nil fragments are fine", func(t *testing.T) {
		t.Parallel()
		got := usecase.Merge(nil, entity.Series{}, entity.Series{bar(d1, 1)})
		assert.Equal(t, entity.Series{bar(d1, 1)}, got)
		assert.Empty(t, usecase.Merge())
	})
}
