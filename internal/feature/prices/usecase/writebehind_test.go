package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
)

// mockCacheStore はCacheStoreインターフェースのモック実装です。
// 名前空間ごとの書き込み内容を記録します。
type mockCacheStore struct {
	mu sync.Mutex

	GetFunc     func(ns usecase.CacheNamespace, ticker string, period entity.Period) (entity.Series, error)
	SetFunc     func(ns usecase.CacheNamespace, ticker string, period entity.Period, s entity.Series) error
	DeleteFunc  func(ns usecase.CacheNamespace, ticker string, period entity.Period) error
	PendingFunc func() ([]usecase.SeriesKey, error)

	SetCalls    map[usecase.CacheNamespace]int
	LastSet     map[usecase.CacheNamespace]entity.Series
	DeleteCalls int
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{
		SetCalls: make(map[usecase.CacheNamespace]int),
		LastSet:  make(map[usecase.CacheNamespace]entity.Series),
	}
}

func (m *mockCacheStore) Get(_ context.Context, ns usecase.CacheNamespace, ticker string, period entity.Period) (entity.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ns, ticker, period)
	}
	return nil, nil
}

func (m *mockCacheStore) Set(_ context.Context, ns usecase.CacheNamespace, ticker string, period entity.Period, s entity.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls[ns]++
	m.LastSet[ns] = s
	if m.SetFunc != nil {
		return m.SetFunc(ns, ticker, period, s)
	}
	return nil
}

func (m *mockCacheStore) Delete(_ context.Context, ns usecase.CacheNamespace, ticker string, period entity.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ns, ticker, period)
	}
	return nil
}

func (m *mockCacheStore) Pending(_ context.Context) ([]usecase.SeriesKey, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc()
	}
	return nil, nil
}

func TestWriteBehindBuffer_Append(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d1 := date(2025, time.April, 1)
	d2 := date(2025, time.April, 2)

	t.Run("merges with existing buffered rows", func(t *testing.T) {
		t.Parallel()
		cache := newMockCacheStore()
		cache.GetFunc = func(ns usecase.CacheNamespace, _ string, _ entity.Period) (entity.Series, error) {
			require.Equal(t, usecase.PendingSave, ns)
			return entity.Series{bar(d1, 100)}, nil
		}
		buf := usecase.NewWriteBehindBuffer(cache)

		err := buf.Append(ctx, "AAPL", entity.PeriodDaily, entity.Series{bar(d2, 200)})
		require.NoError(t, err)

		assert.Equal(t, 1, cache.SetCalls[usecase.PendingSave])
		assert.Equal(t, entity.Series{bar(d1, 100), bar(d2, 200)}, cache.LastSet[usecase.PendingSave])
	})

	t.Run("read failure keeps the new fragment", func(t *testing.T) {
		t.Parallel()
		cache := newMockCacheStore()
		cache.GetFunc = func(usecase.CacheNamespace, string, entity.Period) (entity.Series, error) {
			return nil, errors.New("redis down")
		}
		buf := usecase.NewWriteBehindBuffer(cache)

		err := buf.Append(ctx, "AAPL", entity.PeriodDaily, entity.Series{bar(d2, 200)})
		require.NoError(t, err)
		assert.Equal(t, entity.Series{bar(d2, 200)}, cache.LastSet[usecase.PendingSave])
	})

	t.Run("write failure is returned", func(t *testing.T) {
		t.Parallel()
		cache := newMockCacheStore()
		cache.SetFunc = func(usecase.CacheNamespace, string, entity.Period, entity.Series) error {
			return errors.New("redis down")
		}
		buf := usecase.NewWriteBehindBuffer(cache)

		err := buf.Append(ctx, "AAPL", entity.PeriodDaily, entity.Series{bar(d1, 100)})
		assert.Error(t, err)
	})

	t.Run("empty fragment is a no-op", func(t *testing.T) {
		t.Parallel()
		cache := newMockCacheStore()
		buf := usecase.NewWriteBehindBuffer(cache)

		require.NoError(t, buf.Append(ctx, "AAPL", entity.PeriodDaily, nil))
		assert.Zero(t, cache.SetCalls[usecase.PendingSave])
	})

	t.Run("concurrent appends to the same key do not lose rows", func(t *testing.T) {
		t.Parallel()
		var (
			storeMu sync.Mutex
			stored  entity.Series
		)
		cache := newMockCacheStore()
		cache.GetFunc = func(usecase.CacheNamespace, string, entity.Period) (entity.Series, error) {
			storeMu.Lock()
			defer storeMu.Unlock()
			return stored, nil
		}
		cache.SetFunc = func(_ usecase.CacheNamespace, _ string, _ entity.Period, s entity.Series) error {
			storeMu.Lock()
			defer storeMu.Unlock()
			stored = s
			return nil
		}
		buf := usecase.NewWriteBehindBuffer(cache)

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d := date(2025, time.April, 1).AddDate(0, 0, i)
				_ = buf.Append(ctx, "AAPL", entity.PeriodDaily, entity.Series{bar(d, float64(i))})
			}()
		}
		wg.Wait()

		storeMu.Lock()
		defer storeMu.Unlock()
		assert.Len(t, stored, 10, "all concurrently appended rows must survive")
	})
}
