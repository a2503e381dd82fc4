package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	newsusecase "stockaivo/internal/feature/news/usecase"
	pricesusecase "stockaivo/internal/feature/prices/usecase"
)

type fakePriceFlusher struct{ calls int }

func (f *fakePriceFlusher) FlushPending(context.Context) pricesusecase.FlushResult {
	f.calls++
	return pricesusecase.FlushResult{Keys: 1, Persisted: 5}
}

type fakeNewsFlusher struct{ calls int }

func (f *fakeNewsFlusher) FlushPending(context.Context) newsusecase.FlushResult {
	f.calls++
	return newsusecase.FlushResult{Keywords: 1, Persisted: 2}
}

// Stop が停止前に最終フラッシュを1回実行することを確認します。
func TestFlusher_StopRunsFinalCycle(t *testing.T) {
	prices := &fakePriceFlusher{}
	news := &fakeNewsFlusher{}

	t.Setenv("FLUSH_INTERVAL", "@every 1h") // テスト中に周期実行が走らない間隔

	f := NewFlusher(prices, news)
	require.NoError(t, f.Start())
	f.Stop()

	assert.Equal(t, 1, prices.calls)
	assert.Equal(t, 1, news.calls)
}

func TestFlusher_RejectsInvalidSpec(t *testing.T) {
	t.Setenv("FLUSH_INTERVAL", "not a cron spec")

	f := NewFlusher(&fakePriceFlusher{}, &fakeNewsFlusher{})
	assert.Error(t, f.Start())
}
