package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockaivo/internal/feature/prices/adapters/eastmoney"
	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
	"stockaivo/internal/shared/ratelimiter"
	"stockaivo/internal/shared/retry"
)

// RetryingProvider は取得失敗を指数バックオフでリトライするデコレータです。
// リトライし尽くしてなお空応答だった場合はエラーではなく空の系列を返します
// （休場期間などデータが本当に存在しない範囲があるため）。
type RetryingProvider struct {
	next usecase.MarketDataProvider
}

var _ usecase.MarketDataProvider = (*RetryingProvider)(nil)

func NewRetryingProvider(next usecase.MarketDataProvider) *RetryingProvider {
	return &RetryingProvider{next: next}
}

func (p *RetryingProvider) FetchSeries(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error) {
	name := fmt.Sprintf("fetch %s/%s", ticker, period)
	out, err := retry.Do(ctx, name, func() (entity.Series, error) {
		return p.next.FetchSeries(ctx, ticker, period, start, end)
	})
	if errors.Is(err, eastmoney.ErrEmptyResponse) {
		return entity.Series{}, nil
	}
	return out, err
}

// RateLimitedProvider は外部API呼び出しの前にレートリミッタのスロット取得を
// 待つデコレータです。リトライの外側に置き、再試行も1回の呼び出しとして
// 制限対象に数えるため、合成は RateLimited(Retrying(client)) ではなく
// Retrying(RateLimited(client)) とします。
type RateLimitedProvider struct {
	limiter ratelimiter.RateLimiterInterface
	next    usecase.MarketDataProvider
}

var _ usecase.MarketDataProvider = (*RateLimitedProvider)(nil)

func NewRateLimitedProvider(limiter ratelimiter.RateLimiterInterface, next usecase.MarketDataProvider) *RateLimitedProvider {
	return &RateLimitedProvider{limiter: limiter, next: next}
}

func (p *RateLimitedProvider) FetchSeries(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for provider rate limit: %w", err)
	}
	return p.next.FetchSeries(ctx, ticker, period, start, end)
}
