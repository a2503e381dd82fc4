// Package ratelimiter は外部API呼び出しなどの頻度制限を提供します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// SlidingWindow はスライディングウィンドウ方式のレートリミッタです。
// 直近 window 内の呼び出しが limit に達している場合、スロットが空くまで
// 待機します。即時失敗はしません。全呼び出し元で共有して使います。
type SlidingWindow struct {
	limit  int
	window time.Duration

	mu    sync.Mutex
	calls []time.Time
	now   func() time.Time
}

// NewSlidingWindow は window あたり limit 回まで許可するリミッタを生成します。
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if limit <= 0 {
		limit = 1
	}
	return &SlidingWindow{limit: limit, window: window, now: time.Now}
}

// Wait はスロットが空くまでブロックします。コンテキストの
// キャンセルで早期に抜けます。
func (l *SlidingWindow) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.prune(now)
		if len(l.calls) < l.limit {
			l.calls = append(l.calls, now)
			l.mu.Unlock()
			return nil
		}
		sleep := l.calls[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if sleep <= 0 {
			continue
		}
		slog.Info("rate limit reached, waiting for a slot", "limit", l.limit, "sleep", sleep)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune はウィンドウから外れた記録を取り除きます。呼び出し側がロックを保持します。
func (l *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	l.calls = l.calls[i:]
}
