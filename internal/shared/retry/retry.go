// Package retry は指数バックオフ付きリトライの共通ラッパーを提供します。
// 呼び出し箇所ごとにアドホックなリトライを書かず、これを一律に使います。
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxAttempts     = 3
	defaultInitialInterval = time.Second
	defaultMaxInterval     = 10 * time.Second
)

// Do は op を最大3回、1〜10秒の指数バックオフで実行します。
// コンテキストのキャンセルで中断します。
func Do[T any](ctx context.Context, name string, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultInitialInterval
	b.MaxInterval = defaultMaxInterval

	var attempt int
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		return op()
	}, backoff.WithContext(backoff.WithMaxRetries(b, defaultMaxAttempts-1), ctx),
		func(err error, next time.Duration) {
			slog.Warn("retrying after error", "op", name, "attempt", attempt, "next_in", next, "error", err)
		})
}
