// Package scheduler はライトビハインドバッファの定期フラッシュを司ります。
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	newsusecase "stockaivo/internal/feature/news/usecase"
	pricesusecase "stockaivo/internal/feature/prices/usecase"
)

const (
	defaultSpec  = "@every 5m"
	cycleTimeout = 2 * time.Minute
)

// PriceFlusher は価格バッファのフラッシュ操作です。
type PriceFlusher interface {
	FlushPending(ctx context.Context) pricesusecase.FlushResult
}

// NewsFlusher はニュースバッファのフラッシュ操作です。
type NewsFlusher interface {
	FlushPending(ctx context.Context) newsusecase.FlushResult
}

// Flusher は両バッファを同一周期でフラッシュするバックグラウンドジョブです。
// cron.Cron はジョブを逐次実行するため、前サイクルが残っていても重複起動しません。
type Flusher struct {
	cron   *cron.Cron
	prices PriceFlusher
	news   NewsFlusher
}

func NewFlusher(prices PriceFlusher, news NewsFlusher) *Flusher {
	return &Flusher{
		cron:   cron.New(),
		prices: prices,
		news:   news,
	}
}

// Start はフラッシュジョブを登録して周期実行を開始します。
// 周期は FLUSH_INTERVAL（cron spec、例 "@every 1m"）で上書きできます。
func (f *Flusher) Start() error {
	spec := os.Getenv("FLUSH_INTERVAL")
	if spec == "" {
		spec = defaultSpec
	}
	if _, err := f.cron.AddFunc(spec, f.runCycle); err != nil {
		return err
	}
	f.cron.Start()
	slog.Info("background flusher started", "spec", spec)
	return nil
}

// Stop は周期実行を止め、実行中のサイクルの完了を待ちます。
// 停止前に最後のフラッシュを1回実行し、バッファ内容を可能な限り永続化します。
func (f *Flusher) Stop() {
	<-f.cron.Stop().Done()
	f.runCycle()
	slog.Info("background flusher stopped")
}

func (f *Flusher) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	started := time.Now()
	prices := f.prices.FlushPending(ctx)
	news := f.news.FlushPending(ctx)

	if prices.Keys == 0 && news.Keywords == 0 {
		return
	}
	slog.Info("flush cycle finished",
		"price_keys", prices.Keys, "price_rows", prices.Persisted, "price_failed", prices.Failed,
		"news_keywords", news.Keywords, "news_rows", news.Persisted, "news_failed", news.Failed,
		"took", time.Since(started).Round(time.Millisecond))
}
