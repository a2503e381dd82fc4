package usecase

import (
	"context"
	"log/slog"
)

// FlushResult は1回のフラッシュサイクルの集計です。
type FlushResult struct {
	Keys      int // 処理対象となったキー数
	Persisted int // 永続化された行数
	Failed    int // 失敗したキー数
}

// FlushUsecase はライトビハインドバッファを永続ストアへ排出します。
// キーごとに1トランザクションの冪等Upsertを行い、成功したエントリだけを
// バッファから削除します。1つのキーの失敗は記録して次のキーへ進み、
// サイクル全体を止めません。
type FlushUsecase struct {
	cache  CacheStore
	prices PriceRepository
}

func NewFlushUsecase(cache CacheStore, prices PriceRepository) *FlushUsecase {
	return &FlushUsecase{cache: cache, prices: prices}
}

// FlushPending は永続化待ちの全キーを処理します。
func (f *FlushUsecase) FlushPending(ctx context.Context) FlushResult {
	var result FlushResult

	keys, err := f.cache.Pending(ctx)
	if err != nil {
		slog.Error("failed to list pending buffer keys", "error", err)
		return result
	}
	if len(keys) == 0 {
		return result
	}
	result.Keys = len(keys)
	slog.Info("flushing write-behind buffer", "keys", len(keys))

	for _, key := range keys {
		series, err := f.cache.Get(ctx, PendingSave, key.Ticker, key.Period)
		if err != nil {
			slog.Error("failed to load pending series", "ticker", key.Ticker, "period", key.Period, "error", err)
			result.Failed++
			continue
		}
		if len(series) == 0 {
			// フラッシュ前に期限切れになったエントリ。
			continue
		}

		if err := f.prices.UpsertBatch(ctx, series); err != nil {
			slog.Error("durable upsert failed, keeping buffer entry",
				"ticker", key.Ticker, "period", key.Period, "rows", len(series), "error", err)
			result.Failed++
			continue
		}

		if err := f.cache.Delete(ctx, PendingSave, key.Ticker, key.Period); err != nil {
			// 削除失敗は次サイクルで再Upsertされるだけで、Upsertは冪等なので安全。
			slog.Warn("failed to clear flushed buffer entry", "ticker", key.Ticker, "period", key.Period, "error", err)
		}
		result.Persisted += len(series)
		slog.Info("persisted buffered series", "ticker", key.Ticker, "period", key.Period, "rows", len(series))
	}
	return result
}
