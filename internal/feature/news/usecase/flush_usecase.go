package usecase

import (
	"context"
	"log/slog"
)

// FlushResult は1回のフラッシュサイクルの集計です。
type FlushResult struct {
	Keywords  int
	Persisted int
	Failed    int
}

// FlushUsecase はニュースバッファを永続ストアへ排出します。
// キーワードごとに独立して処理し、1つの失敗でサイクル全体を止めません。
type FlushUsecase struct {
	store PendingStore
	news  NewsRepository
}

func NewFlushUsecase(store PendingStore, news NewsRepository) *FlushUsecase {
	return &FlushUsecase{store: store, news: news}
}

// FlushPending は永続化待ちの全キーワードを処理します。
func (f *FlushUsecase) FlushPending(ctx context.Context) FlushResult {
	var result FlushResult

	keywords, err := f.store.PendingKeywords(ctx)
	if err != nil {
		slog.Error("failed to list pending news keywords", "error", err)
		return result
	}
	if len(keywords) == 0 {
		return result
	}
	result.Keywords = len(keywords)
	slog.Info("flushing news buffer", "keywords", len(keywords))

	for _, keyword := range keywords {
		articles, err := f.store.GetPending(ctx, keyword)
		if err != nil {
			slog.Error("failed to load pending news", "keyword", keyword, "error", err)
			result.Failed++
			continue
		}
		if len(articles) == 0 {
			continue
		}

		if err := f.news.UpsertBatch(ctx, articles); err != nil {
			slog.Error("news upsert failed, keeping buffer entry",
				"keyword", keyword, "rows", len(articles), "error", err)
			result.Failed++
			continue
		}

		if err := f.store.DeletePending(ctx, keyword); err != nil {
			slog.Warn("failed to clear flushed news entry", "keyword", keyword, "error", err)
		}
		result.Persisted += len(articles)
		slog.Info("persisted buffered news", "keyword", keyword, "rows", len(articles))
	}
	return result
}
