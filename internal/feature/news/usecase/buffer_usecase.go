package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"stockaivo/internal/feature/news/domain/entity"
)

// BufferUsecase は新規取得した記事を永続化されるまでの間バッファへ保持します。
// 追記は read-merge-write で行い、同一キーワードへの並行追記は
// キーワード単位のロックで直列化します。
type BufferUsecase struct {
	store PendingStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBufferUsecase(store PendingStore) *BufferUsecase {
	return &BufferUsecase{store: store, locks: make(map[string]*sync.Mutex)}
}

// Append は記事を既存のバッファ内容とマージして書き戻します。
func (b *BufferUsecase) Append(ctx context.Context, keyword string, articles []entity.Article) error {
	if len(articles) == 0 {
		return nil
	}
	lock := b.keywordLock(keyword)
	lock.Lock()
	defer lock.Unlock()

	existing, err := b.store.GetPending(ctx, keyword)
	if err != nil {
		slog.Warn("failed to read pending news buffer, keeping new articles only",
			"keyword", keyword, "error", err)
		existing = nil
	}

	merged := entity.Dedup(append(existing, articles...))
	if err := b.store.SetPending(ctx, keyword, merged); err != nil {
		return fmt.Errorf("append to news buffer %s: %w", keyword, err)
	}
	slog.Info("buffered news articles", "keyword", keyword, "new", len(articles), "total", len(merged))
	return nil
}

func (b *BufferUsecase) keywordLock(keyword string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.locks[keyword]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[keyword] = lock
	}
	return lock
}
