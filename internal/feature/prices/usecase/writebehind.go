package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"stockaivo/internal/feature/prices/domain/entity"
)

// WriteBehindBuffer はプロバイダから新規取得した断片を、永続化されるまで
// の間 PendingSave 名前空間に保持します。追記は read-merge-write で行うため、
// 同一キーへの並行追記はキー単位のロックで直列化します。異なるキー同士は
// ブロックしません。
type WriteBehindBuffer struct {
	cache CacheStore

	mu    sync.Mutex
	locks map[SeriesKey]*sync.Mutex
}

func NewWriteBehindBuffer(cache CacheStore) *WriteBehindBuffer {
	return &WriteBehindBuffer{
		cache: cache,
		locks: make(map[SeriesKey]*sync.Mutex),
	}
}

// Append は断片を既存のバッファ内容とマージして書き戻し、TTLを更新します。
// 既にバッファ済みで未フラッシュのデータ点は失われません。
func (b *WriteBehindBuffer) Append(ctx context.Context, ticker string, period entity.Period, fragment entity.Series) error {
	if len(fragment) == 0 {
		return nil
	}
	key := SeriesKey{Ticker: ticker, Period: period}
	lock := b.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	existing, err := b.cache.Get(ctx, PendingSave, ticker, period)
	if err != nil {
		// 読めない場合でも新規断片の保全を優先する。
		slog.Warn("failed to read pending buffer, keeping new fragment only",
			"ticker", ticker, "period", period, "error", err)
		existing = nil
	}

	merged := Merge(existing, fragment)
	if err := b.cache.Set(ctx, PendingSave, ticker, period, merged); err != nil {
		return fmt.Errorf("append to write-behind buffer %s/%s: %w", ticker, period, err)
	}
	slog.Info("buffered rows for persistence",
		"ticker", ticker, "period", period, "new", len(fragment), "total", len(merged))
	return nil
}

func (b *WriteBehindBuffer) keyLock(key SeriesKey) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		b.locks[key] = lock
	}
	return lock
}
