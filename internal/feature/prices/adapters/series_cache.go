// Package adapters は prices フィーチャーの外部リソースアダプタを提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
)

// SeriesCache は Redis 上の Series 揮発キャッシュです。
// キーは {namespace}:{ticker}:{period}、値は JSON シリアライズした Series です。
// 通用キャッシュは短〜中TTL（粗い足種ほど長め）、永続化待ちバッファは
// フラッシュまでの耐久性バックストップとして24時間保持します。
type SeriesCache struct {
	rdb *redis.Client
}

var _ usecase.CacheStore = (*SeriesCache)(nil)

func NewSeriesCache(rdb *redis.Client) *SeriesCache {
	return &SeriesCache{rdb: rdb}
}

func (c *SeriesCache) Get(ctx context.Context, ns usecase.CacheNamespace, ticker string, period entity.Period) (entity.Series, error) {
	key := cacheKey(ns, ticker, period)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var out entity.Series
	if err := json.Unmarshal(b, &out); err != nil {
		// 壊れたエントリは落としてミス扱いにする。
		_ = c.rdb.Del(ctx, key).Err()
		return nil, nil
	}
	return out, nil
}

func (c *SeriesCache) Set(ctx context.Context, ns usecase.CacheNamespace, ticker string, period entity.Period, s entity.Series) error {
	if len(s) == 0 {
		return nil
	}
	key := cacheKey(ns, ticker, period)
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize series for %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, b, ttlFor(ns, period)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *SeriesCache) Delete(ctx context.Context, ns usecase.CacheNamespace, ticker string, period entity.Period) error {
	return c.rdb.Del(ctx, cacheKey(ns, ticker, period)).Err()
}

// Pending は pending_save 名前空間の全キーを SCAN で列挙します。
func (c *SeriesCache) Pending(ctx context.Context) ([]usecase.SeriesKey, error) {
	var (
		out    []usecase.SeriesKey
		cursor uint64
	)
	pattern := string(usecase.PendingSave) + ":*"
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		for _, key := range keys {
			parts := strings.Split(key, ":")
			if len(parts) != 3 {
				continue
			}
			period, err := entity.ParsePeriod(parts[2])
			if err != nil {
				continue
			}
			out = append(out, usecase.SeriesKey{Ticker: parts[1], Period: period})
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func cacheKey(ns usecase.CacheNamespace, ticker string, period entity.Period) string {
	return fmt.Sprintf("%s:%s:%s", ns, safe(ticker), period)
}

func ttlFor(ns usecase.CacheNamespace, period entity.Period) time.Duration {
	if ns == usecase.PendingSave {
		return 24 * time.Hour
	}
	switch period {
	case entity.PeriodHourly:
		return 30 * time.Minute
	case entity.PeriodWeekly:
		return 3 * time.Hour
	default:
		return time.Hour
	}
}

func safe(s string) string {
	// Redis キーに使いづらい記号の簡易エスケープ
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
