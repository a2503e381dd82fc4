// Package adapters は news フィーチャーの外部リソースアダプタを提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stockaivo/internal/feature/news/domain/entity"
	"stockaivo/internal/feature/news/usecase"
)

const (
	pendingNewsNamespace = "pending_news"
	pendingNewsTTL       = 24 * time.Hour
)

// NewsCache は Redis 上のニュースバッファです。キーは pending_news:{keyword}、
// 値は JSON シリアライズした記事一覧です。
type NewsCache struct {
	rdb *redis.Client
}

var _ usecase.PendingStore = (*NewsCache)(nil)

func NewNewsCache(rdb *redis.Client) *NewsCache {
	return &NewsCache{rdb: rdb}
}

func (c *NewsCache) GetPending(ctx context.Context, keyword string) ([]entity.Article, error) {
	key := newsKey(keyword)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var out []entity.Article
	if err := json.Unmarshal(b, &out); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return nil, nil
	}
	return out, nil
}

func (c *NewsCache) SetPending(ctx context.Context, keyword string, articles []entity.Article) error {
	if len(articles) == 0 {
		return nil
	}
	key := newsKey(keyword)
	b, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("serialize articles for %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, b, pendingNewsTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *NewsCache) DeletePending(ctx context.Context, keyword string) error {
	return c.rdb.Del(ctx, newsKey(keyword)).Err()
}

func (c *NewsCache) PendingKeywords(ctx context.Context) ([]string, error) {
	var (
		out    []string
		cursor uint64
	)
	pattern := pendingNewsNamespace + ":*"
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		for _, key := range keys {
			keyword, ok := strings.CutPrefix(key, pendingNewsNamespace+":")
			if !ok || keyword == "" {
				continue
			}
			out = append(out, keyword)
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func newsKey(keyword string) string {
	return pendingNewsNamespace + ":" + strings.ReplaceAll(keyword, ":", "_")
}
