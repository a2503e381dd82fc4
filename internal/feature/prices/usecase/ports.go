package usecase

import (
	"context"
	"errors"
	"time"

	"stockaivo/internal/feature/prices/domain/entity"
)

// CacheNamespace は揮発キャッシュ上の論理的な名前空間です。
type CacheNamespace string

const (
	// GeneralCache は読み取りキャッシュ（短〜中TTL）です。
	GeneralCache CacheNamespace = "general_cache"
	// PendingSave は永続化待ちのライトビハインドバッファ（長TTL）です。
	PendingSave CacheNamespace = "pending_save"
)

// SeriesKey はキャッシュ・バッファ上の系列を特定する複合キーです。
type SeriesKey struct {
	Ticker string
	Period entity.Period
}

// CacheStore は Series 単位の揮発キャッシュを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CacheStore interface {
	// Get はキャッシュされた系列を返します。ミス時は (nil, nil) です。
	Get(ctx context.Context, ns CacheNamespace, ticker string, period entity.Period) (entity.Series, error)
	// Set は系列を名前空間ごとのTTLで保存します。
	Set(ctx context.Context, ns CacheNamespace, ticker string, period entity.Period, s entity.Series) error
	// Delete は系列のエントリを削除します。
	Delete(ctx context.Context, ns CacheNamespace, ticker string, period entity.Period) error
	// Pending は永続化待ちの全キーを返します。
	Pending(ctx context.Context) ([]SeriesKey, error)
}

// PriceRepository は永続ストア（リレーショナルDB）の読み書きを抽象化します。
type PriceRepository interface {
	// FindRange は [start, end] の範囲をキー昇順で返します。該当なしは空です。
	FindRange(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error)
	// UpsertBatch は (ticker, key) をユニークキーとして冪等にUpsertします。
	// 1回の呼び出しが1トランザクションです。
	UpsertBatch(ctx context.Context, bars entity.Series) error
}

// MarketDataProvider は外部データプロバイダからの取得を抽象化します。
// レート制限とリトライはアダプタ側のデコレータで適用されます。
type MarketDataProvider interface {
	FetchSeries(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error)
}

var (
	// ErrInvalidWindow は start > end のリクエストに対して返されます。
	ErrInvalidWindow = errors.New("invalid window: start date is after end date")
	// ErrUnsupportedPeriod は未知の足種に対して返されます。
	ErrUnsupportedPeriod = errors.New("unsupported period")
	// ErrAllTiersFailed は3ティアすべてが利用不能だった場合に返されます。
	ErrAllTiersFailed = errors.New("all data tiers unavailable")
)
