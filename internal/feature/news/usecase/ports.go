// Package usecase はニュースのライトビハインドバッファとフラッシュを提供します。
package usecase

import (
	"context"

	"stockaivo/internal/feature/news/domain/entity"
)

// PendingStore はキーワード単位の永続化待ちニュースバッファを抽象化します。
type PendingStore interface {
	// GetPending はバッファ済みの記事を返します。ミス時は (nil, nil) です。
	GetPending(ctx context.Context, keyword string) ([]entity.Article, error)
	// SetPending は記事一覧をバッファへ保存し、TTLを更新します。
	SetPending(ctx context.Context, keyword string, articles []entity.Article) error
	// DeletePending はキーワードのバッファエントリを削除します。
	DeletePending(ctx context.Context, keyword string) error
	// PendingKeywords は永続化待ちの全キーワードを返します。
	PendingKeywords(ctx context.Context) ([]string, error)
}

// NewsRepository は永続ストアへの記事の書き込みを抽象化します。
type NewsRepository interface {
	// UpsertBatch は (keyword, title, published_at) をユニークキーとして
	// 冪等にUpsertします。1回の呼び出しが1トランザクションです。
	UpsertBatch(ctx context.Context, articles []entity.Article) error
}
