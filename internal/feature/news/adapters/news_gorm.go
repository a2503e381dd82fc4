package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockaivo/internal/feature/news/domain/entity"
	"stockaivo/internal/feature/news/usecase"
)

type NewsModel struct {
	ID          uint      `gorm:"primaryKey"`
	Keyword     string    `gorm:"size:64;not null;uniqueIndex:news_kw_title_at,priority:1"`
	Title       string    `gorm:"size:512;not null;uniqueIndex:news_kw_title_at,priority:2"`
	PublishedAt time.Time `gorm:"not null;uniqueIndex:news_kw_title_at,priority:3"`

	URL     string `gorm:"size:1024"`
	Source  string `gorm:"size:128"`
	Summary string `gorm:"type:text"`
}

func (NewsModel) TableName() string { return "stock_news" }

type newsGorm struct {
	db *gorm.DB
}

var _ usecase.NewsRepository = (*newsGorm)(nil)

func NewNewsRepository(db *gorm.DB) *newsGorm {
	return &newsGorm{db: db}
}

// UpsertBatch は記事バッチを1トランザクションで冪等にUpsertします。
func (r *newsGorm) UpsertBatch(ctx context.Context, articles []entity.Article) error {
	if len(articles) == 0 {
		return nil
	}
	rows := make([]NewsModel, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, NewsModel{
			Keyword:     a.Keyword,
			Title:       a.Title,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
			Source:      a.Source,
			Summary:     a.Summary,
		})
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "keyword"}, {Name: "title"}, {Name: "published_at"}},
			DoUpdates: clause.AssignmentColumns([]string{"url", "source", "summary"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert %d news rows: %w", len(rows), err)
	}
	return nil
}
