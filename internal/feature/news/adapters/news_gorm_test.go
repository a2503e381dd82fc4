package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockaivo/internal/feature/news/domain/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&NewsModel{}))

	return db
}

func TestNewsGorm_UpsertBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	at := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)

	db := setupTestDB(t)
	repo := NewNewsRepository(db)

	first := entity.Article{
		Keyword: "AAPL", Title: "earnings beat", PublishedAt: at,
		URL: "https://example.com/1", Source: "wire", Summary: "old",
	}
	require.NoError(t, repo.UpsertBatch(ctx, []entity.Article{first}))

	// 同一 (keyword, title, published_at) は行を増やさず更新する。
	updated := first
	updated.Summary = "new"
	require.NoError(t, repo.UpsertBatch(ctx, []entity.Article{
		updated,
		{Keyword: "MSFT", Title: "earnings beat", PublishedAt: at},
	}))

	var count int64
	require.NoError(t, db.Model(&NewsModel{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var row NewsModel
	require.NoError(t, db.Where("keyword = ?", "AAPL").First(&row).Error)
	assert.Equal(t, "new", row.Summary)

	assert.NoError(t, repo.UpsertBatch(ctx, nil), "empty batch is a no-op")
}
