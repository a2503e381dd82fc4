package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockaivo/internal/feature/symbols/domain/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&SymbolModel{}))

	return db
}

func TestSymbolGorm_FullSymbol(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the registered full symbol", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewSymbolRepository(db)
		require.NoError(t, repo.Upsert(ctx, entity.Symbol{
			Ticker: "BRK.B", FullSymbol: "106.BRK.B", Name: "Berkshire", Exchange: "NYSE",
		}))

		got, err := repo.FullSymbol(ctx, "BRK.B")
		require.NoError(t, err)
		assert.Equal(t, "106.BRK.B", got)
	})

	t.Run("memoizes lookups", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewSymbolRepository(db)
		require.NoError(t, repo.Upsert(ctx, entity.Symbol{Ticker: "AAPL", FullSymbol: "105.AAPL"}))

		first, err := repo.FullSymbol(ctx, "AAPL")
		require.NoError(t, err)

		// 行を消しても2回目はメモから返る。
		require.NoError(t, db.Where("ticker = ?", "AAPL").Delete(&SymbolModel{}).Error)
		second, err := repo.FullSymbol(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("unknown ticker falls back to a NASDAQ secid", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewSymbolRepository(db)

		got, err := repo.FullSymbol(ctx, "ZZZZ")
		require.NoError(t, err)
		assert.Equal(t, "105.ZZZZ", got)
	})
}

func TestSymbolGorm_Upsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t)
	repo := NewSymbolRepository(db)

	require.NoError(t, repo.Upsert(ctx, entity.Symbol{Ticker: "AAPL", FullSymbol: "105.AAPL", Name: "Apple"}))
	require.NoError(t, repo.Upsert(ctx, entity.Symbol{Ticker: "AAPL", FullSymbol: "105.AAPL", Name: "Apple Inc."}))

	var count int64
	require.NoError(t, db.Model(&SymbolModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var row SymbolModel
	require.NoError(t, db.Where("ticker = ?", "AAPL").First(&row).Error)
	assert.Equal(t, "Apple Inc.", row.Name)
}
