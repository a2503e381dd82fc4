// Package adapters は銘柄マスタの永続化アダプタを提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockaivo/internal/feature/prices/adapters/eastmoney"
	"stockaivo/internal/feature/symbols/domain/entity"
)

type SymbolModel struct {
	ID         uint   `gorm:"primaryKey"`
	Ticker     string `gorm:"size:16;not null;uniqueIndex"`
	FullSymbol string `gorm:"size:32;not null"`
	Name       string `gorm:"size:128"`
	Exchange   string `gorm:"size:32"`
}

func (SymbolModel) TableName() string { return "stock_symbols" }

// symbolGorm は銘柄マスタからFullSymbolを引くSymbolSource実装です。
// 銘柄マスタはほぼ不変なので、一度引いた値はプロセス内でメモ化します。
type symbolGorm struct {
	db *gorm.DB

	mu   sync.RWMutex
	memo map[string]string
}

var _ eastmoney.SymbolSource = (*symbolGorm)(nil)

func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db, memo: make(map[string]string)}
}

// FullSymbol はティッカーに対応する市場プレフィックス付き識別子を返します。
// マスタ未登録の場合はNASDAQプレフィックスで補って警告ログを残します。
func (r *symbolGorm) FullSymbol(ctx context.Context, ticker string) (string, error) {
	r.mu.RLock()
	if full, ok := r.memo[ticker]; ok {
		r.mu.RUnlock()
		return full, nil
	}
	r.mu.RUnlock()

	var row SymbolModel
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		full := "105." + ticker
		slog.Warn("ticker not in symbol master, assuming NASDAQ", "ticker", ticker, "secid", full)
		return full, nil
	case err != nil:
		return "", fmt.Errorf("lookup symbol %s: %w", ticker, err)
	}

	r.mu.Lock()
	r.memo[ticker] = row.FullSymbol
	r.mu.Unlock()
	return row.FullSymbol, nil
}

// Upsert は銘柄マスタ行を登録・更新します。
func (r *symbolGorm) Upsert(ctx context.Context, s entity.Symbol) error {
	row := SymbolModel{
		Ticker:     s.Ticker,
		FullSymbol: s.FullSymbol,
		Name:       s.Name,
		Exchange:   s.Exchange,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_symbol", "name", "exchange"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert symbol %s: %w", s.Ticker, err)
	}
	return nil
}
