package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
)

type priceGorm struct {
	db *gorm.DB
}

var _ usecase.PriceRepository = (*priceGorm)(nil)

func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PriceColumns は足種共通の価格カラムです。
type PriceColumns struct {
	Open   float64 `gorm:"not null"`
	High   float64 `gorm:"not null"`
	Low    float64 `gorm:"not null"`
	Close  float64 `gorm:"not null"`
	Volume int64   `gorm:"not null;default:0"`

	Turnover      int64   `gorm:"not null;default:0"`
	Amplitude     float64 `gorm:"not null;default:0"`
	ChangePercent float64 `gorm:"not null;default:0"`
	Change        float64 `gorm:"not null;default:0"`
	TurnoverRate  float64 `gorm:"not null;default:0"`
}

// 足種ごとに独立したテーブルを持ちます。(ticker, bar_time) がユニークキーで、
// UpsertBatch の冪等性の根拠になります。

type DailyPriceModel struct {
	ID           uint      `gorm:"primaryKey"`
	Ticker       string    `gorm:"size:16;not null;uniqueIndex:daily_ticker_time,priority:1"`
	BarTime      time.Time `gorm:"not null;uniqueIndex:daily_ticker_time,priority:2"`
	PriceColumns `gorm:"embedded"`
}

func (DailyPriceModel) TableName() string { return "stock_prices_daily" }

type WeeklyPriceModel struct {
	ID           uint      `gorm:"primaryKey"`
	Ticker       string    `gorm:"size:16;not null;uniqueIndex:weekly_ticker_time,priority:1"`
	BarTime      time.Time `gorm:"not null;uniqueIndex:weekly_ticker_time,priority:2"`
	PriceColumns `gorm:"embedded"`
}

func (WeeklyPriceModel) TableName() string { return "stock_prices_weekly" }

type HourlyPriceModel struct {
	ID           uint      `gorm:"primaryKey"`
	Ticker       string    `gorm:"size:16;not null;uniqueIndex:hourly_ticker_time,priority:1"`
	BarTime      time.Time `gorm:"not null;uniqueIndex:hourly_ticker_time,priority:2"`
	PriceColumns `gorm:"embedded"`
}

func (HourlyPriceModel) TableName() string { return "stock_prices_hourly" }

func tableFor(period entity.Period) (string, error) {
	switch period {
	case entity.PeriodDaily:
		return DailyPriceModel{}.TableName(), nil
	case entity.PeriodWeekly:
		return WeeklyPriceModel{}.TableName(), nil
	case entity.PeriodHourly:
		return HourlyPriceModel{}.TableName(), nil
	default:
		return "", usecase.ErrUnsupportedPeriod
	}
}

type priceRow struct {
	Ticker  string
	BarTime time.Time
	PriceColumns
}

func toRow(b entity.Bar) priceRow {
	return priceRow{
		Ticker:  b.Ticker,
		BarTime: b.Key,
		PriceColumns: PriceColumns{
			Open:          b.Open,
			High:          b.High,
			Low:           b.Low,
			Close:         b.Close,
			Volume:        b.Volume,
			Turnover:      b.Turnover,
			Amplitude:     b.Amplitude,
			ChangePercent: b.ChangePercent,
			Change:        b.Change,
			TurnoverRate:  b.TurnoverRate,
		},
	}
}

func toBar(ticker string, period entity.Period, m priceRow) entity.Bar {
	return entity.Bar{
		Ticker:        ticker,
		Period:        period,
		Key:           m.BarTime.UTC(),
		Open:          m.Open,
		High:          m.High,
		Low:           m.Low,
		Close:         m.Close,
		Volume:        m.Volume,
		Turnover:      m.Turnover,
		Amplitude:     m.Amplitude,
		ChangePercent: m.ChangePercent,
		Change:        m.Change,
		TurnoverRate:  m.TurnoverRate,
	}
}

// FindRange は [start, end] の範囲を bar_time 昇順で返します。
// hourly では end を当日末尾（23:59:59）まで含めて解釈します。
func (r *priceGorm) FindRange(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error) {
	table, err := tableFor(period)
	if err != nil {
		return nil, err
	}
	if period == entity.PeriodHourly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	var rows []priceRow
	err = r.db.WithContext(ctx).
		Table(table).
		Where("ticker = ? AND bar_time >= ? AND bar_time <= ?", ticker, start, end).
		Order("bar_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query %s for %s: %w", table, ticker, err)
	}

	out := make(entity.Series, 0, len(rows))
	for _, m := range rows {
		out = append(out, toBar(ticker, period, m))
	}
	return out, nil
}

// UpsertBatch は同一足種のバッチを1トランザクションで冪等にUpsertします。
func (r *priceGorm) UpsertBatch(ctx context.Context, bars entity.Series) error {
	if len(bars) == 0 {
		return nil
	}
	table, err := tableFor(bars[0].Period)
	if err != nil {
		return err
	}

	rows := make([]priceRow, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, toRow(b))
	}

	err = r.db.WithContext(ctx).
		Table(table).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker"}, {Name: "bar_time"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"open", "high", "low", "close", "volume",
				"turnover", "amplitude", "change_percent", "change", "turnover_rate",
			}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert %d rows into %s: %w", len(rows), table, err)
	}
	return nil
}
