// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/transport/http/dto"
	"stockaivo/internal/feature/prices/usecase"
)

// SeriesUsecase は価格系列解決のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SeriesUsecase interface {
	GetSeries(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error)
}

// PricesHandler は価格系列のHTTPリクエストを処理します。
type PricesHandler struct {
	uc SeriesUsecase
}

func NewPricesHandler(uc SeriesUsecase) *PricesHandler {
	return &PricesHandler{uc: uc}
}

// GetDaily は日足を返します。
//
// エンドポイント例:
// GET /stocks/:ticker/daily?start_date=2025-01-01&end_date=2025-03-01
func (h *PricesHandler) GetDaily(c *gin.Context) {
	h.getSeries(c, entity.PeriodDaily)
}

// GetWeekly は週足を返します。
func (h *PricesHandler) GetWeekly(c *gin.Context) {
	h.getSeries(c, entity.PeriodWeekly)
}

// GetHourly は時間足を返します。
func (h *PricesHandler) GetHourly(c *gin.Context) {
	h.getSeries(c, entity.PeriodHourly)
}

func (h *PricesHandler) getSeries(c *gin.Context, period entity.Period) {
	ticker := c.Param("ticker")

	start, ok := parseDateParam(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateParam(c, "end_date")
	if !ok {
		return
	}

	series, err := h.uc.GetSeries(c.Request.Context(), ticker, period, start, end)
	switch {
	case errors.Is(err, usecase.ErrInvalidWindow), errors.Is(err, usecase.ErrUnsupportedPeriod):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	timeLayout := "2006-01-02"
	if period == entity.PeriodHourly {
		timeLayout = "2006-01-02 15:04"
	}

	bars := make([]dto.BarResponse, 0, len(series))
	for _, b := range series {
		bars = append(bars, dto.BarResponse{
			Time:          b.Key.UTC().Format(timeLayout),
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
		})
	}

	c.JSON(http.StatusOK, dto.SeriesResponse{
		Ticker: ticker,
		Period: string(period),
		Count:  len(bars),
		Bars:   bars,
	})
}

// parseDateParam は YYYY-MM-DD のクエリパラメータを解釈します。
// 未指定はゼロ値（既定ウィンドウ適用）を返し、不正値は400で打ち切ります。
func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name + ": expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
