package eastmoney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockaivo/internal/feature/prices/adapters/eastmoney/dto"
	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
)

// ErrEmptyResponse はAPIが正常応答しつつデータ点を1件も返さなかった場合の
// エラーです。一時的な空応答があるため、リトライデコレータの対象にします。
var ErrEmptyResponse = errors.New("eastmoney: empty kline response")

// SymbolSource はティッカーから東方財富のsecid（例: "105.AAPL"）を引きます。
type SymbolSource interface {
	FullSymbol(ctx context.Context, ticker string) (string, error)
}

// EastMoneyMarket は東方財富klineAPIから株価データを取得する
// MarketDataProvider実装です。
type EastMoneyMarket struct {
	cfg     Config
	client  *http.Client
	symbols SymbolSource
}

var _ usecase.MarketDataProvider = (*EastMoneyMarket)(nil)

func NewEastMoneyMarket(cfg Config, client *http.Client, symbols SymbolSource) *EastMoneyMarket {
	return &EastMoneyMarket{cfg: cfg, client: client, symbols: symbols}
}

// kltFor は足種をAPIのkltパラメータへ対応付けます。
func kltFor(period entity.Period) (string, error) {
	switch period {
	case entity.PeriodHourly:
		return "60", nil
	case entity.PeriodDaily:
		return "101", nil
	case entity.PeriodWeekly:
		return "102", nil
	default:
		return "", usecase.ErrUnsupportedPeriod
	}
}

// FetchSeries は [start, end] のkline系列を取得します。
func (m *EastMoneyMarket) FetchSeries(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error) {
	klt, err := kltFor(period)
	if err != nil {
		return nil, err
	}
	secid, err := m.symbols.FullSymbol(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("resolve secid for %s: %w", ticker, err)
	}

	q := url.Values{}
	q.Set("secid", secid)
	q.Set("klt", klt)
	q.Set("fqt", "1")
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61")

	u := fmt.Sprintf("%s/api/qt/stock/kline/get?%s", m.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("eastmoney http %d", res.StatusCode)
	}

	var body dto.KlineResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Data == nil || len(body.Data.Klines) == 0 {
		return nil, ErrEmptyResponse
	}

	out := make(entity.Series, 0, len(body.Data.Klines))
	for _, line := range body.Data.Klines {
		bar, err := parseKline(ticker, period, line)
		if err != nil {
			return nil, err
		}
		out = append(out, bar)
	}
	return out, nil
}

// parseKline はカンマ区切りの1行をBarへ変換します。
func parseKline(ticker string, period entity.Period, line string) (entity.Bar, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 11 {
		return entity.Bar{}, fmt.Errorf("eastmoney: malformed kline %q", line)
	}

	var (
		key time.Time
		err error
	)
	if period == entity.PeriodHourly {
		key, err = time.ParseInLocation("2006-01-02 15:04", fields[0], time.UTC)
	} else {
		key, err = time.ParseInLocation("2006-01-02", fields[0], time.UTC)
	}
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse kline time %q: %w", fields[0], err)
	}

	nums := make([]float64, 0, 10)
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse kline field %q: %w", f, err)
		}
		nums = append(nums, v)
	}

	// 順序: 始値, 終値, 高値, 安値, 出来高, 成交額, 振幅, 涨跌幅, 涨跌額, 換手率
	return entity.Bar{
		Ticker:        ticker,
		Period:        period,
		Key:           key,
		Open:          nums[0],
		Close:         nums[1],
		High:          nums[2],
		Low:           nums[3],
		Volume:        int64(nums[4]),
		Turnover:      int64(nums[5]),
		Amplitude:     nums[6],
		ChangePercent: nums[7],
		Change:        nums[8],
		TurnoverRate:  nums[9],
	}, nil
}
