package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockaivo/internal/feature/prices/domain/entity"
)

type staticSymbols struct {
	full string
}

func (s *staticSymbols) FullSymbol(context.Context, string) (string, error) {
	return s.full, nil
}

func TestParseKline(t *testing.T) {
	t.Parallel()

	t.Run("daily line", func(t *testing.T) {
		t.Parallel()
		bar, err := parseKline("AAPL", entity.PeriodDaily,
			"2025-06-09,201.5,204.3,205.1,200.2,51234567,10456789012.5,2.43,1.39,2.8,0.34")
		require.NoError(t, err)

		assert.Equal(t, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC), bar.Key)
		assert.Equal(t, 201.5, bar.Open)
		assert.Equal(t, 204.3, bar.Close)
		assert.Equal(t, 205.1, bar.High)
		assert.Equal(t, 200.2, bar.Low)
		assert.EqualValues(t, 51234567, bar.Volume)
		assert.EqualValues(t, 10456789012, bar.Turnover)
		assert.Equal(t, 2.43, bar.Amplitude)
		assert.Equal(t, 1.39, bar.ChangePercent)
		assert.Equal(t, 2.8, bar.Change)
		assert.Equal(t, 0.34, bar.TurnoverRate)
	})

	t.Run("hourly line carries the intraday timestamp", func(t *testing.T) {
		t.Parallel()
		bar, err := parseKline("AAPL", entity.PeriodHourly,
			"2025-06-09 15:30,201.5,204.3,205.1,200.2,1000,2000,1,1,1,1")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 9, 15, 30, 0, 0, time.UTC), bar.Key)
	})

	t.Run("malformed lines are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := parseKline("AAPL", entity.PeriodDaily, "2025-06-09,201.5")
		assert.Error(t, err)
		_, err = parseKline("AAPL", entity.PeriodDaily,
			"not-a-date,1,2,3,4,5,6,7,8,9,10")
		assert.Error(t, err)
	})
}

func TestEastMoneyMarket_FetchSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "105.AAPL", q.Get("secid"))
			assert.Equal(t, "101", q.Get("klt"))
			assert.Equal(t, "1", q.Get("fqt"))
			assert.Equal(t, "20250609", q.Get("beg"))
			assert.Equal(t, "20250613", q.Get("end"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"rc":0,"data":{"code":"AAPL","market":105,"name":"Apple","klines":[
				"2025-06-09,201.5,204.3,205.1,200.2,1000,2000,1,1,1,1",
				"2025-06-10,204.3,206.0,207.0,203.0,1100,2100,1,1,1,1"
			]}}`))
		}))
		defer srv.Close()

		client := NewEastMoneyMarket(Config{BaseURL: srv.URL, Timeout: time.Second},
			srv.Client(), &staticSymbols{full: "105.AAPL"})

		got, err := client.FetchSeries(ctx, "AAPL", entity.PeriodDaily,
			time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, "AAPL", got[0].Ticker)
		assert.Equal(t, entity.PeriodDaily, got[0].Period)
	})

	t.Run("empty payload yields a retryable sentinel", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"rc":0,"data":null}`))
		}))
		defer srv.Close()

		client := NewEastMoneyMarket(Config{BaseURL: srv.URL, Timeout: time.Second},
			srv.Client(), &staticSymbols{full: "105.AAPL"})

		_, err := client.FetchSeries(ctx, "AAPL", entity.PeriodDaily,
			time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("http errors surface as errors", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewEastMoneyMarket(Config{BaseURL: srv.URL, Timeout: time.Second},
			srv.Client(), &staticSymbols{full: "105.AAPL"})

		_, err := client.FetchSeries(ctx, "AAPL", entity.PeriodDaily,
			time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC))
		assert.Error(t, err)
	})
}
