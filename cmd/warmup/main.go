// warmup は指定ティッカーの系列を一括解決してキャッシュと永続ストアを
// 事前に温めるワンショットコマンドです。
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"stockaivo/internal/feature/calendar"
	"stockaivo/internal/feature/prices/adapters"
	"stockaivo/internal/feature/prices/adapters/eastmoney"
	"stockaivo/internal/feature/prices/domain/entity"
	"stockaivo/internal/feature/prices/usecase"
	symboladapters "stockaivo/internal/feature/symbols/adapters"
	platformdb "stockaivo/internal/platform/db"
	platformhttp "stockaivo/internal/platform/http"
	platformredis "stockaivo/internal/platform/redis"
	"stockaivo/internal/shared/ratelimiter"
)

func main() {
	tickersFlag := flag.String("tickers", "AAPL,MSFT,GOOG", "comma-separated tickers to warm up")
	flag.Parse()

	gdb := platformdb.OpenDB()
	rdb, err := platformredis.NewRedisClient()
	if err != nil {
		log.Fatal("Redis is required:", err)
	}

	nyse, err := calendar.NewNYSE()
	if err != nil {
		log.Fatal("failed to load NYSE calendar:", err)
	}
	clock := calendar.NewClock(calendar.NewService(nyse))

	cache := adapters.NewSeriesCache(rdb)
	priceRepo := adapters.NewPriceRepository(gdb)
	symbolRepo := symboladapters.NewSymbolRepository(gdb)

	emCfg := eastmoney.LoadConfig()
	emClient := eastmoney.NewEastMoneyMarket(emCfg, platformhttp.NewHTTPClient(emCfg.Timeout), symbolRepo)
	limiter := ratelimiter.NewSlidingWindow(10, time.Minute)
	provider := adapters.NewRetryingProvider(adapters.NewRateLimitedProvider(limiter, emClient))

	buffer := usecase.NewWriteBehindBuffer(cache)
	resolver := usecase.NewResolverUsecase(clock, cache, priceRepo, provider, buffer)
	flush := usecase.NewFlushUsecase(cache, priceRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	periods := []entity.Period{entity.PeriodDaily, entity.PeriodWeekly, entity.PeriodHourly}
	for _, ticker := range strings.Split(*tickersFlag, ",") {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" {
			continue
		}
		for _, period := range periods {
			series, err := resolver.GetSeries(ctx, ticker, period, time.Time{}, time.Time{})
			if err != nil {
				log.Printf("[WARN] warmup %s/%s: %v", ticker, period, err)
				continue
			}
			log.Printf("warmed %s/%s: %d bars", ticker, period, len(series))
		}
	}

	// ワンショット実行なのでバッファをその場で排出する
	result := flush.FlushPending(ctx)
	log.Printf("flush: keys=%d persisted=%d failed=%d", result.Keys, result.Persisted, result.Failed)
}
