package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockaivo/internal/app/router"
	"stockaivo/internal/app/scheduler"
	"stockaivo/internal/feature/calendar"
	newsadapters "stockaivo/internal/feature/news/adapters"
	newsusecase "stockaivo/internal/feature/news/usecase"
	priceadapters "stockaivo/internal/feature/prices/adapters"
	"stockaivo/internal/feature/prices/adapters/eastmoney"
	priceshandler "stockaivo/internal/feature/prices/transport/handler"
	pricesusecase "stockaivo/internal/feature/prices/usecase"
	symboladapters "stockaivo/internal/feature/symbols/adapters"
	platformdb "stockaivo/internal/platform/db"
	platformhttp "stockaivo/internal/platform/http"
	platformredis "stockaivo/internal/platform/redis"
	"stockaivo/internal/shared/ratelimiter"
)

func main() {
	// db
	gdb := platformdb.OpenDB()

	// Redis はキャッシュとライトビハインドバッファの両方を担うため必須
	rdb, err := platformredis.NewRedisClient()
	if err != nil {
		log.Fatal("Redis is required for caching and write-behind buffering:", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Println("[ERROR] Failed to close Redis client:", err)
		}
	}()

	// 取引カレンダーと市場時刻
	nyse, err := calendar.NewNYSE()
	if err != nil {
		log.Fatal("failed to load NYSE calendar:", err)
	}
	clock := calendar.NewClock(calendar.NewService(nyse))

	// Repository
	cache := priceadapters.NewSeriesCache(rdb)
	priceRepo := priceadapters.NewPriceRepository(gdb)
	symbolRepo := symboladapters.NewSymbolRepository(gdb)

	// プロバイダ: レートリミット → リトライの順でラップ
	emCfg := eastmoney.LoadConfig()
	emClient := eastmoney.NewEastMoneyMarket(emCfg, platformhttp.NewHTTPClient(emCfg.Timeout), symbolRepo)
	limiter := ratelimiter.NewSlidingWindow(10, time.Minute)
	provider := priceadapters.NewRetryingProvider(
		priceadapters.NewRateLimitedProvider(limiter, emClient))

	// Usecase
	buffer := pricesusecase.NewWriteBehindBuffer(cache)
	resolver := pricesusecase.NewResolverUsecase(clock, cache, priceRepo, provider, buffer)
	priceFlush := pricesusecase.NewFlushUsecase(cache, priceRepo)

	newsCache := newsadapters.NewNewsCache(rdb)
	newsRepo := newsadapters.NewNewsRepository(gdb)
	newsFlush := newsusecase.NewFlushUsecase(newsCache, newsRepo)

	// バックグラウンドフラッシャ
	flusher := scheduler.NewFlusher(priceFlush, newsFlush)
	if err := flusher.Start(); err != nil {
		log.Fatal("failed to start background flusher:", err)
	}

	// Handler / Router
	pricesH := priceshandler.NewPricesHandler(resolver)
	r := router.NewRouter(pricesH)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// シグナルで停止。HTTPを先に閉じ、最後にバッファをフラッシュする。
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Println("[ERROR] HTTP shutdown:", err)
	}
	flusher.Stop()
}
