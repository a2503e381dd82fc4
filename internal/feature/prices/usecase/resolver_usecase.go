package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stockaivo/internal/feature/prices/domain/entity"
)

// ResolverUsecase は価格データ要求を3つのティア
// （揮発キャッシュ → 永続ストア → 外部プロバイダ）に対して解決します。
// 各ティアでは欠けているデータ点キーの連続区間だけを下位ティアへ問い合わせ、
// 取得済みのデータ点を再取得しません。
type ResolverUsecase struct {
	cal      MarketCalendar
	cache    CacheStore
	prices   PriceRepository
	provider MarketDataProvider
	buffer   *WriteBehindBuffer
}

func NewResolverUsecase(cal MarketCalendar, cache CacheStore, prices PriceRepository,
	provider MarketDataProvider, buffer *WriteBehindBuffer) *ResolverUsecase {
	return &ResolverUsecase{cal: cal, cache: cache, prices: prices, provider: provider, buffer: buffer}
}

// GetSeries は [start, end] の系列を解決して返します。
// start / end のゼロ値は未指定を意味し、足種ごとの既定ウィンドウが適用されます。
// 終端は常に安全基準日（確定済みの最新データ点）に切り詰められます。
//
// プロバイダ障害時は該当サブ範囲を警告ログとともに結果から落とし、
// 部分的な結果を返します。永続ストアの障害はそのティアのミスとして扱い、
// プロバイダへフォールスルーします。ハードエラーになるのは不正な入力か、
// 3ティアすべてが利用不能だった場合だけです。
func (u *ResolverUsecase) GetSeries(ctx context.Context, ticker string, period entity.Period, start, end time.Time) (entity.Series, error) {
	if !period.Valid() {
		return nil, ErrUnsupportedPeriod
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, ErrInvalidWindow
	}

	// 1回の解決で1つの安全基準日を使い回す。weekly では進行中の週を
	// 確定扱いしないよう、直近の完結した週の最終取引日まで戻す。
	safe := u.cal.SafePeriodEnd(ctx, period == entity.PeriodWeekly)
	start, end = resolveWindow(period, start, end, safe)
	if start.After(end) {
		// 要求ウィンドウ全体が未来。取得すべきものはない。
		return entity.Series{}, nil
	}

	required := RequiredDates(ctx, u.cal, period, start, end)
	if len(required) == 0 {
		slog.Info("window contains no valid data points",
			"ticker", ticker, "period", period,
			"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
		return entity.Series{}, nil
	}

	cached, err := u.cache.Get(ctx, GeneralCache, ticker, period)
	if err != nil {
		slog.Warn("general cache read failed, treating as miss", "ticker", ticker, "period", period, "error", err)
		cached = nil
	}

	var (
		known    entity.Series
		gaps     []DateRange
		dbPerGap bool
		dbFailed bool
	)
	if len(cached) > 0 {
		gaps = MissingRanges(required, observedKeys(cached, period), safe)
		if len(gaps) == 0 {
			// キャッシュ完全ヒットの高速パス。
			return cached.FilterRange(start, filterEnd(period, end)), nil
		}
		slog.Info("cache incomplete", "ticker", ticker, "period", period, "gaps", len(gaps))
		known = cached
		dbPerGap = true
	} else {
		// キャッシュエントリなし: 要求ウィンドウ全体を永続ストアへ。
		dbSeries, err := u.prices.FindRange(ctx, ticker, period, start, end)
		if err != nil {
			slog.Warn("durable store query failed, falling through to provider",
				"ticker", ticker, "period", period, "error", err)
			dbFailed = true
			dbSeries = nil
		}
		known = dbSeries
		gaps = MissingRanges(required, observedKeys(known, period), safe)
		if len(gaps) == 0 {
			if err := u.cache.Set(ctx, GeneralCache, ticker, period, known); err != nil {
				slog.Warn("general cache write failed", "ticker", ticker, "period", period, "error", err)
			}
			return known.FilterRange(start, filterEnd(period, end)), nil
		}
	}

	fill := u.fillGaps(ctx, ticker, period, required, gaps, safe, dbPerGap)
	dbFailed = dbFailed || fill.dbFailed

	merged := Merge(append([]entity.Series{known}, fill.fragments...)...)
	if len(merged) == 0 && fill.providerFailed && dbFailed {
		return nil, ErrAllTiersFailed
	}

	if len(fill.fragments) > 0 || len(cached) == 0 {
		if err := u.cache.Set(ctx, GeneralCache, ticker, period, merged); err != nil {
			slog.Warn("general cache write failed", "ticker", ticker, "period", period, "error", err)
		}
	}

	// プロバイダ由来の断片だけをライトビハインドバッファへ。受信済みの
	// 断片はコンテキストがキャンセルされていてもベストエフォートで保全する。
	if provided := Merge(fill.providerFragments...); len(provided) > 0 {
		bctx := context.WithoutCancel(ctx)
		if err := u.buffer.Append(bctx, ticker, period, provided); err != nil {
			slog.Error("write-behind buffer append failed", "ticker", ticker, "period", period, "error", err)
		}
	}

	return merged.FilterRange(start, filterEnd(period, end)), nil
}

// filterEnd は結果フィルタの終端を返します。hourly では end が日付キー
// なのに対しバーのキーは日中のタイムスタンプなので、終端日のバーを
// 落とさないようその日の末尾まで広げます。
func filterEnd(period entity.Period, end time.Time) time.Time {
	if period == entity.PeriodHourly {
		return end.Add(24*time.Hour - time.Nanosecond)
	}
	return end
}

type fillResult struct {
	fragments         []entity.Series // 永続ストア + プロバイダから得た全断片
	providerFragments []entity.Series // プロバイダ由来のみ（永続化対象）
	dbFailed          bool
	providerFailed    bool
}

// fillGaps は各欠落区間を並行に埋めます。区間同士は互いに素なので
// ファンアウトし、すべてのサブ取得が完了（または失敗）してから戻ります。
// dbPerGap が真の場合は区間ごとに永続ストアを先に引き、部分ヒット分を
// 除いた残りだけをプロバイダへ問い合わせます。
func (u *ResolverUsecase) fillGaps(ctx context.Context, ticker string, period entity.Period,
	required []time.Time, gaps []DateRange, safe time.Time, dbPerGap bool) fillResult {

	var (
		mu  sync.Mutex
		res fillResult
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, gap := range gaps {
		g.Go(func() error {
			still := []DateRange{gap}

			if dbPerGap {
				dbPart, err := u.prices.FindRange(gctx, ticker, period, gap.Start, gap.End)
				switch {
				case err != nil:
					slog.Warn("durable store query failed for gap, falling through to provider",
						"ticker", ticker, "period", period, "error", err)
					mu.Lock()
					res.dbFailed = true
					mu.Unlock()
				case len(dbPart) > 0:
					mu.Lock()
					res.fragments = append(res.fragments, dbPart)
					mu.Unlock()
					// 部分ヒット: まだ欠けているサブ範囲を再計算する。
					still = MissingRanges(keysWithin(required, gap), observedKeys(dbPart, period), safe)
				}
			}

			for _, sub := range still {
				fetched, err := u.provider.FetchSeries(gctx, ticker, period, sub.Start, sub.End)
				if err != nil {
					slog.Warn("provider fetch failed, dropping sub-range from result",
						"ticker", ticker, "period", period,
						"start", sub.Start.Format("2006-01-02"), "end", sub.End.Format("2006-01-02"),
						"error", err)
					mu.Lock()
					res.providerFailed = true
					mu.Unlock()
					continue
				}
				if len(fetched) == 0 {
					continue
				}
				mu.Lock()
				res.fragments = append(res.fragments, fetched)
				res.providerFragments = append(res.providerFragments, fetched)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// resolveWindow は未指定の境界を既定値で補い、終端を安全基準日に
// 切り詰めたウィンドウを返します。
func resolveWindow(period entity.Period, start, end, safe time.Time) (time.Time, time.Time) {
	opt := entity.DefaultRange(period)
	if start.IsZero() && end.IsZero() {
		return opt.Window(safe)
	}
	if end.IsZero() || end.After(safe) {
		end = safe
	}
	if start.IsZero() {
		start, _ = opt.Window(end)
	}
	return entity.DateKey(start), entity.DateKey(end)
}

// observedKeys は系列の観測済みキーを返します。hourly ではタイムスタンプを
// 日付キーに落とし、取引日単位で欠落を判定します。
func observedKeys(s entity.Series, period entity.Period) []time.Time {
	keys := make([]time.Time, 0, len(s))
	for _, b := range s {
		if period == entity.PeriodHourly {
			keys = append(keys, entity.DateKey(b.Key))
			continue
		}
		keys = append(keys, b.Key)
	}
	return keys
}

// keysWithin は required のうち [gap.Start, gap.End] に収まるキーを返します。
func keysWithin(required []time.Time, gap DateRange) []time.Time {
	var out []time.Time
	for _, d := range required {
		if d.Before(gap.Start) || d.After(gap.End) {
			continue
		}
		out = append(out, d)
	}
	return out
}
