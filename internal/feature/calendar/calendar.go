// Package calendar は取引カレンダーと市場時刻の判定を提供します。
package calendar

import (
	"context"
	"log/slog"
	"time"
)

// Session は1取引日の立会時間を表します。Date は UTC 0時の日付キーです。
type Session struct {
	Date  time.Time
	Open  time.Time
	Close time.Time
}

// SessionSource は指定市場の取引セッション予定を日付範囲で返します。
// Goの慣例に従い、インターフェースは利用者（Service）側で定義します。
type SessionSource interface {
	Sessions(ctx context.Context, start, end time.Time) ([]Session, error)
}

// Service は SessionSource をラップし、バックエンド障害時には
// 固定曜日ヒューリスティック（月〜金）へ縮退します。呼び出し元には
// エラーを返しません。
type Service struct {
	source SessionSource
}

func NewService(source SessionSource) *Service {
	return &Service{source: source}
}

// Sessions は [start, end] の取引セッションを返します。
// バックエンドが利用できない場合は月〜金の擬似セッションを返し、
// 縮退モードの警告をログに出します。
func (s *Service) Sessions(ctx context.Context, start, end time.Time) []Session {
	sessions, err := s.source.Sessions(ctx, start, end)
	if err != nil {
		slog.Warn("calendar backend unavailable, falling back to weekday heuristic",
			"start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"), "error", err)
		return weekdaySessions(start, end)
	}
	return sessions
}

// SessionDates は [start, end] の取引日（日付キー）を昇順で返します。
func (s *Service) SessionDates(ctx context.Context, start, end time.Time) []time.Time {
	sessions := s.Sessions(ctx, start, end)
	dates := make([]time.Time, 0, len(sessions))
	for _, ses := range sessions {
		dates = append(dates, ses.Date)
	}
	return dates
}

// IsTradingDay は d が取引日かどうかを返します。
func (s *Service) IsTradingDay(ctx context.Context, d time.Time) bool {
	d = dateOf(d)
	for _, ses := range s.Sessions(ctx, d, d) {
		if ses.Date.Equal(d) {
			return true
		}
	}
	return false
}

// LatestTradingDay は d 以前で直近の取引日を返します。
// 30日さかのぼっても見つからない場合は d をそのまま返します。
func (s *Service) LatestTradingDay(ctx context.Context, d time.Time) time.Time {
	d = dateOf(d)
	sessions := s.Sessions(ctx, d.AddDate(0, 0, -30), d)
	if len(sessions) == 0 {
		return d
	}
	return sessions[len(sessions)-1].Date
}

// weekdaySessions は月〜金を取引日とみなす縮退モードのセッション列です。
// 立会時間は米国東部の標準的な 9:30〜16:00 を UTC 固定オフセットで近似します。
func weekdaySessions(start, end time.Time) []Session {
	var out []Session
	for d := dateOf(start); !d.After(dateOf(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, Session{
			Date:  d,
			Open:  d.Add(14*time.Hour + 30*time.Minute), // 9:30 ET ≈ 14:30 UTC
			Close: d.Add(21 * time.Hour),                // 16:00 ET ≈ 21:00 UTC
		})
	}
	return out
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
