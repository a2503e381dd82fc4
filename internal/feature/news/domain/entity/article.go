// Package entity は銘柄関連ニュースのドメインモデルを定義します。
package entity

import (
	"sort"
	"time"
)

// Article は検索キーワードに紐づくニュース記事1件です。
// (Keyword, Title, PublishedAt) を同一性キーとします。
type Article struct {
	Keyword     string
	Title       string
	URL         string
	Source      string
	Summary     string
	PublishedAt time.Time
}

// Dedup は同一性キーで重複を後勝ちで取り除き、公開日時昇順で返します。
func Dedup(articles []Article) []Article {
	if len(articles) == 0 {
		return []Article{}
	}
	type key struct {
		keyword string
		title   string
		at      int64
	}
	byKey := make(map[key]Article, len(articles))
	for _, a := range articles {
		byKey[key{a.Keyword, a.Title, a.PublishedAt.UnixNano()}] = a
	}
	out := make([]Article, 0, len(byKey))
	for _, a := range byKey {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.Before(out[j].PublishedAt)
		}
		return out[i].Title < out[j].Title
	})
	return out
}
