// Package eastmoney は東方財富の株価klineAPIクライアントを提供します。
package eastmoney

import (
	"os"
	"time"
)

// Config は東方財富APIクライアントの設定を保持します。
type Config struct {
	BaseURL string        // APIのベースURL
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数から東方財富の設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("EASTMONEY_BASE_URL")
	if base == "" {
		base = "https://push2his.eastmoney.com"
	}
	return Config{
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
