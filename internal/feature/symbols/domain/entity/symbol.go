// Package entity は銘柄マスタのドメインモデルを定義します。
package entity

// Symbol は銘柄マスタの1行です。FullSymbol は外部プロバイダで使う
// 市場プレフィックス付き識別子（例: "105.AAPL"）です。
type Symbol struct {
	Ticker     string
	FullSymbol string
	Name       string
	Exchange   string
}
