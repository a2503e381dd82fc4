// Package dto は東方財富klineAPIレスポンスのデータ転送オブジェクトを定義します。
package dto

// KlineResponse は /api/qt/stock/kline/get のJSONレスポンスを表します。
// klines の各要素はカンマ区切りの1本分の足
// （日時,始値,終値,高値,安値,出来高,成交額,振幅,涨跌幅,涨跌額,換手率）です。
type KlineResponse struct {
	RC   int    `json:"rc"`
	RT   int    `json:"rt"`
	Full int    `json:"full"`
	Data *Kline `json:"data"`
}

type Kline struct {
	Code   string   `json:"code"`
	Market int      `json:"market"`
	Name   string   `json:"name"`
	Klines []string `json:"klines"`
}
