package dto

// BarResponse は価格データ点1本分のレスポンスDTOです。
type BarResponse struct {
	Time          string  `json:"time"`           // 日付または日時
	Open          float64 `json:"open"`           // 始値
	High          float64 `json:"high"`           // 高値
	Low           float64 `json:"low"`            // 安値
	Close         float64 `json:"close"`          // 終値
	Volume        int64   `json:"volume"`         // 出来高
	Turnover      int64   `json:"turnover"`       // 成交額
	Amplitude     float64 `json:"amplitude"`      // 振幅(%)
	ChangePercent float64 `json:"change_percent"` // 涨跌幅(%)
	Change        float64 `json:"change"`         // 涨跌額
	TurnoverRate  float64 `json:"turnover_rate"`  // 換手率(%)
}

// SeriesResponse は系列全体のレスポンスDTOです。
type SeriesResponse struct {
	Ticker string        `json:"ticker"`
	Period string        `json:"period"`
	Count  int           `json:"count"`
	Bars   []BarResponse `json:"bars"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
