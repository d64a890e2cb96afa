package model

import "time"

const (
	QuoteSourceYahoo    = "yahoo_finance"
	QuoteSourceCache    = "cache"
	QuoteSourceFallback = "fallback"
)

type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	DayHigh       float64   `json:"dayHigh"`
	DayLow        float64   `json:"dayLow"`
	PreviousClose float64   `json:"previousClose"`
	IsMarketOpen  bool      `json:"isMarketOpen"`
	Source        string    `json:"source"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type QuotesResponse struct {
	Prices  map[string]Quote `json:"prices"`
	Missing []string         `json:"missing"`
	Source  string           `json:"source"`
}
