package yahooModel

type ChartResponse struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ChartResult struct {
	Meta ChartMeta `json:"meta"`
}

type ChartMeta struct {
	Currency             string        `json:"currency"`
	Symbol               string        `json:"symbol"`
	ExchangeName         string        `json:"exchangeName"`
	RegularMarketPrice   float64       `json:"regularMarketPrice"`
	RegularMarketTime    int64         `json:"regularMarketTime"`
	RegularMarketDayHigh float64       `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64       `json:"regularMarketDayLow"`
	PreviousClose        float64       `json:"previousClose"`
	ChartPreviousClose   float64       `json:"chartPreviousClose"`
	MarketState          string        `json:"marketState"`
	CurrentTradingPeriod TradingPeriod `json:"currentTradingPeriod"`
}

type TradingPeriod struct {
	Regular TradingSession `json:"regular"`
}

type TradingSession struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}
