package model

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	ReasonIncreaseUnderweight = "Increase underweight"
	ReasonReduceOverweight    = "Reduce overweight"
	ReasonRebalanceToTarget   = "Rebalance to target allocation"
)

type Trade struct {
	Symbol   string  `json:"symbol"`
	Side     Side    `json:"side"`
	Quantity float64 `json:"quantity"`
	EstPrice float64 `json:"estPrice"`
	Reason   string  `json:"reason"`
}

// Notional is the estimated money value of the trade.
func (t Trade) Notional() float64 {
	return t.Quantity * t.EstPrice
}

type RebalancePlan struct {
	CurrentValue float64  `json:"currentValue"`
	Trades       []Trade  `json:"trades"`
	Notes        []string `json:"notes"`
}

type PlanExport struct {
	FileName string `json:"fileName"`
	Link     string `json:"link,omitempty"`
	Content  []byte `json:"-"`
}
