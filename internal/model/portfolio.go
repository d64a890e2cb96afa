package model

import "math"

const (
	DefaultBaseCurrency  = "USD"
	DefaultMaxTurnover   = 0.2
	DefaultMinTradeValue = 100.0
)

type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgCost  float64 `json:"avgCost"`
}

type Portfolio struct {
	BaseCurrency string     `json:"baseCurrency"`
	Positions    []Position `json:"positions"`
}

// Symbols returns position symbols in portfolio order.
func (p Portfolio) Symbols() []string {
	res := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		res = append(res, pos.Symbol)
	}
	return res
}

type Constraints struct {
	MaxTurnover   float64 `json:"maxTurnover"`
	MinTradeValue float64 `json:"minTradeValue"`
}

func DefaultConstraints() Constraints {
	return Constraints{MaxTurnover: DefaultMaxTurnover, MinTradeValue: DefaultMinTradeValue}
}

type RebalanceRequest struct {
	Portfolio   Portfolio        `json:"portfolio"`
	Targets     TargetAllocation `json:"targets"`
	Constraints Constraints      `json:"constraints"`
}

// NewRebalanceRequest returns a request prefilled with defaults, decode JSON into it to keep them
// for absent fields.
func NewRebalanceRequest() RebalanceRequest {
	return RebalanceRequest{
		Portfolio:   Portfolio{BaseCurrency: DefaultBaseCurrency},
		Constraints: DefaultConstraints(),
	}
}

// Symbols returns the union of position and target symbols, positions first.
func (r RebalanceRequest) Symbols() []string {
	seen := make(map[string]struct{}, len(r.Portfolio.Positions)+len(r.Targets))
	res := make([]string, 0, len(r.Portfolio.Positions)+len(r.Targets))
	for _, s := range append(r.Portfolio.Symbols(), r.Targets.Symbols()...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	return res
}

// PriceMap maps a symbol to its current price in the portfolio base currency.
type PriceMap map[string]float64

// Resolve reports the price of symbol, absent, zero and non-finite prices are unresolved.
func (m PriceMap) Resolve(symbol string) (float64, bool) {
	price, ok := m[symbol]
	if !ok || price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}
