// Package planner computes rebalance plans for a portfolio against a target allocation.
// Everything here is pure: no I/O, no shared state, safe for concurrent use.
package planner

import (
	"fmt"
	"math"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
)

const (
	NoteZeroValue      = "Cannot rebalance a zero-value portfolio."
	NoteTurnoverBudget = "Turnover budget reached; some trades skipped."
	NoteWellBalanced   = "Portfolio is already well-balanced within constraints."

	quantityPlaces = 2
)

func noteNoValuationPrice(symbol string) string {
	return fmt.Sprintf("No price available for %s; excluded from valuation.", symbol)
}

func noteNoTradePrice(symbol string) string {
	return fmt.Sprintf("No price available for %s; trade skipped.", symbol)
}

// Plan validates req and computes its plan, validation problems are returned as *ValidationError.
func Plan(req model.RebalanceRequest, prices model.PriceMap) (model.RebalancePlan, error) {
	if err := Validate(req); err != nil {
		return model.RebalancePlan{}, err
	}

	plan := ComputePlan(req.Portfolio, prices, req.Targets, req.Constraints)
	plan.Notes = append(TargetWarnings(req.Targets), plan.Notes...)

	return plan, nil
}

// ComputePlan walks targets in the given order and emits trades until the turnover budget is spent.
// The trade that exhausts the budget is kept, every target after it is never evaluated.
func ComputePlan(
	portfolio model.Portfolio,
	prices model.PriceMap,
	targets model.TargetAllocation,
	constraints model.Constraints,
) model.RebalancePlan {
	plan := model.RebalancePlan{
		Trades: []model.Trade{},
		Notes:  []string{},
	}

	holdings := make(map[string]float64, len(portfolio.Positions))
	for _, pos := range portfolio.Positions {
		price, ok := prices.Resolve(pos.Symbol)
		if !ok {
			plan.Notes = append(plan.Notes, noteNoValuationPrice(pos.Symbol))
			continue
		}

		value := pos.Quantity * price
		holdings[pos.Symbol] += value
		plan.CurrentValue += value
	}

	if plan.CurrentValue <= 0 {
		plan.Notes = append(plan.Notes, NoteZeroValue)
		return plan
	}

	var turnoverUsed float64
	for _, target := range targets {
		targetValue := plan.CurrentValue * target.Weight
		delta := targetValue - holdings[target.Symbol]

		if math.Abs(delta) <= constraints.MinTradeValue || turnoverUsed >= constraints.MaxTurnover {
			continue
		}

		price, ok := prices.Resolve(target.Symbol)
		if !ok {
			plan.Notes = append(plan.Notes, noteNoTradePrice(target.Symbol))
			continue
		}

		plan.Trades = append(plan.Trades, newTrade(target.Symbol, delta, price))

		turnoverUsed += math.Abs(delta) / plan.CurrentValue
		if turnoverUsed >= constraints.MaxTurnover {
			plan.Notes = append(plan.Notes, NoteTurnoverBudget)
			break
		}
	}

	if len(plan.Trades) == 0 {
		plan.Notes = append(plan.Notes, NoteWellBalanced)
	}

	return plan
}

func newTrade(symbol string, delta, price float64) model.Trade {
	trade := model.Trade{
		Symbol:   symbol,
		Side:     model.SideBuy,
		Quantity: roundQuantity(math.Abs(delta) / price),
		EstPrice: price,
		Reason:   model.ReasonIncreaseUnderweight,
	}

	if delta < 0 {
		trade.Side = model.SideSell
		trade.Reason = model.ReasonReduceOverweight
	}

	return trade
}

func roundQuantity(q float64) float64 {
	return decimal.NewFromFloat(q).Round(quantityPlaces).InexactFloat64()
}
