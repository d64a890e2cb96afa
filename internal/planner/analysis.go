package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/KotFed0t/invest_assistant/internal/model"
)

const (
	targetSumTolerance = 0.01
	allocationOkDiff   = 2.0
	allocationWarnDiff = 5.0
)

// TargetWarnings reports target allocations whose weights do not add up to a whole portfolio.
func TargetWarnings(targets model.TargetAllocation) []string {
	if len(targets) == 0 {
		return []string{}
	}

	sum := targets.Sum()
	if math.Abs(sum-1) > targetSumTolerance {
		return []string{fmt.Sprintf("Target weights sum to %.2f; expected 1.00.", sum)}
	}

	return []string{}
}

// Valuate prices every position, unresolved positions are kept with zero value and a note.
func Valuate(portfolio model.Portfolio, prices model.PriceMap) model.Valuation {
	res := model.Valuation{
		BaseCurrency: portfolio.BaseCurrency,
		Positions:    make([]model.PositionValue, 0, len(portfolio.Positions)),
		Notes:        []string{},
	}

	for _, pos := range portfolio.Positions {
		pv := model.PositionValue{Symbol: pos.Symbol, Quantity: pos.Quantity}

		price, ok := prices.Resolve(pos.Symbol)
		if ok {
			pv.Price = price
			pv.Value = pos.Quantity * price
			pv.Priced = true
		} else {
			res.Notes = append(res.Notes, noteNoValuationPrice(pos.Symbol))
		}

		res.TotalValue += pv.Value
		res.Positions = append(res.Positions, pv)
	}

	if res.TotalValue > 0 {
		for i := range res.Positions {
			res.Positions[i].Weight = res.Positions[i].Value / res.TotalValue
		}
	}

	return res
}

// AnalyzeAllocation compares current and target weights, in percent, for every symbol held or targeted.
func AnalyzeAllocation(
	portfolio model.Portfolio,
	prices model.PriceMap,
	targets model.TargetAllocation,
) model.AllocationReport {
	valuation := Valuate(portfolio, prices)

	report := model.AllocationReport{
		TotalValue: valuation.TotalValue,
		Lines:      []model.AllocationLine{},
		Notes:      append(TargetWarnings(targets), valuation.Notes...),
	}

	values := make(map[string]float64, len(valuation.Positions))
	for _, pv := range valuation.Positions {
		values[pv.Symbol] += pv.Value
	}

	symbols := make([]string, 0, len(values)+len(targets))
	seen := make(map[string]struct{}, len(values)+len(targets))
	for _, s := range append(portfolio.Symbols(), targets.Symbols()...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, s := range symbols {
		line := model.AllocationLine{Symbol: s, CurrentValue: values[s]}

		if report.TotalValue > 0 {
			line.CurrentWeight = values[s] / report.TotalValue * 100
		}

		if w, ok := targets.Weight(s); ok {
			line.TargetWeight = w * 100
		}

		line.Difference = line.CurrentWeight - line.TargetWeight
		line.Status = allocationStatus(line.Difference)

		report.Lines = append(report.Lines, line)
	}

	if report.TotalValue <= 0 {
		report.Notes = append(report.Notes, NoteZeroValue)
	}

	return report
}

func allocationStatus(diff float64) model.AllocationStatus {
	switch d := math.Abs(diff); {
	case d < allocationOkDiff:
		return model.AllocationOK
	case d < allocationWarnDiff:
		return model.AllocationWarn
	default:
		return model.AllocationOff
	}
}
