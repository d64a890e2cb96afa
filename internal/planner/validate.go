package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/KotFed0t/invest_assistant/internal/model"
)

// ValidationError lists every problem found in a rebalance request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid rebalance request: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate rejects requests the planner must not compute, it returns nil or *ValidationError.
func Validate(req model.RebalanceRequest) error {
	verr := &ValidationError{}

	positions := make(map[string]struct{}, len(req.Portfolio.Positions))
	for i, pos := range req.Portfolio.Positions {
		if strings.TrimSpace(pos.Symbol) == "" {
			verr.add("position %d: empty symbol", i)
			continue
		}

		if _, ok := positions[pos.Symbol]; ok {
			verr.add("duplicate position %s", pos.Symbol)
		}
		positions[pos.Symbol] = struct{}{}

		if !isFinite(pos.Quantity) || pos.Quantity < 0 {
			verr.add("position %s: quantity must be >= 0, got %v", pos.Symbol, pos.Quantity)
		}

		if !isFinite(pos.AvgCost) || pos.AvgCost < 0 {
			verr.add("position %s: avgCost must be >= 0, got %v", pos.Symbol, pos.AvgCost)
		}
	}

	targets := make(map[string]struct{}, len(req.Targets))
	for i, tw := range req.Targets {
		if strings.TrimSpace(tw.Symbol) == "" {
			verr.add("target %d: empty symbol", i)
			continue
		}

		if _, ok := targets[tw.Symbol]; ok {
			verr.add("duplicate target %s", tw.Symbol)
		}
		targets[tw.Symbol] = struct{}{}

		if !isFinite(tw.Weight) || tw.Weight < 0 || tw.Weight > 1 {
			verr.add("target %s: weight must be within [0, 1], got %v", tw.Symbol, tw.Weight)
		}
	}

	c := req.Constraints
	if !isFinite(c.MaxTurnover) || c.MaxTurnover < 0 || c.MaxTurnover > 1 {
		verr.add("maxTurnover must be within [0, 1], got %v", c.MaxTurnover)
	}

	if !isFinite(c.MinTradeValue) || c.MinTradeValue < 0 {
		verr.add("minTradeValue must be >= 0, got %v", c.MinTradeValue)
	}

	if len(verr.Problems) > 0 {
		return verr
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
