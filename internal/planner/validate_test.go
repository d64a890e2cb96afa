package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() model.RebalanceRequest {
	req := model.NewRebalanceRequest()
	req.Portfolio.Positions = []model.Position{
		{Symbol: "AAPL", Quantity: 10, AvgCost: 150},
		{Symbol: "MSFT", Quantity: 0, AvgCost: 0},
	}
	req.Targets = model.TargetAllocation{{Symbol: "AAPL", Weight: 0.5}, {Symbol: "MSFT", Weight: 0.5}}
	return req
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, Validate(validRequest()))
	assert.NoError(t, Validate(model.NewRebalanceRequest()))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.RebalanceRequest)
	}{
		{"empty symbol", func(r *model.RebalanceRequest) { r.Portfolio.Positions[0].Symbol = " " }},
		{"duplicate position", func(r *model.RebalanceRequest) { r.Portfolio.Positions[1].Symbol = "AAPL" }},
		{"negative quantity", func(r *model.RebalanceRequest) { r.Portfolio.Positions[0].Quantity = -0.01 }},
		{"nan quantity", func(r *model.RebalanceRequest) { r.Portfolio.Positions[0].Quantity = math.NaN() }},
		{"negative avg cost", func(r *model.RebalanceRequest) { r.Portfolio.Positions[0].AvgCost = -1 }},
		{"duplicate target", func(r *model.RebalanceRequest) { r.Targets[1].Symbol = "AAPL" }},
		{"empty target symbol", func(r *model.RebalanceRequest) { r.Targets[1].Symbol = "" }},
		{"weight above one", func(r *model.RebalanceRequest) { r.Targets[0].Weight = 1.01 }},
		{"negative weight", func(r *model.RebalanceRequest) { r.Targets[0].Weight = -0.1 }},
		{"nan weight", func(r *model.RebalanceRequest) { r.Targets[0].Weight = math.NaN() }},
		{"turnover above one", func(r *model.RebalanceRequest) { r.Constraints.MaxTurnover = 1.5 }},
		{"negative turnover", func(r *model.RebalanceRequest) { r.Constraints.MaxTurnover = -0.2 }},
		{"negative min trade", func(r *model.RebalanceRequest) { r.Constraints.MinTradeValue = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := Validate(req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Problems, 1)
			assert.Contains(t, err.Error(), "invalid rebalance request")
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	req := validRequest()
	req.Portfolio.Positions[0].Quantity = -1
	req.Targets[0].Weight = 2
	req.Constraints.MinTradeValue = -5

	var verr *ValidationError
	require.ErrorAs(t, Validate(req), &verr)
	assert.Len(t, verr.Problems, 3)
}
