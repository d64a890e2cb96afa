package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGeneratePlanReport(t *testing.T) {
	req := model.NewRebalanceRequest()
	req.Portfolio.Positions = []model.Position{{Symbol: "AAPL", Quantity: 10, AvgCost: 150}}
	req.Targets = model.TargetAllocation{{Symbol: "AAPL", Weight: 0.5}, {Symbol: "MSFT", Weight: 0.5}}

	plan := model.RebalancePlan{
		CurrentValue: 2000,
		Trades: []model.Trade{
			{Symbol: "AAPL", Side: model.SideSell, Quantity: 5, EstPrice: 200, Reason: model.ReasonReduceOverweight},
		},
		Notes: []string{"Turnover budget reached; some trades skipped."},
	}

	content, ext, err := New().GeneratePlanReport(context.Background(), req, plan)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PlanSheet, TargetsSheet}, f.GetSheetList())

	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Rebalance plan", cell(PlanSheet, "A1"))
	assert.Equal(t, "2000", cell(PlanSheet, "B2"))
	assert.Equal(t, "AAPL", cell(PlanSheet, "A5"))
	assert.Equal(t, "SELL", cell(PlanSheet, "B5"))
	assert.Equal(t, "1000", cell(PlanSheet, "E5"))
	assert.Equal(t, "Notes", cell(PlanSheet, "A8"))
	assert.Equal(t, "Turnover budget reached; some trades skipped.", cell(PlanSheet, "A9"))

	assert.Equal(t, "AAPL", cell(TargetsSheet, "A3"))
	assert.Equal(t, "MSFT", cell(TargetsSheet, "E4"))
	assert.Equal(t, "0.5", cell(TargetsSheet, "F4"))
}
