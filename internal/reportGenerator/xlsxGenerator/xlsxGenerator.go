package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/xuri/excelize/v2"
)

const (
	PlanSheet    = "Plan"
	TargetsSheet = "Portfolio"

	colorBlue   = "#cfe2f3"
	colorGreen  = "#d9ead3"
	colorOrange = "#f9cb9c"
	colorGrey   = "#cccccc"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// GeneratePlanReport renders the plan and the request it was computed from into a workbook.
func (g *XLSXGenerator) GeneratePlanReport(
	ctx context.Context,
	req model.RebalanceRequest,
	plan model.RebalancePlan,
) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.GeneratePlanReport"

	slog.Debug("GeneratePlanReport start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", PlanSheet); err != nil {
		return nil, "", err
	}

	if err = g.fillPlanSheet(f, req, plan); err != nil {
		slog.Error("got error while filling plan sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if _, err = f.NewSheet(TargetsSheet); err != nil {
		return nil, "", err
	}

	if err = g.fillPortfolioSheet(f, req); err != nil {
		slog.Error("got error while filling portfolio sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("GeneratePlanReport completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillPlanSheet(f *excelize.File, req model.RebalanceRequest, plan model.RebalancePlan) error {
	sheet := PlanSheet

	if err := g.sectionTitle(f, sheet, 1, "F", "Rebalance plan", colorBlue); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, "A2", "current value")
	_ = f.SetCellValue(sheet, "B2", plan.CurrentValue)
	_ = f.SetCellStr(sheet, "C2", req.Portfolio.BaseCurrency)
	_ = f.SetCellStr(sheet, "D2", "max turnover")
	_ = f.SetCellValue(sheet, "E2", req.Constraints.MaxTurnover)

	_ = f.SetCellStr(sheet, "A4", "symbol")
	_ = f.SetCellStr(sheet, "B4", "side")
	_ = f.SetCellStr(sheet, "C4", "quantity")
	_ = f.SetCellStr(sheet, "D4", "est. price")
	_ = f.SetCellStr(sheet, "E4", "notional")
	_ = f.SetCellStr(sheet, "F4", "reason")

	for i, trade := range plan.Trades {
		row := i + 5
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), trade.Symbol)
		_ = f.SetCellStr(sheet, fmt.Sprintf("B%d", row), string(trade.Side))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), trade.Quantity)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), trade.EstPrice)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), trade.Notional())
		_ = f.SetCellStr(sheet, fmt.Sprintf("F%d", row), trade.Reason)
	}

	rowNum := len(plan.Trades) + 7
	if err := g.sectionTitle(f, sheet, rowNum, "F", "Notes", colorGrey); err != nil {
		return err
	}

	for _, note := range plan.Notes {
		rowNum++
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", rowNum), note)
	}

	return nil
}

func (g *XLSXGenerator) fillPortfolioSheet(f *excelize.File, req model.RebalanceRequest) error {
	sheet := TargetsSheet

	if err := g.sectionTitle(f, sheet, 1, "C", "Positions", colorGreen); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, "A2", "symbol")
	_ = f.SetCellStr(sheet, "B2", "quantity")
	_ = f.SetCellStr(sheet, "C2", "avg cost")

	for i, pos := range req.Portfolio.Positions {
		row := i + 3
		_ = f.SetCellStr(sheet, fmt.Sprintf("A%d", row), pos.Symbol)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pos.Quantity)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), pos.AvgCost)
	}

	if err := g.sectionTitle(f, sheet, 1, "F", "Targets", colorOrange, "E"); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, "E2", "symbol")
	_ = f.SetCellStr(sheet, "F2", "weight")

	for i, tw := range req.Targets {
		row := i + 3
		_ = f.SetCellStr(sheet, fmt.Sprintf("E%d", row), tw.Symbol)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), tw.Weight)
	}

	return nil
}

// sectionTitle merges a header row from startCol (A by default) to endCol and colors it.
func (g *XLSXGenerator) sectionTitle(f *excelize.File, sheet string, row int, endCol, title, color string, startCol ...string) error {
	start := "A"
	if len(startCol) > 0 {
		start = startCol[0]
	}

	from := fmt.Sprintf("%s%d", start, row)
	to := fmt.Sprintf("%s%d", endCol, row)

	if err := f.MergeCell(sheet, from, to); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, from, title)

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err = f.SetCellStyle(sheet, from, from, styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	return nil
}
