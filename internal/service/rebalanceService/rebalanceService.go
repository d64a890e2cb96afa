package rebalanceService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/planner"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
)

const ExportFilePrefix = "rebalance_plan_"

// PriceOracle resolves current prices, partial results are allowed.
type PriceOracle interface {
	Resolve(ctx context.Context, symbols []string) (model.PriceMap, error)
}

type ReportGenerator interface {
	GeneratePlanReport(ctx context.Context, req model.RebalanceRequest, plan model.RebalancePlan) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type RebalanceService struct {
	oracle    PriceOracle
	generator ReportGenerator
	storage   CloudStorage
	now       func() time.Time
}

// New builds the service, storage may be nil when exports are not uploaded.
func New(oracle PriceOracle, generator ReportGenerator, storage CloudStorage) *RebalanceService {
	return &RebalanceService{
		oracle:    oracle,
		generator: generator,
		storage:   storage,
		now:       time.Now,
	}
}

func (s *RebalanceService) CreatePlan(ctx context.Context, req model.RebalanceRequest) (model.RebalancePlan, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RebalanceService.CreatePlan"

	slog.Debug("CreatePlan start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("CreatePlan finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err := planner.Validate(req); err != nil {
		slog.Info("rejected rebalance request", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.RebalancePlan{}, err
	}

	prices := s.resolvePrices(ctx, req.Symbols())

	return planner.Plan(req, prices)
}

func (s *RebalanceService) AnalyzeAllocation(ctx context.Context, req model.RebalanceRequest) (model.AllocationReport, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RebalanceService.AnalyzeAllocation"

	slog.Debug("AnalyzeAllocation start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("AnalyzeAllocation finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if err := planner.Validate(req); err != nil {
		return model.AllocationReport{}, err
	}

	prices := s.resolvePrices(ctx, req.Symbols())

	return planner.AnalyzeAllocation(req.Portfolio, prices, req.Targets), nil
}

func (s *RebalanceService) Valuate(ctx context.Context, portfolio model.Portfolio) (model.Valuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RebalanceService.Valuate"

	slog.Debug("Valuate start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Valuate finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	req := model.NewRebalanceRequest()
	req.Portfolio = portfolio
	if err := planner.Validate(req); err != nil {
		return model.Valuation{}, err
	}

	prices := s.resolvePrices(ctx, portfolio.Symbols())

	return planner.Valuate(portfolio, prices), nil
}

// ExportPlan computes the plan and renders it to xlsx, uploading it when storage is configured.
func (s *RebalanceService) ExportPlan(ctx context.Context, req model.RebalanceRequest) (model.PlanExport, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RebalanceService.ExportPlan"

	slog.Debug("ExportPlan start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportPlan finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	plan, err := s.CreatePlan(ctx, req)
	if err != nil {
		return model.PlanExport{}, err
	}

	content, ext, err := s.generator.GeneratePlanReport(ctx, req, plan)
	if err != nil {
		slog.Error("got error from generator.GeneratePlanReport", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PlanExport{}, err
	}

	export := model.PlanExport{
		FileName: fmt.Sprintf("%s%s%s", ExportFilePrefix, s.now().UTC().Format("20060102_150405"), ext),
		Content:  content,
	}

	if s.storage == nil {
		return export, nil
	}

	export.Link, err = s.storage.UploadFile(ctx, bytes.NewReader(content), export.FileName)
	if err != nil {
		slog.Error("got error from storage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PlanExport{}, fmt.Errorf("%w: %w", service.ErrUnavailable, err)
	}

	return export, nil
}

func (s *RebalanceService) CleanExports(ctx context.Context) error {
	if s.storage == nil {
		return service.ErrStorageNotEnabled
	}
	return s.storage.DeleteOldFiles(ctx)
}

// resolvePrices degrades to an empty price map when the oracle fails, the planner turns that into notes.
func (s *RebalanceService) resolvePrices(ctx context.Context, symbols []string) model.PriceMap {
	rqID := utils.GetRequestIDFromCtx(ctx)

	prices, err := s.oracle.Resolve(ctx, symbols)
	if err != nil {
		slog.Warn("price oracle unavailable", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.PriceMap{}
	}

	return prices
}
