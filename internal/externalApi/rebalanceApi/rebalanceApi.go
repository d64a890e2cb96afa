package rebalanceApi

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/go-resty/resty/v2"
)

// RebalanceApi is the client of the rebalance service.
type RebalanceApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *RebalanceApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.RebalanceServiceUrl).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.API.RetryCount).
		SetRetryWaitTime(cfg.API.RetryWait).
		AddRetryCondition(externalApi.Retryable)
	return &RebalanceApi{client: client}
}

func (a *RebalanceApi) CreatePlan(ctx context.Context, req model.RebalanceRequest) (model.RebalancePlan, error) {
	plan := model.RebalancePlan{}
	err := a.post(ctx, "CreatePlan", "/rebalance/plan", req, &plan)
	return plan, err
}

func (a *RebalanceApi) AnalyzeAllocation(ctx context.Context, req model.RebalanceRequest) (model.AllocationReport, error) {
	report := model.AllocationReport{}
	err := a.post(ctx, "AnalyzeAllocation", "/rebalance/allocation", req, &report)
	return report, err
}

func (a *RebalanceApi) Valuate(ctx context.Context, portfolio model.Portfolio) (model.Valuation, error) {
	valuation := model.Valuation{}
	body := map[string]model.Portfolio{"portfolio": portfolio}
	err := a.post(ctx, "Valuate", "/rebalance/value", body, &valuation)
	return valuation, err
}

func (a *RebalanceApi) Health(ctx context.Context) (model.Health, error) {
	res := model.Health{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader(utils.RequestIDHeader, utils.GetRequestIDFromCtx(ctx)).
		SetResult(&res).
		Get("/health")
	if err != nil {
		return model.Health{}, err
	}

	if err = externalApi.StatusError(resp); err != nil {
		return model.Health{}, err
	}

	return res, nil
}

func (a *RebalanceApi) post(ctx context.Context, op, url string, body, result any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start RebalanceApi request", slog.String("rqID", rqID), slog.String("op", op))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader(utils.RequestIDHeader, rqID).
		SetBody(body).
		SetResult(result).
		Post(url)

	if err != nil {
		slog.Error("error while dialing RebalanceApi", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return err
	}

	if err = externalApi.StatusError(resp); err != nil {
		slog.Warn("RebalanceApi request failed", slog.String("err", err.Error()), slog.String("rqID", rqID), slog.String("op", op))
		return err
	}

	slog.Debug("RebalanceApi request complete", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}
