package pricingApi

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/go-resty/resty/v2"
)

// PricingApi is the client of the pricing service.
type PricingApi struct {
	client   *resty.Client
	maxBatch int
}

func New(cfg *config.Config) *PricingApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.PricingServiceUrl).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.API.RetryCount).
		SetRetryWaitTime(cfg.API.RetryWait).
		AddRetryCondition(externalApi.Retryable)
	return &PricingApi{client: client, maxBatch: cfg.Pricing.MaxSymbols}
}

func (a *PricingApi) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start PricingApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	quote := model.Quote{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader(utils.RequestIDHeader, rqID).
		SetPathParam("symbol", symbol).
		SetResult(&quote).
		Get("/price/{symbol}")

	if err != nil {
		slog.Error("error while dialing PricingApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	if err = externalApi.StatusError(resp); err != nil {
		slog.Warn("PricingApi.GetQuote failed", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	slog.Debug("PricingApi.GetQuote request complete", slog.String("rqID", rqID))

	return quote, nil
}

func (a *PricingApi) GetQuotes(ctx context.Context, symbols []string) (model.QuotesResponse, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start PricingApi.GetQuotes request", slog.String("rqID", rqID), slog.Any("symbols", symbols))

	res := model.QuotesResponse{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader(utils.RequestIDHeader, rqID).
		SetBody(symbols).
		SetResult(&res).
		Post("/prices")

	if err != nil {
		slog.Error("error while dialing PricingApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.QuotesResponse{}, err
	}

	if err = externalApi.StatusError(resp); err != nil {
		slog.Warn("PricingApi.GetQuotes failed", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.QuotesResponse{}, err
	}

	slog.Debug("PricingApi.GetQuotes request complete", slog.String("rqID", rqID), slog.Int("found", len(res.Prices)))

	return res, nil
}

// Resolve returns prices keyed by the symbols as requested, missing symbols are absent.
// Requests are split into batches the pricing service accepts, a failed batch only loses its own symbols.
func (a *PricingApi) Resolve(ctx context.Context, symbols []string) (model.PriceMap, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	requested := make(map[string][]string, len(symbols))
	batch := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		normalized := strings.ToUpper(strings.TrimSpace(symbol))
		if normalized == "" {
			continue
		}
		if _, ok := requested[normalized]; !ok {
			batch = append(batch, normalized)
		}
		requested[normalized] = append(requested[normalized], symbol)
	}

	prices := make(model.PriceMap, len(symbols))
	if len(batch) == 0 {
		return prices, nil
	}

	size := a.maxBatch
	if size <= 0 {
		size = len(batch)
	}

	var lastErr error
	resolved := 0
	for chunk := range slices.Chunk(batch, size) {
		quotes, err := a.GetQuotes(ctx, chunk)
		if err != nil {
			slog.Warn("price batch failed", slog.String("rqID", rqID), slog.Int("symbols", len(chunk)), slog.String("err", err.Error()))
			lastErr = err
			continue
		}
		resolved++

		for symbol, quote := range quotes.Prices {
			for _, req := range requested[symbol] {
				prices[req] = quote.Price
			}
		}
	}

	if resolved == 0 {
		return nil, lastErr
	}

	return prices, nil
}

func (a *PricingApi) Health(ctx context.Context) (model.Health, error) {
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
