package yahooApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/yahooModel"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	chartUrl        = "/v8/finance/chart/{symbol}"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	backoffFactor   = 1.5
	maxBackoffRatio = 5.0
)

type YahooApi struct {
	client *resty.Client

	mu                  sync.Mutex
	lastRequest         time.Time
	consecutiveFailures int
	minInterval         time.Duration
	maxInterval         time.Duration

	now func() time.Time
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.API.RetryCount).
		SetRetryWaitTime(cfg.API.RetryWait).
		SetRetryMaxWaitTime(cfg.API.YahooApi.MaxRequestInterval).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &YahooApi{
		client:      client,
		minInterval: cfg.API.YahooApi.MinRequestInterval,
		maxInterval: cfg.API.YahooApi.MaxRequestInterval,
		now:         time.Now,
	}
}

// GetQuote loads the latest quote of symbol from the chart endpoint.
func (a *YahooApi) GetQuote(ctx context.Context, symbol string) (quote model.Quote, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start YahooApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	defer func() {
		a.registerResult(err)
	}()

	if err = a.throttle(ctx); err != nil {
		return model.Quote{}, err
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    "1d",
		}).
		Get(chartUrl)

	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return model.Quote{}, fmt.Errorf("%w: symbol %s", externalApi.ErrNotFound, symbol)
	case resp.StatusCode() == http.StatusTooManyRequests:
		slog.Warn("YahooApi rate limit hit", slog.String("rqID", rqID), slog.String("symbol", symbol))
		return model.Quote{}, externalApi.ErrRateLimited
	case resp.StatusCode() != http.StatusOK:
		slog.Error(
			"YahooApi unexpected status",
			slog.String("rqID", rqID),
			slog.Int("status", resp.StatusCode()),
			slog.String("symbol", symbol),
		)
		return model.Quote{}, fmt.Errorf("%w: %d", externalApi.ErrBadStatus, resp.StatusCode())
	}

	chart := yahooModel.ChartResponse{}
	err = json.Unmarshal(resp.Body(), &chart)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.ChartResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	quote, err = a.parseChart(symbol, chart)
	if err != nil {
		slog.Error("can't parse chart data", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	slog.Debug("YahooApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return quote, nil
}

func (a *YahooApi) parseChart(symbol string, chart yahooModel.ChartResponse) (model.Quote, error) {
	if chart.Chart.Error != nil {
		return model.Quote{}, fmt.Errorf("%w: %s", externalApi.ErrNotFound, chart.Chart.Error.Description)
	}

	if len(chart.Chart.Result) == 0 {
		return model.Quote{}, fmt.Errorf("%w: empty chart for %s", externalApi.ErrNotFound, symbol)
	}

	meta := chart.Chart.Result[0].Meta

	price := meta.RegularMarketPrice
	if price <= 0 {
		price = meta.PreviousClose
	}
	if price <= 0 {
		return model.Quote{}, fmt.Errorf("%w: no price for %s", externalApi.ErrNotFound, symbol)
	}

	previousClose := meta.PreviousClose
	if previousClose <= 0 {
		previousClose = meta.ChartPreviousClose
	}
	if previousClose <= 0 {
		previousClose = price
	}

	dayHigh := meta.RegularMarketDayHigh
	if dayHigh <= 0 {
		dayHigh = price
	}

	dayLow := meta.RegularMarketDayLow
	if dayLow <= 0 {
		dayLow = price
	}

	currency, scale := CurrencyOf(symbol, meta.Currency)
	price *= scale
	previousClose *= scale
	dayHigh *= scale
	dayLow *= scale

	change := price - previousClose
	changePercent := change / previousClose * 100

	updatedAt := a.now().UTC()
	if meta.RegularMarketTime > 0 {
		updatedAt = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	return model.Quote{
		Symbol:        symbol,
		Price:         price,
		Currency:      currency,
		Change:        round2(change),
		ChangePercent: round2(changePercent),
		DayHigh:       dayHigh,
		DayLow:        dayLow,
		PreviousClose: previousClose,
		IsMarketOpen:  a.isMarketOpen(meta),
		Source:        model.QuoteSourceYahoo,
		UpdatedAt:     updatedAt,
	}, nil
}

func (a *YahooApi) isMarketOpen(meta yahooModel.ChartMeta) bool {
	if meta.MarketState != "" {
		return meta.MarketState == "REGULAR"
	}

	period := meta.CurrentTradingPeriod.Regular
	if period.Start == 0 || period.End == 0 {
		return false
	}

	now := a.now().Unix()
	return now >= period.Start && now < period.End
}

// CurrencyOf returns the ISO currency of a quote and the factor that converts its prices to it.
// London listings quoted in pence are converted to pounds.
func CurrencyOf(symbol, reported string) (string, float64) {
	switch reported {
	case "GBp", "GBX":
		return "GBP", 0.01
	case "":
	default:
		return strings.ToUpper(reported), 1
	}

	switch {
	case strings.HasSuffix(symbol, ".L"):
		return "GBP", 1
	case strings.HasSuffix(symbol, ".PA"), strings.HasSuffix(symbol, ".DE"), strings.HasSuffix(symbol, ".MI"):
		return "EUR", 1
	default:
		return "USD", 1
	}
}

// throttle spaces requests by the minimum interval, stretched after consecutive failures.
func (a *YahooApi) throttle(ctx context.Context) error {
	a.mu.Lock()
	interval := a.interval()
	wait := a.lastRequest.Add(interval).Sub(a.now())
	if wait < 0 {
		wait = 0
	}
	a.lastRequest = a.now().Add(wait)
	a.mu.Unlock()

	if wait == 0 {
		return nil
	}

	slog.Debug(
		"YahooApi rate limiting",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.Duration("sleep", wait),
		slog.Int("failures", a.failures()),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// interval must be called with mu held.
func (a *YahooApi) interval() time.Duration {
	if a.consecutiveFailures == 0 {
		return a.minInterval
	}

	ratio := math.Min(math.Pow(backoffFactor, float64(a.consecutiveFailures)), maxBackoffRatio)
	interval := time.Duration(float64(a.minInterval) * ratio)

	return min(interval, a.maxInterval)
}

func (a *YahooApi) registerResult(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err == nil || errors.Is(err, externalApi.ErrNotFound) {
		a.consecutiveFailures = 0
		return
	}

	a.consecutiveFailures++
}

func (a *YahooApi) failures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.consecutiveFailures
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
