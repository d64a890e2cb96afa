package pricingService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/data/cache"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/externalApi/yahooApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/utils"
)

const sourceMixed = "mixed"

var symbolRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-^=]{0,15}$`)

type MarketApi interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (map[string]model.Quote, error)
	SetQuotes(ctx context.Context, quotes []model.Quote) error
}

type PricingService struct {
	cfg       *config.Config
	cache     Cache
	marketApi MarketApi
	now       func() time.Time
}

func New(cfg *config.Config, cache Cache, marketApi MarketApi) *PricingService {
	return &PricingService{
		cfg:       cfg,
		cache:     cache,
		marketApi: marketApi,
		now:       time.Now,
	}
}

// NormalizeSymbol upper-cases a ticker and rejects anything that cannot be one.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolRe.MatchString(s) {
		return "", fmt.Errorf("%w: %q", service.ErrInvalidSymbol, symbol)
	}
	return s, nil
}

func (s *PricingService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PricingService.GetQuote"

	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return model.Quote{}, err
	}

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		quote.Source = model.QuoteSourceCache
		return quote, nil
	}

	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("got error from cache.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	return s.fetch(ctx, symbol)
}

// GetQuotes resolves every symbol it can, unknown and malformed symbols are listed in Missing.
func (s *PricingService) GetQuotes(ctx context.Context, symbols []string) (model.QuotesResponse, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PricingService.GetQuotes"

	slog.Debug("GetQuotes start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("symbols", symbols))
	defer func() {
		slog.Debug("GetQuotes finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	normalized, invalid, err := s.normalizeAll(symbols)
	if err != nil {
		return model.QuotesResponse{}, err
	}

	res := model.QuotesResponse{
		Prices:  make(map[string]model.Quote, len(normalized)),
		Missing: invalid,
	}

	cached := map[string]model.Quote{}
	if len(normalized) > 0 {
		cached, err = s.cache.GetQuotes(ctx, normalized)
		if err != nil {
			slog.Warn("got error from cache.GetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			cached = map[string]model.Quote{}
		}
	}

	sources := make(map[string]struct{})
	var upstreamErr error
	for _, symbol := range normalized {
		if quote, ok := cached[symbol]; ok {
			quote.Source = model.QuoteSourceCache
			res.Prices[symbol] = quote
			sources[quote.Source] = struct{}{}
			continue
		}

		quote, err := s.fetch(ctx, symbol)
		if err != nil {
			if errors.Is(err, service.ErrUnavailable) {
				upstreamErr = err
			}
			res.Missing = append(res.Missing, symbol)
			continue
		}

		res.Prices[symbol] = quote
		sources[quote.Source] = struct{}{}
	}

	if len(res.Prices) == 0 && upstreamErr != nil {
		return model.QuotesResponse{}, upstreamErr
	}

	switch len(sources) {
	case 0:
	case 1:
		for src := range sources {
			res.Source = src
		}
	default:
		res.Source = sourceMixed
	}

	return res, nil
}

// WarmCache refreshes cached quotes of the watchlist, it returns how many symbols were refreshed.
func (s *PricingService) WarmCache(ctx context.Context) (int, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PricingService.WarmCache"

	slog.Debug("WarmCache start", slog.String("rqID", rqID), slog.String("op", op))

	quotes := make([]model.Quote, 0, len(s.cfg.Pricing.Watchlist))
	for _, symbol := range s.cfg.Pricing.Watchlist {
		symbol, err := NormalizeSymbol(symbol)
		if err != nil {
			continue
		}

		quote, err := s.marketApi.GetQuote(ctx, symbol)
		if err != nil {
			slog.Warn("WarmCache skipped symbol", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("err", err.Error()))
			if ctx.Err() != nil {
				return len(quotes), ctx.Err()
			}
			continue
		}

		quotes = append(quotes, quote)
	}

	if err := s.cache.SetQuotes(ctx, quotes); err != nil {
		slog.Error("got error from cache.SetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	slog.Debug("WarmCache finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("refreshed", len(quotes)))

	return len(quotes), nil
}

func (s *PricingService) fetch(ctx context.Context, symbol string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PricingService.fetch"

	quote, err := s.marketApi.GetQuote(ctx, symbol)
	if err == nil {
		if err := s.cache.SetQuotes(ctx, []model.Quote{quote}); err != nil {
			slog.Warn("got error from cache.SetQuotes", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
		return quote, nil
	}

	if fallback, ok := s.fallbackQuote(symbol); ok {
		slog.Warn("serving fallback quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
		return fallback, nil
	}

	if errors.Is(err, externalApi.ErrNotFound) {
		return model.Quote{}, fmt.Errorf("%w: price for %s", service.ErrNotFound, symbol)
	}

	slog.Error("got error from marketApi.GetQuote", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	return model.Quote{}, fmt.Errorf("%w: %w", service.ErrUnavailable, err)
}

func (s *PricingService) fallbackQuote(symbol string) (model.Quote, bool) {
	if !s.cfg.Pricing.FallbackEnabled {
		return model.Quote{}, false
	}

	price, ok := fallbackPrices[symbol]
	if !ok {
		return model.Quote{}, false
	}

	currency, _ := yahooApi.CurrencyOf(symbol, "")

	return model.Quote{
		Symbol:        symbol,
		Price:         price,
		Currency:      currency,
		DayHigh:       price,
		DayLow:        price,
		PreviousClose: price,
		Source:        model.QuoteSourceFallback,
		UpdatedAt:     s.now().UTC(),
	}, true
}

// normalizeAll dedups the valid symbols and returns the ones that cannot be tickers separately.
func (s *PricingService) normalizeAll(symbols []string) (valid, invalid []string, err error) {
	if len(symbols) == 0 {
		return nil, nil, fmt.Errorf("%w: no symbols", service.ErrInvalidSymbol)
	}

	valid = make([]string, 0, len(symbols))
	invalid = make([]string, 0)
	seen := make(map[string]struct{}, len(symbols))
	for _, raw := range symbols {
		symbol, err := NormalizeSymbol(raw)
		if err != nil {
			invalid = append(invalid, raw)
			continue
		}

		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		valid = append(valid, symbol)
	}

	if s.cfg.Pricing.MaxSymbols > 0 && len(valid) > s.cfg.Pricing.MaxSymbols {
		return nil, nil, fmt.Errorf("%w: %d > %d", service.ErrTooManySymbols, len(valid), s.cfg.Pricing.MaxSymbols)
	}

	return valid, invalid, nil
}
