package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/externalApi"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/service"
	"github.com/KotFed0t/invest_assistant/internal/transport/http/server"
	"github.com/KotFed0t/invest_assistant/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockPricingService) GetQuotes(ctx context.Context, symbols []string) (model.QuotesResponse, error) {
	args := m.Called(ctx, symbols)
	return args.Get(0).(model.QuotesResponse), args.Error(1)
}

func newTestServer(t *testing.T, svc PricingService) *httptest.Server {
	t.Helper()
	cfg := &config.Config{HTTP: config.HTTP{RequestTimeout: 5 * time.Second, PricingPort: 8011}}
	ts := httptest.NewServer(server.NewRouter(cfg, NewController(cfg, svc)))
	t.Cleanup(ts.Close)
	return ts
}

func TestGetQuote(t *testing.T) {
	svc := new(MockPricingService)
	svc.On("GetQuote", mock.Anything, "aapl").Return(model.Quote{Symbol: "AAPL", Price: 190.5, Currency: "USD", Source: model.QuoteSourceYahoo}, nil)

	ts := newTestServer(t, svc)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/price/aapl", nil)
	require.NoError(t, err)
	req.Header.Set(utils.RequestIDHeader, "rq-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rq-1", resp.Header.Get(utils.RequestIDHeader))

	quote := model.Quote{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quote))
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 190.5, quote.Price)
}

func TestGetQuote_Errors(t *testing.T) {
	svc := new(MockPricingService)
	svc.On("GetQuote", mock.Anything, "NOPE").Return(model.Quote{}, fmt.Errorf("%w: NOPE", service.ErrNotFound))
	svc.On("GetQuote", mock.Anything, "B@D").Return(model.Quote{}, fmt.Errorf("%w: B@D", service.ErrInvalidSymbol))
	svc.On("GetQuote", mock.Anything, "MSFT").Return(model.Quote{}, fmt.Errorf("%w: timeout", service.ErrUnavailable))

	ts := newTestServer(t, svc)

	cases := map[string]int{
		"NOPE": http.StatusNotFound,
		"B@D":  http.StatusBadRequest,
		"MSFT": http.StatusBadGateway,
	}
	for symbol, status := range cases {
		resp, err := http.Get(ts.URL + "/price/" + symbol)
		require.NoError(t, err)

		errResp := externalApi.ErrorResponse{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		resp.Body.Close()

		assert.Equal(t, status, resp.StatusCode, symbol)
		assert.NotEmpty(t, errResp.Error, symbol)
	}
}

func TestGetQuotes(t *testing.T) {
	svc := new(MockPricingService)
	svc.On("GetQuotes", mock.Anything, []string{"AAPL", "NOPE"}).Return(model.QuotesResponse{
		Prices:  map[string]model.Quote{"AAPL": {Symbol: "AAPL", Price: 190}},
		Missing: []string{"NOPE"},
		Source:  model.QuoteSourceCache,
	}, nil)

	ts := newTestServer(t, svc)

	resp, err := http.Post(ts.URL+"/prices", "application/json", strings.NewReader(`["AAPL","NOPE"]`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	res := model.QuotesResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, []string{"NOPE"}, res.Missing)
	assert.Contains(t, res.Prices, "AAPL")
}

func TestGetQuotes_BadBody(t *testing.T) {
	svc := new(MockPricingService)
	ts := newTestServer(t, svc)

	resp, err := http.Post(ts.URL+"/prices", "application/json", strings.NewReader(`{"symbols":"AAPL"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "GetQuotes", mock.Anything, mock.Anything)
}

func TestHealthAndAgentCard(t *testing.T) {
	ts := newTestServer(t, new(MockPricingService))

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	health := model.Health{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, AgentName, health.Agent)
	assert.Equal(t, model.StatusHealthy, health.Status)

	resp, err = http.Get(ts.URL + "/.well-known/agent-card")
	require.NoError(t, err)
	card := model.AgentCard{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	resp.Body.Close()
	assert.Equal(t, 8011, card.Port)
	assert.Equal(t, "/prices", card.Endpoints["multiple_prices"])
	assert.NotEmpty(t, resp.Header.Get(utils.RequestIDHeader))
}
