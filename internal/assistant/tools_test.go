package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.Quote), args.Error(1)
}

func (m *MockPriceSource) GetQuotes(ctx context.Context, symbols []string) (model.QuotesResponse, error) {
	args := m.Called(ctx, symbols)
	return args.Get(0).(model.QuotesResponse), args.Error(1)
}

type MockRebalancer struct {
	mock.Mock
}

func (m *MockRebalancer) CreatePlan(ctx context.Context, req model.RebalanceRequest) (model.RebalancePlan, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.RebalancePlan), args.Error(1)
}

func (m *MockRebalancer) Valuate(ctx context.Context, portfolio model.Portfolio) (model.Valuation, error) {
	args := m.Called(ctx, portfolio)
	return args.Get(0).(model.Valuation), args.Error(1)
}

type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) GetTransactions(ctx context.Context, symbol string) ([]model.Transaction, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockTransactionStore) GetCostBasis(ctx context.Context, symbol string) (model.CostBasis, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(model.CostBasis), args.Error(1)
}

func tx(symbol string, side model.Side, qty, price float64, currency, date string) model.Transaction {
	executedAt, _ := time.Parse("2006-01-02", date)
	q, p := decimal.NewFromFloat(qty), decimal.NewFromFloat(price)
	return model.Transaction{
		Symbol:     symbol,
		Side:       side,
		Quantity:   q,
		Price:      p,
		Total:      q.Mul(p),
		Currency:   currency,
		ExecutedAt: executedAt,
	}
}

func demoHistory() []model.Transaction {
	return []model.Transaction{
		tx("AAPL", model.SideBuy, 50, 185.50, "USD", "2024-01-15"),
		tx("AAPL", model.SideBuy, 100, 225.30, "USD", "2024-03-20"),
		tx("LLOY.L", model.SideBuy, 2500, 0.842, "GBP", "2024-01-08"),
	}
}

func call(t *testing.T, functions []Function, name string, args map[string]any) map[string]any {
	t.Helper()
	resp := NewLibrary(functions)(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
	require.NotNil(t, resp)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, name, resp.Name)
	return resp.Response
}

func TestNewTools_Declarations(t *testing.T) {
	decls := NewDeclarations(NewTools(nil, nil, nil))

	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"get_stock_price",
		"get_multiple_stock_prices",
		"create_rebalancing_plan",
		"analyze_portfolio_value",
		"get_market_context",
		"get_transaction_history",
		"analyze_position_performance",
		"get_cost_basis_info",
	}, names)
}

func TestLibrary_UnknownFunction(t *testing.T) {
	res := call(t, NewTools(nil, nil, nil), "sell_everything", nil)
	assert.Equal(t, "unknown function sell_everything", res["error"])
}

func TestStockPrice(t *testing.T) {
	prices := new(MockPriceSource)
	prices.On("GetQuote", mock.Anything, "AAPL").Return(model.Quote{
		Symbol: "AAPL", Price: 190.12, Currency: "USD", ChangePercent: 1.25, Source: model.QuoteSourceYahoo,
	}, nil)

	res := call(t, NewTools(prices, nil, nil), "get_stock_price", map[string]any{"symbol": "aapl"})

	assert.Equal(t, "AAPL is trading at $190.12 (+1.25% today, source: yahoo_finance)", res["output"])
	prices.AssertExpectations(t)
}

func TestStockPrice_Errors(t *testing.T) {
	prices := new(MockPriceSource)
	prices.On("GetQuote", mock.Anything, "NOPE").Return(model.Quote{}, errors.New("not found"))

	tools := NewTools(prices, nil, nil)

	res := call(t, tools, "get_stock_price", map[string]any{"symbol": "nope"})
	assert.Equal(t, "unable to get price for NOPE: not found", res["error"])

	res = call(t, tools, "get_stock_price", map[string]any{})
	assert.Equal(t, "symbol is required", res["error"])
}

func TestMultiplePrices(t *testing.T) {
	prices := new(MockPriceSource)
	prices.On("GetQuotes", mock.Anything, []string{"AAPL", "LLOY.L", "NOPE"}).Return(model.QuotesResponse{
		Prices: map[string]model.Quote{
			"AAPL":   {Symbol: "AAPL", Price: 190, Currency: "USD", ChangePercent: -0.5},
			"LLOY.L": {Symbol: "LLOY.L", Price: 0.55, Currency: "GBP"},
		},
		Missing: []string{"NOPE"},
	}, nil)

	res := call(t, NewTools(prices, nil, nil), "get_multiple_stock_prices", map[string]any{"symbols": "aapl, lloy.l,nope"})

	assert.Equal(t, "Stock prices:\n- AAPL: $190.00 (-0.50%)\n- LLOY.L: £0.55 (+0.00%)\n- NOPE: not available\n", res["output"])
}

func TestRebalancingPlan(t *testing.T) {
	rebalancer := new(MockRebalancer)
	rebalancer.On("CreatePlan", mock.Anything, mock.MatchedBy(func(req model.RebalanceRequest) bool {
		return req.Portfolio.BaseCurrency == model.DefaultBaseCurrency &&
			len(req.Portfolio.Positions) == 2 &&
			req.Targets.Symbols()[0] == "MSFT" &&
			req.Constraints.MaxTurnover == 0.3 &&
			req.Constraints.MinTradeValue == model.DefaultMinTradeValue
	})).Return(model.RebalancePlan{
		CurrentValue: 3000,
		Trades: []model.Trade{
			{Symbol: "AAPL", Side: model.SideSell, Quantity: 5, EstPrice: 200, Reason: model.ReasonReduceOverweight},
		},
		Notes: []string{"Turnover budget reached."},
	}, nil)

	res := call(t, NewTools(nil, rebalancer, nil), "create_rebalancing_plan", map[string]any{
		"portfolio_json": `[{"symbol":"AAPL","quantity":10},{"symbol":"MSFT","quantity":10}]`,
		"targets_json":   `{"MSFT":0.5,"AAPL":0.5}`,
		"max_turnover":   "0.3",
	})

	out, ok := res["output"].(string)
	require.True(t, ok, res)
	assert.Contains(t, out, "Current portfolio value: $3000.00")
	assert.Contains(t, out, "1. SELL 5 AAPL @ ~$200.00 (Reduce overweight)")
	assert.Contains(t, out, "- Turnover budget reached.")
	rebalancer.AssertExpectations(t)
}

func TestRebalancingPlan_BadInput(t *testing.T) {
	rebalancer := new(MockRebalancer)
	tools := NewTools(nil, rebalancer, nil)

	res := call(t, tools, "create_rebalancing_plan", map[string]any{
		"portfolio_json": `[{"symbol":"AAPL","quantity":10}]`,
		"targets_json":   `not json`,
	})
	assert.Contains(t, res["error"], "invalid targets JSON")

	res = call(t, tools, "create_rebalancing_plan", map[string]any{
		"portfolio_json": `[{"symbol":"AAPL","quantity":10}]`,
		"targets_json":   `{"AAPL":1}`,
		"max_turnover":   "lots",
	})
	assert.Contains(t, res["error"], "max_turnover")

	rebalancer.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
}

func TestPortfolioValue(t *testing.T) {
	rebalancer := new(MockRebalancer)
	rebalancer.On("Valuate", mock.Anything, model.Portfolio{
		BaseCurrency: "USD",
		Positions:    []model.Position{{Symbol: "AAPL", Quantity: 10}, {Symbol: "ZZZZ", Quantity: 1}},
	}).Return(model.Valuation{
		BaseCurrency: "USD",
		TotalValue:   2000,
		Positions: []model.PositionValue{
			{Symbol: "AAPL", Quantity: 10, Price: 200, Value: 2000, Weight: 1, Priced: true},
			{Symbol: "ZZZZ", Quantity: 1},
		},
		Notes: []string{"No price available for ZZZZ; valued at 0."},
	}, nil)

	res := call(t, NewTools(nil, rebalancer, nil), "analyze_portfolio_value", map[string]any{"portfolio_json": "AAPL: 10, ZZZZ: 1"})

	assert.Equal(t,
		"Total portfolio value: $2000.00\n"+
			"- AAPL: 10 shares @ $200.00 = $2000.00 (100.0%)\n"+
			"- ZZZZ: 1 shares, price unavailable\n"+
			"Notes:\n- No price available for ZZZZ; valued at 0.\n",
		res["output"])
}

func TestMarketContext(t *testing.T) {
	tools := NewTools(nil, nil, nil)

	res := call(t, tools, "get_market_context", map[string]any{"topic": "What is Rebalancing?"})
	assert.Contains(t, res["output"], "Rebalancing brings a portfolio back")

	res = call(t, tools, "get_market_context", map[string]any{"topic": "options"})
	assert.Contains(t, res["output"], "I can explain market concepts")
}

func TestTransactionHistory_All(t *testing.T) {
	store := new(MockTransactionStore)
	store.On("GetTransactions", mock.Anything, "").Return(demoHistory(), nil)

	res := call(t, NewTools(nil, nil, store), "get_transaction_history", map[string]any{})

	out, ok := res["output"].(string)
	require.True(t, ok, res)
	assert.Contains(t, out, "AAPL:\n- 2024-01-15: BUY 50 shares @ $185.50 = $9275.00\n")
	assert.Contains(t, out, "Holding 150 shares, average cost $212.03, cost basis $31805.00")
	assert.Contains(t, out, "LLOY.L:\n- 2024-01-08: BUY 2500 shares @ £0.84 = £2105.00\n")
	assert.Contains(t, out, "Total invested: £2105.00 + $31805.00")
}

func TestTransactionHistory_Errors(t *testing.T) {
	res := call(t, NewTools(nil, nil, nil), "get_transaction_history", map[string]any{"symbol": "AAPL"})
	assert.Equal(t, errNoHistory.Error(), res["error"])

	store := new(MockTransactionStore)
	store.On("GetTransactions", mock.Anything, "NOPE").Return(nil, repository.ErrNotFound)

	res = call(t, NewTools(nil, nil, store), "get_transaction_history", map[string]any{"symbol": "nope"})
	assert.Equal(t, "no transaction history found for NOPE", res["error"])
}

func TestPositionPerformance(t *testing.T) {
	store := new(MockTransactionStore)
	store.On("GetCostBasis", mock.Anything, "AAPL").Return(repository.CostBasisOf("AAPL", demoHistory()), nil)

	res := call(t, NewTools(nil, nil, store), "analyze_position_performance", map[string]any{"symbol": "AAPL", "current_price": "250"})

	out, ok := res["output"].(string)
	require.True(t, ok, res)
	assert.Contains(t, out, "- Shares owned: 150\n")
	assert.Contains(t, out, "- Current value: $37500.00\n")
	assert.Contains(t, out, "- Unrealized P&L: $5695.00 (+17.91%)\n")
}

func TestPositionPerformance_FetchesPrice(t *testing.T) {
	store := new(MockTransactionStore)
	store.On("GetCostBasis", mock.Anything, "AAPL").Return(repository.CostBasisOf("AAPL", demoHistory()), nil)
	prices := new(MockPriceSource)
	prices.On("GetQuote", mock.Anything, "AAPL").Return(model.Quote{Symbol: "AAPL", Price: 200}, nil)

	res := call(t, NewTools(prices, nil, store), "analyze_position_performance", map[string]any{"symbol": "AAPL"})

	assert.Contains(t, res["output"], "- Unrealized P&L: -$1805.00 (-5.68%)\n")
	prices.AssertExpectations(t)
}

func TestPositionPerformance_NoPrice(t *testing.T) {
	store := new(MockTransactionStore)
	store.On("GetCostBasis", mock.Anything, "AAPL").Return(repository.CostBasisOf("AAPL", demoHistory()), nil)
	prices := new(MockPriceSource)
	prices.On("GetQuote", mock.Anything, "AAPL").Return(model.Quote{}, errors.New("unavailable"))

	res := call(t, NewTools(prices, nil, store), "analyze_position_performance", map[string]any{"symbol": "AAPL"})

	assert.Contains(t, res["output"], "Current price unavailable")
}

func TestCostBasis(t *testing.T) {
	store := new(MockTransactionStore)
	store.On("GetCostBasis", mock.Anything, "AAPL").Return(repository.CostBasisOf("AAPL", demoHistory()), nil)
	store.On("GetTransactions", mock.Anything, "").Return(demoHistory(), nil)

	tools := NewTools(nil, nil, store)

	res := call(t, tools, "get_cost_basis_info", map[string]any{"symbol": "aapl"})
	assert.Equal(t, "AAPL cost basis\n- Average cost: $212.03\n- Shares held: 150\n- Total investment: $31805.00\n", res["output"])

	res = call(t, tools, "get_cost_basis_info", map[string]any{})
	assert.Equal(t, "Portfolio cost basis:\n- AAPL: 150 shares @ $212.03 average cost\n- LLOY.L: 2500 shares @ £0.84 average cost\n", res["output"])
}

func TestGroupBySymbol(t *testing.T) {
	groups := groupBySymbol(demoHistory())
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
	assert.Empty(t, groupBySymbol(nil))
}
