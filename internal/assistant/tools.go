package assistant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/KotFed0t/invest_assistant/data/repository"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

const allSymbols = "ALL"

var errNoHistory = errors.New("transaction history is not available")

type PriceSource interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetQuotes(ctx context.Context, symbols []string) (model.QuotesResponse, error)
}

type Rebalancer interface {
	CreatePlan(ctx context.Context, req model.RebalanceRequest) (model.RebalancePlan, error)
	Valuate(ctx context.Context, portfolio model.Portfolio) (model.Valuation, error)
}

type TransactionStore interface {
	GetTransactions(ctx context.Context, symbol string) ([]model.Transaction, error)
	GetCostBasis(ctx context.Context, symbol string) (model.CostBasis, error)
}

type toolbox struct {
	prices     PriceSource
	rebalancer Rebalancer
	store      TransactionStore
}

// NewTools builds the functions offered to the model. store may be nil when no history is kept.
func NewTools(prices PriceSource, rebalancer Rebalancer, store TransactionStore) []Function {
	tb := &toolbox{prices: prices, rebalancer: rebalancer, store: store}

	return []Function{
		&Func{Decl: stockPriceDecl, Func: tb.stockPrice},
		&Func{Decl: multiplePricesDecl, Func: tb.multiplePrices},
		&Func{Decl: rebalancingPlanDecl, Func: tb.rebalancingPlan},
		&Func{Decl: portfolioValueDecl, Func: tb.portfolioValue},
		&Func{Decl: marketContextDecl, Func: marketContext},
		&Func{Decl: transactionHistoryDecl, Func: tb.transactionHistory},
		&Func{Decl: positionPerformanceDecl, Func: tb.positionPerformance},
		&Func{Decl: costBasisDecl, Func: tb.costBasis},
	}
}

func stringParam(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func textResponse(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

var stockPriceDecl = &genai.FunctionDeclaration{
	Name: "get_stock_price",
	Description: `Get the current price of a stock with its currency.
	Use this when the user asks about a stock price, a quote or a current trading value.`,
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"symbol": stringParam("Stock ticker symbol, e.g. AAPL, MSFT or LLOY.L for London listings."),
		},
		Required: []string{"symbol"},
	},
	Response: textResponse("The current price, daily change and data source."),
}

func (tb *toolbox) stockPrice(ctx context.Context, args map[string]any) (string, error) {
	symbol := strings.ToUpper(stringArg(args, "symbol", ""))
	if symbol == "" {
		return "", errors.New("symbol is required")
	}

	q, err := tb.prices.GetQuote(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("unable to get price for %s: %w", symbol, err)
	}
	return formatQuote(q), nil
}

var multiplePricesDecl = &genai.FunctionDeclaration{
	Name:        "get_multiple_stock_prices",
	Description: "Get current prices for several stocks at once. Use this when the user asks about more than one stock.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"symbols": stringParam(`Comma separated ticker symbols, e.g. "AAPL,MSFT,GOOGL".`),
		},
		Required: []string{"symbols"},
	},
	Response: textResponse("One line per symbol with its price, or a note when unavailable."),
}

func (tb *toolbox) multiplePrices(ctx context.Context, args map[string]any) (string, error) {
	symbols := splitSymbols(stringArg(args, "symbols", ""))
	if len(symbols) == 0 {
		return "", errors.New("symbols are required")
	}

	res, err := tb.prices.GetQuotes(ctx, symbols)
	if err != nil {
		return "", fmt.Errorf("unable to get prices: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Stock prices:\n")
	for _, s := range symbols {
		q, ok := res.Prices[s]
		if !ok {
			fmt.Fprintf(&sb, "- %s: not available\n", s)
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", s, moneyf(q.Currency, q.Price), signedPercent(q.ChangePercent))
	}
	return sb.String(), nil
}

var rebalancingPlanDecl = &genai.FunctionDeclaration{
	Name: "create_rebalancing_plan",
	Description: `Create a portfolio rebalancing plan with specific trades. Use this when the user wants to rebalance.
	Extract the holdings from the conversation history. If the user mentioned "10 AMZN, 5 AAPL" convert it to
	[{"symbol":"AMZN","quantity":10},{"symbol":"AAPL","quantity":5}].
	For "equal weights" or "25/25/25/25" give every held symbol the same weight, e.g. {"AMZN":0.5,"AAPL":0.5}.
	Targets are applied in the order given, put the most important symbols first.`,
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"portfolio_json":  stringParam(`JSON array of positions: [{"symbol":"AAPL","quantity":10,"avgCost":150}].`),
			"targets_json":    stringParam(`JSON object of target weights as fractions: {"AAPL":0.4,"MSFT":0.6}.`),
			"max_turnover":    stringParam(`Maximum traded share of the portfolio value, default "0.2".`),
			"min_trade_value": stringParam(`Smallest trade worth placing in money, default "100.0".`),
		},
		Required: []string{"portfolio_json", "targets_json"},
	},
	Response: textResponse("The portfolio value, the ordered trades and the planner notes."),
}

func (tb *toolbox) rebalancingPlan(ctx context.Context, args map[string]any) (string, error) {
	req := model.NewRebalanceRequest()

	positions, err := parsePositions(stringArg(args, "portfolio_json", ""))
	if err != nil {
		return "", err
	}
	req.Portfolio.Positions = positions

	req.Targets, err = parseTargets(stringArg(args, "targets_json", "{}"))
	if err != nil {
		return "", err
	}

	req.Constraints.MaxTurnover, err = floatArg(args, "max_turnover", model.DefaultMaxTurnover)
	if err != nil {
		return "", err
	}
	req.Constraints.MinTradeValue, err = floatArg(args, "min_trade_value", model.DefaultMinTradeValue)
	if err != nil {
		return "", err
	}

	plan, err := tb.rebalancer.CreatePlan(ctx, req)
	if err != nil {
		return "", fmt.Errorf("rebalancing failed: %w", err)
	}
	return formatPlan(plan, req.Portfolio.BaseCurrency), nil
}

var portfolioValueDecl = &genai.FunctionDeclaration{
	Name: "analyze_portfolio_value",
	Description: `Value a portfolio: total value and the share of every position.
	Use this when the user lists holdings or asks about portfolio value or composition.
	Accepts a JSON positions array or the simple form "AAPL: 10, MSFT: 5".`,
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"portfolio_json": stringParam(`Positions as JSON [{"symbol":"AAPL","quantity":10}] or "AAPL: 10, MSFT: 5".`),
		},
		Required: []string{"portfolio_json"},
	},
	Response: textResponse("The total value and a line per position."),
}

func (tb *toolbox) portfolioValue(ctx context.Context, args map[string]any) (string, error) {
	positions, err := parsePositions(stringArg(args, "portfolio_json", ""))
	if err != nil {
		return "", err
	}

	portfolio := model.Portfolio{BaseCurrency: model.DefaultBaseCurrency, Positions: positions}
	v, err := tb.rebalancer.Valuate(ctx, portfolio)
	if err != nil {
		return "", fmt.Errorf("valuation failed: %w", err)
	}
	return formatValuation(v), nil
}

var marketContextDecl = &genai.FunctionDeclaration{
	Name:        "get_market_context",
	Description: "Explain an investment concept. Use this for educational questions about diversification, rebalancing, turnover or allocation.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"topic": stringParam("The concept to explain."),
		},
		Required: []string{"topic"},
	},
	Response: textResponse("A short explanation of the concept."),
}

var marketTopics = []struct {
	key  string
	text string
}{
	{"diversification", "Diversification spreads investments across different assets to reduce risk, since assets behave differently under different market conditions."},
	{"rebalancing", "Rebalancing brings a portfolio back to its target allocation. As some holdings grow faster than others the portfolio drifts from the intended mix."},
	{"turnover", "Portfolio turnover measures how much of a portfolio changes over a period. High turnover usually means higher transaction costs and taxes."},
	{"allocation", "Asset allocation is how investments are divided among asset categories like stocks, bonds and cash. It is a key driver of portfolio performance."},
}

func marketContext(_ context.Context, args map[string]any) (string, error) {
	topic := strings.ToLower(stringArg(args, "topic", ""))
	for _, t := range marketTopics {
		if strings.Contains(topic, t.key) {
			return t.text, nil
		}
	}
	return "I can explain market concepts like diversification, rebalancing, turnover and allocation.", nil
}

var transactionHistoryDecl = &genai.FunctionDeclaration{
	Name:        "get_transaction_history",
	Description: "Get the recorded trades for a symbol or for all holdings. Use this when the user asks when or at what price they bought.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"symbol": stringParam(`Ticker symbol, or "ALL" for every holding. Defaults to "ALL".`),
		},
	},
	Response: textResponse("The trades grouped by symbol with a cost summary."),
}

func (tb *toolbox) transactionHistory(ctx context.Context, args map[string]any) (string, error) {
	if tb.store == nil {
		return "", errNoHistory
	}

	symbol := strings.ToUpper(stringArg(args, "symbol", allSymbols))
	if symbol == allSymbols {
		symbol = ""
	}

	txs, err := tb.store.GetTransactions(ctx, symbol)
	if err != nil {
		return "", historyError(symbol, err)
	}
	if len(txs) == 0 {
		return "No transactions recorded.", nil
	}

	var sb strings.Builder
	invested := make(map[string]decimal.Decimal)

	for _, group := range groupBySymbol(txs) {
		sym := group[0].Symbol
		fmt.Fprintf(&sb, "%s:\n", sym)
		for _, tx := range group {
			fmt.Fprintf(&sb, "- %s: %s %s shares @ %s = %s\n",
				tx.ExecutedAt.Format("2006-01-02"), tx.Side, quantity(tx.Quantity),
				money(tx.Currency, tx.Price), money(tx.Currency, tx.Total))
		}

		basis := repository.CostBasisOf(sym, group)
		fmt.Fprintf(&sb, "  Holding %s shares, average cost %s, cost basis %s\n",
			quantity(basis.Quantity), money(basis.Currency, basis.AvgCost), money(basis.Currency, basis.TotalCost))
		invested[basis.Currency] = invested[basis.Currency].Add(basis.TotalCost)
	}

	if symbol == "" {
		currencies := make([]string, 0, len(invested))
		for c := range invested {
			currencies = append(currencies, c)
		}
		slices.Sort(currencies)

		totals := make([]string, 0, len(currencies))
		for _, c := range currencies {
			totals = append(totals, money(c, invested[c]))
		}
		fmt.Fprintf(&sb, "Total invested: %s\n", strings.Join(totals, " + "))
	}

	return sb.String(), nil
}

var positionPerformanceDecl = &genai.FunctionDeclaration{
	Name:        "analyze_position_performance",
	Description: "Analyze a position: cost basis, current value and unrealized profit or loss. Use this when the user asks about gains, losses or returns.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"symbol":        stringParam("Ticker symbol of the position."),
			"current_price": stringParam("Optional current price, fetched from the market when omitted."),
		},
		Required: []string{"symbol"},
	},
	Response: textResponse("The position summary with unrealized P&L when a price is known."),
}

func (tb *toolbox) positionPerformance(ctx context.Context, args map[string]any) (string, error) {
	if tb.store == nil {
		return "", errNoHistory
	}

	symbol := strings.ToUpper(stringArg(args, "symbol", ""))
	if symbol == "" {
		return "", errors.New("symbol is required")
	}

	price, err := floatArg(args, "current_price", 0)
	if err != nil {
		return "", err
	}

	basis, err := tb.store.GetCostBasis(ctx, symbol)
	if err != nil {
		return "", historyError(symbol, err)
	}

	if price <= 0 {
		if q, qErr := tb.prices.GetQuote(ctx, symbol); qErr == nil {
			price = q.Price
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s position\n", symbol)
	fmt.Fprintf(&sb, "- Shares owned: %s\n", quantity(basis.Quantity))
	fmt.Fprintf(&sb, "- Average cost: %s\n", money(basis.Currency, basis.AvgCost))
	fmt.Fprintf(&sb, "- Cost basis: %s\n", money(basis.Currency, basis.TotalCost))
	fmt.Fprintf(&sb, "- Transactions: %d\n", basis.Transactions)

	if price <= 0 {
		sb.WriteString("- Current price unavailable, P&L not computed\n")
		return sb.String(), nil
	}

	current := decimal.NewFromFloat(price)
	value := current.Mul(basis.Quantity)
	pnl := value.Sub(basis.TotalCost)

	fmt.Fprintf(&sb, "- Current price: %s\n", money(basis.Currency, current))
	fmt.Fprintf(&sb, "- Current value: %s\n", money(basis.Currency, value))
	if basis.TotalCost.IsPositive() {
		pct := pnl.Div(basis.TotalCost).Mul(decimal.NewFromInt(100))
		fmt.Fprintf(&sb, "- Unrealized P&L: %s (%s)\n", money(basis.Currency, pnl), signedPercent(pct.InexactFloat64()))
	} else {
		fmt.Fprintf(&sb, "- Unrealized P&L: %s\n", money(basis.Currency, pnl))
	}

	return sb.String(), nil
}

var costBasisDecl = &genai.FunctionDeclaration{
	Name:        "get_cost_basis_info",
	Description: "Get the average cost and invested amount of a holding or of all holdings. Use this when the user asks about purchase prices or cost basis.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"symbol": stringParam(`Ticker symbol, or "ALL" for every holding. Defaults to "ALL".`),
		},
	},
	Response: textResponse("Shares held, average cost and cost basis per symbol."),
}

func (tb *toolbox) costBasis(ctx context.Context, args map[string]any) (string, error) {
	if tb.store == nil {
		return "", errNoHistory
	}

	symbol := strings.ToUpper(stringArg(args, "symbol", allSymbols))
	if symbol != allSymbols {
		basis, err := tb.store.GetCostBasis(ctx, symbol)
		if err != nil {
			return "", historyError(symbol, err)
		}
		return fmt.Sprintf("%s cost basis\n- Average cost: %s\n- Shares held: %s\n- Total investment: %s\n",
			symbol, money(basis.Currency, basis.AvgCost), quantity(basis.Quantity), money(basis.Currency, basis.TotalCost)), nil
	}

	txs, err := tb.store.GetTransactions(ctx, "")
	if err != nil {
		return "", historyError("", err)
	}

	var sb strings.Builder
	sb.WriteString("Portfolio cost basis:\n")
	for _, group := range groupBySymbol(txs) {
		basis := repository.CostBasisOf(group[0].Symbol, group)
		fmt.Fprintf(&sb, "- %s: %s shares @ %s average cost\n",
			basis.Symbol, quantity(basis.Quantity), money(basis.Currency, basis.AvgCost))
	}
	return sb.String(), nil
}

// groupBySymbol splits history already ordered by symbol into one slice per symbol.
func groupBySymbol(txs []model.Transaction) [][]model.Transaction {
	res := make([][]model.Transaction, 0)
	for i, tx := range txs {
		if i == 0 || tx.Symbol != txs[i-1].Symbol {
			res = append(res, []model.Transaction{})
		}
		res[len(res)-1] = append(res[len(res)-1], tx)
	}
	return res
}

func historyError(symbol string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("no transaction history found for %s", symbol)
	}
	return fmt.Errorf("cannot read transaction history: %w", err)
}
