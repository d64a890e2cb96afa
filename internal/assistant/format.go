package assistant

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/shopspring/decimal"
)

var currencySigns = map[string]string{
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

func money(currency string, amount decimal.Decimal) string {
	if sign, ok := currencySigns[currency]; ok {
		if amount.IsNegative() {
			return "-" + sign + amount.Abs().StringFixed(2)
		}
		return sign + amount.StringFixed(2)
	}
	if currency == "" {
		return amount.StringFixed(2)
	}
	return amount.StringFixed(2) + " " + currency
}

func moneyf(currency string, amount float64) string {
	return money(currency, decimal.NewFromFloat(amount))
}

func percent(fraction float64) string {
	return decimal.NewFromFloat(fraction*100).StringFixed(1) + "%"
}

func quantity(q decimal.Decimal) string {
	return q.String()
}

func formatQuote(q model.Quote) string {
	return fmt.Sprintf("%s is trading at %s (%s today, source: %s)",
		q.Symbol, moneyf(q.Currency, q.Price), signedPercent(q.ChangePercent), q.Source)
}

func signedPercent(p float64) string {
	d := decimal.NewFromFloat(p).Round(2)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

func formatPlan(plan model.RebalancePlan, currency string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Portfolio rebalancing plan\nCurrent portfolio value: %s\n", moneyf(currency, plan.CurrentValue))

	if len(plan.Trades) == 0 {
		sb.WriteString("No trades needed.\n")
	} else {
		sb.WriteString("Recommended trades:\n")
		for i, t := range plan.Trades {
			fmt.Fprintf(&sb, "%d. %s %s %s @ ~%s (%s)\n",
				i+1, t.Side, decimal.NewFromFloat(t.Quantity).String(), t.Symbol, moneyf(currency, t.EstPrice), t.Reason)
		}
	}

	writeNotes(&sb, plan.Notes)
	return sb.String()
}

func formatValuation(v model.Valuation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total portfolio value: %s\n", moneyf(v.BaseCurrency, v.TotalValue))
	for _, p := range v.Positions {
		if !p.Priced {
			fmt.Fprintf(&sb, "- %s: %s shares, price unavailable\n", p.Symbol, decimal.NewFromFloat(p.Quantity).String())
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s shares @ %s = %s (%s)\n",
			p.Symbol,
			decimal.NewFromFloat(p.Quantity).String(),
			moneyf(v.BaseCurrency, p.Price),
			moneyf(v.BaseCurrency, p.Value),
			percent(p.Weight),
		)
	}

	writeNotes(&sb, v.Notes)
	return sb.String()
}

func writeNotes(sb *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	sb.WriteString("Notes:\n")
	for _, n := range notes {
		fmt.Fprintf(sb, "- %s\n", n)
	}
}
