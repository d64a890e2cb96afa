package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	Symbol     string          `json:"symbol"`
	Side       Side            `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	ExecutedAt time.Time       `json:"executedAt"`
}

type CostBasis struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	AvgCost      decimal.Decimal `json:"avgCost"`
	Currency     string          `json:"currency"`
	Transactions int             `json:"transactions"`
}
