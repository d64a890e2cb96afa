package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID         int64           `db:"id"`
	Symbol     string          `db:"symbol"`
	Side       string          `db:"side"`
	Quantity   decimal.Decimal `db:"quantity"`
	Price      decimal.Decimal `db:"price"`
	Currency   string          `db:"currency"`
	ExecutedAt time.Time       `db:"executed_at"`
}
