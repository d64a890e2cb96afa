package repository

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/invest_assistant/config"
	"github.com/KotFed0t/invest_assistant/internal/converter/dbConverter"
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/dbModel"
	"github.com/KotFed0t/invest_assistant/utils"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Postgres struct {
	db  *sqlx.DB
	cfg *config.Config
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, cfg: cfg}
}

// GetTransactions returns the trade history of symbol, or of every symbol when it is empty.
func (r *Postgres) GetTransactions(ctx context.Context, symbol string) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT id, symbol, side, quantity, price, currency, executed_at
		FROM transactions
		WHERE ($1 = '' OR symbol = $1)
		ORDER BY symbol, executed_at, id
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("symbol", symbol))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	dbTxs := make([]dbModel.Transaction, 0)
	err = r.db.SelectContext(ctx, &dbTxs, query, symbol)
	if err != nil {
		return nil, err
	}

	if len(dbTxs) == 0 && symbol != "" {
		return nil, ErrNotFound
	}

	return dbConverter.ConvertTransactions(dbTxs), nil
}

// GetCostBasis rebuilds the average cost of symbol from its history, sells leave the average unchanged.
func (r *Postgres) GetCostBasis(ctx context.Context, symbol string) (model.CostBasis, error) {
	txs, err := r.GetTransactions(ctx, symbol)
	if err != nil {
		return model.CostBasis{}, err
	}

	return CostBasisOf(symbol, txs), nil
}

func CostBasisOf(symbol string, txs []model.Transaction) model.CostBasis {
	res := model.CostBasis{
		Symbol:    symbol,
		Quantity:  decimal.Zero,
		TotalCost: decimal.Zero,
		AvgCost:   decimal.Zero,
	}

	for _, tx := range txs {
		if tx.Symbol != symbol {
			continue
		}

		res.Currency = tx.Currency
		res.Transactions++

		switch tx.Side {
		case model.SideBuy:
			res.Quantity = res.Quantity.Add(tx.Quantity)
			res.TotalCost = res.TotalCost.Add(tx.Total)
		case model.SideSell:
			res.TotalCost = res.TotalCost.Sub(res.AvgCost.Mul(tx.Quantity))
			res.Quantity = res.Quantity.Sub(tx.Quantity)
		}

		if res.Quantity.IsPositive() {
			res.AvgCost = res.TotalCost.Div(res.Quantity)
		} else {
			res.Quantity = decimal.Zero
			res.TotalCost = decimal.Zero
			res.AvgCost = decimal.Zero
		}
	}

	return res
}
