package dbConverter

import (
	"github.com/KotFed0t/invest_assistant/internal/model"
	"github.com/KotFed0t/invest_assistant/internal/model/dbModel"
)

func ConvertTransaction(dbTx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		Symbol:     dbTx.Symbol,
		Side:       model.Side(dbTx.Side),
		Quantity:   dbTx.Quantity,
		Price:      dbTx.Price,
		Total:      dbTx.Quantity.Mul(dbTx.Price),
		Currency:   dbTx.Currency,
		ExecutedAt: dbTx.ExecutedAt,
	}
}

func ConvertTransactions(dbTxs []dbModel.Transaction) []model.Transaction {
	res := make([]model.Transaction, 0, len(dbTxs))
	for _, dbTx := range dbTxs {
		res = append(res, ConvertTransaction(dbTx))
	}
	return res
}
