package response_models

import (
	"github.com/shopspring/decimal"

	dbm "deseos/internal/models/db_models"
)

type GiftListDetail struct {
	dbm.GiftList
	Expired bool `json:"expired"`
}

type ListTransactionsResponse struct {
	Page[dbm.Transaction]
	ApprovedTotal decimal.Decimal `json:"approved_total"`
}
