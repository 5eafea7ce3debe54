package response_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartLine struct {
	GiftID     uuid.UUID       `json:"gift_id"`
	GiftListID uuid.UUID       `json:"gift_list_id"`
	Name       string          `json:"name"`
	ImageURL   string          `json:"image_url,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Available  int             `json:"available"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type PayoutBalance struct {
	GiftListID uuid.UUID       `json:"gift_list_id"`
	Approved   decimal.Decimal `json:"approved"`
	Committed  decimal.Decimal `json:"committed"`
	Available  decimal.Decimal `json:"available"`
}
