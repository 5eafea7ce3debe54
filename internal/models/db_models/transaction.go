package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TxnStatusPending  TransactionStatus = "pending"
	TxnStatusApproved TransactionStatus = "approved"
	TxnStatusRejected TransactionStatus = "rejected"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TxnStatusApproved || s == TxnStatusRejected
}

type Transaction struct {
	BaseModel
	BuyerID    *uuid.UUID        `gorm:"type:uuid;index" json:"buyer_id,omitempty"`
	GiftListID uuid.UUID         `gorm:"type:uuid;not null;index" json:"gift_list_id"`
	GiftID     *uuid.UUID        `gorm:"type:uuid;index" json:"gift_id,omitempty"`
	Quantity   int               `gorm:"not null;default:1" json:"quantity"`
	Amount     decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency   string            `gorm:"size:3;not null" json:"currency"` // ISO 4217
	Status     TransactionStatus `gorm:"size:16;not null;index" json:"status"`

	// Gateway fields
	Gateway           string `gorm:"size:32;index" json:"gateway,omitempty"`
	ExternalReference string `gorm:"size:128;index" json:"external_reference,omitempty"`
	GatewayPaymentID  string `gorm:"size:64" json:"gateway_payment_id,omitempty"`
	PaidAt            *int64 `json:"paid_at,omitempty"`

	// Request snapshot and raw gateway payloads
	Metadata       datatypes.JSON `gorm:"default:'{}'" json:"metadata"`
	GatewayPayload datatypes.JSON `gorm:"default:'{}'" json:"-"`

	GiftList GiftList `gorm:"foreignKey:GiftListID" json:"-"`
	Gift     *Gift    `gorm:"foreignKey:GiftID" json:"-"`
}
