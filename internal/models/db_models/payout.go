package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutRequested PayoutStatus = "requested"
	PayoutApproved  PayoutStatus = "approved"
	PayoutPaid      PayoutStatus = "paid"
	PayoutRejected  PayoutStatus = "rejected"
)

// CanMoveTo reports whether an admin may move a payout from s to next.
func (s PayoutStatus) CanMoveTo(next PayoutStatus) bool {
	switch s {
	case PayoutRequested:
		return next == PayoutApproved || next == PayoutRejected
	case PayoutApproved:
		return next == PayoutPaid || next == PayoutRejected
	}
	return false
}

type Payout struct {
	BaseModel
	GiftListID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"gift_list_id"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null" json:"currency"`
	Status        PayoutStatus    `gorm:"size:16;not null;index" json:"status"`
	BankName      string          `gorm:"size:80" json:"bank_name"`
	AccountNumber string          `gorm:"size:40" json:"account_number"`
	AccountHolder string          `gorm:"size:120" json:"account_holder"`
	AdminNote     string          `gorm:"type:text" json:"admin_note,omitempty"`
}
