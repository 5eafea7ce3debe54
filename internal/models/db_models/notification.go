package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationPaymentConfirmed NotificationType = "payment_confirmed"
	NotificationGiftPurchased    NotificationType = "gift_purchased"
	NotificationPayoutUpdated    NotificationType = "payout_updated"
)

type Notification struct {
	BaseModel
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Type        NotificationType `gorm:"size:32;not null" json:"type"`
	Title       string           `gorm:"size:160;not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Link        string           `gorm:"size:512" json:"link,omitempty"`
	IsRead      bool             `gorm:"not null;default:false;index" json:"is_read"`
	Payload     datatypes.JSON   `gorm:"default:'{}'" json:"payload,omitempty"`
}
