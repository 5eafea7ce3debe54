package db_models

import "github.com/google/uuid"

type CartItem struct {
	BaseModel
	OwnerKey string    `gorm:"size:80;not null;uniqueIndex:cart_owner_gift_key" json:"-"`
	GiftID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:cart_owner_gift_key" json:"gift_id"`
	Quantity int       `gorm:"not null;default:1" json:"quantity"`

	Gift Gift `gorm:"foreignKey:GiftID" json:"gift"`
}
