package db_models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Gift struct {
	BaseModel
	GiftListID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"gift_list_id"`
	Name        string          `gorm:"size:160;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    string          `gorm:"size:512" json:"image_url,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Sold        int             `gorm:"not null;default:0" json:"sold"`
	Contributed decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"contributed"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`

	GiftList GiftList  `gorm:"foreignKey:GiftListID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
