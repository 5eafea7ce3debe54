package db_models

import (
	"time"

	"github.com/google/uuid"
)

type ListVisibility string

const (
	VisibilityPublic   ListVisibility = "public"
	VisibilityPrivate  ListVisibility = "private"
	VisibilityLinkOnly ListVisibility = "link_only"
)

func (v ListVisibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityLinkOnly:
		return true
	}
	return false
}

type GiftList struct {
	BaseModel
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string         `gorm:"size:160;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ShareToken  string         `gorm:"size:64;uniqueIndex;not null" json:"share_token"`
	Visibility  ListVisibility `gorm:"size:16;not null;default:'link_only'" json:"visibility"`
	EventDate   *int64         `json:"event_date,omitempty"`
	ExpiresAt   *int64         `gorm:"index" json:"expires_at,omitempty"`

	Owner Account `gorm:"foreignKey:OwnerID" json:"-"`
	Gifts []Gift  `gorm:"foreignKey:GiftListID" json:"gifts,omitempty"`
}

// IsExpired reports whether the list stopped accepting contributions at t.
func (l *GiftList) IsExpired(t time.Time) bool {
	return l.ExpiresAt != nil && *l.ExpiresAt > 0 && t.Unix() > *l.ExpiresAt
}
