package db_models

// WebhookEvent records a gateway event whose side effects have already been applied.
type WebhookEvent struct {
	EventKey    string `gorm:"primaryKey;size:255"`
	Gateway     string `gorm:"size:32;index;not null"`
	EventType   string `gorm:"size:64"`
	ProcessedAt int64  `gorm:"not null"`
}
