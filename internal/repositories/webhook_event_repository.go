package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "deseos/internal/models/db_models"
)

type WebhookEventRepository interface {
	// Record inserts the event and reports false when its key was already recorded.
	Record(ctx context.Context, event *dbm.WebhookEvent) (bool, error)
	WithTx(tx *gorm.DB) WebhookEventRepository
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) WithTx(tx *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: tx}
}

func (r *webhookEventRepository) Record(ctx context.Context, event *dbm.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
