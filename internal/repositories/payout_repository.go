package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "deseos/internal/models/db_models"
)

type PayoutRepository interface {
	Create(ctx context.Context, p *dbm.Payout) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.Payout, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]dbm.Payout, error)
	ListAll(ctx context.Context, status string, page, pageSize int) ([]dbm.Payout, int64, error)
	// CommittedForList sums every payout of the list that was not rejected.
	CommittedForList(ctx context.Context, listID uuid.UUID) (decimal.Decimal, error)
	// Transition moves the payout from -> to; false when it was no longer in from.
	Transition(ctx context.Context, id uuid.UUID, from, to dbm.PayoutStatus, note string) (bool, error)
	WithTx(tx *gorm.DB) PayoutRepository
}

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) WithTx(tx *gorm.DB) PayoutRepository {
	return &payoutRepository{db: tx}
}

func (r *payoutRepository) Create(ctx context.Context, p *dbm.Payout) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *payoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Payout, error) {
	var p dbm.Payout
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *payoutRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]dbm.Payout, error) {
	var out []dbm.Payout
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *payoutRepository) ListAll(ctx context.Context, status string, page, pageSize int) ([]dbm.Payout, int64, error) {
	var (
		out   []dbm.Payout
		total int64
	)
	q := r.db.WithContext(ctx).Model(&dbm.Payout{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&out).Error
	return out, total, err
}

func (r *payoutRepository) CommittedForList(ctx context.Context, listID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&dbm.Payout{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("gift_list_id = ? AND status <> ?", listID, dbm.PayoutRejected).
		Row().
		Scan(&total)
	return total, err
}

func (r *payoutRepository) Transition(ctx context.Context, id uuid.UUID, from, to dbm.PayoutStatus, note string) (bool, error) {
	updates := map[string]any{"status": to}
	if note != "" {
		updates["admin_note"] = note
	}
	res := r.db.WithContext(ctx).
		Model(&dbm.Payout{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}
