package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "deseos/internal/models/db_models"
)

// CartRepository persists carts keyed by "user:<id>" or "session:<sid>". Rows are hard-deleted so
// the (owner_key, gift_id) unique index stays usable.
type CartRepository interface {
	List(ctx context.Context, ownerKey string) ([]dbm.CartItem, error)
	// Add inserts the gift or increments its quantity when it is already in the cart.
	Add(ctx context.Context, ownerKey string, giftID uuid.UUID, qty int) error
	Remove(ctx context.Context, ownerKey string, giftID uuid.UUID) (bool, error)
	Clear(ctx context.Context, ownerKey string) error
	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) List(ctx context.Context, ownerKey string) ([]dbm.CartItem, error) {
	var out []dbm.CartItem
	err := r.db.WithContext(ctx).
		Preload("Gift").
		Where("owner_key = ?", ownerKey).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *cartRepository) Add(ctx context.Context, ownerKey string, giftID uuid.UUID, qty int) error {
	item := &dbm.CartItem{
		OwnerKey: ownerKey,
		GiftID:   giftID,
		Quantity: qty,
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_key"}, {Name: "gift_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + ?", qty),
				"updated_at": time.Now().Unix(),
			}),
		}).
		Create(item).Error
}

func (r *cartRepository) Remove(ctx context.Context, ownerKey string, giftID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("owner_key = ? AND gift_id = ?", ownerKey, giftID).
		Delete(&dbm.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *cartRepository) Clear(ctx context.Context, ownerKey string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("owner_key = ?", ownerKey).
		Delete(&dbm.CartItem{}).Error
}
