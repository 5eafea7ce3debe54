package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "deseos/internal/models/db_models"
)

type GiftRepository interface {
	Create(ctx context.Context, gift *dbm.Gift) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.Gift, error)
	FindInList(ctx context.Context, listID, giftID uuid.UUID) (*dbm.Gift, error)
	ListByList(ctx context.Context, listID uuid.UUID) ([]dbm.Gift, error)
	Update(ctx context.Context, gift *dbm.Gift) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ClearCategory(ctx context.Context, categoryID uuid.UUID) error

	// Purchase takes qty units out of stock in a single conditional UPDATE. It reports false when the
	// gift is gone or has fewer than qty units left; stock never goes negative.
	Purchase(ctx context.Context, giftID uuid.UUID, qty int) (bool, error)

	WithTx(tx *gorm.DB) GiftRepository
}

type giftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) WithTx(tx *gorm.DB) GiftRepository {
	return &giftRepository{db: tx}
}

func (r *giftRepository) Create(ctx context.Context, gift *dbm.Gift) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(gift).Error
}

func (r *giftRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Gift, error) {
	var g dbm.Gift
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *giftRepository) FindInList(ctx context.Context, listID, giftID uuid.UUID) (*dbm.Gift, error) {
	var g dbm.Gift
	err := r.db.WithContext(ctx).
		Where("id = ? AND gift_list_id = ?", giftID, listID).
		First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *giftRepository) ListByList(ctx context.Context, listID uuid.UUID) ([]dbm.Gift, error) {
	var out []dbm.Gift
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("gift_list_id = ?", listID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *giftRepository) Update(ctx context.Context, gift *dbm.Gift) error {
	return r.db.WithContext(ctx).
		Model(gift).
		Select("name", "description", "image_url", "price", "stock", "category_id").
		Updates(gift).Error
}

func (r *giftRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&dbm.Gift{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *giftRepository) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&dbm.Gift{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}

func (r *giftRepository) Purchase(ctx context.Context, giftID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).
		Model(&dbm.Gift{}).
		Where("id = ? AND stock >= ?", giftID, qty).
		Updates(map[string]any{
			"stock":       gorm.Expr("stock - ?", qty),
			"sold":        gorm.Expr("sold + ?", qty),
			"contributed": gorm.Expr("contributed + price * ?", qty),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
