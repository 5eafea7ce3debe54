package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "deseos/internal/models/db_models"
)

type GiftListRepository interface {
	Create(ctx context.Context, list *dbm.GiftList) error
	FindByID(ctx context.Context, id string) (*dbm.GiftList, error)
	FindByShareToken(ctx context.Context, token string) (*dbm.GiftList, error)
	ListByOwner(ctx context.Context, ownerID string) ([]dbm.GiftList, error)
	ListPublic(ctx context.Context, now time.Time, page, pageSize int) ([]dbm.GiftList, int64, error)
	ListAll(ctx context.Context, page, pageSize int) ([]dbm.GiftList, int64, error)
	Update(ctx context.Context, list *dbm.GiftList) error
	// Delete soft-deletes the list and its gifts together.
	Delete(ctx context.Context, id string) (bool, error)
	WithTx(tx *gorm.DB) GiftListRepository
}

type giftListRepository struct {
	db *gorm.DB
}

func NewGiftListRepository(db *gorm.DB) GiftListRepository {
	return &giftListRepository{db: db}
}

func (r *giftListRepository) WithTx(tx *gorm.DB) GiftListRepository {
	return &giftListRepository{db: tx}
}

func (r *giftListRepository) Create(ctx context.Context, list *dbm.GiftList) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(list).Error
}

func (r *giftListRepository) FindByID(ctx context.Context, id string) (*dbm.GiftList, error) {
	var l dbm.GiftList
	err := r.db.WithContext(ctx).
		Preload("Gifts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&l, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *giftListRepository) FindByShareToken(ctx context.Context, token string) (*dbm.GiftList, error) {
	var l dbm.GiftList
	err := r.db.WithContext(ctx).
		Preload("Gifts", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&l, "share_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *giftListRepository) ListByOwner(ctx context.Context, ownerID string) ([]dbm.GiftList, error) {
	var out []dbm.GiftList
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *giftListRepository) ListPublic(ctx context.Context, now time.Time, page, pageSize int) ([]dbm.GiftList, int64, error) {
	var (
		out   []dbm.GiftList
		total int64
	)
	q := r.db.WithContext(ctx).
		Model(&dbm.GiftList{}).
		Where("visibility = ?", dbm.VisibilityPublic).
		Where("expires_at IS NULL OR expires_at = 0 OR expires_at >= ?", now.Unix())
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&out).Error
	return out, total, err
}

func (r *giftListRepository) ListAll(ctx context.Context, page, pageSize int) ([]dbm.GiftList, int64, error) {
	var (
		out   []dbm.GiftList
		total int64
	)
	q := r.db.WithContext(ctx).Model(&dbm.GiftList{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&out).Error
	return out, total, err
}

func (r *giftListRepository) Update(ctx context.Context, list *dbm.GiftList) error {
	return r.db.WithContext(ctx).
		Model(list).
		Select("title", "description", "visibility", "event_date", "expires_at").
		Updates(list).Error
}

func (r *giftListRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gift_list_id = ?", id).Delete(&dbm.Gift{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&dbm.GiftList{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
