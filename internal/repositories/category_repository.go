package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	dbm "deseos/internal/models/db_models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *dbm.Category) error
	FindByID(ctx context.Context, id string) (*dbm.Category, error)
	FindByName(ctx context.Context, name string) (*dbm.Category, error)
	List(ctx context.Context) ([]dbm.Category, error)
	Update(ctx context.Context, category *dbm.Category) error
	Delete(ctx context.Context, id string) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *dbm.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*dbm.Category, error) {
	var c dbm.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*dbm.Category, error) {
	var c dbm.Category
	if err := r.db.WithContext(ctx).First(&c, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]dbm.Category, error) {
	var out []dbm.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *categoryRepository) Update(ctx context.Context, category *dbm.Category) error {
	return r.db.WithContext(ctx).
		Model(category).
		Select("name", "slug", "description").
		Updates(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&dbm.Category{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
