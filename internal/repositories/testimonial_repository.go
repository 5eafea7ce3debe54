package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"deseos/internal/models/db_models"
)

type TestimonialRepositoryInterface interface {
	CreateTestimonial(ctx context.Context, t *db_models.Testimonial) error
	ListApproved(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error)
	ListAll(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error)
	Approve(ctx context.Context, id uuid.UUID) (bool, error)
}

type TestimonialRepository struct {
	db *gorm.DB
}

func NewTestimonialRepository(db *gorm.DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

func (r *TestimonialRepository) CreateTestimonial(ctx context.Context, t *db_models.Testimonial) error {
	return r.db.WithContext(ctx).Omit("Author").Create(t).Error
}

func (r *TestimonialRepository) ListApproved(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error) {
	var out []db_models.Testimonial
	err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *TestimonialRepository) ListAll(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error) {
	var out []db_models.Testimonial
	err := r.db.WithContext(ctx).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *TestimonialRepository) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Testimonial{}).
		Where("id = ?", id).
		Update("approved", true)
	return res.RowsAffected > 0, res.Error
}
