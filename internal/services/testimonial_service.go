package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"deseos/internal/models/db_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

type TestimonialServiceInterface interface {
	AddTestimonial(ctx context.Context, userID uuid.UUID, comment string, rating int) (*db_models.Testimonial, error)
	GetApproved(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error)
	GetAll(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error)
	Approve(ctx context.Context, id uuid.UUID) error
}

type TestimonialService struct {
	testimonialRepo repositories.TestimonialRepositoryInterface
}

func NewTestimonialService(testimonialRepo repositories.TestimonialRepositoryInterface) TestimonialServiceInterface {
	return &TestimonialService{testimonialRepo: testimonialRepo}
}

func (s *TestimonialService) AddTestimonial(ctx context.Context, userID uuid.UUID, comment string, rating int) (*db_models.Testimonial, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", utils.ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: comment is required", utils.ErrInvalidInput)
	}

	testimonial := &db_models.Testimonial{
		AuthorID: userID,
		Comment:  comment,
		Rating:   rating,
	}

	if err := s.testimonialRepo.CreateTestimonial(ctx, testimonial); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return testimonial, nil
}

func (s *TestimonialService) GetApproved(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error) {
	return s.testimonialRepo.ListApproved(ctx, page, pageSize)
}

func (s *TestimonialService) GetAll(ctx context.Context, page, pageSize int) ([]db_models.Testimonial, error) {
	return s.testimonialRepo.ListAll(ctx, page, pageSize)
}

func (s *TestimonialService) Approve(ctx context.Context, id uuid.UUID) error {
	ok, err := s.testimonialRepo.Approve(ctx, id)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !ok {
		return utils.ErrNotFound
	}
	return nil
}
