package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

type CategoryServiceInterface interface {
	List(ctx context.Context) ([]dbm.Category, error)
	Create(ctx context.Context, req request_models.CategoryRequest) (*dbm.Category, error)
	Update(ctx context.Context, id uuid.UUID, req request_models.CategoryRequest) (*dbm.Category, error)
	// Delete removes the category and detaches it from every gift.
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryService struct {
	categories repositories.CategoryRepository
	gifts      repositories.GiftRepository
	log        *zap.Logger
}

func NewCategoryService(categories repositories.CategoryRepository, gifts repositories.GiftRepository, log *zap.Logger) CategoryServiceInterface {
	return &CategoryService{categories: categories, gifts: gifts, log: log}
}

func (s *CategoryService) List(ctx context.Context) ([]dbm.Category, error) {
	out, err := s.categories.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, req request_models.CategoryRequest) (*dbm.Category, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	c := &dbm.Category{Name: name, Slug: slugify(name), Description: strings.TrimSpace(req.Description)}
	if err := s.categories.Create(ctx, c); err != nil {
		s.log.Error("create category", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req request_models.CategoryRequest) (*dbm.Category, error) {
	c, err := s.categories.FindByID(ctx, id.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if c == nil {
		return nil, utils.ErrCategoryNotFound
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, c.ID); err != nil {
		return nil, err
	}
	c.Name = name
	c.Slug = slugify(name)
	c.Description = strings.TrimSpace(req.Description)
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.gifts.ClearCategory(ctx, id); err != nil {
		return utils.ErrDatabaseError
	}
	ok, err := s.categories.Delete(ctx, id.String())
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !ok {
		return utils.ErrCategoryNotFound
	}
	return nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if existing != nil && existing.ID != self {
		return utils.ErrCategoryAlreadyExists
	}
	return nil
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// slugify turns "Cocina y Baño" into "cocina-y-bano".
func slugify(name string) string {
	folded := strings.ToLower(accentFolder.Replace(name))
	var b strings.Builder
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
