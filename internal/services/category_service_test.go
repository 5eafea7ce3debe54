package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Cocina y Baño":     "cocina-y-bano",
		"  Niños & Bebés  ": "ninos-bebes",
		"Electrónica":       "electronica",
		"2x1":               "2x1",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestCategoryService_CRUD(t *testing.T) {
	db := newTestDB(t)
	fx := seed(t, db, 1000, 1)
	ctx := context.Background()
	gifts := repositories.NewGiftRepository(db)
	svc := NewCategoryService(repositories.NewCategoryRepository(db), gifts, zap.NewNop())

	cat, err := svc.Create(ctx, request_models.CategoryRequest{Name: "Cocina"})
	require.NoError(t, err)
	assert.Equal(t, "cocina", cat.Slug)

	_, err = svc.Create(ctx, request_models.CategoryRequest{Name: "Cocina"})
	assert.ErrorIs(t, err, utils.ErrCategoryAlreadyExists)

	updated, err := svc.Update(ctx, cat.ID, request_models.CategoryRequest{Name: "Cocina y Baño"})
	require.NoError(t, err)
	assert.Equal(t, "cocina-y-bano", updated.Slug)

	require.NoError(t, db.Model(&dbm.Gift{}).Where("id = ?", fx.gift.ID).Update("category_id", cat.ID).Error)
	require.NoError(t, svc.Delete(ctx, cat.ID))

	g, err := gifts.FindByID(ctx, fx.gift.ID)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Nil(t, g.CategoryID, "gift survives without its category")

	assert.ErrorIs(t, svc.Delete(ctx, cat.ID), utils.ErrCategoryNotFound)
}

func TestTestimonialService_ApproveFlow(t *testing.T) {
	db := newTestDB(t)
	fx := seed(t, db, 1000, 1)
	ctx := context.Background()
	svc := NewTestimonialService(repositories.NewTestimonialRepository(db))

	_, err := svc.AddTestimonial(ctx, fx.buyer.ID, "Todo perfecto", 6)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	tm, err := svc.AddTestimonial(ctx, fx.buyer.ID, "  Todo perfecto ", 5)
	require.NoError(t, err)
	assert.Equal(t, "Todo perfecto", tm.Comment)

	approved, err := svc.GetApproved(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, approved)

	require.NoError(t, svc.Approve(ctx, tm.ID))
	approved, err = svc.GetApproved(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}
