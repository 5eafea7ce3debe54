package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	dbm "deseos/internal/models/db_models"
	"deseos/pkg/utils"
)

func TestTransactionRepository_CreateValidates(t *testing.T) {
	db := newTestDB(t)
	fx := seed(t, db, 1000, 1)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &dbm.Transaction{Amount: decimal.NewFromInt(10), Currency: "CLP"})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	_, err = repo.Create(ctx, &dbm.Transaction{GiftListID: fx.list.ID, Amount: decimal.Zero, Currency: "CLP"})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	var n int64
	require.NoError(t, db.Model(&dbm.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)

	id, err := repo.Create(ctx, &dbm.Transaction{GiftListID: fx.list.ID, Amount: decimal.NewFromInt(10), Currency: "CLP"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dbm.TxnStatusPending, got.Status)
	assert.Equal(t, 1, got.Quantity)
}

func TestTransactionRepository_TerminalRowsAreImmutable(t *testing.T) {
	db := newTestDB(t)
	fx := seed(t, db, 1000, 1)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, &dbm.Transaction{GiftListID: fx.list.ID, Amount: decimal.NewFromInt(10), Currency: "CLP"})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, id, dbm.TxnStatusPending), utils.ErrInvalidTransition)
	require.NoError(t, repo.UpdateStatus(ctx, id, dbm.TxnStatusApproved))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, id, dbm.TxnStatusRejected), utils.ErrInvalidTransition)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), dbm.TxnStatusRejected), utils.ErrTransactionNotFound)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dbm.TxnStatusApproved, got.Status)
	assert.NotNil(t, got.PaidAt)
}

func TestTransactionRepository_ApplyGatewayResultOnlyTouchesPending(t *testing.T) {
	db := newTestDB(t)
	fx := seed(t, db, 1000, 2)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.Create(ctx, &dbm.Transaction{
			GiftListID:        fx.list.ID,
			GiftID:            &fx.gift.ID,
			Amount:            decimal.NewFromInt(1000),
			Currency:          "CLP",
			Gateway:           "mercadopago",
			ExternalReference: "ref-1",
		})
		require.NoError(t, err)
	}

	payload := datatypes.JSON(`{"id":123,"status":"approved"}`)
	n, err := repo.ApplyGatewayResult(ctx, "ref-1", dbm.TxnStatusApproved, "123", payload)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.ApplyGatewayResult(ctx, "ref-1", dbm.TxnStatusRejected, "123", payload)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.ApplyGatewayResult(ctx, "unknown", dbm.TxnStatusApproved, "9", nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := repo.GetByExternalReference(ctx, "ref-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, dbm.TxnStatusApproved, r.Status)
		assert.Equal(t, "123", r.GatewayPaymentID)
	}

	total, err := repo.ApprovedTotalForList(ctx, fx.list.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2000).Equal(total), "total = %s", total)
}

func TestTransactionRepository_ListsByUserAndList(t *testing.T) {
	db := newTestDB(t)
	fx := seed(t, db, 1000, 2)
	repo := NewTransactionRepository(db)
	ctx := context.Background()

	buyer := uuid.New()
	_, err := repo.Create(ctx, &dbm.Transaction{BuyerID: &buyer, GiftListID: fx.list.ID, Amount: decimal.NewFromInt(5), Currency: "CLP"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &dbm.Transaction{GiftListID: fx.list.ID, Amount: decimal.NewFromInt(7), Currency: "CLP"})
	require.NoError(t, err)

	mine, total, err := repo.GetByUser(ctx, buyer, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, mine, 1)

	byList, total, err := repo.GetByGiftList(ctx, fx.list.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byList, 2)
}

func TestWebhookEventRepository_RecordIsOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	ev := func() *dbm.WebhookEvent {
		return &dbm.WebhookEvent{EventKey: "mercadopago:ref-1:123:approved", Gateway: "mercadopago", EventType: "payment", ProcessedAt: 1}
	}

	first, err := repo.Record(ctx, ev())
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.Record(ctx, ev())
	require.NoError(t, err)
	assert.False(t, second)

	var n int64
	require.NoError(t, db.Model(&dbm.WebhookEvent{}).Where("event_key = ?", "mercadopago:ref-1:123:approved").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
