package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

func newCartHarness(t *testing.T, price int64, stock int) (*paymentHarness, CartServiceInterface) {
	t.Helper()
	h := newPaymentHarness(t, price, stock)
	cart := NewCartService(repositories.NewCartRepository(h.db), repositories.NewGiftRepository(h.db), h.svc, zap.NewNop())
	return h, cart
}

func TestCartService_AddChecksStock(t *testing.T) {
	h, cart := newCartHarness(t, 2500, 3)
	ctx := context.Background()
	rc := RequestContext{SessionID: "cart-sid"}
	giftID := h.fx.gift.ID.String()

	view, err := cart.Add(ctx, rc, request_models.CartItemRequest{GiftID: giftID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(5000).Equal(view.Total))

	_, err = cart.Add(ctx, rc, request_models.CartItemRequest{GiftID: giftID, Quantity: 2})
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)

	view, err = cart.Add(ctx, rc, request_models.CartItemRequest{GiftID: giftID})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Items[0].Quantity)

	other, err := cart.Get(ctx, RequestContext{SessionID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, other.Items)

	view, err = cart.Remove(ctx, rc, h.fx.gift.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = cart.Get(ctx, RequestContext{})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestCartService_CheckoutDelegatesAndClears(t *testing.T) {
	h, cart := newCartHarness(t, 2500, 3)
	ctx := context.Background()
	rc := userCtx(h.fx.buyer.ID)

	_, err := cart.Checkout(ctx, rc, request_models.CartCheckoutRequest{})
	assert.ErrorIs(t, err, utils.ErrEmptyCart)

	_, err = cart.Add(ctx, rc, request_models.CartItemRequest{GiftID: h.fx.gift.ID.String(), Quantity: 2})
	require.NoError(t, err)

	res, err := cart.Checkout(ctx, rc, request_models.CartCheckoutRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RedirectURL)
	require.Len(t, res.TransactionIDs, 1)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionIDs[0]).Error)
	assert.Equal(t, dbm.TxnStatusPending, txn.Status)
	assert.True(t, decimal.NewFromInt(5000).Equal(txn.Amount))

	view, err := cart.Get(ctx, rc)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartService_GatewayFailureKeepsCart(t *testing.T) {
	h, cart := newCartHarness(t, 2500, 3)
	ctx := context.Background()
	rc := RequestContext{SessionID: "cart-sid"}
	h.mp.checkoutErr = assert.AnError

	_, err := cart.Add(ctx, rc, request_models.CartItemRequest{GiftID: h.fx.gift.ID.String()})
	require.NoError(t, err)

	_, err = cart.Checkout(ctx, rc, request_models.CartCheckoutRequest{})
	assert.ErrorIs(t, err, utils.ErrGateway)

	view, err := cart.Get(ctx, rc)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}
