package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/services/gateway"
	"deseos/pkg/utils"
)

func TestProcessPayment_ChargesPriceTimesQuantity(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx := context.Background()
	rc := RequestContext{SessionID: "sid-1", IP: "10.0.0.1"}

	res, err := h.svc.ProcessPayment(ctx, rc, request_models.PaymentRequest{
		GiftListID: h.fx.list.ID.String(),
		GiftID:     h.fx.gift.ID.String(),
		Amount:     "1",
		Quantity:   intPtr(2),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MsgPaymentRegistered, res.Message)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionID).Error)
	assert.True(t, decimal.NewFromInt(2000).Equal(txn.Amount), "amount = %s", txn.Amount)
	assert.Equal(t, dbm.TxnStatusApproved, txn.Status)
	assert.Equal(t, "CLP", txn.Currency)
	assert.Equal(t, 2, txn.Quantity)
	assert.NotEmpty(t, txn.ExternalReference)
	assert.NotNil(t, txn.PaidAt)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(txn.Metadata, &meta))
	assert.EqualValues(t, 2, meta["quantity"])
	assert.Equal(t, "10.0.0.1", meta["ip"])
	assert.Equal(t, "sid-1", meta["session"])

	g := h.gift(t)
	assert.Equal(t, 3, g.Stock)
	assert.Equal(t, 2, g.Sold)

	flash, err := h.sessions.PopFlash(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, MsgPaymentRegistered, flash)

	assert.EqualValues(t, 1, h.notificationsFor(t, h.fx.owner.ID))
	assert.Equal(t, 1, h.mailer.sentTo(h.fx.owner.Email))
}

func TestProcessPayment_ContributionUsesSubmittedAmount(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	rc := userCtx(h.fx.buyer.ID)

	res, err := h.svc.ProcessPayment(context.Background(), rc, request_models.PaymentRequest{
		GiftListID: h.fx.list.ID.String(),
		Amount:     "15000",
		Currency:   "usd",
	})
	require.NoError(t, err)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionID).Error)
	assert.True(t, decimal.NewFromInt(15000).Equal(txn.Amount))
	assert.Equal(t, "USD", txn.Currency)
	assert.Nil(t, txn.GiftID)
	require.NotNil(t, txn.BuyerID)
	assert.Equal(t, h.fx.buyer.ID, *txn.BuyerID)

	assert.Equal(t, 5, h.gift(t).Stock)
	assert.EqualValues(t, 1, h.notificationsFor(t, h.fx.buyer.ID))
	assert.Equal(t, 1, h.mailer.sentTo(h.fx.buyer.Email))
}

func TestProcessPayment_InvalidInputWritesNothing(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	listID := h.fx.list.ID.String()

	cases := map[string]request_models.PaymentRequest{
		"zero amount":     {GiftListID: listID, Amount: "0"},
		"negative amount": {GiftListID: listID, Amount: "-10"},
		"garbage amount":  {GiftListID: listID, Amount: "mil"},
		"sub-cent amount": {GiftListID: listID, Amount: "0.001"},
		"zero quantity":   {GiftListID: listID, GiftID: h.fx.gift.ID.String(), Amount: "1000", Quantity: intPtr(0)},
		"missing list":    {Amount: "1000"},
		"malformed list":  {GiftListID: "not-a-uuid", Amount: "1000"},
		"bad currency":    {GiftListID: listID, Amount: "1000", Currency: "pesos"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.ProcessPayment(context.Background(), RequestContext{}, req)
			assert.ErrorIs(t, err, utils.ErrInvalidInput)
		})
	}

	assert.Zero(t, h.countTransactions(t))
	assert.Equal(t, 5, h.gift(t).Stock)
}

func TestProcessPayment_QuantityAboveStock(t *testing.T) {
	h := newPaymentHarness(t, 1000, 2)

	_, err := h.svc.ProcessPayment(context.Background(), RequestContext{}, request_models.PaymentRequest{
		GiftListID: h.fx.list.ID.String(),
		GiftID:     h.fx.gift.ID.String(),
		Amount:     "3000",
		Quantity:   intPtr(3),
	})
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)
	assert.Zero(t, h.countTransactions(t))
	assert.Equal(t, 2, h.gift(t).Stock)
}

func TestProcessPayment_ConcurrentLastUnit(t *testing.T) {
	h := newPaymentHarness(t, 1000, 1)
	req := request_models.PaymentRequest{
		GiftListID: h.fx.list.ID.String(),
		GiftID:     h.fx.gift.ID.String(),
		Amount:     "1000",
	}

	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.ProcessPayment(context.Background(), RequestContext{}, req)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, utils.ErrInsufficientStock):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded)
	assert.EqualValues(t, 7, conflicts)
	assert.EqualValues(t, 1, h.countTransactions(t))

	g := h.gift(t)
	assert.Equal(t, 0, g.Stock)
	assert.Equal(t, 1, g.Sold)
}

func TestProcessPayment_CSRFTokenIsSingleUse(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx := context.Background()
	rc := RequestContext{SessionID: "sid-csrf"}

	token, err := h.sessions.IssueCSRFToken(ctx, rc.SessionID)
	require.NoError(t, err)

	req := request_models.PaymentRequest{GiftListID: h.fx.list.ID.String(), Amount: "500", CSRFToken: token}
	_, err = h.svc.ProcessPayment(ctx, rc, req)
	require.NoError(t, err)

	_, err = h.svc.ProcessPayment(ctx, rc, req)
	assert.ErrorIs(t, err, utils.ErrInvalidCSRF)

	other, err := h.sessions.IssueCSRFToken(ctx, "another-session")
	require.NoError(t, err)
	req.CSRFToken = other
	_, err = h.svc.ProcessPayment(ctx, rc, req)
	assert.ErrorIs(t, err, utils.ErrInvalidCSRF)

	assert.EqualValues(t, 1, h.countTransactions(t))
}

func TestProcessPayment_ListRules(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx := context.Background()

	_, err := h.svc.ProcessPayment(ctx, RequestContext{}, request_models.PaymentRequest{GiftListID: uuid.NewString(), Amount: "100"})
	assert.ErrorIs(t, err, utils.ErrListNotFound)

	_, err = h.svc.ProcessPayment(ctx, RequestContext{}, request_models.PaymentRequest{
		GiftListID: h.fx.list.ID.String(), GiftID: uuid.NewString(), Amount: "100",
	})
	assert.ErrorIs(t, err, utils.ErrGiftNotFound)

	require.NoError(t, h.db.Model(&dbm.GiftList{}).Where("id = ?", h.fx.list.ID).
		Update("visibility", dbm.VisibilityPrivate).Error)

	_, err = h.svc.ProcessPayment(ctx, userCtx(h.fx.buyer.ID), request_models.PaymentRequest{GiftListID: h.fx.list.ID.String(), Amount: "100"})
	assert.ErrorIs(t, err, utils.ErrListNotFound)

	_, err = h.svc.ProcessPayment(ctx, userCtx(h.fx.owner.ID), request_models.PaymentRequest{GiftListID: h.fx.list.ID.String(), Amount: "100"})
	assert.NoError(t, err)

	past := time.Now().Add(-time.Hour).Unix()
	require.NoError(t, h.db.Model(&dbm.GiftList{}).Where("id = ?", h.fx.list.ID).
		Updates(map[string]any{"visibility": dbm.VisibilityPublic, "expires_at": past}).Error)

	_, err = h.svc.ProcessPayment(ctx, RequestContext{}, request_models.PaymentRequest{GiftListID: h.fx.list.ID.String(), Amount: "100"})
	assert.ErrorIs(t, err, utils.ErrListExpired)
}

func TestCreateCheckout_RecordsPendingRowsAndRedirects(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)

	res, err := h.svc.CreateCheckout(context.Background(), userCtx(h.fx.buyer.ID), request_models.CheckoutRequest{
		Items: []request_models.CheckoutItem{{GiftID: h.fx.gift.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, gateway.MercadoPago, res.Gateway)
	assert.Equal(t, "https://pay.test/"+res.ExternalReference, res.RedirectURL)
	require.Len(t, res.TransactionIDs, 1)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionIDs[0]).Error)
	assert.Equal(t, dbm.TxnStatusPending, txn.Status)
	assert.Equal(t, res.ExternalReference, txn.ExternalReference)
	assert.True(t, decimal.NewFromInt(2000).Equal(txn.Amount))

	require.Len(t, h.mp.checkouts, 1)
	sent := h.mp.checkouts[0]
	assert.Equal(t, h.fx.buyer.Email, sent.Payer.Email)
	assert.Equal(t, "https://deseos.test/payments/webhook", sent.NotificationURL)
	require.Len(t, sent.Items, 1)
	assert.Equal(t, 2, sent.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1000).Equal(sent.Items[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(2000).Equal(sent.Total()))

	assert.Equal(t, 5, h.gift(t).Stock, "stock moves only when the gateway approves")
}

func TestCreateCheckout_GatewayFailureRejectsPending(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	h.mp.checkoutErr = errors.New("connection refused")

	_, err := h.svc.CreateCheckout(context.Background(), RequestContext{}, request_models.CheckoutRequest{
		Items: []request_models.CheckoutItem{{GiftID: h.fx.gift.ID.String(), Quantity: 1}},
	})
	require.ErrorIs(t, err, utils.ErrGateway)

	var rows []dbm.Transaction
	require.NoError(t, h.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, dbm.TxnStatusRejected, rows[0].Status)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(rows[0].Metadata, &meta))
	assert.Equal(t, "connection refused", meta["gateway_error"])

	assert.Equal(t, 5, h.gift(t).Stock)
}

func TestCreateCheckout_CancelledRequestStillRejectsPending(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.mp.onCheckout = cancel
	h.mp.checkoutErr = context.Canceled

	_, err := h.svc.CreateCheckout(ctx, RequestContext{}, request_models.CheckoutRequest{
		Items: []request_models.CheckoutItem{{GiftID: h.fx.gift.ID.String(), Quantity: 1}},
	})
	require.ErrorIs(t, err, utils.ErrGateway)

	var rows []dbm.Transaction
	require.NoError(t, h.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, dbm.TxnStatusRejected, rows[0].Status)
}

func TestCreateCheckout_ValidatesItems(t *testing.T) {
	h := newPaymentHarness(t, 1000, 1)
	ctx := context.Background()

	_, err := h.svc.CreateCheckout(ctx, RequestContext{}, request_models.CheckoutRequest{
		Items: []request_models.CheckoutItem{{GiftID: h.fx.gift.ID.String(), Quantity: 2}},
	})
	assert.ErrorIs(t, err, utils.ErrInsufficientStock)

	_, err = h.svc.CreateCheckout(ctx, RequestContext{}, request_models.CheckoutRequest{
		GiftListID: uuid.NewString(),
		Items:      []request_models.CheckoutItem{{GiftID: h.fx.gift.ID.String()}},
	})
	assert.ErrorIs(t, err, utils.ErrGiftNotFound)

	_, err = h.svc.CreateCheckout(ctx, RequestContext{}, request_models.CheckoutRequest{})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	assert.Zero(t, h.countTransactions(t))
	assert.Empty(t, h.mp.checkouts)
}

func (h *paymentHarness) checkout(t *testing.T, rc RequestContext, qty int) *response_models.CheckoutResult {
	t.Helper()
	res, err := h.svc.CreateCheckout(context.Background(), rc, request_models.CheckoutRequest{
		Items: []request_models.CheckoutItem{{GiftID: h.fx.gift.ID.String(), Quantity: qty}},
	})
	require.NoError(t, err)
	return res
}

func paymentWebhook(id string) request_models.WebhookPayload {
	var p request_models.WebhookPayload
	p.Type = "payment"
	p.Data.ID = request_models.FlexibleID(id)
	return p
}

func TestProcessWebhook_ApprovesOnceAndNotifiesOnce(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx := context.Background()
	res := h.checkout(t, userCtx(h.fx.buyer.ID), 2)

	h.mp.setPayment(&gateway.GatewayPayment{
		ID:                "9001",
		ExternalReference: res.ExternalReference,
		Status:            dbm.TxnStatusApproved,
		RawStatus:         "approved",
		Amount:            decimal.NewFromInt(2000),
		Currency:          "CLP",
		PayerEmail:        h.fx.buyer.Email,
		Raw:               []byte(`{"id":9001,"status":"approved"}`),
	})

	first, err := h.svc.ProcessWebhook(ctx, gateway.MercadoPago, paymentWebhook("9001"))
	require.NoError(t, err)
	assert.Equal(t, response_models.WebhookStatusSuccess, first.Status)
	assert.Equal(t, "processed", first.Message)

	second, err := h.svc.ProcessWebhook(ctx, gateway.MercadoPago, paymentWebhook("9001"))
	require.NoError(t, err)
	assert.Equal(t, response_models.WebhookStatusSuccess, second.Status)
	assert.Equal(t, "already processed", second.Message)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionIDs[0]).Error)
	assert.Equal(t, dbm.TxnStatusApproved, txn.Status)
	assert.Equal(t, "9001", txn.GatewayPaymentID)
	assert.NotNil(t, txn.PaidAt)

	g := h.gift(t)
	assert.Equal(t, 3, g.Stock)
	assert.Equal(t, 2, g.Sold)

	assert.EqualValues(t, 1, h.notificationsFor(t, h.fx.owner.ID))
	assert.EqualValues(t, 1, h.notificationsFor(t, h.fx.buyer.ID))
	assert.Equal(t, 1, h.mailer.sentTo(h.fx.owner.Email))
	assert.Equal(t, 1, h.mailer.sentTo(h.fx.buyer.Email))
}

func TestProcessWebhook_UnknownReferenceStillSucceeds(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	h.mp.setPayment(&gateway.GatewayPayment{
		ID:                "404",
		ExternalReference: "mp-does-not-exist",
		Status:            dbm.TxnStatusApproved,
	})

	res, err := h.svc.ProcessWebhook(context.Background(), gateway.MercadoPago, paymentWebhook("404"))
	require.NoError(t, err)
	assert.Equal(t, response_models.WebhookStatusSuccess, res.Status)
	assert.Zero(t, h.countTransactions(t))
	assert.Equal(t, 5, h.gift(t).Stock)
}

func TestProcessWebhook_NonPaymentAndLookupFailures(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx := context.Background()

	var ignored request_models.WebhookPayload
	ignored.Type = "merchant_order"
	res, err := h.svc.ProcessWebhook(ctx, gateway.MercadoPago, ignored)
	require.NoError(t, err)
	assert.Equal(t, response_models.WebhookStatusSuccess, res.Status)
	assert.Equal(t, "ignored", res.Message)

	res, err = h.svc.ProcessWebhook(ctx, gateway.MercadoPago, paymentWebhook("missing"))
	assert.Error(t, err)
	assert.Equal(t, response_models.WebhookStatusError, res.Status)
}

func TestProcessWebhook_PendingStatusChangesNothing(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	res := h.checkout(t, RequestContext{}, 1)
	h.mp.setPayment(&gateway.GatewayPayment{
		ID: "77", ExternalReference: res.ExternalReference, Status: dbm.TxnStatusPending, RawStatus: "in_process",
	})

	out, err := h.svc.ProcessWebhook(context.Background(), gateway.MercadoPago, paymentWebhook("77"))
	require.NoError(t, err)
	assert.Equal(t, response_models.WebhookStatusSuccess, out.Status)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionIDs[0]).Error)
	assert.Equal(t, dbm.TxnStatusPending, txn.Status)
}

func TestProcessWebhook_RejectedLeavesStock(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	res := h.checkout(t, RequestContext{}, 1)
	h.mp.setPayment(&gateway.GatewayPayment{
		ID: "13", ExternalReference: res.ExternalReference, Status: dbm.TxnStatusRejected, RawStatus: "rejected",
	})

	_, err := h.svc.ProcessWebhook(context.Background(), gateway.MercadoPago, paymentWebhook("13"))
	require.NoError(t, err)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionIDs[0]).Error)
	assert.Equal(t, dbm.TxnStatusRejected, txn.Status)
	assert.Equal(t, 5, h.gift(t).Stock)
	assert.Zero(t, h.notificationsFor(t, h.fx.owner.ID))
}

func TestProcessWebhook_InventoryConflictKeepsApproval(t *testing.T) {
	h := newPaymentHarness(t, 1000, 1)
	ctx := context.Background()
	res := h.checkout(t, RequestContext{}, 1)

	_, err := h.svc.ProcessPayment(ctx, RequestContext{}, request_models.PaymentRequest{
		GiftListID: h.fx.list.ID.String(), GiftID: h.fx.gift.ID.String(), Amount: "1000",
	})
	require.NoError(t, err)

	h.mp.setPayment(&gateway.GatewayPayment{
		ID: "55", ExternalReference: res.ExternalReference, Status: dbm.TxnStatusApproved, RawStatus: "approved",
	})
	out, err := h.svc.ProcessWebhook(ctx, gateway.MercadoPago, paymentWebhook("55"))
	require.NoError(t, err)
	assert.Equal(t, response_models.WebhookStatusSuccess, out.Status)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", res.TransactionIDs[0]).Error)
	assert.Equal(t, dbm.TxnStatusApproved, txn.Status)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(txn.Metadata, &meta))
	assert.Equal(t, true, meta["inventory_conflict"])
	assert.Equal(t, 0, h.gift(t).Stock)
}

func TestProcessPayOSWebhook(t *testing.T) {
	h := newPaymentHarness(t, 1000, 5)
	ctx := context.Background()

	h.payos.verifyErr = gateway.ErrBadSignature
	res, err := h.svc.ProcessPayOSWebhook(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, gateway.ErrBadSignature)
	assert.Equal(t, response_models.WebhookStatusError, res.Status)

	h.payos.verifyErr = nil
	h.payos.verifyID = ""
	res, err = h.svc.ProcessPayOSWebhook(ctx, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "webhook confirmed", res.Message)

	txnID, err := h.svc.txns.Create(ctx, &dbm.Transaction{
		GiftListID:        h.fx.list.ID,
		GiftID:            &h.fx.gift.ID,
		Quantity:          1,
		Amount:            decimal.NewFromInt(1000),
		Currency:          "CLP",
		Gateway:           gateway.PayOS,
		ExternalReference: "payos:4242",
	})
	require.NoError(t, err)

	h.payos.verifyID = "4242"
	h.payos.setPayment(&gateway.GatewayPayment{
		ID: "4242", ExternalReference: "payos:4242", Status: dbm.TxnStatusApproved, RawStatus: "PAID",
	})
	res, err = h.svc.ProcessPayOSWebhook(ctx, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "processed", res.Message)

	var txn dbm.Transaction
	require.NoError(t, h.db.First(&txn, "id = ?", txnID).Error)
	assert.Equal(t, dbm.TxnStatusApproved, txn.Status)
	assert.Equal(t, 4, h.gift(t).Stock)
}
