package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/repositories"
)

type recordedEvent struct {
	eventType string
	key       string
	payload   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, key: key, payload: payload})
	return p.err
}

func newNotificationFixture(t *testing.T, mailer *fakeMailer, events EventPublisher) (*NotificationService, fixture) {
	t.Helper()
	db := newTestDB(t)
	fx := seed(t, db, 1000, 5)
	svc := NewNotificationService(
		repositories.NewNotificationRepository(db),
		repositories.NewAccountRepository(db),
		repositories.NewGiftListRepository(db),
		repositories.NewGiftRepository(db),
		mailer,
		events,
		"https://deseos.test/",
		zap.NewNop(),
	)
	return svc, fx
}

func approvedTxn(fx fixture, qty int64) dbm.Transaction {
	txn := dbm.Transaction{
		BuyerID:           &fx.buyer.ID,
		GiftListID:        fx.list.ID,
		GiftID:            &fx.gift.ID,
		Quantity:          int(qty),
		Amount:            fx.gift.Price.Mul(decimal.NewFromInt(qty)),
		Currency:          "CLP",
		Status:            dbm.TxnStatusApproved,
		ExternalReference: "mp-ref",
	}
	return txn
}

func TestDispatchForTransactions_NotifiesBuyerOwnerAndBus(t *testing.T) {
	mailer := &fakeMailer{}
	events := &fakePublisher{}
	svc, fx := newNotificationFixture(t, mailer, events)
	ctx := context.Background()

	svc.DispatchForTransactions(ctx, []dbm.Transaction{approvedTxn(fx, 1), approvedTxn(fx, 2)}, PaymentInfo{
		Gateway:           "mercadopago",
		ExternalReference: "mp-ref",
	})

	assert.Equal(t, 1, mailer.sentTo(fx.buyer.Email), "one confirmation per payment")
	assert.Equal(t, 2, mailer.sentTo(fx.owner.Email), "one notice per purchased gift")

	buyerInbox, _, unread, err := svc.List(ctx, fx.buyer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, buyerInbox, 1)
	assert.EqualValues(t, 1, unread)
	assert.Contains(t, buyerInbox[0].Message, "3000 CLP")

	ownerInbox, total, _, err := svc.List(ctx, fx.owner.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, dbm.NotificationGiftPurchased, ownerInbox[0].Type)

	require.Len(t, events.events, 1)
	assert.Equal(t, EventPaymentApproved, events.events[0].eventType)
	assert.Equal(t, "mp-ref", events.events[0].key)
}

func TestDispatchForTransactions_ChannelFailuresDoNotStopOthers(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	events := &fakePublisher{err: errors.New("broker down")}
	svc, fx := newNotificationFixture(t, mailer, events)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		svc.DispatchForTransactions(ctx, []dbm.Transaction{approvedTxn(fx, 1)}, PaymentInfo{ExternalReference: "mp-ref"})
	})

	_, total, _, err := svc.List(ctx, fx.owner.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "in-app notice survives mail and bus failures")
}

func TestSendPaymentConfirmation_AggregatesErrors(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc, fx := newNotificationFixture(t, mailer, nil)
	txn := approvedTxn(fx, 1)

	err := svc.SendPaymentConfirmation(context.Background(), fx.buyer.Email, &txn, PaymentInfo{Amount: txn.Amount, Currency: "CLP"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email: smtp down")
}

func TestSendPaymentConfirmation_ShowsPaidDateInChileTime(t *testing.T) {
	mailer := &fakeMailer{}
	svc, fx := newNotificationFixture(t, mailer, nil)
	txn := approvedTxn(fx, 1)
	paidAt := int64(1767268800) // 2026-01-01 12:00 UTC
	txn.PaidAt = &paidAt

	require.NoError(t, svc.SendPaymentConfirmation(context.Background(), fx.buyer.Email, &txn, PaymentInfo{Amount: txn.Amount, Currency: "CLP"}))
	require.NoError(t, svc.SendGiftPurchaseNotification(context.Background(), fx.owner.Email, &txn, &fx.gift))

	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0].Body, "confirmado el 01-01-2026 09:00")
	assert.Contains(t, mailer.sent[1].Body, "de tu lista el 01-01-2026 09:00")

	txn.PaidAt = nil
	require.NoError(t, svc.SendPaymentConfirmation(context.Background(), fx.buyer.Email, &txn, PaymentInfo{Amount: txn.Amount, Currency: "CLP"}))
	assert.Contains(t, mailer.sent[2].Body, "fue confirmado. ")
}

func TestNotificationInbox_MarkRead(t *testing.T) {
	svc, fx := newNotificationFixture(t, &fakeMailer{}, nil)
	ctx := context.Background()
	txn := approvedTxn(fx, 1)

	require.NoError(t, svc.SendGiftPurchaseNotification(ctx, "", &txn, &fx.gift))
	require.NoError(t, svc.SendGiftPurchaseNotification(ctx, "", &txn, nil))

	items, _, unread, err := svc.List(ctx, fx.owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, unread)

	require.NoError(t, svc.MarkRead(ctx, fx.owner.ID, items[0].ID))
	assert.Error(t, svc.MarkRead(ctx, fx.buyer.ID, items[1].ID), "not the recipient")

	n, err := svc.MarkAllRead(ctx, fx.owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, _, unread, err = svc.List(ctx, fx.owner.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
