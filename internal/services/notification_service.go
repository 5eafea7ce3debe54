package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/repositories"
	"deseos/pkg/metrics"
	"deseos/pkg/utils"
)

const EventPaymentApproved = "payment.approved"

const (
	channelInApp = "in_app"
	channelEmail = "email"
	channelEvent = "event"
)

// PaymentInfo describes the payment a notification refers to.
type PaymentInfo struct {
	Gateway           string          `json:"gateway"`
	PaymentID         string          `json:"payment_id,omitempty"`
	ExternalReference string          `json:"external_reference"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PayerEmail        string          `json:"payer_email,omitempty"`
}

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// NotificationDispatcher delivers best-effort messages after a payment is approved. Failures are
// reported but never undo the payment.
type NotificationDispatcher interface {
	SendPaymentConfirmation(ctx context.Context, buyerEmail string, txn *dbm.Transaction, info PaymentInfo) error
	SendGiftPurchaseNotification(ctx context.Context, ownerEmail string, txn *dbm.Transaction, gift *dbm.Gift) error
	// DispatchForTransactions notifies the buyer once and the list owner once per transaction.
	DispatchForTransactions(ctx context.Context, txns []dbm.Transaction, info PaymentInfo)
}

type NotificationServiceInterface interface {
	NotificationDispatcher

	List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]dbm.Notification, int64, int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type NotificationService struct {
	notifications repositories.NotificationRepository
	accounts      repositories.AccountRepository
	lists         repositories.GiftListRepository
	gifts         repositories.GiftRepository
	mailer        IMailService
	events        EventPublisher
	appBaseURL    string
	log           *zap.Logger
}

func NewNotificationService(
	notifications repositories.NotificationRepository,
	accounts repositories.AccountRepository,
	lists repositories.GiftListRepository,
	gifts repositories.GiftRepository,
	mailer IMailService,
	events EventPublisher,
	appBaseURL string,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		accounts:      accounts,
		lists:         lists,
		gifts:         gifts,
		mailer:        mailer,
		events:        events,
		appBaseURL:    strings.TrimRight(appBaseURL, "/"),
		log:           log,
	}
}

func (s *NotificationService) SendPaymentConfirmation(ctx context.Context, buyerEmail string, txn *dbm.Transaction, info PaymentInfo) error {
	var result *multierror.Error

	amount := fmt.Sprintf("%s %s", info.Amount.StringFixed(0), info.Currency)
	title := "Pago confirmado"
	message := fmt.Sprintf("Tu aporte de %s fue confirmado%s. ¡Gracias por tu regalo!", amount, paidOn(txn))

	if txn.BuyerID != nil {
		payload, _ := json.Marshal(info)
		n := &dbm.Notification{
			RecipientID: *txn.BuyerID,
			Type:        dbm.NotificationPaymentConfirmed,
			Title:       title,
			Message:     message,
			Link:        "/transactions/mine",
			Payload:     payload,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			result = multierror.Append(result, s.channelErr(channelInApp, err))
		}
	}

	if buyerEmail != "" {
		if err := s.mailer.SendMailToNotifyUser(buyerEmail, title, message, "Ver mis aportes", s.appBaseURL+"/transactions/mine"); err != nil {
			result = multierror.Append(result, s.channelErr(channelEmail, err))
		}
	}

	return result.ErrorOrNil()
}

func (s *NotificationService) SendGiftPurchaseNotification(ctx context.Context, ownerEmail string, txn *dbm.Transaction, gift *dbm.Gift) error {
	var result *multierror.Error

	list, err := s.lists.FindByID(ctx, txn.GiftListID.String())
	if err != nil {
		return s.channelErr(channelInApp, err)
	}

	title := "¡Recibiste un regalo!"
	message := fmt.Sprintf("Alguien aportó %s %s a tu lista%s.", txn.Amount.StringFixed(0), txn.Currency, paidOn(txn))
	if gift != nil {
		title = fmt.Sprintf("¡Compraron %s!", gift.Name)
		message = fmt.Sprintf("Alguien regaló %d x %s (%s %s) de tu lista%s.", txn.Quantity, gift.Name, txn.Amount.StringFixed(0), txn.Currency, paidOn(txn))
	}
	link := fmt.Sprintf("/lists/%s/transactions", txn.GiftListID)

	if list != nil {
		payload, _ := json.Marshal(map[string]any{
			"transaction_id": txn.ID,
			"gift_list_id":   txn.GiftListID,
			"gift_id":        txn.GiftID,
			"quantity":       txn.Quantity,
		})
		n := &dbm.Notification{
			RecipientID: list.OwnerID,
			Type:        dbm.NotificationGiftPurchased,
			Title:       title,
			Message:     message,
			Link:        link,
			Payload:     payload,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			result = multierror.Append(result, s.channelErr(channelInApp, err))
		}
	}

	if ownerEmail != "" {
		if err := s.mailer.SendMailToNotifyUser(ownerEmail, title, message, "Ver mi lista", s.appBaseURL+link); err != nil {
			result = multierror.Append(result, s.channelErr(channelEmail, err))
		}
	}

	return result.ErrorOrNil()
}

func (s *NotificationService) DispatchForTransactions(ctx context.Context, txns []dbm.Transaction, info PaymentInfo) {
	if len(txns) == 0 {
		return
	}

	var (
		mu     sync.Mutex
		result *multierror.Error
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		result = multierror.Append(result, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buyerEmail := info.PayerEmail
		if buyerEmail == "" {
			buyerEmail = s.accountEmail(gctx, txns[0].BuyerID)
		}
		summary := txns[0]
		total := decimal.Zero
		for _, t := range txns {
			total = total.Add(t.Amount)
		}
		summary.Amount = total
		if info.Amount.IsZero() {
			info.Amount = total
		}
		if info.Currency == "" {
			info.Currency = summary.Currency
		}
		collect(s.SendPaymentConfirmation(gctx, buyerEmail, &summary, info))
		return nil
	})

	g.Go(func() error {
		owners := make(map[uuid.UUID]string)
		for i := range txns {
			txn := &txns[i]
			ownerEmail, ok := owners[txn.GiftListID]
			if !ok {
				ownerEmail = s.ownerEmail(gctx, txn.GiftListID)
				owners[txn.GiftListID] = ownerEmail
			}
			var gift *dbm.Gift
			if txn.GiftID != nil {
				found, err := s.gifts.FindByID(gctx, *txn.GiftID)
				if err != nil {
					collect(s.channelErr(channelInApp, err))
				}
				gift = found
			}
			collect(s.SendGiftPurchaseNotification(gctx, ownerEmail, txn, gift))
		}
		return nil
	})

	_ = g.Wait()

	if s.events != nil {
		event := map[string]any{
			"payment":      info,
			"transactions": transactionIDs(txns),
		}
		if err := s.events.Publish(ctx, EventPaymentApproved, info.ExternalReference, event); err != nil {
			collect(s.channelErr(channelEvent, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		s.log.Warn("payment notifications partially failed",
			zap.String("external_reference", info.ExternalReference),
			zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]dbm.Notification, int64, int64, error) {
	items, total, err := s.notifications.ListByRecipient(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, 0, utils.ErrDatabaseError
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, utils.ErrDatabaseError
	}
	return items, total, unread, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !ok {
		return utils.ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, utils.ErrDatabaseError
	}
	return n, nil
}

func (s *NotificationService) channelErr(channel string, err error) error {
	metrics.NotificationFailures.WithLabelValues(channel).Inc()
	return fmt.Errorf("%s: %w", channel, err)
}

func (s *NotificationService) accountEmail(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	account, err := s.accounts.FindById(ctx, id.String())
	if err != nil || account == nil {
		return ""
	}
	return account.Email
}

func (s *NotificationService) ownerEmail(ctx context.Context, listID uuid.UUID) string {
	list, err := s.lists.FindByID(ctx, listID.String())
	if err != nil || list == nil {
		return ""
	}
	return s.accountEmail(ctx, &list.OwnerID)
}

// paidOn renders " el <fecha>" for approved transactions, empty otherwise.
func paidOn(txn *dbm.Transaction) string {
	if txn.PaidAt == nil {
		return ""
	}
	when := utils.FormatDisplay(utils.FromUnixSeconds(*txn.PaidAt))
	if when == "" {
		return ""
	}
	return " el " + when
}

func transactionIDs(txns []dbm.Transaction) []string {
	ids := make([]string, 0, len(txns))
	for _, t := range txns {
		ids = append(ids, t.ID.String())
	}
	return ids
}
