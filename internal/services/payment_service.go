package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"deseos/internal/config"
	"deseos/internal/infra"
	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/repositories"
	"deseos/internal/services/gateway"
	"deseos/pkg/metrics"
	"deseos/pkg/utils"
)

const (
	GatewayDirect = "direct"

	MsgPaymentRegistered = "¡Gracias! Tu regalo fue registrado."
	MsgCheckoutCreated   = "Redirigiendo al medio de pago."

	flowDirect   = "direct"
	flowCheckout = "checkout"
)

var (
	tracer       = otel.Tracer("deseos/payments")
	currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

type PaymentService interface {
	// ProcessPayment records an immediately approved gift or contribution.
	ProcessPayment(ctx context.Context, rc RequestContext, req request_models.PaymentRequest) (*response_models.PaymentResult, error)
	// CreateCheckout records pending transactions and hands the buyer to the payment gateway.
	CreateCheckout(ctx context.Context, rc RequestContext, req request_models.CheckoutRequest) (*response_models.CheckoutResult, error)
	// ProcessWebhook applies a gateway notification. The result is always reportable with HTTP 200.
	ProcessWebhook(ctx context.Context, gatewayName string, payload request_models.WebhookPayload) (*response_models.WebhookResult, error)
	ProcessPayOSWebhook(ctx context.Context, raw []byte) (*response_models.WebhookResult, error)
	ListMyTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]dbm.Transaction, int64, error)
}

type paymentService struct {
	db       *gorm.DB
	txns     repositories.TransactionRepository
	gifts    repositories.GiftRepository
	lists    repositories.GiftListRepository
	webhooks repositories.WebhookEventRepository
	accounts repositories.AccountRepository
	gateways *gateway.Registry
	sessions SessionServiceInterface
	notifier NotificationDispatcher

	defaultCurrency string
	appBaseURL      string
	log             *zap.Logger

	now      func() time.Time
	runAsync func(func())
}

func NewPaymentService(
	db *gorm.DB,
	txns repositories.TransactionRepository,
	gifts repositories.GiftRepository,
	lists repositories.GiftListRepository,
	webhooks repositories.WebhookEventRepository,
	accounts repositories.AccountRepository,
	gateways *gateway.Registry,
	sessions SessionServiceInterface,
	notifier NotificationDispatcher,
	cfg *config.Config,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		db:              db,
		txns:            txns,
		gifts:           gifts,
		lists:           lists,
		webhooks:        webhooks,
		accounts:        accounts,
		gateways:        gateways,
		sessions:        sessions,
		notifier:        notifier,
		defaultCurrency: cfg.DefaultCurrency,
		appBaseURL:      strings.TrimRight(cfg.AppBaseURL, "/"),
		log:             log,
		now:             time.Now,
		runAsync:        func(f func()) { go f() },
	}
}

// purchaseLine is one validated gift (or free contribution when gift is nil) about to be paid.
type purchaseLine struct {
	list   *dbm.GiftList
	gift   *dbm.Gift
	qty    int
	amount decimal.Decimal
}

func (s *paymentService) ProcessPayment(ctx context.Context, rc RequestContext, req request_models.PaymentRequest) (_ *response_models.PaymentResult, err error) {
	ctx, span := tracer.Start(ctx, "payments.ProcessPayment")
	defer func() { s.finish(span, flowDirect, err) }()

	if err = s.checkCSRF(ctx, rc, req.CSRFToken); err != nil {
		return nil, err
	}

	line, currency, err := s.validateDirect(ctx, rc, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("gift_list.id", line.list.ID.String()))

	now := s.now()
	txn := &dbm.Transaction{
		BuyerID:           rc.UserID,
		GiftListID:        line.list.ID,
		Quantity:          line.qty,
		Amount:            line.amount,
		Currency:          currency,
		Status:            dbm.TxnStatusApproved,
		Gateway:           GatewayDirect,
		ExternalReference: "direct-" + uuid.NewString(),
		Metadata:          s.requestMetadata(rc, line.qty, now),
	}
	if line.gift != nil {
		txn.GiftID = &line.gift.ID
	}

	err = infra.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if line.gift != nil {
			ok, err := s.gifts.WithTx(tx).Purchase(ctx, line.gift.ID, line.qty)
			if err != nil {
				return err
			}
			if !ok {
				return utils.ErrInsufficientStock
			}
		}
		_, err := s.txns.WithTx(tx).Create(ctx, txn)
		return err
	})
	if err != nil {
		if errors.Is(err, utils.ErrInsufficientStock) || errors.Is(err, utils.ErrInvalidInput) {
			return nil, err
		}
		s.log.Error("direct payment rolled back",
			zap.String("gift_list_id", line.list.ID.String()),
			zap.String("trace_id", rc.TraceID),
			zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	if err := s.sessions.SetFlash(ctx, rc.SessionID, MsgPaymentRegistered); err != nil {
		s.log.Warn("store flash message", zap.Error(err))
	}

	info := PaymentInfo{
		Gateway:           GatewayDirect,
		ExternalReference: txn.ExternalReference,
		Amount:            txn.Amount,
		Currency:          txn.Currency,
	}
	s.dispatch(ctx, []dbm.Transaction{*txn}, info)

	return &response_models.PaymentResult{
		Success:       true,
		Message:       MsgPaymentRegistered,
		TransactionID: txn.ID.String(),
	}, nil
}

func (s *paymentService) validateDirect(ctx context.Context, rc RequestContext, req request_models.PaymentRequest) (*purchaseLine, string, error) {
	listID, err := parseID(req.GiftListID, "gift_list_id")
	if err != nil {
		return nil, "", err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, "", err
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return nil, "", fmt.Errorf("%w: quantity must be at least 1", utils.ErrInvalidInput)
	}
	currency, err := s.currency(req.Currency)
	if err != nil {
		return nil, "", err
	}
	var giftID uuid.UUID
	if strings.TrimSpace(req.GiftID) != "" {
		if giftID, err = parseID(req.GiftID, "gift_id"); err != nil {
			return nil, "", err
		}
	}

	list, err := s.openList(ctx, rc, listID)
	if err != nil {
		return nil, "", err
	}

	line := &purchaseLine{list: list, qty: qty, amount: amount}
	if giftID != uuid.Nil {
		gift, err := s.gifts.FindInList(ctx, list.ID, giftID)
		if err != nil {
			return nil, "", utils.ErrDatabaseError
		}
		if gift == nil {
			return nil, "", utils.ErrGiftNotFound
		}
		if qty > gift.Stock {
			return nil, "", utils.ErrInsufficientStock
		}
		line.gift = gift
		if gift.Price.IsPositive() {
			line.amount = gift.Price.Mul(decimal.NewFromInt(int64(qty)))
		}
	}
	return line, currency, nil
}

func (s *paymentService) CreateCheckout(ctx context.Context, rc RequestContext, req request_models.CheckoutRequest) (_ *response_models.CheckoutResult, err error) {
	ctx, span := tracer.Start(ctx, "payments.CreateCheckout")
	defer func() { s.finish(span, flowCheckout, err) }()

	if err = s.checkCSRF(ctx, rc, req.CSRFToken); err != nil {
		return nil, err
	}

	lines, currency, err := s.validateCheckout(ctx, rc, req)
	if err != nil {
		return nil, err
	}

	gw, err := s.gateways.Default()
	if err != nil {
		s.log.Error("no payment gateway configured", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrGateway, err)
	}
	span.SetAttributes(attribute.String("payment.gateway", gw.Name()))

	ref := gw.NewExternalReference()
	now := s.now()
	rows := make([]dbm.Transaction, len(lines))

	err = infra.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.txns.WithTx(tx)
		for i, line := range lines {
			rows[i] = dbm.Transaction{
				BuyerID:           rc.UserID,
				GiftListID:        line.list.ID,
				Quantity:          line.qty,
				Amount:            line.amount,
				Currency:          currency,
				Status:            dbm.TxnStatusPending,
				Gateway:           gw.Name(),
				ExternalReference: ref,
				Metadata:          s.requestMetadata(rc, line.qty, now),
			}
			if line.gift != nil {
				rows[i].GiftID = &line.gift.ID
			}
			if _, err := repo.Create(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("record pending checkout", zap.String("external_reference", ref), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	payer := gateway.Payer{Name: req.PayerName, Email: req.PayerEmail}
	if payer.Email == "" && rc.IsAuthenticated() {
		if account, _ := s.accounts.FindById(ctx, rc.UserID.String()); account != nil {
			payer.Email = account.Email
			if payer.Name == "" {
				payer.Name = account.Name
			}
		}
	}

	session, gwErr := gw.CreateCheckout(ctx, gateway.CheckoutRequest{
		ExternalReference: ref,
		Description:       checkoutDescription(lines),
		Items:             lineItems(lines, currency),
		Payer:             payer,
		Callbacks:         s.callbacks(ref),
		NotificationURL:   s.notificationURL(gw.Name()),
	})
	if gwErr != nil {
		s.log.Error("gateway checkout failed",
			zap.String("gateway", gw.Name()),
			zap.String("external_reference", ref),
			zap.Error(gwErr))
		s.rejectPending(context.WithoutCancel(ctx), rows, gwErr)
		return nil, fmt.Errorf("%w: %v", utils.ErrGateway, gwErr)
	}

	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID.String()
		meta := mergeMetadata(rows[i].Metadata, map[string]any{"checkout": session})
		if err := s.txns.UpdateMetadata(ctx, rows[i].ID, meta); err != nil {
			s.log.Warn("store checkout session", zap.String("transaction_id", ids[i]), zap.Error(err))
		}
	}

	return &response_models.CheckoutResult{
		Success:           true,
		Message:           MsgCheckoutCreated,
		Gateway:           gw.Name(),
		RedirectURL:       session.RedirectURL,
		ExternalReference: ref,
		TransactionIDs:    ids,
	}, nil
}

func (s *paymentService) validateCheckout(ctx context.Context, rc RequestContext, req request_models.CheckoutRequest) ([]purchaseLine, string, error) {
	currency, err := s.currency(req.Currency)
	if err != nil {
		return nil, "", err
	}

	var listID uuid.UUID
	if strings.TrimSpace(req.GiftListID) != "" {
		if listID, err = parseID(req.GiftListID, "gift_list_id"); err != nil {
			return nil, "", err
		}
	}

	if len(req.Items) == 0 {
		if listID == uuid.Nil {
			return nil, "", fmt.Errorf("%w: gift_list_id is required", utils.ErrInvalidInput)
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, "", err
		}
		list, err := s.openList(ctx, rc, listID)
		if err != nil {
			return nil, "", err
		}
		return []purchaseLine{{list: list, qty: 1, amount: amount}}, currency, nil
	}

	lists := make(map[uuid.UUID]*dbm.GiftList)
	seen := make(map[uuid.UUID]bool)
	lines := make([]purchaseLine, 0, len(req.Items))
	for _, item := range req.Items {
		giftID, err := parseID(item.GiftID, "gift_id")
		if err != nil {
			return nil, "", err
		}
		if seen[giftID] {
			return nil, "", fmt.Errorf("%w: gift %s listed twice", utils.ErrInvalidInput, giftID)
		}
		seen[giftID] = true

		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 1 {
			return nil, "", fmt.Errorf("%w: quantity must be at least 1", utils.ErrInvalidInput)
		}

		gift, err := s.gifts.FindByID(ctx, giftID)
		if err != nil {
			return nil, "", utils.ErrDatabaseError
		}
		if gift == nil || (listID != uuid.Nil && gift.GiftListID != listID) {
			return nil, "", utils.ErrGiftNotFound
		}

		list, ok := lists[gift.GiftListID]
		if !ok {
			if list, err = s.openList(ctx, rc, gift.GiftListID); err != nil {
				return nil, "", err
			}
			lists[gift.GiftListID] = list
		}

		if qty > gift.Stock {
			return nil, "", utils.ErrInsufficientStock
		}

		amount := gift.Price.Mul(decimal.NewFromInt(int64(qty)))
		if !gift.Price.IsPositive() {
			if len(req.Items) > 1 {
				return nil, "", fmt.Errorf("%w: gift %s has no price", utils.ErrInvalidInput, gift.Name)
			}
			if amount, err = parseAmount(req.Amount); err != nil {
				return nil, "", err
			}
		}
		lines = append(lines, purchaseLine{list: list, gift: gift, qty: qty, amount: amount})
	}
	return lines, currency, nil
}

func (s *paymentService) ProcessWebhook(ctx context.Context, gatewayName string, payload request_models.WebhookPayload) (*response_models.WebhookResult, error) {
	ctx, span := tracer.Start(ctx, "payments.ProcessWebhook",
		trace.WithAttributes(attribute.String("payment.gateway", gatewayName)))
	defer span.End()

	if payload.Type != "payment" {
		metrics.Webhooks.WithLabelValues(gatewayName, "ignored").Inc()
		return webhookOK("ignored"), nil
	}
	paymentID := strings.TrimSpace(string(payload.Data.ID))
	if paymentID == "" {
		metrics.Webhooks.WithLabelValues(gatewayName, "invalid").Inc()
		return webhookError("missing payment id"), fmt.Errorf("%w: missing payment id", utils.ErrInvalidInput)
	}

	gw, err := s.gateways.Get(gatewayName)
	if err != nil {
		metrics.Webhooks.WithLabelValues(gatewayName, "invalid").Inc()
		return webhookError("unknown gateway"), err
	}

	payment, err := gw.GetPayment(ctx, paymentID)
	if err != nil {
		s.log.Error("webhook payment lookup failed",
			zap.String("gateway", gatewayName),
			zap.String("payment_id", paymentID),
			zap.Error(err))
		metrics.Webhooks.WithLabelValues(gatewayName, "fetch_error").Inc()
		span.SetStatus(codes.Error, err.Error())
		return webhookError("could not fetch payment"), err
	}

	return s.applyPayment(ctx, gw.Name(), payload.Type, payment)
}

func (s *paymentService) ProcessPayOSWebhook(ctx context.Context, raw []byte) (*response_models.WebhookResult, error) {
	ctx, span := tracer.Start(ctx, "payments.ProcessPayOSWebhook")
	defer span.End()

	gw, err := s.gateways.Get(gateway.PayOS)
	if err != nil {
		metrics.Webhooks.WithLabelValues(gateway.PayOS, "invalid").Inc()
		return webhookError("payos is not configured"), err
	}
	verifier, ok := gw.(gateway.WebhookVerifier)
	if !ok {
		metrics.Webhooks.WithLabelValues(gateway.PayOS, "invalid").Inc()
		return webhookError("payos webhooks are not supported"), gateway.ErrNotConfigured
	}

	paymentID, err := verifier.VerifyWebhook(ctx, raw)
	if err != nil {
		s.log.Warn("payos webhook rejected", zap.Error(err))
		metrics.Webhooks.WithLabelValues(gateway.PayOS, "bad_signature").Inc()
		return webhookError("invalid signature"), err
	}
	if paymentID == "" {
		metrics.Webhooks.WithLabelValues(gateway.PayOS, "ping").Inc()
		return webhookOK("webhook confirmed"), nil
	}

	payment, err := gw.GetPayment(ctx, paymentID)
	if err != nil {
		s.log.Error("payos payment lookup failed", zap.String("payment_id", paymentID), zap.Error(err))
		metrics.Webhooks.WithLabelValues(gateway.PayOS, "fetch_error").Inc()
		return webhookError("could not fetch payment"), err
	}
	return s.applyPayment(ctx, gw.Name(), "payment", payment)
}

// applyPayment moves the pending transactions of a terminal gateway payment. Every side effect is
// keyed by a webhook event row so redeliveries are no-ops.
func (s *paymentService) applyPayment(ctx context.Context, gatewayName, eventType string, payment *gateway.GatewayPayment) (*response_models.WebhookResult, error) {
	logger := s.log.With(
		zap.String("gateway", gatewayName),
		zap.String("payment_id", payment.ID),
		zap.String("external_reference", payment.ExternalReference),
		zap.String("status", payment.RawStatus))

	if !payment.Status.IsTerminal() {
		metrics.Webhooks.WithLabelValues(gatewayName, "pending").Inc()
		return webhookOK("payment not final yet"), nil
	}
	if payment.ExternalReference == "" {
		logger.Warn("webhook payment has no external reference")
		metrics.Webhooks.WithLabelValues(gatewayName, "unknown_reference").Inc()
		return webhookOK("no matching transaction"), nil
	}

	event := &dbm.WebhookEvent{
		EventKey:    fmt.Sprintf("%s:%s:%s:%s", gatewayName, payment.ExternalReference, payment.ID, payment.Status),
		Gateway:     gatewayName,
		EventType:   eventType,
		ProcessedAt: s.now().Unix(),
	}

	var (
		duplicate    bool
		transitioned []dbm.Transaction
	)
	err := infra.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		recorded, err := s.webhooks.WithTx(tx).Record(ctx, event)
		if err != nil {
			return err
		}
		if !recorded {
			duplicate = true
			return nil
		}

		txns := s.txns.WithTx(tx)
		changed, err := txns.ApplyGatewayResult(ctx, payment.ExternalReference, payment.Status, payment.ID, payment.Raw)
		if err != nil {
			return err
		}
		if changed == 0 {
			return nil
		}

		rows, err := txns.GetByExternalReference(ctx, payment.ExternalReference)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Status == payment.Status && row.GatewayPaymentID == payment.ID {
				transitioned = append(transitioned, row)
			}
		}

		if payment.Status != dbm.TxnStatusApproved {
			return nil
		}
		gifts := s.gifts.WithTx(tx)
		for i := range transitioned {
			row := &transitioned[i]
			if row.GiftID == nil {
				continue
			}
			ok, err := gifts.Purchase(ctx, *row.GiftID, row.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				logger.Warn("approved payment exceeds remaining stock",
					zap.String("transaction_id", row.ID.String()),
					zap.String("gift_id", row.GiftID.String()))
				row.Metadata = mergeMetadata(row.Metadata, map[string]any{"inventory_conflict": true})
				if err := txns.UpdateMetadata(ctx, row.ID, row.Metadata); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("webhook processing rolled back", zap.Error(err))
		metrics.Webhooks.WithLabelValues(gatewayName, "error").Inc()
		return webhookError("could not record payment"), err
	}

	switch {
	case duplicate:
		metrics.Webhooks.WithLabelValues(gatewayName, "duplicate").Inc()
		return webhookOK("already processed"), nil
	case len(transitioned) == 0:
		logger.Warn("webhook matched no pending transaction")
		metrics.Webhooks.WithLabelValues(gatewayName, "unknown_reference").Inc()
		return webhookOK("no pending transaction for reference"), nil
	}

	metrics.Webhooks.WithLabelValues(gatewayName, string(payment.Status)).Inc()
	logger.Info("webhook applied", zap.Int("transactions", len(transitioned)))

	if payment.Status == dbm.TxnStatusApproved {
		s.dispatch(ctx, transitioned, PaymentInfo{
			Gateway:           gatewayName,
			PaymentID:         payment.ID,
			ExternalReference: payment.ExternalReference,
			Amount:            payment.Amount,
			Currency:          payment.Currency,
			PayerEmail:        payment.PayerEmail,
		})
	}
	return webhookOK("processed"), nil
}

func (s *paymentService) ListMyTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]dbm.Transaction, int64, error) {
	items, total, err := s.txns.GetByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}
	return items, total, nil
}

func (s *paymentService) checkCSRF(ctx context.Context, rc RequestContext, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.ConsumeCSRFToken(ctx, rc.SessionID, token)
}

// openList loads a list that may receive payments from the caller.
func (s *paymentService) openList(ctx context.Context, rc RequestContext, listID uuid.UUID) (*dbm.GiftList, error) {
	list, err := s.lists.FindByID(ctx, listID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if list == nil {
		return nil, utils.ErrListNotFound
	}
	if list.Visibility == dbm.VisibilityPrivate && !(rc.IsAuthenticated() && *rc.UserID == list.OwnerID) {
		return nil, utils.ErrListNotFound
	}
	if list.IsExpired(s.now()) {
		return nil, utils.ErrListExpired
	}
	return list, nil
}

func (s *paymentService) currency(raw string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" {
		c = s.defaultCurrency
	}
	if !currencyCode.MatchString(c) {
		return "", fmt.Errorf("%w: currency must be an ISO 4217 code", utils.ErrInvalidInput)
	}
	return c, nil
}

func (s *paymentService) requestMetadata(rc RequestContext, qty int, at time.Time) datatypes.JSON {
	b, _ := json.Marshal(map[string]any{
		"quantity":  qty,
		"timestamp": at.Unix(),
		"ip":        rc.IP,
		"session":   rc.SessionID,
		"trace_id":  rc.TraceID,
	})
	return b
}

func (s *paymentService) rejectPending(ctx context.Context, rows []dbm.Transaction, cause error) {
	err := infra.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.txns.WithTx(tx)
		for i := range rows {
			if err := repo.UpdateStatus(ctx, rows[i].ID, dbm.TxnStatusRejected); err != nil {
				return err
			}
			meta := mergeMetadata(rows[i].Metadata, map[string]any{"gateway_error": cause.Error()})
			if err := repo.UpdateMetadata(ctx, rows[i].ID, meta); err != nil {
				return err
			}
			rows[i].Status = dbm.TxnStatusRejected
		}
		return nil
	})
	if err != nil {
		s.log.Error("reject pending checkout", zap.Error(err))
	}
}

func (s *paymentService) callbacks(ref string) gateway.CallbackURLs {
	base := s.appBaseURL + "/payments/result?ref=" + url.QueryEscape(ref) + "&status="
	return gateway.CallbackURLs{
		Success: base + "success",
		Pending: base + "pending",
		Failure: base + "failure",
	}
}

func (s *paymentService) notificationURL(gatewayName string) string {
	if s.appBaseURL == "" {
		return ""
	}
	if gatewayName == gateway.PayOS {
		return s.appBaseURL + "/payments/webhook/payos"
	}
	return s.appBaseURL + "/payments/webhook"
}

// dispatch notifies after commit without tying delivery to the request lifetime.
func (s *paymentService) dispatch(ctx context.Context, txns []dbm.Transaction, info PaymentInfo) {
	if s.notifier == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	s.runAsync(func() {
		s.notifier.DispatchForTransactions(detached, txns, info)
	})
}

func (s *paymentService) finish(span trace.Span, flow string, err error) {
	outcome := paymentOutcome(flow, err)
	metrics.Payments.WithLabelValues(flow, outcome).Inc()
	span.SetAttributes(attribute.String("payment.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func paymentOutcome(flow string, err error) string {
	switch {
	case err == nil && flow == flowCheckout:
		return "checkout_created"
	case err == nil:
		return "approved"
	case errors.Is(err, utils.ErrInsufficientStock):
		return "conflict"
	case errors.Is(err, utils.ErrGateway):
		return "gateway_error"
	case errors.Is(err, utils.ErrInvalidInput),
		errors.Is(err, utils.ErrInvalidCSRF),
		errors.Is(err, utils.ErrListNotFound),
		errors.Is(err, utils.ErrGiftNotFound),
		errors.Is(err, utils.ErrListExpired):
		return "invalid"
	}
	return "error"
}

func parseID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", utils.ErrInvalidInput, field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", utils.ErrInvalidInput, field)
	}
	return id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than zero", utils.ErrInvalidInput)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: amount allows at most two decimals", utils.ErrInvalidInput)
	}
	return amount, nil
}

func mergeMetadata(raw datatypes.JSON, extra map[string]any) datatypes.JSON {
	m := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	for k, v := range extra {
		m[k] = v
	}
	b, _ := json.Marshal(m)
	return b
}

func checkoutDescription(lines []purchaseLine) string {
	if len(lines) == 1 && lines[0].gift != nil {
		return lines[0].gift.Name
	}
	if len(lines) == 1 {
		return "Aporte a " + lines[0].list.Title
	}
	return fmt.Sprintf("%d regalos", len(lines))
}

func lineItems(lines []purchaseLine, currency string) []gateway.LineItem {
	items := make([]gateway.LineItem, 0, len(lines))
	for _, line := range lines {
		item := gateway.LineItem{
			ID:        line.list.ID.String(),
			Title:     "Aporte a " + line.list.Title,
			Quantity:  1,
			UnitPrice: line.amount,
			Currency:  currency,
		}
		if line.gift != nil {
			item.ID = line.gift.ID.String()
			item.Title = line.gift.Name
			item.Quantity = line.qty
			item.UnitPrice = line.amount.Div(decimal.NewFromInt(int64(line.qty)))
		}
		items = append(items, item)
	}
	return items
}

func webhookOK(message string) *response_models.WebhookResult {
	return &response_models.WebhookResult{Status: response_models.WebhookStatusSuccess, Message: message}
}

func webhookError(message string) *response_models.WebhookResult {
	return &response_models.WebhookResult{Status: response_models.WebhookStatusError, Message: message}
}
