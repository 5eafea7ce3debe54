package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"

	dbm "deseos/internal/models/db_models"
)

type preferenceCreator interface {
	Create(ctx context.Context, request preference.Request) (*preference.Response, error)
}

type paymentGetter interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

type mercadoPagoGateway struct {
	preferences preferenceCreator
	payments    paymentGetter
	sandbox     bool
}

func NewMercadoPagoGateway(accessToken string) (PaymentGateway, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, MercadoPago)
	}
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &mercadoPagoGateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		sandbox:     strings.HasPrefix(accessToken, "TEST-"),
	}, nil
}

func (g *mercadoPagoGateway) Name() string { return MercadoPago }

func (g *mercadoPagoGateway) NewExternalReference() string {
	return "mp-" + uuid.NewString()
}

func (g *mercadoPagoGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (_ *CheckoutSession, err error) {
	ctx, done := observe(ctx, MercadoPago, "create_preference")
	defer func() { done(err) }()

	items := make([]preference.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, preference.ItemRequest{
			ID:         it.ID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.InexactFloat64(),
			CurrencyID: it.Currency,
		})
	}

	request := preference.Request{
		Items: items,
		Payer: &preference.PayerRequest{
			Name:  req.Payer.Name,
			Email: req.Payer.Email,
		},
		BackURLs: &preference.BackURLsRequest{
			Success: req.Callbacks.Success,
			Pending: req.Callbacks.Pending,
			Failure: req.Callbacks.Failure,
		},
		NotificationURL:   req.NotificationURL,
		ExternalReference: req.ExternalReference,
	}
	if req.Callbacks.Success != "" {
		request.AutoReturn = "approved"
	}

	resp, err := g.preferences.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create preference: %w", err)
	}

	redirect := resp.InitPoint
	if g.sandbox && resp.SandboxInitPoint != "" {
		redirect = resp.SandboxInitPoint
	}
	return &CheckoutSession{
		Gateway:           MercadoPago,
		SessionID:         resp.ID,
		RedirectURL:       redirect,
		ExternalReference: req.ExternalReference,
	}, nil
}

func (g *mercadoPagoGateway) GetPayment(ctx context.Context, paymentID string) (_ *GatewayPayment, err error) {
	ctx, done := observe(ctx, MercadoPago, "get_payment")
	defer func() { done(err) }()

	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment id %q: %w", paymentID, err)
	}

	resp, err := g.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment: %w", err)
	}

	raw, _ := json.Marshal(resp)
	return &GatewayPayment{
		ID:                strconv.Itoa(resp.ID),
		ExternalReference: resp.ExternalReference,
		Status:            mercadoPagoStatus(resp.Status),
		RawStatus:         resp.Status,
		Amount:            decimal.NewFromFloat(resp.TransactionAmount),
		Currency:          resp.CurrencyID,
		PayerEmail:        resp.Payer.Email,
		Raw:               raw,
	}, nil
}

func mercadoPagoStatus(s string) dbm.TransactionStatus {
	switch s {
	case "approved":
		return dbm.TxnStatusApproved
	case "rejected", "cancelled", "refunded", "charged_back":
		return dbm.TxnStatusRejected
	default:
		return dbm.TxnStatusPending
	}
}
