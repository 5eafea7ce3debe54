// Package gateway adapts third-party payment providers to one checkout + lookup contract.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dbm "deseos/internal/models/db_models"
	"deseos/pkg/metrics"
)

const (
	MercadoPago = "mercadopago"
	PayOS       = "payos"
)

var (
	ErrUnknownGateway = errors.New("unknown payment gateway")
	ErrNotConfigured  = errors.New("payment gateway is not configured")
	ErrBadSignature   = errors.New("webhook signature verification failed")
)

var tracer = otel.Tracer("deseos/gateway")

type LineItem struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
	Currency  string
}

type Payer struct {
	Name  string
	Email string
}

type CallbackURLs struct {
	Success string
	Pending string
	Failure string
}

type CheckoutRequest struct {
	ExternalReference string
	Description       string
	Items             []LineItem
	Payer             Payer
	Callbacks         CallbackURLs
	NotificationURL   string
}

// Total sums quantity * unit price over every item.
func (r CheckoutRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type CheckoutSession struct {
	Gateway           string `json:"gateway"`
	SessionID         string `json:"session_id"`
	RedirectURL       string `json:"redirect_url"`
	ExternalReference string `json:"external_reference"`
}

// GatewayPayment is a provider payment normalized to local transaction states.
type GatewayPayment struct {
	ID                string
	ExternalReference string
	Status            dbm.TransactionStatus
	RawStatus         string
	Amount            decimal.Decimal
	Currency          string
	PayerEmail        string
	Raw               []byte
}

type PaymentGateway interface {
	Name() string
	NewExternalReference() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}

// WebhookVerifier is implemented by gateways that sign their webhook bodies. It returns the id to
// pass to GetPayment, or "" for provider test pings that must only be acknowledged.
type WebhookVerifier interface {
	VerifyWebhook(ctx context.Context, raw []byte) (string, error)
}

// Registry holds the configured gateways; Default is the one used for new checkouts.
type Registry struct {
	gateways    map[string]PaymentGateway
	defaultName string
}

func NewRegistry(defaultName string, gateways ...PaymentGateway) *Registry {
	r := &Registry{gateways: make(map[string]PaymentGateway), defaultName: defaultName}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.Name()] = g
		}
	}
	return r
}

func (r *Registry) Get(name string) (PaymentGateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGateway, name)
	}
	return g, nil
}

func (r *Registry) Default() (PaymentGateway, error) {
	return r.Get(r.defaultName)
}

// observe starts a span for a provider call and returns the func that closes it, recording latency.
func observe(ctx context.Context, gatewayName, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, gatewayName+"."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("payment.gateway", gatewayName))

	return ctx, func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.GatewayLatency.WithLabelValues(gatewayName, op, result).Observe(time.Since(start).Seconds())
		span.End()
	}
}
