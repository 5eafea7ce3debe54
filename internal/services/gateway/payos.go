package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/payOSHQ/payos-lib-golang"
	"github.com/shopspring/decimal"

	dbm "deseos/internal/models/db_models"
)

const payOSPrefix = "payos:"

// payOS confirms a webhook URL by posting a signed sample with this order code.
const payOSPingOrderCode = 123

// payOSClient is the slice of the payOS SDK this adapter uses.
type payOSClient interface {
	CreatePaymentLink(body payos.CheckoutRequestType) (*payos.CheckoutResponseDataType, error)
	GetPaymentLinkInformation(orderCode string) (*payos.PaymentLinkDataType, error)
	VerifyPaymentWebhookData(body payos.WebhookType) (*payos.WebhookDataType, error)
}

type sdkPayOS struct{}

func (sdkPayOS) CreatePaymentLink(body payos.CheckoutRequestType) (*payos.CheckoutResponseDataType, error) {
	return payos.CreatePaymentLink(body)
}

func (sdkPayOS) GetPaymentLinkInformation(orderCode string) (*payos.PaymentLinkDataType, error) {
	return payos.GetPaymentLinkInformation(orderCode)
}

func (sdkPayOS) VerifyPaymentWebhookData(body payos.WebhookType) (*payos.WebhookDataType, error) {
	return payos.VerifyPaymentWebhookData(body)
}

type payOSGateway struct {
	client   payOSClient
	currency string
}

func NewPayOSGateway(clientID, apiKey, checksumKey, currency string) (PaymentGateway, error) {
	if clientID == "" || apiKey == "" || checksumKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, PayOS)
	}
	if err := payos.Key(clientID, apiKey, checksumKey); err != nil {
		return nil, fmt.Errorf("payos client init: %w", err)
	}
	return &payOSGateway{client: sdkPayOS{}, currency: currency}, nil
}

func (g *payOSGateway) Name() string { return PayOS }

// NewExternalReference links the local rows to a payOS order code. payOS wants a positive int64;
// unix seconds plus a 3-digit suffix stays within 13 digits.
func (g *payOSGateway) NewExternalReference() string {
	orderCode := time.Now().Unix()*1000 + rand.Int64N(1000)
	return payOSPrefix + strconv.FormatInt(orderCode, 10)
}

func orderCodeFromReference(ref string) (int64, error) {
	code, err := strconv.ParseInt(strings.TrimPrefix(ref, payOSPrefix), 10, 64)
	if err != nil || code <= 0 {
		return 0, fmt.Errorf("invalid payos reference %q", ref)
	}
	return code, nil
}

func (g *payOSGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (_ *CheckoutSession, err error) {
	_, done := observe(ctx, PayOS, "create_payment_link")
	defer func() { done(err) }()

	orderCode, err := orderCodeFromReference(req.ExternalReference)
	if err != nil {
		return nil, err
	}

	items := make([]payos.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, payos.Item{
			Name:     it.Title,
			Price:    int(it.UnitPrice.IntPart()),
			Quantity: it.Quantity,
		})
	}

	// payOS rejects descriptions over 25 characters.
	desc := req.Description
	if r := []rune(desc); len(r) > 25 {
		desc = string(r[:25])
	}

	resp, err := g.client.CreatePaymentLink(payos.CheckoutRequestType{
		OrderCode:   int(orderCode),
		Amount:      int(req.Total().IntPart()),
		Items:       items,
		Description: desc,
		CancelUrl:   req.Callbacks.Failure,
		ReturnUrl:   req.Callbacks.Success,
	})
	if err != nil {
		return nil, fmt.Errorf("payos create link: %w", err)
	}

	return &CheckoutSession{
		Gateway:           PayOS,
		SessionID:         resp.PaymentLinkId,
		RedirectURL:       resp.CheckoutUrl,
		ExternalReference: req.ExternalReference,
	}, nil
}

// GetPayment looks a payment link up by order code (with or without the "payos:" prefix).
func (g *payOSGateway) GetPayment(ctx context.Context, paymentID string) (_ *GatewayPayment, err error) {
	_, done := observe(ctx, PayOS, "get_payment_link")
	defer func() { done(err) }()

	orderCode, err := orderCodeFromReference(paymentID)
	if err != nil {
		return nil, err
	}

	info, err := g.client.GetPaymentLinkInformation(strconv.FormatInt(orderCode, 10))
	if err != nil {
		return nil, fmt.Errorf("payos get payment link: %w", err)
	}

	raw, _ := json.Marshal(info)
	return &GatewayPayment{
		ID:                strconv.FormatInt(int64(info.OrderCode), 10),
		ExternalReference: payOSPrefix + strconv.FormatInt(int64(info.OrderCode), 10),
		Status:            payOSStatus(info.Status),
		RawStatus:         info.Status,
		Amount:            decimal.NewFromInt(int64(info.Amount)),
		Currency:          g.currency,
		Raw:               raw,
	}, nil
}

func (g *payOSGateway) VerifyWebhook(ctx context.Context, raw []byte) (_ string, err error) {
	_, done := observe(ctx, PayOS, "verify_webhook")
	defer func() { done(err) }()

	var body payos.WebhookType
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode payos webhook: %w", err)
	}

	data, err := g.client.VerifyPaymentWebhookData(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if data.OrderCode == payOSPingOrderCode {
		return "", nil
	}
	return strconv.FormatInt(int64(data.OrderCode), 10), nil
}

func payOSStatus(s string) dbm.TransactionStatus {
	switch strings.ToUpper(s) {
	case "PAID":
		return dbm.TxnStatusApproved
	case "CANCELLED", "EXPIRED":
		return dbm.TxnStatusRejected
	default:
		return dbm.TxnStatusPending
	}
}
