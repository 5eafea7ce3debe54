package request_models

import (
	"bytes"
	"encoding/json"
)

// PaymentRequest is the direct gift/contribution form. Amount is kept as text so that malformed
// values surface as validation errors instead of binding errors.
type PaymentRequest struct {
	GiftListID string `form:"gift_list_id" json:"gift_list_id"`
	GiftID     string `form:"gift_id" json:"gift_id"`
	Amount     string `form:"amount" json:"amount"`
	Currency   string `form:"currency" json:"currency"`
	Quantity   *int   `form:"quantity" json:"quantity"`
	CSRFToken  string `form:"csrf_token" json:"csrf_token"`
}

type CheckoutItem struct {
	GiftID   string `json:"gift_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// CheckoutRequest starts a gateway checkout for gifts, or for a free contribution to GiftListID
// when Items is empty.
type CheckoutRequest struct {
	GiftListID string         `json:"gift_list_id"`
	Items      []CheckoutItem `json:"items"`
	Amount     string         `json:"amount"`
	Currency   string         `json:"currency"`
	PayerName  string         `json:"payer_name"`
	PayerEmail string         `json:"payer_email" binding:"omitempty,email"`
	CSRFToken  string         `json:"csrf_token"`
}

// FlexibleID accepts an id sent either as a JSON string or a JSON number.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexibleID(n.String())
	return nil
}

// WebhookPayload is the notification body posted by MercadoPago.
type WebhookPayload struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID FlexibleID `json:"id"`
	} `json:"data"`
}
