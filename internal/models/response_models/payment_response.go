package response_models

type PaymentResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type CheckoutResult struct {
	Success           bool     `json:"success"`
	Message           string   `json:"message"`
	Gateway           string   `json:"gateway"`
	RedirectURL       string   `json:"redirect_url"`
	ExternalReference string   `json:"external_reference"`
	TransactionIDs    []string `json:"transaction_ids"`
}

const (
	WebhookStatusSuccess = "success"
	WebhookStatusError   = "error"
)

type WebhookResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
