package response_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Optional: timezone used for bucketing (defaults to UTC if empty)
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalAccounts        int64 `json:"total_accounts"`
	NewAccounts          int64 `json:"new_accounts"`
	TotalLists           int64 `json:"total_lists"`
	TotalGifts           int64 `json:"total_gifts"`
	ApprovedTransactions int64 `json:"approved_transactions"`
	PendingTransactions  int64 `json:"pending_transactions"`
	RejectedTransactions int64 `json:"rejected_transactions"`
	PendingPayouts       int64 `json:"pending_payouts"`

	RevenueInRange decimal.Decimal `json:"revenue_in_range"`
	// Average approved amount in range.
	AverageTicket decimal.Decimal `json:"average_ticket"`
	// approved / (approved + rejected) * 100
	ApprovalRatePct float64 `json:"approval_rate_pct"`
}

type SeriesPoint struct {
	Bucket time.Time       `json:"bucket"`
	Value  decimal.Decimal `json:"value"`
}

type RevenueSeries struct {
	Currency string          `json:"currency"`
	Points   []SeriesPoint   `json:"points"`
	Total    decimal.Decimal `json:"total"`
}

type CountSeries struct {
	Points []SeriesPoint `json:"points"`
}

type TopList struct {
	GiftListID uuid.UUID       `json:"gift_list_id"`
	Title      string          `json:"title"`
	OwnerEmail string          `json:"owner_email"`
	Payments   int64           `json:"payments"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type RecentPayment struct {
	ID                uuid.UUID       `json:"id"`
	PaidAt            *time.Time      `json:"paid_at"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Gateway           string          `json:"gateway"`
	ExternalReference string          `json:"external_reference"`
	ListTitle         string          `json:"list_title"`
	BuyerEmail        string          `json:"buyer_email"`
}

type DashboardReport struct {
	Range          TimeRange       `json:"range"`
	KPIs           KPIBlock        `json:"kpis"`
	Revenue        RevenueSeries   `json:"revenue"`
	NewUsers       CountSeries     `json:"new_users"`
	TopLists       []TopList       `json:"top_lists"`
	RecentPayments []RecentPayment `json:"recent_payments"`
}
