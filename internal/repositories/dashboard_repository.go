package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbm "deseos/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountTotalAccounts(ctx context.Context) (int64, error)
	CountNewAccounts(ctx context.Context, start, end time.Time) (int64, error)
	CountTotalLists(ctx context.Context) (int64, error)
	CountTotalGifts(ctx context.Context) (int64, error)
	CountTransactionsByStatus(ctx context.Context, status dbm.TransactionStatus) (int64, error)
	SumApprovedRevenue(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
	CountPendingPayouts(ctx context.Context) (int64, error)

	// Time series
	RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	NewUsersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	TopLists(ctx context.Context, start, end time.Time, limit int) ([]TopListRow, error)
	RecentApprovedTransactions(ctx context.Context, limit int) ([]RecentPaymentRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time       `gorm:"column:bucket"`
	Sum    decimal.Decimal `gorm:"column:sum"`
}

type TopListRow struct {
	GiftListID string          `gorm:"column:gift_list_id"`
	Title      string          `gorm:"column:title"`
	OwnerEmail string          `gorm:"column:owner_email"`
	Payments   int64           `gorm:"column:payments"`
	Revenue    decimal.Decimal `gorm:"column:revenue"`
}

type RecentPaymentRow struct {
	ID                string          `gorm:"column:id"`
	PaidAt            *int64          `gorm:"column:paid_at"`
	Amount            decimal.Decimal `gorm:"column:amount"`
	Currency          string          `gorm:"column:currency"`
	Gateway           string          `gorm:"column:gateway"`
	ExternalReference string          `gorm:"column:external_reference"`
	ListTitle         string          `gorm:"column:list_title"`
	BuyerEmail        string          `gorm:"column:buyer_email"`
}

// ---------- Helpers ----------
// dateTrunc buckets a column holding UNIX seconds, e.g.
// date_trunc('day', timezone('America/Santiago', to_timestamp(paid_at))).
func dateTrunc(tz string, unixColumn string) string {
	if tz == "" {
		return "date_trunc(?, to_timestamp(" + unixColumn + "))"
	}
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

func truncArgs(interval, tz string) []any {
	if tz == "" {
		return []any{interval}
	}
	return []any{interval, tz}
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Account{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountNewAccounts(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Account{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTotalLists(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.GiftList{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTotalGifts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Gift{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTransactionsByStatus(ctx context.Context, status dbm.TransactionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) SumApprovedRevenue(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&dbm.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", dbm.TxnStatusApproved).
		Where("paid_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Row().
		Scan(&total)
	return total, err
}

func (r *dashboardRepository) CountPendingPayouts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Payout{}).
		Where("status IN ?", []dbm.PayoutStatus{dbm.PayoutRequested, dbm.PayoutApproved}).
		Count(&n).Error
	return n, err
}

// ---------- Series ----------
func (r *dashboardRepository) RevenueSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	err := r.db.WithContext(ctx).
		Table("transactions").
		Select(dateTrunc(tz, "paid_at")+" AS bucket, SUM(amount) AS sum", truncArgs(interval, tz)...).
		Where("status = ?", dbm.TxnStatusApproved).
		Where("deleted_at IS NULL").
		Where("paid_at IS NOT NULL").
		Where("paid_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) NewUsersSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	err := r.db.WithContext(ctx).
		Table("accounts").
		Select(dateTrunc(tz, "created_at")+" AS bucket, COUNT(*) AS sum", truncArgs(interval, tz)...).
		Where("deleted_at IS NULL").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC").
		Find(&rows).Error
	return rows, err
}

// ---------- Top lists ----------
func (r *dashboardRepository) TopLists(ctx context.Context, start, end time.Time, limit int) ([]TopListRow, error) {
	var rows []TopListRow
	err := r.db.WithContext(ctx).
		Table("transactions t").
		Select(`
			t.gift_list_id,
			l.title,
			a.email AS owner_email,
			COUNT(*) AS payments,
			SUM(t.amount) AS revenue`).
		Joins("JOIN gift_lists l ON l.id = t.gift_list_id").
		Joins("JOIN accounts a ON a.id = l.owner_id").
		Where("t.status = ?", dbm.TxnStatusApproved).
		Where("t.deleted_at IS NULL").
		Where("t.paid_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("t.gift_list_id, l.title, a.email").
		Order("revenue DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ---------- Recent payments ----------
func (r *dashboardRepository) RecentApprovedTransactions(ctx context.Context, limit int) ([]RecentPaymentRow, error) {
	var rows []RecentPaymentRow
	err := r.db.WithContext(ctx).
		Table("transactions t").
		Select(`
			t.id,
			t.paid_at,
			t.amount,
			t.currency,
			t.gateway,
			t.external_reference,
			l.title AS list_title,
			COALESCE(a.email, '') AS buyer_email`).
		Joins("JOIN gift_lists l ON l.id = t.gift_list_id").
		Joins("LEFT JOIN accounts a ON a.id = t.buyer_id").
		Where("t.status = ?", dbm.TxnStatusApproved).
		Where("t.deleted_at IS NULL").
		Order("t.paid_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
