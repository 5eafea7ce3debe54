package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbm "deseos/internal/models/db_models"
	resp "deseos/internal/models/response_models"
	"deseos/internal/repositories"
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange, currency string) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo repositories.DashboardRepository
}

func NewDashboardService(repo repositories.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	switch out.Interval {
	case "day", "week", "month":
	default:
		out.Interval = "day"
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	if out.Timezone != "" {
		if _, err := time.LoadLocation(out.Timezone); err != nil {
			out.Timezone = ""
		}
	}
	return out
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange, currency string) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)

	// ---------- Core counts ----------
	totalAccounts, err := s.repo.CountTotalAccounts(ctx)
	if err != nil {
		return nil, err
	}

	newAccounts, err := s.repo.CountNewAccounts(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	totalLists, err := s.repo.CountTotalLists(ctx)
	if err != nil {
		return nil, err
	}

	totalGifts, err := s.repo.CountTotalGifts(ctx)
	if err != nil {
		return nil, err
	}

	approved, err := s.repo.CountTransactionsByStatus(ctx, dbm.TxnStatusApproved)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountTransactionsByStatus(ctx, dbm.TxnStatusPending)
	if err != nil {
		return nil, err
	}
	rejected, err := s.repo.CountTransactionsByStatus(ctx, dbm.TxnStatusRejected)
	if err != nil {
		return nil, err
	}

	pendingPayouts, err := s.repo.CountPendingPayouts(ctx)
	if err != nil {
		return nil, err
	}

	revenue, err := s.repo.SumApprovedRevenue(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}

	// ---------- Series ----------
	revenueRows, err := s.repo.RevenueSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	var revenuePoints []resp.SeriesPoint
	seriesTotal := decimal.Zero
	for _, r := range revenueRows {
		revenuePoints = append(revenuePoints, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		seriesTotal = seriesTotal.Add(r.Sum)
	}

	newUsersRows, err := s.repo.NewUsersSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, err
	}
	var newUsersPoints []resp.SeriesPoint
	for _, r := range newUsersRows {
		newUsersPoints = append(newUsersPoints, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
	}

	// ---------- Ratios ----------
	var approvalRate float64
	if decided := approved + rejected; decided > 0 {
		approvalRate = float64(approved) * 100.0 / float64(decided)
	}

	// ---------- Top lists ----------
	topRows, err := s.repo.TopLists(ctx, rng.Start, rng.End, 10)
	if err != nil {
		return nil, err
	}
	var topLists []resp.TopList
	var paymentsInRange int64
	for _, r := range topRows {
		id, err := uuid.Parse(r.GiftListID)
		if err != nil {
			return nil, errors.New("invalid gift list UUID in top lists")
		}
		paymentsInRange += r.Payments
		topLists = append(topLists, resp.TopList{
			GiftListID: id,
			Title:      r.Title,
			OwnerEmail: r.OwnerEmail,
			Payments:   r.Payments,
			Revenue:    r.Revenue,
		})
	}
	averageTicket := decimal.Zero
	if paymentsInRange > 0 {
		averageTicket = seriesTotal.Div(decimal.NewFromInt(paymentsInRange)).Round(2)
	}

	// ---------- Recent payments ----------
	payRows, err := s.repo.RecentApprovedTransactions(ctx, 10)
	if err != nil {
		return nil, err
	}
	var recent []resp.RecentPayment
	for _, r := range payRows {
		var id uuid.UUID
		if r.ID != "" {
			id, err = uuid.Parse(r.ID)
			if err != nil {
				return nil, errors.New("invalid transaction UUID in recent payments")
			}
		}
		var paidAt *time.Time
		if r.PaidAt != nil {
			t := time.Unix(*r.PaidAt, 0).UTC()
			paidAt = &t
		}
		recent = append(recent, resp.RecentPayment{
			ID:                id,
			PaidAt:            paidAt,
			Amount:            r.Amount,
			Currency:          r.Currency,
			Gateway:           r.Gateway,
			ExternalReference: r.ExternalReference,
			ListTitle:         r.ListTitle,
			BuyerEmail:        r.BuyerEmail,
		})
	}

	report := &resp.DashboardReport{
		Range: rng,
		KPIs: resp.KPIBlock{
			TotalAccounts:        totalAccounts,
			NewAccounts:          newAccounts,
			TotalLists:           totalLists,
			TotalGifts:           totalGifts,
			ApprovedTransactions: approved,
			PendingTransactions:  pending,
			RejectedTransactions: rejected,
			PendingPayouts:       pendingPayouts,
			RevenueInRange:       revenue,
			AverageTicket:        averageTicket,
			ApprovalRatePct:      approvalRate,
		},
		Revenue: resp.RevenueSeries{
			Currency: currency,
			Points:   revenuePoints,
			Total:    seriesTotal,
		},
		NewUsers: resp.CountSeries{
			Points: newUsersPoints,
		},
		TopLists:       topLists,
		RecentPayments: recent,
	}

	return report, nil
}
