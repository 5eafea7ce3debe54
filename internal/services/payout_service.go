package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"deseos/internal/infra"
	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

type PayoutServiceInterface interface {
	Request(ctx context.Context, rc RequestContext, req request_models.PayoutRequest) (*dbm.Payout, error)
	ListMine(ctx context.Context, rc RequestContext) ([]dbm.Payout, error)
	Balance(ctx context.Context, rc RequestContext, listID uuid.UUID) (*response_models.PayoutBalance, error)

	ListAll(ctx context.Context, status string, page, pageSize int) (*response_models.Page[dbm.Payout], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req request_models.PayoutStatusRequest) (*dbm.Payout, error)
}

type PayoutService struct {
	db            *gorm.DB
	payouts       repositories.PayoutRepository
	lists         repositories.GiftListRepository
	txns          repositories.TransactionRepository
	notifications repositories.NotificationRepository
	currency      string
	log           *zap.Logger
}

func NewPayoutService(
	db *gorm.DB,
	payouts repositories.PayoutRepository,
	lists repositories.GiftListRepository,
	txns repositories.TransactionRepository,
	notifications repositories.NotificationRepository,
	currency string,
	log *zap.Logger,
) PayoutServiceInterface {
	return &PayoutService{
		db:            db,
		payouts:       payouts,
		lists:         lists,
		txns:          txns,
		notifications: notifications,
		currency:      currency,
		log:           log,
	}
}

func (s *PayoutService) Request(ctx context.Context, rc RequestContext, req request_models.PayoutRequest) (*dbm.Payout, error) {
	listID, err := parseID(req.GiftListID, "gift_list_id")
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	list, err := s.ownList(ctx, rc, listID)
	if err != nil {
		return nil, err
	}

	payout := &dbm.Payout{
		GiftListID:    list.ID,
		OwnerID:       list.OwnerID,
		Amount:        amount.Round(2),
		Currency:      s.currency,
		Status:        dbm.PayoutRequested,
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		AccountHolder: strings.TrimSpace(req.AccountHolder),
	}

	err = infra.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		available, err := s.available(ctx, s.txns.WithTx(tx), s.payouts.WithTx(tx), list.ID)
		if err != nil {
			return err
		}
		if payout.Amount.GreaterThan(available) {
			return utils.ErrInsufficientFunds
		}
		return s.payouts.WithTx(tx).Create(ctx, payout)
	})
	if err != nil {
		if errors.Is(err, utils.ErrInsufficientFunds) {
			return nil, err
		}
		s.log.Error("request payout", zap.String("gift_list_id", list.ID.String()), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	return payout, nil
}

func (s *PayoutService) ListMine(ctx context.Context, rc RequestContext) ([]dbm.Payout, error) {
	if !rc.IsAuthenticated() {
		return nil, utils.ErrUnauthorized
	}
	out, err := s.payouts.ListByOwner(ctx, *rc.UserID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return out, nil
}

func (s *PayoutService) Balance(ctx context.Context, rc RequestContext, listID uuid.UUID) (*response_models.PayoutBalance, error) {
	if _, err := s.ownList(ctx, rc, listID); err != nil {
		return nil, err
	}
	approved, err := s.txns.ApprovedTotalForList(ctx, listID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	committed, err := s.payouts.CommittedForList(ctx, listID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return &response_models.PayoutBalance{
		GiftListID: listID,
		Approved:   approved,
		Committed:  committed,
		Available:  approved.Sub(committed),
	}, nil
}

func (s *PayoutService) ListAll(ctx context.Context, status string, page, pageSize int) (*response_models.Page[dbm.Payout], error) {
	items, total, err := s.payouts.ListAll(ctx, status, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return &response_models.Page[dbm.Payout]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *PayoutService) UpdateStatus(ctx context.Context, id uuid.UUID, req request_models.PayoutStatusRequest) (*dbm.Payout, error) {
	payout, err := s.payouts.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if payout == nil {
		return nil, utils.ErrPayoutNotFound
	}

	next := dbm.PayoutStatus(req.Status)
	if !payout.Status.CanMoveTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, payout.Status, next)
	}
	ok, err := s.payouts.Transition(ctx, id, payout.Status, next, strings.TrimSpace(req.Note))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if !ok {
		return nil, utils.ErrInvalidTransition
	}
	payout.Status = next
	if req.Note != "" {
		payout.AdminNote = strings.TrimSpace(req.Note)
	}

	payload, _ := json.Marshal(map[string]any{"payout_id": payout.ID, "status": next})
	n := &dbm.Notification{
		RecipientID: payout.OwnerID,
		Type:        dbm.NotificationPayoutUpdated,
		Title:       "Actualización de tu retiro",
		Message:     fmt.Sprintf("Tu solicitud de retiro por %s %s quedó %s.", payout.Amount.StringFixed(0), payout.Currency, payoutStatusLabel(next)),
		Link:        "/payouts/mine",
		Payload:     payload,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn("payout notification", zap.String("payout_id", id.String()), zap.Error(err))
	}
	return payout, nil
}

func (s *PayoutService) ownList(ctx context.Context, rc RequestContext, listID uuid.UUID) (*dbm.GiftList, error) {
	if !rc.IsAuthenticated() {
		return nil, utils.ErrUnauthorized
	}
	list, err := s.lists.FindByID(ctx, listID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if list == nil {
		return nil, utils.ErrListNotFound
	}
	if list.OwnerID != *rc.UserID {
		return nil, utils.ErrForbidden
	}
	return list, nil
}

func (s *PayoutService) available(ctx context.Context, txns repositories.TransactionRepository, payouts repositories.PayoutRepository, listID uuid.UUID) (decimal.Decimal, error) {
	approved, err := txns.ApprovedTotalForList(ctx, listID)
	if err != nil {
		return decimal.Zero, err
	}
	committed, err := payouts.CommittedForList(ctx, listID)
	if err != nil {
		return decimal.Zero, err
	}
	return approved.Sub(committed), nil
}

func payoutStatusLabel(s dbm.PayoutStatus) string {
	switch s {
	case dbm.PayoutApproved:
		return "aprobada"
	case dbm.PayoutPaid:
		return "pagada"
	case dbm.PayoutRejected:
		return "rechazada"
	}
	return "en revisión"
}
