package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

type GiftListServiceInterface interface {
	CreateList(ctx context.Context, rc RequestContext, req request_models.GiftListRequest) (*dbm.GiftList, error)
	ListMine(ctx context.Context, rc RequestContext) ([]dbm.GiftList, error)
	ListPublic(ctx context.Context, page, pageSize int) (*response_models.Page[dbm.GiftList], error)
	ListAll(ctx context.Context, page, pageSize int) (*response_models.Page[dbm.GiftList], error)
	GetByShareToken(ctx context.Context, rc RequestContext, token string) (*response_models.GiftListDetail, error)
	UpdateList(ctx context.Context, rc RequestContext, id uuid.UUID, req request_models.GiftListRequest) (*dbm.GiftList, error)
	DeleteList(ctx context.Context, rc RequestContext, id uuid.UUID) error

	AddGift(ctx context.Context, rc RequestContext, listID uuid.UUID, req request_models.GiftRequest) (*dbm.Gift, error)
	UpdateGift(ctx context.Context, rc RequestContext, giftID uuid.UUID, req request_models.GiftRequest) (*dbm.Gift, error)
	DeleteGift(ctx context.Context, rc RequestContext, giftID uuid.UUID) error

	ListTransactions(ctx context.Context, rc RequestContext, listID uuid.UUID, page, pageSize int) (*response_models.ListTransactionsResponse, error)
}

type GiftListService struct {
	lists      repositories.GiftListRepository
	gifts      repositories.GiftRepository
	categories repositories.CategoryRepository
	txns       repositories.TransactionRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewGiftListService(
	lists repositories.GiftListRepository,
	gifts repositories.GiftRepository,
	categories repositories.CategoryRepository,
	txns repositories.TransactionRepository,
	log *zap.Logger,
) GiftListServiceInterface {
	return &GiftListService{
		lists:      lists,
		gifts:      gifts,
		categories: categories,
		txns:       txns,
		log:        log,
		now:        time.Now,
	}
}

func (s *GiftListService) CreateList(ctx context.Context, rc RequestContext, req request_models.GiftListRequest) (*dbm.GiftList, error) {
	if !rc.IsAuthenticated() {
		return nil, utils.ErrUnauthorized
	}
	token, err := utils.GenerateSecureToken(16)
	if err != nil {
		return nil, err
	}

	list := &dbm.GiftList{
		OwnerID:    *rc.UserID,
		ShareToken: token,
		Visibility: dbm.VisibilityLinkOnly,
	}
	if err := applyListRequest(list, req); err != nil {
		return nil, err
	}

	if err := s.lists.Create(ctx, list); err != nil {
		s.log.Error("create gift list", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	return list, nil
}

func (s *GiftListService) ListMine(ctx context.Context, rc RequestContext) ([]dbm.GiftList, error) {
	if !rc.IsAuthenticated() {
		return nil, utils.ErrUnauthorized
	}
	lists, err := s.lists.ListByOwner(ctx, rc.UserID.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return lists, nil
}

func (s *GiftListService) ListPublic(ctx context.Context, page, pageSize int) (*response_models.Page[dbm.GiftList], error) {
	items, total, err := s.lists.ListPublic(ctx, s.now(), page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return &response_models.Page[dbm.GiftList]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *GiftListService) ListAll(ctx context.Context, page, pageSize int) (*response_models.Page[dbm.GiftList], error) {
	items, total, err := s.lists.ListAll(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return &response_models.Page[dbm.GiftList]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetByShareToken resolves a shared link. Private lists only resolve for their owner.
func (s *GiftListService) GetByShareToken(ctx context.Context, rc RequestContext, token string) (*response_models.GiftListDetail, error) {
	list, err := s.lists.FindByShareToken(ctx, token)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if list == nil || (list.Visibility == dbm.VisibilityPrivate && !rc.Owns(list.OwnerID)) {
		return nil, utils.ErrListNotFound
	}
	return &response_models.GiftListDetail{GiftList: *list, Expired: list.IsExpired(s.now())}, nil
}

func (s *GiftListService) UpdateList(ctx context.Context, rc RequestContext, id uuid.UUID, req request_models.GiftListRequest) (*dbm.GiftList, error) {
	list, err := s.ownedList(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	if err := applyListRequest(list, req); err != nil {
		return nil, err
	}
	if err := s.lists.Update(ctx, list); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return list, nil
}

func (s *GiftListService) DeleteList(ctx context.Context, rc RequestContext, id uuid.UUID) error {
	if _, err := s.ownedList(ctx, rc, id); err != nil {
		return err
	}
	if _, err := s.lists.Delete(ctx, id.String()); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *GiftListService) AddGift(ctx context.Context, rc RequestContext, listID uuid.UUID, req request_models.GiftRequest) (*dbm.Gift, error) {
	list, err := s.ownedList(ctx, rc, listID)
	if err != nil {
		return nil, err
	}
	gift := &dbm.Gift{GiftListID: list.ID}
	if err := s.applyGiftRequest(ctx, gift, req); err != nil {
		return nil, err
	}
	if err := s.gifts.Create(ctx, gift); err != nil {
		s.log.Error("create gift", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	return gift, nil
}

func (s *GiftListService) UpdateGift(ctx context.Context, rc RequestContext, giftID uuid.UUID, req request_models.GiftRequest) (*dbm.Gift, error) {
	gift, err := s.ownedGift(ctx, rc, giftID)
	if err != nil {
		return nil, err
	}
	if err := s.applyGiftRequest(ctx, gift, req); err != nil {
		return nil, err
	}
	if err := s.gifts.Update(ctx, gift); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return gift, nil
}

func (s *GiftListService) DeleteGift(ctx context.Context, rc RequestContext, giftID uuid.UUID) error {
	if _, err := s.ownedGift(ctx, rc, giftID); err != nil {
		return err
	}
	if _, err := s.gifts.Delete(ctx, giftID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *GiftListService) ListTransactions(ctx context.Context, rc RequestContext, listID uuid.UUID, page, pageSize int) (*response_models.ListTransactionsResponse, error) {
	if _, err := s.ownedList(ctx, rc, listID); err != nil {
		return nil, err
	}
	items, total, err := s.txns.GetByGiftList(ctx, listID, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	approved, err := s.txns.ApprovedTotalForList(ctx, listID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return &response_models.ListTransactionsResponse{
		Page:          response_models.Page[dbm.Transaction]{Items: items, Total: total, Page: page, PageSize: pageSize},
		ApprovedTotal: approved,
	}, nil
}

func (s *GiftListService) ownedList(ctx context.Context, rc RequestContext, id uuid.UUID) (*dbm.GiftList, error) {
	if !rc.IsAuthenticated() {
		return nil, utils.ErrUnauthorized
	}
	list, err := s.lists.FindByID(ctx, id.String())
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if list == nil {
		return nil, utils.ErrListNotFound
	}
	if !rc.Owns(list.OwnerID) {
		return nil, utils.ErrForbidden
	}
	return list, nil
}

func (s *GiftListService) ownedGift(ctx context.Context, rc RequestContext, id uuid.UUID) (*dbm.Gift, error) {
	gift, err := s.gifts.FindByID(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if gift == nil {
		return nil, utils.ErrGiftNotFound
	}
	if _, err := s.ownedList(ctx, rc, gift.GiftListID); err != nil {
		return nil, err
	}
	return gift, nil
}

func applyListRequest(list *dbm.GiftList, req request_models.GiftListRequest) error {
	list.Title = strings.TrimSpace(req.Title)
	list.Description = strings.TrimSpace(req.Description)
	if req.Visibility != "" {
		v := dbm.ListVisibility(req.Visibility)
		if !v.Valid() {
			return fmt.Errorf("%w: unknown visibility %q", utils.ErrInvalidInput, req.Visibility)
		}
		list.Visibility = v
	}
	if req.ExpiresAt != nil && req.EventDate != nil && *req.ExpiresAt > 0 && *req.ExpiresAt < *req.EventDate {
		return fmt.Errorf("%w: expires_at must not be before event_date", utils.ErrInvalidInput)
	}
	list.EventDate = req.EventDate
	list.ExpiresAt = req.ExpiresAt
	return nil
}

func (s *GiftListService) applyGiftRequest(ctx context.Context, gift *dbm.Gift, req request_models.GiftRequest) error {
	price := decimal.Zero
	if strings.TrimSpace(req.Price) != "" {
		p, err := decimal.NewFromString(strings.TrimSpace(req.Price))
		if err != nil || p.IsNegative() {
			return fmt.Errorf("%w: price must be a non-negative number", utils.ErrInvalidInput)
		}
		price = p.Round(2)
	}
	if req.Stock == nil || *req.Stock < 0 {
		return fmt.Errorf("%w: stock must be zero or more", utils.ErrInvalidInput)
	}

	gift.CategoryID = nil
	if req.CategoryID != "" {
		cat, err := s.categories.FindByID(ctx, req.CategoryID)
		if err != nil {
			return utils.ErrDatabaseError
		}
		if cat == nil {
			return utils.ErrCategoryNotFound
		}
		gift.CategoryID = &cat.ID
	}

	gift.Name = strings.TrimSpace(req.Name)
	gift.Description = strings.TrimSpace(req.Description)
	gift.ImageURL = req.ImageURL
	gift.Price = price
	gift.Stock = *req.Stock
	return nil
}
