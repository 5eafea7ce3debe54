package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/repositories"
	"deseos/pkg/utils"
)

type CartServiceInterface interface {
	Get(ctx context.Context, rc RequestContext) (*response_models.CartView, error)
	Add(ctx context.Context, rc RequestContext, req request_models.CartItemRequest) (*response_models.CartView, error)
	Remove(ctx context.Context, rc RequestContext, giftID uuid.UUID) (*response_models.CartView, error)
	Clear(ctx context.Context, rc RequestContext) error
	// Checkout hands every cart line to the gateway in one checkout and empties the cart.
	Checkout(ctx context.Context, rc RequestContext, req request_models.CartCheckoutRequest) (*response_models.CheckoutResult, error)
}

type CartService struct {
	cart     repositories.CartRepository
	gifts    repositories.GiftRepository
	payments PaymentService
	log      *zap.Logger
}

func NewCartService(cart repositories.CartRepository, gifts repositories.GiftRepository, payments PaymentService, log *zap.Logger) CartServiceInterface {
	return &CartService{cart: cart, gifts: gifts, payments: payments, log: log}
}

func (s *CartService) Get(ctx context.Context, rc RequestContext) (*response_models.CartView, error) {
	key, err := cartKey(rc)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, key)
	if err != nil {
		return nil, err
	}
	return cartView(items), nil
}

func (s *CartService) Add(ctx context.Context, rc RequestContext, req request_models.CartItemRequest) (*response_models.CartView, error) {
	key, err := cartKey(rc)
	if err != nil {
		return nil, err
	}
	giftID, err := parseID(req.GiftID, "gift_id")
	if err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", utils.ErrInvalidInput)
	}

	gift, err := s.gifts.FindByID(ctx, giftID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if gift == nil {
		return nil, utils.ErrGiftNotFound
	}

	items, err := s.items(ctx, key)
	if err != nil {
		return nil, err
	}
	inCart := 0
	for _, it := range items {
		if it.GiftID == giftID {
			inCart = it.Quantity
		}
	}
	if inCart+qty > gift.Stock {
		return nil, utils.ErrInsufficientStock
	}

	if err := s.cart.Add(ctx, key, giftID, qty); err != nil {
		s.log.Error("add cart item", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	return s.Get(ctx, rc)
}

func (s *CartService) Remove(ctx context.Context, rc RequestContext, giftID uuid.UUID) (*response_models.CartView, error) {
	key, err := cartKey(rc)
	if err != nil {
		return nil, err
	}
	if _, err := s.cart.Remove(ctx, key, giftID); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return s.Get(ctx, rc)
}

func (s *CartService) Clear(ctx context.Context, rc RequestContext) error {
	key, err := cartKey(rc)
	if err != nil {
		return err
	}
	if err := s.cart.Clear(ctx, key); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *CartService) Checkout(ctx context.Context, rc RequestContext, req request_models.CartCheckoutRequest) (*response_models.CheckoutResult, error) {
	key, err := cartKey(rc)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, utils.ErrEmptyCart
	}

	checkout := request_models.CheckoutRequest{
		PayerName:  req.PayerName,
		PayerEmail: req.PayerEmail,
		CSRFToken:  req.CSRFToken,
	}
	for _, it := range items {
		checkout.Items = append(checkout.Items, request_models.CheckoutItem{GiftID: it.GiftID.String(), Quantity: it.Quantity})
	}

	result, err := s.payments.CreateCheckout(ctx, rc, checkout)
	if err != nil {
		return nil, err
	}
	if err := s.cart.Clear(ctx, key); err != nil {
		s.log.Warn("clear cart after checkout", zap.String("external_reference", result.ExternalReference), zap.Error(err))
	}
	return result, nil
}

// items returns the cart, dropping lines whose gift has been deleted meanwhile.
func (s *CartService) items(ctx context.Context, key string) ([]dbm.CartItem, error) {
	items, err := s.cart.List(ctx, key)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	live := items[:0]
	for _, it := range items {
		if it.Gift.ID == uuid.Nil {
			if _, err := s.cart.Remove(ctx, key, it.GiftID); err != nil {
				s.log.Warn("drop stale cart line", zap.Error(err))
			}
			continue
		}
		live = append(live, it)
	}
	return live, nil
}

func cartKey(rc RequestContext) (string, error) {
	key := rc.CartKey()
	if key == "" {
		return "", fmt.Errorf("%w: no session", utils.ErrInvalidInput)
	}
	return key, nil
}

func cartView(items []dbm.CartItem) *response_models.CartView {
	view := &response_models.CartView{Items: make([]response_models.CartLine, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		subtotal := it.Gift.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		view.Items = append(view.Items, response_models.CartLine{
			GiftID:     it.GiftID,
			GiftListID: it.Gift.GiftListID,
			Name:       it.Gift.Name,
			ImageURL:   it.Gift.ImageURL,
			UnitPrice:  it.Gift.Price,
			Quantity:   it.Quantity,
			Available:  it.Gift.Stock,
			Subtotal:   subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view
}
