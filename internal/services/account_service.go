package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/repositories"
	mem "deseos/pkg/memcache"
	"deseos/pkg/utils"
)

const (
	resetPrefix   = "reset:"
	resetTokenTTL = 30 * time.Minute
)

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error)
	Me(ctx context.Context, id string) (*response_models.AccountResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	ListAccounts(ctx context.Context, page, pageSize int) (*response_models.Page[response_models.AccountResponse], error)
	SetActive(ctx context.Context, id string, active bool) error
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	jwt         *utils.JWTManager
	tokens      mem.TokenStore
	mailer      IMailService
	log         *zap.Logger
}

func NewAccountService(
	accountRepo repositories.AccountRepository,
	jwt *utils.JWTManager,
	tokens mem.TokenStore,
	mailer IMailService,
	log *zap.Logger,
) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		jwt:         jwt,
		tokens:      tokens,
		mailer:      mailer,
		log:         log,
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error) {
	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, utils.ErrAccountInactive
	}

	token, err := a.jwt.CreateToken(account.ID, string(account.Role))
	if err != nil {
		a.log.Error("sign access token", zap.Error(err))
		return nil, utils.ErrInvalidCredentials
	}

	a.log.Debug("login completed", zap.Duration("took", time.Since(startTime)))

	return &response_models.AccountLoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(a.jwt.TTL()).Unix(),
		Account:   response_models.NewAccountResponse(account),
	}, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error) {
	email := normalizeEmail(request.Email)

	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	var rut *string
	if strings.TrimSpace(request.Rut) != "" {
		if !utils.ValidRut(request.Rut) {
			return nil, fmt.Errorf("%w: rut check digit does not match", utils.ErrInvalidInput)
		}
		normalized := utils.NormalizeRut(request.Rut)
		existing, err := a.accountRepo.FindByRut(ctx, normalized)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if existing != nil {
			return nil, utils.ErrRutAlreadyExists
		}
		rut = &normalized
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	newAccount := &db_models.Account{
		Name:         strings.TrimSpace(request.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         db_models.RoleUser,
		Rut:          rut,
		IsActive:     true,
	}

	if err := a.accountRepo.Insert(ctx, newAccount); err != nil {
		a.log.Error("insert account", zap.Error(err))
		return nil, utils.ErrDatabaseError
	}

	resp := response_models.NewAccountResponse(newAccount)
	return &resp, nil
}

func (a *AccountService) Me(ctx context.Context, id string) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	resp := response_models.NewAccountResponse(account)
	return &resp, nil
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently so the endpoint cannot be
// used to probe for accounts.
func (a *AccountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return utils.ErrDatabaseError
	}
	if account == nil || !account.IsActive {
		return nil
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	if err := a.tokens.Set(ctx, resetPrefix+token, account.ID.String(), resetTokenTTL); err != nil {
		a.log.Error("store reset token", zap.Error(err))
		return utils.ErrDatabaseError
	}

	if err := a.mailer.SendMailToResetPassword(account.Email, token); err != nil {
		a.log.Error("send reset mail", zap.String("account_id", account.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	accountID, ok, err := a.tokens.Consume(ctx, resetPrefix+token)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if !ok {
		return utils.ErrInvalidResetToken
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := a.accountRepo.UpdatePassword(ctx, accountID, hashed); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (a *AccountService) ListAccounts(ctx context.Context, page, pageSize int) (*response_models.Page[response_models.AccountResponse], error) {
	accounts, total, err := a.accountRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	items := make([]response_models.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, response_models.NewAccountResponse(&accounts[i]))
	}
	return &response_models.Page[response_models.AccountResponse]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (a *AccountService) SetActive(ctx context.Context, id string, active bool) error {
	ok, err := a.accountRepo.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return utils.ErrDatabaseError
	}
	if !ok {
		return utils.ErrAccountNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
