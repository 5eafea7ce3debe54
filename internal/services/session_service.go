package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mem "deseos/pkg/memcache"
	"deseos/pkg/utils"
)

const (
	csrfTTL  = time.Hour
	flashTTL = 10 * time.Minute

	csrfPrefix  = "csrf:"
	flashPrefix = "flash:"
)

// SessionServiceInterface issues per-session CSRF tokens and one-shot flash messages.
type SessionServiceInterface interface {
	IssueCSRFToken(ctx context.Context, sessionID string) (string, error)
	// ConsumeCSRFToken checks that token was issued to sessionID and burns it.
	ConsumeCSRFToken(ctx context.Context, sessionID, token string) error
	SetFlash(ctx context.Context, sessionID, message string) error
	PopFlash(ctx context.Context, sessionID string) (string, error)
}

type SessionService struct {
	tokens mem.TokenStore
	log    *zap.Logger
}

func NewSessionService(tokens mem.TokenStore, log *zap.Logger) SessionServiceInterface {
	return &SessionService{tokens: tokens, log: log}
}

func (s *SessionService) IssueCSRFToken(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("%w: missing session", utils.ErrInvalidInput)
	}
	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Set(ctx, csrfPrefix+token, sessionID, csrfTTL); err != nil {
		s.log.Error("store csrf token", zap.Error(err))
		return "", utils.ErrDatabaseError
	}
	return token, nil
}

func (s *SessionService) ConsumeCSRFToken(ctx context.Context, sessionID, token string) error {
	if token == "" {
		return utils.ErrInvalidCSRF
	}
	owner, ok, err := s.tokens.Consume(ctx, csrfPrefix+token)
	if err != nil {
		s.log.Error("consume csrf token", zap.Error(err))
		return utils.ErrInvalidCSRF
	}
	if !ok || owner != sessionID {
		return utils.ErrInvalidCSRF
	}
	return nil
}

func (s *SessionService) SetFlash(ctx context.Context, sessionID, message string) error {
	if sessionID == "" {
		return nil
	}
	return s.tokens.Set(ctx, flashPrefix+sessionID, message, flashTTL)
}

func (s *SessionService) PopFlash(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	msg, _, err := s.tokens.Consume(ctx, flashPrefix+sessionID)
	return msg, err
}
