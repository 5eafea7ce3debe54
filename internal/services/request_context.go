package services

import (
	"github.com/google/uuid"

	dbm "deseos/internal/models/db_models"
)

// RequestContext carries the caller identity and request snapshot from the HTTP layer into services.
type RequestContext struct {
	UserID    *uuid.UUID
	Role      string
	SessionID string
	IP        string
	TraceID   string
}

func (rc RequestContext) IsAuthenticated() bool {
	return rc.UserID != nil && *rc.UserID != uuid.Nil
}

func (rc RequestContext) IsAdmin() bool {
	return rc.IsAuthenticated() && rc.Role == string(dbm.RoleAdmin)
}

// CartKey identifies the cart of the caller: the account when logged in, otherwise the session.
func (rc RequestContext) CartKey() string {
	if rc.IsAuthenticated() {
		return "user:" + rc.UserID.String()
	}
	if rc.SessionID != "" {
		return "session:" + rc.SessionID
	}
	return ""
}

// Owns reports whether the caller is ownerID (admins own everything).
func (rc RequestContext) Owns(ownerID uuid.UUID) bool {
	if rc.IsAdmin() {
		return true
	}
	return rc.IsAuthenticated() && *rc.UserID == ownerID
}
