package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deseos/internal/services"
	"deseos/pkg/middleware"
	"deseos/pkg/utils"
)

// requestContext snapshots what the middleware chain learned about the caller.
func requestContext(c *gin.Context) services.RequestContext {
	rc := services.RequestContext{
		Role:      c.GetString(middleware.CtxRole),
		SessionID: c.GetString(middleware.CtxSessionID),
		IP:        c.ClientIP(),
		TraceID:   c.GetString(middleware.CtxTraceID),
	}
	if id, err := uuid.Parse(c.GetString(middleware.CtxUserID)); err == nil {
		rc.UserID = &id
	}
	return rc
}

// currentUserID is for routes behind JWTAuthMiddleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.CtxUserID))
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int, bool) {
	page, pageSize, err := utils.ParsePagination(c)
	if err != nil {
		utils.HandleServiceError(c, err)
		return 0, 0, false
	}
	return page, pageSize, true
}
