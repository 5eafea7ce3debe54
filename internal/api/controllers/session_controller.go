package controllers

import (
	"github.com/gin-gonic/gin"

	"deseos/internal/services"
	"deseos/pkg/middleware"
	"deseos/pkg/utils"
)

type SessionController struct {
	sessionService services.SessionServiceInterface
}

func NewSessionController(sessionService services.SessionServiceInterface) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// CSRFToken godoc
// @Summary Issue a form token
// @Description Single-use token bound to the session cookie, valid for one hour.
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /csrf-token [get]
func (s *SessionController) CSRFToken(c *gin.Context) {
	token, err := s.sessionService.IssueCSRFToken(c.Request.Context(), c.GetString(middleware.CtxSessionID))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"csrf_token": token}, "")
}

// Flash godoc
// @Summary Pop the pending flash message
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /flash [get]
func (s *SessionController) Flash(c *gin.Context) {
	msg, err := s.sessionService.PopFlash(c.Request.Context(), c.GetString(middleware.CtxSessionID))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"message": msg}, "")
}
