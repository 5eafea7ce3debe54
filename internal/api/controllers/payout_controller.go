package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deseos/internal/models/request_models"
	"deseos/internal/services"
	"deseos/pkg/utils"
)

type PayoutController struct {
	payoutService services.PayoutServiceInterface
}

func NewPayoutController(payoutService services.PayoutServiceInterface) *PayoutController {
	return &PayoutController{payoutService: payoutService}
}

// Request godoc
// @Summary Request a payout of collected money
// @Tags Payouts
// @Accept json
// @Produce json
// @Param request body request_models.PayoutRequest true "Payout"
// @Success 201 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payouts [post]
func (p *PayoutController) Request(c *gin.Context) {
	var req request_models.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payout, err := p.payoutService.Request(c.Request.Context(), requestContext(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, payout, "Payout requested successfully")
}

// ListMine godoc
// @Summary Caller's payouts
// @Tags Payouts
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payouts/mine [get]
func (p *PayoutController) ListMine(c *gin.Context) {
	payouts, err := p.payoutService.ListMine(c.Request.Context(), requestContext(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, payouts, "Payouts fetched successfully")
}

// Balance godoc
// @Summary Money available for payout on a list
// @Tags Payouts
// @Produce json
// @Param id path string true "List ID"
// @Success 200 {object} utils.APIResponse{data=response_models.PayoutBalance}
// @Security BearerAuth
// @Router /lists/{id}/balance [get]
func (p *PayoutController) Balance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	balance, err := p.payoutService.Balance(c.Request.Context(), requestContext(c), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, balance, "Balance fetched successfully")
}

// ListAll godoc
// @Summary Payout queue
// @Tags Admin
// @Produce json
// @Param status query string false "requested | approved | paid | rejected"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/payouts [get]
func (p *PayoutController) ListAll(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	payouts, err := p.payoutService.ListAll(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, payouts, "Payouts fetched successfully")
}

// UpdateStatus godoc
// @Summary Move a payout forward
// @Description requested -> approved -> paid, or -> rejected from any open state.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Payout ID"
// @Param request body request_models.PayoutStatusRequest true "Status"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/payouts/{id}/status [put]
func (p *PayoutController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request_models.PayoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payout, err := p.payoutService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, payout, "Payout updated successfully")
}
