package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/services"
	"deseos/internal/services/gateway"
	"deseos/pkg/utils"
)

const maxWebhookBody = 1 << 20

type PaymentController struct {
	paymentService services.PaymentService
	log            *zap.Logger
}

func NewPaymentController(paymentService services.PaymentService, log *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		log:            log,
	}
}

// Pay godoc
// @Summary Register a gift or contribution
// @Description Records an approved transaction right away. Accepts a form post or JSON. When gift_id is
// @Description set, price x quantity is charged and stock is taken atomically.
// @Tags Payments
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body request_models.PaymentRequest true "Payment"
// @Success 200 {object} utils.APIResponse{data=response_models.PaymentResult}
// @Failure 400 {object} utils.APIResponse{data=response_models.PaymentResult}
// @Failure 409 {object} utils.APIResponse{data=response_models.PaymentResult}
// @Router /payments [post]
func (p *PaymentController) Pay(c *gin.Context) {
	var req request_models.PaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		respondPaymentError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	// A blank optional field binds as 0; treat it as omitted so the default of 1 applies.
	if isFormPost(c) && strings.TrimSpace(c.PostForm("quantity")) == "" {
		req.Quantity = nil
	}

	result, err := p.paymentService.ProcessPayment(c.Request.Context(), requestContext(c), req)
	if err != nil {
		code, message := utils.ErrorStatus(err)
		if code == http.StatusInternalServerError {
			p.log.Error("process payment", zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		}
		respondPaymentError(c, code, message)
		return
	}

	utils.RespondSuccess(c, result, result.Message)
}

// Checkout godoc
// @Summary Start a gateway checkout
// @Description Records pending transactions and returns the gateway redirect URL.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CheckoutRequest true "Checkout"
// @Success 200 {object} utils.APIResponse{data=response_models.CheckoutResult}
// @Failure 502 {object} utils.APIResponse
// @Router /payments/checkout [post]
func (p *PaymentController) Checkout(c *gin.Context) {
	var req request_models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondPaymentError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := p.paymentService.CreateCheckout(c.Request.Context(), requestContext(c), req)
	if err != nil {
		code, message := utils.ErrorStatus(err)
		respondPaymentError(c, code, message)
		return
	}

	utils.RespondSuccess(c, result, result.Message)
}

// Webhook godoc
// @Summary MercadoPago notification
// @Description Always answers 200 so the gateway only retries on transport failures. Accepts the
// @Description JSON body or the legacy query form (?topic=payment&id=123).
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} response_models.WebhookResult
// @Router /payments/webhook [post]
func (p *PaymentController) Webhook(c *gin.Context) {
	var payload request_models.WebhookPayload
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			p.log.Warn("malformed webhook body", zap.Error(err))
		}
	}
	if payload.Type == "" {
		payload.Type = c.Query("type")
	}
	if payload.Type == "" {
		payload.Type = c.Query("topic")
	}
	if payload.Data.ID == "" {
		payload.Data.ID = request_models.FlexibleID(c.Query("data.id"))
	}
	if payload.Data.ID == "" {
		payload.Data.ID = request_models.FlexibleID(c.Query("id"))
	}

	result, err := p.paymentService.ProcessWebhook(c.Request.Context(), gateway.MercadoPago, payload)
	p.respondWebhook(c, result, err)
}

// PayOSWebhook godoc
// @Summary payOS notification
// @Description Signature-verified payOS callback. Always answers 200.
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} response_models.WebhookResult
// @Router /payments/webhook/payos [post]
func (p *PaymentController) PayOSWebhook(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		p.respondWebhook(c, nil, err)
		return
	}

	result, err := p.paymentService.ProcessPayOSWebhook(c.Request.Context(), raw)
	p.respondWebhook(c, result, err)
}

// MyTransactions godoc
// @Summary Transactions made by the caller
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /transactions/mine [get]
func (p *PaymentController) MyTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	items, total, err := p.paymentService.ListMyTransactions(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"items": items, "total": total, "page": page, "page_size": pageSize}, "Transactions fetched successfully")
}

func (p *PaymentController) respondWebhook(c *gin.Context, result *response_models.WebhookResult, err error) {
	if err != nil {
		p.log.Error("webhook failed", zap.Error(err))
		result = &response_models.WebhookResult{Status: response_models.WebhookStatusError, Message: "internal error"}
	}
	c.JSON(http.StatusOK, result)
}

func respondPaymentError(c *gin.Context, code int, message string) {
	utils.RespondErrorWithData(c, code, message, response_models.PaymentResult{Success: false, Message: message})
}

func isFormPost(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == binding.MIMEPOSTForm || ct == binding.MIMEMultipartPOSTForm
}
