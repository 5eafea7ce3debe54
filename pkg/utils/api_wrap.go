package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusOK, "success", message, data)
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	respond(c, http.StatusCreated, "success", message, data)
}

func RespondError(c *gin.Context, code int, message string) {
	respond(c, code, "error", message, nil)
}

// RespondErrorWithData is RespondError carrying a payload, used by the payment endpoints that
// always answer with {success, message}.
func RespondErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	respond(c, code, "error", message, data)
}

func respond(c *gin.Context, code int, status, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Status:  status,
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

type errorMapping struct {
	err     error
	code    int
	message string
}

var serviceErrors = []errorMapping{
	{ErrInvalidInput, http.StatusBadRequest, ""},
	{ErrInvalidPage, http.StatusBadRequest, "Page must be greater than 0"},
	{ErrInvalidPageSize, http.StatusBadRequest, "Page size must be between 1 and 100"},
	{ErrInvalidCSRF, http.StatusForbidden, "Invalid or expired form token"},
	{ErrInvalidResetToken, http.StatusBadRequest, "Invalid or expired reset token"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
	{ErrAccountInactive, http.StatusForbidden, "Account is inactive"},
	{ErrForbidden, http.StatusForbidden, "You do not have access to this resource"},
	{ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{ErrListNotFound, http.StatusNotFound, "Gift list not found"},
	{ErrGiftNotFound, http.StatusNotFound, "Gift not found"},
	{ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
	{ErrTransactionNotFound, http.StatusNotFound, "Transaction not found"},
	{ErrPayoutNotFound, http.StatusNotFound, "Payout not found"},
	{ErrNotFound, http.StatusNotFound, "Not found"},
	{ErrEmailAlreadyExists, http.StatusConflict, "Email is already registered"},
	{ErrRutAlreadyExists, http.StatusConflict, "RUT is already registered"},
	{ErrCategoryAlreadyExists, http.StatusConflict, "Category already exists"},
	{ErrInsufficientStock, http.StatusConflict, "Not enough stock for the requested quantity"},
	{ErrInsufficientFunds, http.StatusConflict, "Requested amount exceeds the available balance"},
	{ErrInvalidTransition, http.StatusConflict, "Status change is not allowed"},
	{ErrEmptyCart, http.StatusConflict, "Cart is empty"},
	{ErrListExpired, http.StatusGone, "Gift list has expired"},
	{ErrGateway, http.StatusBadGateway, "Payment provider is unavailable, please try again"},
}

// ErrorStatus resolves the HTTP status and user-facing message for a service error. Unknown
// errors are reported as a generic internal error.
func ErrorStatus(err error) (int, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.code, msg
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func HandleServiceError(c *gin.Context, err error) {
	code, message := ErrorStatus(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("unhandled service error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("trace_id", c.GetString("trace_id")))
	}
	RespondError(c, code, message)
}
