package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dbm "deseos/internal/models/db_models"
	"deseos/internal/models/request_models"
	"deseos/internal/models/response_models"
	"deseos/internal/services"
	"deseos/pkg/middleware"
	"deseos/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePayments struct {
	lastRC      services.RequestContext
	lastPayment request_models.PaymentRequest
	lastWebhook request_models.WebhookPayload
	lastRaw     []byte

	paymentErr error
	webhookErr error
}

func (f *fakePayments) ProcessPayment(_ context.Context, rc services.RequestContext, req request_models.PaymentRequest) (*response_models.PaymentResult, error) {
	f.lastRC, f.lastPayment = rc, req
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return &response_models.PaymentResult{Success: true, Message: services.MsgPaymentRegistered, TransactionID: "txn-1"}, nil
}

func (f *fakePayments) CreateCheckout(_ context.Context, rc services.RequestContext, _ request_models.CheckoutRequest) (*response_models.CheckoutResult, error) {
	f.lastRC = rc
	return &response_models.CheckoutResult{Success: true, Message: services.MsgCheckoutCreated, RedirectURL: "https://pay.test/x"}, nil
}

func (f *fakePayments) ProcessWebhook(_ context.Context, _ string, payload request_models.WebhookPayload) (*response_models.WebhookResult, error) {
	f.lastWebhook = payload
	if f.webhookErr != nil {
		return nil, f.webhookErr
	}
	return &response_models.WebhookResult{Status: response_models.WebhookStatusSuccess, Message: "processed"}, nil
}

func (f *fakePayments) ProcessPayOSWebhook(_ context.Context, raw []byte) (*response_models.WebhookResult, error) {
	f.lastRaw = raw
	return &response_models.WebhookResult{Status: response_models.WebhookStatusSuccess, Message: "webhook confirmed"}, nil
}

func (f *fakePayments) ListMyTransactions(context.Context, uuid.UUID, int, int) ([]dbm.Transaction, int64, error) {
	return nil, 0, nil
}

func paymentRouter(f *fakePayments, userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxSessionID, "sid-test")
		c.Set(middleware.CtxTraceID, "trace-test")
		if userID != "" {
			c.Set(middleware.CtxUserID, userID)
			c.Set(middleware.CtxRole, "user")
		}
	})
	pc := NewPaymentController(f, zap.NewNop())
	r.POST("/payments", pc.Pay)
	r.POST("/payments/checkout", pc.Checkout)
	r.POST("/payments/webhook", pc.Webhook)
	r.POST("/payments/webhook/payos", pc.PayOSWebhook)
	return r
}

type envelope struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	TraceID string          `json:"trace_id"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPaymentController_PayForm(t *testing.T) {
	f := &fakePayments{}
	userID := uuid.NewString()
	r := paymentRouter(f, userID)

	form := url.Values{"gift_list_id": {"abc"}, "amount": {"15000"}, "quantity": {"2"}, "csrf_token": {"tok"}}
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "trace-test", env.TraceID)

	var result response_models.PaymentResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Success)
	assert.Equal(t, "txn-1", result.TransactionID)

	assert.Equal(t, "15000", f.lastPayment.Amount)
	require.NotNil(t, f.lastPayment.Quantity)
	assert.Equal(t, 2, *f.lastPayment.Quantity)
	require.NotNil(t, f.lastRC.UserID)
	assert.Equal(t, userID, f.lastRC.UserID.String())
	assert.Equal(t, "sid-test", f.lastRC.SessionID)
}

func TestPaymentController_PayFormQuantity(t *testing.T) {
	post := func(t *testing.T, f *fakePayments, form url.Values) int {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		paymentRouter(f, "").ServeHTTP(w, req)
		return w.Code
	}

	t.Run("blank is omitted", func(t *testing.T) {
		f := &fakePayments{}
		code := post(t, f, url.Values{"gift_list_id": {"abc"}, "amount": {"15000"}, "quantity": {""}})
		require.Equal(t, http.StatusOK, code)
		assert.Nil(t, f.lastPayment.Quantity)
	})

	t.Run("explicit zero is forwarded", func(t *testing.T) {
		f := &fakePayments{}
		post(t, f, url.Values{"gift_list_id": {"abc"}, "amount": {"15000"}, "quantity": {"0"}})
		require.NotNil(t, f.lastPayment.Quantity)
		assert.Equal(t, 0, *f.lastPayment.Quantity)
	})
}

func TestPaymentController_PayErrorsKeepPaymentShape(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{utils.ErrInsufficientStock, http.StatusConflict},
		{utils.ErrInvalidCSRF, http.StatusForbidden},
		{utils.ErrListExpired, http.StatusGone},
		{utils.ErrDatabaseError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			r := paymentRouter(&fakePayments{paymentErr: tc.err}, "")
			req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"gift_list_id":"x","amount":"1"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
			var result response_models.PaymentResult
			require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestPaymentController_WebhookQueryFallback(t *testing.T) {
	f := &fakePayments{}
	r := paymentRouter(f, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/webhook?topic=payment&id=987", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payment", f.lastWebhook.Type)
	assert.Equal(t, request_models.FlexibleID("987"), f.lastWebhook.Data.ID)

	var res response_models.WebhookResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, response_models.WebhookStatusSuccess, res.Status)
}

func TestPaymentController_WebhookNumericID(t *testing.T) {
	f := &fakePayments{}
	r := paymentRouter(f, "")

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"type":"payment","data":{"id":123456}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, request_models.FlexibleID("123456"), f.lastWebhook.Data.ID)
}

func TestPaymentController_WebhookAlwaysOK(t *testing.T) {
	r := paymentRouter(&fakePayments{webhookErr: assert.AnError}, "")

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res response_models.WebhookResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, response_models.WebhookStatusError, res.Status)
}

func TestPaymentController_PayOSWebhookPassesRawBody(t *testing.T) {
	f := &fakePayments{}
	r := paymentRouter(f, "")
	body := `{"code":"00","data":{"orderCode":1},"signature":"abc"}`

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/webhook/payos", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, body, string(f.lastRaw))
}

func TestRequestContext_AnonymousCaller(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.CtxSessionID, "sid-x")
	c.Set(middleware.CtxUserID, "not-a-uuid")

	rc := requestContext(c)
	assert.Nil(t, rc.UserID)
	assert.Equal(t, "session:sid-x", rc.CartKey())
}

func TestPathID_RejectsMalformed(t *testing.T) {
	r := gin.New()
	gc := NewGiftListController(nil)
	r.DELETE("/gifts/:id", gc.DeleteGift)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/gifts/nope", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountController_MeRequiresUser(t *testing.T) {
	r := gin.New()
	ac := NewAccountController(nil)
	r.GET("/accounts/me", ac.Me)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeSessions struct {
	flash string
}

func (f *fakeSessions) IssueCSRFToken(_ context.Context, sid string) (string, error) {
	return "token-for-" + sid, nil
}
func (f *fakeSessions) ConsumeCSRFToken(context.Context, string, string) error { return nil }
func (f *fakeSessions) SetFlash(_ context.Context, _ string, msg string) error {
	f.flash = msg
	return nil
}
func (f *fakeSessions) PopFlash(context.Context, string) (string, error) {
	msg := f.flash
	f.flash = ""
	return msg, nil
}

func TestSessionController_CSRFAndFlash(t *testing.T) {
	sessions := &fakeSessions{flash: services.MsgPaymentRegistered}
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.CtxSessionID, "abc") })
	sc := NewSessionController(sessions)
	r.GET("/csrf-token", sc.CSRFToken)
	r.GET("/flash", sc.Flash)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf-token", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var tok map[string]string
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &tok))
	assert.Equal(t, "token-for-abc", tok["csrf_token"])

	for i, want := range []string{services.MsgPaymentRegistered, ""} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flash", nil))
		var msg map[string]string
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &msg))
		assert.Equal(t, want, msg["message"], "call %d", i)
	}
}
