package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"deseos/internal/config"
	dbm "deseos/internal/models/db_models"
	"deseos/internal/repositories"
	"deseos/internal/services/gateway"
	mem "deseos/pkg/memcache"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database shared. It also serializes statements, so the
	// concurrent tests check that the conditional UPDATE beats a stale pre-check, not lock contention.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(dbm.All()...))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultCurrency: "CLP",
		AppBaseURL:      "https://deseos.test",
		JWTSecret:       "test-secret",
	}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	resets map[string]string
	err    error
}

func (m *fakeMailer) SendMailToNotifyUser(to, subject, body, ctaText, ctaURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) SendMailToResetPassword(email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resets == nil {
		m.resets = make(map[string]string)
	}
	m.resets[email] = token
	return m.err
}

func (m *fakeMailer) sentTo(to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.To == to {
			n++
		}
	}
	return n
}

type fakeGateway struct {
	name string

	mu          sync.Mutex
	checkouts   []gateway.CheckoutRequest
	checkoutErr error
	onCheckout  func()
	payments    map[string]*gateway.GatewayPayment
	verifyID    string
	verifyErr   error
}

func newFakeGateway(name string) *fakeGateway {
	return &fakeGateway{name: name, payments: make(map[string]*gateway.GatewayPayment)}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) NewExternalReference() string { return g.name + "-" + uuid.NewString() }

func (g *fakeGateway) CreateCheckout(_ context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkouts = append(g.checkouts, req)
	if g.onCheckout != nil {
		g.onCheckout()
	}
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	return &gateway.CheckoutSession{
		Gateway:           g.name,
		SessionID:         "sess-" + req.ExternalReference,
		RedirectURL:       "https://pay.test/" + req.ExternalReference,
		ExternalReference: req.ExternalReference,
	}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (*gateway.GatewayPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.payments[id]
	if !ok {
		return nil, errors.New("payment not found")
	}
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) VerifyWebhook(_ context.Context, _ []byte) (string, error) {
	return g.verifyID, g.verifyErr
}

func (g *fakeGateway) setPayment(p *gateway.GatewayPayment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[p.ID] = p
}

type fixture struct {
	owner dbm.Account
	buyer dbm.Account
	list  dbm.GiftList
	gift  dbm.Gift
}

func seed(t *testing.T, db *gorm.DB, price int64, stock int) fixture {
	t.Helper()
	ctx := context.Background()

	owner := dbm.Account{Name: "Novios", Email: "owner-" + uuid.NewString() + "@example.com", PasswordHash: "x", Role: dbm.RoleUser, IsActive: true}
	require.NoError(t, db.WithContext(ctx).Create(&owner).Error)
	buyer := dbm.Account{Name: "Invitada", Email: "buyer-" + uuid.NewString() + "@example.com", PasswordHash: "x", Role: dbm.RoleUser, IsActive: true}
	require.NoError(t, db.WithContext(ctx).Create(&buyer).Error)

	list := dbm.GiftList{
		OwnerID:    owner.ID,
		Title:      "Matrimonio",
		ShareToken: uuid.NewString(),
		Visibility: dbm.VisibilityPublic,
	}
	require.NoError(t, repositories.NewGiftListRepository(db).Create(ctx, &list))

	gift := dbm.Gift{
		GiftListID: list.ID,
		Name:       "Tostadora",
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
	}
	require.NoError(t, repositories.NewGiftRepository(db).Create(ctx, &gift))

	return fixture{owner: owner, buyer: buyer, list: list, gift: gift}
}

type paymentHarness struct {
	db       *gorm.DB
	svc      *paymentService
	mp       *fakeGateway
	payos    *fakeGateway
	mailer   *fakeMailer
	sessions SessionServiceInterface
	fx       fixture
}

func newPaymentHarness(t *testing.T, price int64, stock int) *paymentHarness {
	t.Helper()
	db := newTestDB(t)
	fx := seed(t, db, price, stock)
	log := zap.NewNop()

	accounts := repositories.NewAccountRepository(db)
	lists := repositories.NewGiftListRepository(db)
	gifts := repositories.NewGiftRepository(db)
	mailer := &fakeMailer{}
	sessions := NewSessionService(mem.NewMemoryTokens(), log)
	notifier := NewNotificationService(repositories.NewNotificationRepository(db), accounts, lists, gifts, mailer, nil, "https://deseos.test", log)

	mp := newFakeGateway(gateway.MercadoPago)
	payos := newFakeGateway(gateway.PayOS)

	svc := NewPaymentService(
		db,
		repositories.NewTransactionRepository(db),
		gifts,
		lists,
		repositories.NewWebhookEventRepository(db),
		accounts,
		gateway.NewRegistry(gateway.MercadoPago, mp, payos),
		sessions,
		notifier,
		testConfig(),
		log,
	).(*paymentService)
	svc.runAsync = func(f func()) { f() }

	return &paymentHarness{db: db, svc: svc, mp: mp, payos: payos, mailer: mailer, sessions: sessions, fx: fx}
}

func (h *paymentHarness) countTransactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&dbm.Transaction{}).Count(&n).Error)
	return n
}

func (h *paymentHarness) gift(t *testing.T) dbm.Gift {
	t.Helper()
	var g dbm.Gift
	require.NoError(t, h.db.First(&g, "id = ?", h.fx.gift.ID).Error)
	return g
}

func (h *paymentHarness) notificationsFor(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&dbm.Notification{}).Where("recipient_id = ?", id).Count(&n).Error)
	return n
}

func intPtr(v int) *int { return &v }

func userCtx(id uuid.UUID) RequestContext {
	return RequestContext{UserID: &id, Role: string(dbm.RoleUser), SessionID: "sid-" + id.String(), IP: "127.0.0.1"}
}
