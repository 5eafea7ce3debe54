package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"deseos/cmd/fx/account_fx"
	"deseos/cmd/fx/cart_fx"
	"deseos/cmd/fx/category_fx"
	"deseos/cmd/fx/config_fx"
	"deseos/cmd/fx/dashboard"
	"deseos/cmd/fx/db_fx"
	"deseos/cmd/fx/events_fx"
	"deseos/cmd/fx/gateway_fx"
	"deseos/cmd/fx/gift_list_fx"
	"deseos/cmd/fx/mail_fx"
	"deseos/cmd/fx/memcache_fx"
	"deseos/cmd/fx/notification_fx"
	"deseos/cmd/fx/payment_service_fx"
	"deseos/cmd/fx/payout_fx"
	"deseos/cmd/fx/session_fx"
	"deseos/cmd/fx/testimonial_fx"
	"deseos/cmd/fx/tracing_fx"
	"deseos/internal/api/controllers"
	"deseos/internal/config"
	"deseos/internal/models/db_models"
	"deseos/pkg/middleware"
	"deseos/pkg/utils"
)

func main() {
	app := fx.New(
		config_fx.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		db_fx.Module,
		memcache_fx.Module,
		tracing_fx.Module,
		events_fx.Module,
		mail_fx.Module,
		gateway_fx.Module,

		account_fx.Module,
		gift_list_fx.Module,
		category_fx.Module,
		cart_fx.Module,
		session_fx.Module,
		notification_fx.Module,
		payment_service_fx.Module,
		payout_fx.Module,
		testimonial_fx.Module,
		dashboard.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type Controllers struct {
	fx.In

	Account      *controllers.AccountController
	GiftList     *controllers.GiftListController
	Category     *controllers.CategoryController
	Cart         *controllers.CartController
	Session      *controllers.SessionController
	Payment      *controllers.PaymentController
	Notification *controllers.NotificationController
	Payout       *controllers.PayoutController
	Testimonial  *controllers.TestimonialController
	Dashboard    *controllers.DashboardController
}

func ProvideRouter(cfg *config.Config, log *zap.Logger, jwt *utils.JWTManager, ctrl Controllers) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.TracingMiddleware(tracing_fx.ServiceName))
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middleware.SessionMiddleware(cfg.SecureCookies))
	r.Use(middleware.OptionalJWTMiddleware(jwt))

	RegisterRoutes(r, jwt, ctrl)

	return r
}

func RegisterRoutes(r *gin.Engine, jwt *utils.JWTManager, ctrl Controllers) {
	auth := middleware.JWTAuthMiddleware(jwt)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/csrf-token", ctrl.Session.CSRFToken)
	r.GET("/flash", ctrl.Session.Flash)

	accountGroup := r.Group("/accounts")
	accountGroup.POST("/register", ctrl.Account.Register)
	accountGroup.POST("/login", ctrl.Account.Login)
	accountGroup.POST("/forgot-password", ctrl.Account.ForgotPassword)
	accountGroup.POST("/reset-password", ctrl.Account.ResetPassword)
	accountGroup.GET("/me", auth, ctrl.Account.Me)

	r.GET("/categories", ctrl.Category.List)

	listGroup := r.Group("/lists")
	listGroup.GET("/public", ctrl.GiftList.ListPublic)
	listGroup.GET("/share/:token", ctrl.GiftList.GetShared)
	listGroup.POST("", auth, ctrl.GiftList.CreateList)
	listGroup.GET("/mine", auth, ctrl.GiftList.ListMine)
	listGroup.PUT("/:id", auth, ctrl.GiftList.UpdateList)
	listGroup.DELETE("/:id", auth, ctrl.GiftList.DeleteList)
	listGroup.POST("/:id/gifts", auth, ctrl.GiftList.AddGift)
	listGroup.GET("/:id/transactions", auth, ctrl.GiftList.ListTransactions)
	listGroup.GET("/:id/balance", auth, ctrl.Payout.Balance)

	giftGroup := r.Group("/gifts", auth)
	giftGroup.PUT("/:id", ctrl.GiftList.UpdateGift)
	giftGroup.DELETE("/:id", ctrl.GiftList.DeleteGift)

	cartGroup := r.Group("/cart")
	cartGroup.GET("", ctrl.Cart.Get)
	cartGroup.DELETE("", ctrl.Cart.Clear)
	cartGroup.POST("/items", ctrl.Cart.AddItem)
	cartGroup.DELETE("/items/:giftId", ctrl.Cart.RemoveItem)
	cartGroup.POST("/checkout", ctrl.Cart.Checkout)

	paymentGroup := r.Group("/payments")
	paymentGroup.POST("", ctrl.Payment.Pay)
	paymentGroup.POST("/checkout", ctrl.Payment.Checkout)
	paymentGroup.POST("/webhook", ctrl.Payment.Webhook)
	paymentGroup.POST("/webhook/payos", ctrl.Payment.PayOSWebhook)

	r.GET("/transactions/mine", auth, ctrl.Payment.MyTransactions)

	notificationGroup := r.Group("/notifications", auth)
	notificationGroup.GET("", ctrl.Notification.List)
	notificationGroup.PUT("/:id/read", ctrl.Notification.MarkRead)
	notificationGroup.PUT("/read-all", ctrl.Notification.MarkAllRead)

	payoutGroup := r.Group("/payouts", auth)
	payoutGroup.POST("", ctrl.Payout.Request)
	payoutGroup.GET("/mine", ctrl.Payout.ListMine)

	r.GET("/testimonials", ctrl.Testimonial.ListApproved)
	r.POST("/testimonials", auth, ctrl.Testimonial.AddTestimonial)

	admin := r.Group("/admin", auth, middleware.RoleMiddleware(string(db_models.RoleAdmin)))
	admin.GET("/users", ctrl.Account.GetAllAccounts)
	admin.PUT("/users/:id/active", ctrl.Account.SetActive)
	admin.GET("/lists", ctrl.GiftList.ListAll)
	admin.DELETE("/lists/:id", ctrl.GiftList.DeleteList)
	admin.POST("/categories", ctrl.Category.Create)
	admin.PUT("/categories/:id", ctrl.Category.Update)
	admin.DELETE("/categories/:id", ctrl.Category.Delete)
	admin.GET("/payouts", ctrl.Payout.ListAll)
	admin.PUT("/payouts/:id/status", ctrl.Payout.UpdateStatus)
	admin.GET("/testimonials", ctrl.Testimonial.ListAll)
	admin.PUT("/testimonials/:id/approve", ctrl.Testimonial.Approve)
	admin.GET("/dashboard/stats", ctrl.Dashboard.GetDashboard)
}
