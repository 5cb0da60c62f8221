// Package routes builds the fiber application and registers every API route.
package routes

import (
	"errors"
	"strings"
	"time"

	"medipay/internal/handlers"
	"medipay/internal/middleware"
	"medipay/internal/models"
	"medipay/internal/services/payout"
	"medipay/internal/services/referral"
	"medipay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Services are the collaborators the routes dispatch to.
type Services struct {
	Referral referral.Service
	Wallet   wallet.Service
	Payout   payout.Service
	Auth     *middleware.AuthMiddleware
	Health   map[string]handlers.Check
}

// AppConfig controls the HTTP middleware stack.
type AppConfig struct {
	CORSOrigins []string
	// AccessLog enables the fiber request logger.
	AccessLog bool
	// RateLimit is the per-IP limit on payment endpoints per minute; 0 disables it.
	RateLimit int
	Log       zerolog.Logger
}

// NewApp creates the fiber app with the shared middleware stack.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "medipay",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: errorHandler(cfg.Log),
	})

	app.Use(recover.New())
	if len(cfg.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORSOrigins, ","),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
			AllowCredentials: true,
		}))
	}
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	if cfg.RateLimit > 0 {
		paymentLimiter := limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		})
		app.Use("/api/referrals", paymentLimiter)
		app.Use("/api/payouts", paymentLimiter)
	}
	return app
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, s Services) {
	referralHandler := handlers.NewReferralHandler(s.Referral)
	walletHandler := handlers.NewWalletHandler(s.Wallet, s.Payout)
	payoutHandler := handlers.NewPayoutHandler(s.Payout)
	adminHandler := handlers.NewAdminHandler(s.Payout, s.Wallet)
	healthHandler := handlers.NewHealthHandler(s.Health)

	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api")

	// The gateway signature authenticates this call.
	api.Post("/referrals/:id/confirm-payment", referralHandler.ConfirmPayment)

	authenticated := api.Group("/", s.Auth.Handler)

	referrals := authenticated.Group("/referrals")
	referrals.Post("/", middleware.RequireRole(models.RolePatient), referralHandler.Create)
	referrals.Get("/mine", middleware.RequireRole(models.RolePatient), referralHandler.ListMine)
	referrals.Get("/:id", referralHandler.Get)
	referrals.Post("/:id/accept", middleware.RequireRole(models.RoleHospital), referralHandler.Accept)
	referrals.Post("/:id/reject", middleware.RequireRole(models.RoleHospital), referralHandler.Reject)

	authenticated.Get("/hospitals/me/referrals", middleware.RequireRole(models.RoleHospital), referralHandler.ListForHospital)

	walletAccess := middleware.RequireRole(models.RoleHospital, models.RoleAdmin)
	wallets := authenticated.Group("/wallets")
	wallets.Get("/:hospitalId/balance", walletAccess, walletHandler.GetBalance)
	wallets.Get("/:hospitalId/transactions", walletAccess, walletHandler.GetTransactions)
	wallets.Get("/:hospitalId/statistics", walletAccess, walletHandler.GetStatistics)
	wallets.Get("/:hospitalId/payouts", walletAccess, walletHandler.GetPayouts)

	authenticated.Post("/payouts", middleware.RequireRole(models.RoleHospital), payoutHandler.Request)

	admin := authenticated.Group("/admin", middleware.AdminOnly())
	admin.Get("/payouts/pending", adminHandler.PendingPayouts)
	admin.Post("/payouts/:id/approve", adminHandler.ApprovePayout)
	admin.Post("/payouts/:id/reject", adminHandler.RejectPayout)
	admin.Get("/wallets/reconcile", adminHandler.Reconcile)
	admin.Get("/wallets/overview", adminHandler.WalletOverview)
	admin.Get("/wallets/transactions", adminHandler.WalletTransactions)
}
