// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"kycgate/internal/handlers"
	"kycgate/internal/middleware"
	"kycgate/internal/models"
	"kycgate/internal/repositories"
	"kycgate/internal/services/auth"
	"kycgate/internal/services/credential"
	"kycgate/internal/services/gateway"
	"kycgate/internal/services/provider"
	"kycgate/internal/services/subscription"
	"kycgate/internal/services/token"
	"kycgate/internal/services/user"
	"kycgate/internal/services/verification"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize repositories
	accountRepo := repositories.NewAccountRepository(db)
	providerRepo := repositories.NewProviderRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	credentialRepo := repositories.NewCredentialRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	eventRepo := repositories.NewEventRepository(db)

	// Initialize services. The verification service doubles as the
	// admin checker for the provider registry; the credential service
	// is the KYC gate for both payment surfaces.
	authService := auth.NewService(accountRepo)
	userService := user.NewService(accountRepo)
	verificationService := verification.NewService(verificationRepo, repositories.CacheService)
	providerService := provider.NewService(providerRepo, verificationService)
	credentialService := credential.NewService(credentialRepo, repositories.CacheService)
	tokenService := token.NewService(tokenRepo)
	subscriptionService := subscription.NewService(subscriptionRepo, credentialService)
	gatewayService := gateway.NewService(paymentRepo, credentialService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	providerHandler := handlers.NewProviderHandler(providerService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	credentialHandler := handlers.NewCredentialHandler(credentialService)
	tokenHandler := handlers.NewTokenHandler(tokenService, tokenService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	gatewayHandler := handlers.NewGatewayHandler(gatewayService)
	eventHandler := handlers.NewEventHandler(eventRepo)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.RefreshToken)
	api.Get("/health", handlers.HealthCheck)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the KYC Gate API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	setupAccountRoutes(protected, authHandler)
	setupProviderRoutes(protected, providerHandler)
	setupVerificationRoutes(protected, verificationHandler)
	setupCredentialRoutes(protected, credentialHandler)
	setupTokenRoutes(protected, tokenHandler)
	setupSubscriptionRoutes(protected, subscriptionHandler)
	setupGatewayRoutes(protected, gatewayHandler)

	// Audit log, admin only.
	protected.Get("/events", middleware.HasPermission(models.PermissionReadAdmin), eventHandler.List)
}

func setupAccountRoutes(router fiber.Router, authHandler *handlers.AuthHandler) {
	router.Post("/logout", authHandler.Logout)
	router.Post("/change-password", authHandler.ChangePassword)
}

func setupProviderRoutes(router fiber.Router, h *handlers.ProviderHandler) {
	providers := router.Group("/providers")

	providers.Get("/", h.ListProviders)
	providers.Get("/:address", h.GetProvider)
	providers.Post("/", middleware.HasPermission(models.PermissionWriteAdmin), h.AddProvider)
	providers.Delete("/:address", middleware.HasPermission(models.PermissionWriteAdmin), h.RemoveProvider)
	providers.Post("/:address/activate", middleware.HasPermission(models.PermissionWriteAdmin), h.ActivateProvider)
}

func setupVerificationRoutes(router fiber.Router, h *handlers.VerificationHandler) {
	verifications := router.Group("/verifications")

	verifications.Post("/", middleware.HasPermission(models.PermissionVerificationSubmit), h.Submit)
	verifications.Post("/approve", middleware.HasPermission(models.PermissionVerificationDecide), h.Approve)
	verifications.Post("/reject", middleware.HasPermission(models.PermissionVerificationDecide), h.Reject)
	verifications.Post("/suspend", middleware.HasPermission(models.PermissionVerificationDecide), h.Suspend)
	verifications.Post("/risk-score", middleware.HasPermission(models.PermissionVerificationDecide), h.UpdateRiskScore)
	verifications.Get("/:address/status", h.GetStatus)
	verifications.Get("/:address/record", middleware.HasPermission(models.PermissionVerificationDecide), h.GetRecord)
	verifications.Get("/:address/verified", h.IsVerified)

	// Ledger configuration, admin only.
	config := verifications.Group("/config", middleware.AdminAuthMiddleware)
	config.Put("/expiry-period", h.SetExpiryPeriod)
	config.Put("/max-risk-score", h.SetMaxRiskScore)
	config.Put("/admin", h.SetAdmin)
}

func setupCredentialRoutes(router fiber.Router, h *handlers.CredentialHandler) {
	credentials := router.Group("/credentials")

	credentials.Post("/", middleware.HasPermission(models.PermissionCredentialMint), h.Mint)
	credentials.Post("/revoke", middleware.HasPermission(models.PermissionCredentialMint), h.Revoke)
	credentials.Post("/renew", middleware.HasPermission(models.PermissionCredentialMint), h.Renew)
	credentials.Post("/:address/check-expiry", h.CheckExpiry)
	credentials.Get("/:address", h.GetUserSBT)
	credentials.Get("/:address/verified", h.IsVerified)
	credentials.Get("/:address/balance", h.BalanceOf)

	// Always refused; present so callers get a proper error rather
	// than a 404.
	credentials.Post("/transfer", h.Transfer)

	minters := credentials.Group("/minters", middleware.AdminAuthMiddleware)
	minters.Post("/", h.AddMinter)
	minters.Delete("/:address", h.RemoveMinter)
}

func setupTokenRoutes(router fiber.Router, h *handlers.TokenHandler) {
	tokens := router.Group("/token")

	tokens.Get("/", h.Info)
	tokens.Get("/balance/:address", h.BalanceOf)
	tokens.Get("/allowance/:owner/:spender", h.Allowance)
	tokens.Post("/transfer", h.Transfer)
	tokens.Post("/approve", h.Approve)
	tokens.Post("/faucet", middleware.AdminAuthMiddleware, h.Faucet)
}

func setupSubscriptionRoutes(router fiber.Router, h *handlers.SubscriptionHandler) {
	subscriptions := router.Group("/subscription")

	subscriptions.Post("/pay", middleware.HasPermission(models.PermissionSubscriptionPay), h.Pay)
	subscriptions.Post("/claim-gas", middleware.HasPermission(models.PermissionSubscriptionPay), h.ClaimGas)
	subscriptions.Post("/deposit", h.Deposit)
	subscriptions.Get("/fee", h.Fee)
	subscriptions.Get("/stats", h.Stats)
	subscriptions.Get("/:address/status", h.Status)

	owner := subscriptions.Group("/admin", middleware.AdminAuthMiddleware)
	owner.Post("/fund-native", h.FundNative)
	owner.Post("/withdraw-fees", h.WithdrawFees)
	owner.Put("/fee", h.UpdateFee)
	owner.Put("/owner", h.TransferOwnership)
}

func setupGatewayRoutes(router fiber.Router, h *handlers.GatewayHandler) {
	payments := router.Group("/payments")

	payments.Post("/", middleware.HasPermission(models.PermissionPaymentWrite), h.SendPayment)
	payments.Post("/batch", middleware.HasPermission(models.PermissionPaymentWrite), h.SendBatchPayments)
	payments.Get("/", middleware.HasPermission(models.PermissionPaymentRead), h.RecentPayments)
	payments.Get("/stats", h.Stats)
	payments.Get("/id/:id", middleware.HasPermission(models.PermissionPaymentRead), h.GetPayment)
	payments.Get("/can-send/:address", h.CanSend)
	payments.Get("/can-receive/:address", h.CanReceive)
	payments.Get("/user/:address/stats", h.UserStats)
	payments.Get("/whitelist/:address", h.IsWhitelisted)

	admin := payments.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Put("/fee", h.SetFeePercentage)
	admin.Put("/treasury", h.SetTreasury)
	admin.Put("/require-kyc", h.SetRequireKYC)
	admin.Post("/whitelist", h.AddToWhitelist)
	admin.Delete("/whitelist/:address", h.RemoveFromWhitelist)
	admin.Post("/pause", h.Pause)
	admin.Post("/unpause", h.Unpause)
	admin.Put("/owner", h.TransferOwnership)
}
