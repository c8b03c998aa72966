package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/billio/invoicing-api/internal/api/handler"
	"github.com/billio/invoicing-api/internal/api/middleware"
	"github.com/billio/invoicing-api/internal/core/service"
	"github.com/billio/invoicing-api/internal/infrastructure/chat"
	mongodb "github.com/billio/invoicing-api/internal/infrastructure/db/mongo"
	redisdb "github.com/billio/invoicing-api/internal/infrastructure/db/redis"
	"github.com/billio/invoicing-api/internal/infrastructure/documents"
	"github.com/billio/invoicing-api/internal/infrastructure/identity"
	"github.com/billio/invoicing-api/internal/infrastructure/queue"
	"github.com/billio/invoicing-api/internal/infrastructure/storage"
	"github.com/billio/invoicing-api/internal/pkg/config"
)

// Dependencies bundles everything the router needs beyond configuration.
type Dependencies struct {
	Config *config.Config
	Log    zerolog.Logger
	Mongo  *mongo.Database
	Redis  *goredis.Client
}

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the dispatcher that must be started before serving.
func NewRouter(deps Dependencies) (*echo.Echo, *queue.Dispatcher) {
	cfg := deps.Config
	log := deps.Log

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("invoicing"))

	// --- Outbound clients ---
	identityClient := identity.NewClient(identity.Config{BaseURL: cfg.Identity.BaseURL, APIKey: cfg.Identity.APIKey})
	storageClient := storage.NewClient(storage.Config{BaseURL: cfg.Identity.BaseURL, APIKey: cfg.Identity.APIKey})
	documentsClient := documents.NewClient(documents.Config{BaseURL: cfg.Documents.BaseURL})
	chatClient := chat.NewDeepSeekClient(chat.Config{APIKey: cfg.Chat.APIKey, BaseURL: cfg.Chat.BaseURL, Model: cfg.Chat.Model})

	// --- Repositories ---
	customerRepo := mongodb.NewCustomerRepository(deps.Mongo)
	invoiceRepo := mongodb.NewInvoiceRepository(deps.Mongo)
	companyRepo := mongodb.NewCompanyRepository(deps.Mongo)
	templateRepo := mongodb.NewTemplateRepository(deps.Mongo)
	rateCache := redisdb.NewRateCache(deps.Redis)

	// --- Services ---
	sessions := service.NewSessionStore(identityClient, log)
	customers := service.NewCustomerStore(customerRepo, log)
	invoices := service.NewInvoiceStore(invoiceRepo, customerRepo, log)
	company := service.NewCompanyStore(companyRepo, storageClient, cfg.Storage.LogoBucket, log)
	templates := service.NewTemplateStore(templateRepo, log)
	retriever := service.NewRetriever(customers, invoices, log)
	composer := service.NewChatComposer(retriever, chatClient, log)
	rates := service.NewExchangeRates(documentsClient, rateCache, log)

	dispatcher := queue.NewDispatcher(0, sessions, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(sessions, dispatcher, cfg.WebhookSecret)
	customerHandler := handler.NewCustomerHandler(customers)
	invoiceHandler := handler.NewInvoiceHandler(invoices)
	companyHandler := handler.NewCompanyHandler(company)
	templateHandler := handler.NewTemplateHandler(templates)
	chatHandler := handler.NewChatHandler(composer)
	documentsHandler := handler.NewDocumentsHandler(invoices, company, documentsClient, rates)

	auth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)
	guarded := middleware.Guard(service.PolicyProtected, sessions.EnsureInitialized)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/events", authHandler.Events)
	e.GET("/auth/session", authHandler.Session, optionalAuth)
	e.POST("/auth/logout", authHandler.Logout, auth)
	e.POST("/auth/password", authHandler.ChangePassword, auth)
	e.GET("/auth/profile", authHandler.Profile, auth)
	e.PUT("/auth/profile", authHandler.UpdateProfile, auth)

	// --- Entity routes ---
	// Claims resolve first without rejecting, then the guard decides:
	// unauthenticated page requests redirect, API requests get 401.
	v1 := e.Group("/v1", optionalAuth, guarded)

	v1.GET("/customers", customerHandler.List)
	v1.POST("/customers", customerHandler.Create)
	v1.GET("/customers/:id", customerHandler.Get)
	v1.PUT("/customers/:id", customerHandler.Update)
	v1.DELETE("/customers/:id", customerHandler.Delete)
	v1.GET("/customers/:id/invoices", invoiceHandler.ListByCustomer)
	v1.GET("/customers/:id/email-template", templateHandler.Get)
	v1.PUT("/customers/:id/email-template", templateHandler.Save)

	v1.GET("/invoices", invoiceHandler.List)
	v1.POST("/invoices", invoiceHandler.Create)
	v1.GET("/invoices/latest-number", invoiceHandler.LatestNumber)
	v1.GET("/invoices/:id", invoiceHandler.Get)
	v1.PUT("/invoices/:id", invoiceHandler.Update)
	v1.DELETE("/invoices/:id", invoiceHandler.Delete)
	v1.GET("/invoices/:id/barcode", documentsHandler.Barcode)
	v1.POST("/invoices/:id/barcode", documentsHandler.Barcode)

	v1.GET("/company", companyHandler.Get)
	v1.PUT("/company", companyHandler.Save)
	v1.POST("/company/logo", companyHandler.UploadLogo)
	v1.GET("/company/logo", companyHandler.LogoLink)

	v1.POST("/chat", chatHandler.Send)
	v1.GET("/exchange-rates", documentsHandler.ExchangeRate)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, dispatcher
}
