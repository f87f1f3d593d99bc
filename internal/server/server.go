package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/metrics"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sandboxApprovePath is the fake provider approval page of the in-memory
// backend.
const sandboxApprovePath = "/sandbox/paypal/approve"

// Demo account of the in-memory backend.
const (
	DemoUserID   = "1"
	DemoUsername = "demo"
	DemoPassword = "demo1234"
)

// DemoBackend is the in-memory order API used when no API_BASE_URL is set.
type DemoBackend struct {
	Products *repositories.MockProductRepository
	Carts    *repositories.MockCartRepository
	Orders   *repositories.MockOrderRepository
}

// Server is the wired storefront application.
type Server struct {
	App      *fiber.App
	Sessions *services.SessionService
	Carts    *services.CartService
	Notices  *notify.Recorder
	// Demo is nil when a REST API is configured.
	Demo *DemoBackend

	closers []func() error
	logger  zerolog.Logger
}

// New wires repositories, services and handlers according to cfg. reg
// receives the storefront metrics and is served on /metrics; nil creates a
// private registry.
func New(cfg config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*Server, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{logger: logger}

	// --- Repositories ---
	var (
		cartRepo    repositories.CartRepository
		orderRepo   repositories.OrderRepository
		productRepo repositories.ProductRepository
		credRepo    repositories.CredentialRepository
	)
	if cfg.InMemoryBackend() {
		demo := newDemoBackend(logger)
		s.Demo = demo
		cartRepo, orderRepo, productRepo = demo.Carts, demo.Orders, demo.Products
		credRepo = repositories.NewMockCredentialRepository()
		logger.Warn().Msg("API_BASE_URL not set, using the in-memory backend")
	} else {
		api := repositories.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout)
		cartRepo = repositories.NewAPICartRepository(api)
		orderRepo = repositories.NewAPIOrderRepository(api)
		productRepo = repositories.NewAPIProductRepository(api)
	}

	var ticketRepo repositories.TicketRepository
	if cfg.DatabaseDSN != "" {
		db, err := openDatabase(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		gormTickets := repositories.NewGORMTicketRepository(db)
		if err := gormTickets.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate payment tickets: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}
		ticketRepo = gormTickets
		logger.Info().Str("driver", cfg.DBDriver).Msg("payment tickets enabled")
	}

	// --- Notifications ---
	s.Notices = notify.NewRecorder()
	sink := notify.Multi{s.Notices, notify.NewLogSink(logger)}
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queues: []string{notify.RoutingKey}}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("rabbitmq unavailable, notifications are not published")
		} else {
			s.closers = append(s.closers, mq.Close)
			sink = append(sink, notify.NewBrokerSink(mq, logger))
		}
	}

	// --- Services ---
	m := metrics.NewStorefrontMetrics(reg)
	routes := services.CallbackRoutes{
		SuccessPath: cfg.PaymentSuccessPath,
		CancelPath:  cfg.PaymentCancelPath,
		CartPath:    cfg.CartPath,
	}
	s.Sessions = services.NewSessionService(credRepo, cfg.JWTSecret, 24*time.Hour)
	s.Carts = services.NewCartService(cartRepo, sink, m, logger)
	catalog := services.NewCatalogService(productRepo, logger)
	checkout := services.NewCheckoutService(s.Carts, orderRepo, ticketRepo, cfg.PaymentTicketTTL, sink, m, logger)
	callbacks := services.NewPaymentCallbackService(s.Carts, orderRepo, ticketRepo, routes, sink, m, logger)
	orders := services.NewOrderService(orderRepo, sink, logger)

	if s.Demo != nil {
		if err := s.Sessions.AddUser(context.Background(), DemoUserID, DemoUsername, DemoPassword); err != nil {
			return nil, fmt.Errorf("failed to seed demo account: %w", err)
		}
	}

	// --- Handlers ---
	cartHandler := handlers.NewCartHandler(s.Carts, catalog, s.Notices, cfg.LoginPath, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkout, s.Notices, cfg.LoginPath, logger)
	returnHandler := handlers.NewPaymentReturnHandler(callbacks, routes, s.Notices, cfg.LoginPath, logger)
	orderHandler := handlers.NewOrderHandler(orders, s.Notices, cfg.LoginPath, logger)
	productHandler := handlers.NewProductHandler(catalog, s.Notices, cfg.LoginPath, logger)
	sessionHandler := handlers.NewSessionHandler(s.Sessions, s.Carts, s.Notices, cfg.LoginPath, logger)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{AppName: "storefront", DisableStartupMessage: true})
	app.Use(fiberlogger.New())
	app.Use(middleware.LoadSession(s.Sessions, logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"backend": backendName(cfg),
			"tickets": ticketRepo != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	sessionHandler.RegisterRoutes(apiV1)
	returnHandler.RegisterRoutes(app)

	if s.Demo != nil {
		app.Get(sandboxApprovePath, s.handleSandboxApprove(cfg.PaymentSuccessPath))
	}

	s.App = app
	return s, nil
}

// Close releases the database and broker connections.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// handleSandboxApprove approves a demo payment and redirects to the success
// path the way the real provider does.
func (s *Server) handleSandboxApprove(successPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		confirmation, err := s.Demo.Orders.Approve(c.Query("paymentId"), "SANDBOX-PAYER")
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Unknown payment",
				"error":   err.Error(),
			})
		}
		query := url.Values{
			"paymentId":      {confirmation.PaymentID},
			"PayerID":        {confirmation.PayerID},
			"userId":         {confirmation.UserID},
			"receiveAddress": {confirmation.ReceiveAddress},
			"receiveName":    {confirmation.ReceiveName},
			"receivePhone":   {confirmation.ReceivePhone},
			"note":           {confirmation.Note},
		}
		return c.Redirect(successPath+"?"+query.Encode(), fiber.StatusSeeOther)
	}
}

func newDemoBackend(logger zerolog.Logger) *DemoBackend {
	products := repositories.NewMockProductRepository()
	seedProducts(products, logger)
	carts := repositories.NewMockCartRepository(products)
	return &DemoBackend{
		Products: products,
		Carts:    carts,
		Orders:   repositories.NewMockOrderRepository(carts, sandboxApprovePath),
	}
}

// seedProducts populates the in-memory catalog.
func seedProducts(repo *repositories.MockProductRepository, logger zerolog.Logger) {
	products := []models.Product{
		{ID: "prod-1", Name: "Laptop", Description: "High performance laptop", Image: "/images/laptop.jpg", Price: decimal.NewFromInt(1200), Stock: 10},
		{ID: "prod-2", Name: "Keyboard", Description: "Mechanical keyboard", Image: "/images/keyboard.jpg", Price: decimal.NewFromInt(75), Stock: 25},
		{ID: "prod-3", Name: "Mouse", Description: "Ergonomic wireless mouse", Image: "/images/mouse.jpg", Price: decimal.RequireFromString("25.50"), Stock: 50},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			logger.Error().Err(err).Str("product", products[i].Name).Msg("error seeding product")
		}
	}
}

func openDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

func backendName(cfg config.Config) string {
	if cfg.InMemoryBackend() {
		return "in-memory"
	}
	return "api"
}
