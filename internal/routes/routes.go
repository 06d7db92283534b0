package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sokoni/sokoni/internal/auth"
	"github.com/sokoni/sokoni/internal/chat"
	"github.com/sokoni/sokoni/internal/config"
	"github.com/sokoni/sokoni/internal/feed"
	"github.com/sokoni/sokoni/internal/identity"
	"github.com/sokoni/sokoni/internal/inquiries"
	"github.com/sokoni/sokoni/internal/middleware"
	"github.com/sokoni/sokoni/internal/notifications"
	"github.com/sokoni/sokoni/internal/notify"
	"github.com/sokoni/sokoni/internal/orders"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// ErrorHandler renders every handler error as a JSON envelope so clients can
// rely on one shape. Wire it into fiber.Config at app construction.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.Env) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if isDev(d.Cfg.Env) {
		// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	} else {
		app.Use(middleware.Audit(d.Logger))
	}

	RegisterHealthRoutes(app, d)

	// Repositories: Postgres when a pool is provided, in-memory otherwise.
	var idRepo identity.Repository
	var orderRepo orders.Repository
	var notifRepo notifications.Repository
	var inquiryRepo inquiries.Repository
	var chatRepo chat.Repository
	if d.DB != nil {
		idRepo = identity.NewPostgresRepository(d.DB)
		orderRepo = orders.NewPostgresRepository(d.DB)
		notifRepo = notifications.NewPostgresRepository(d.DB)
		inquiryRepo = inquiries.NewPostgresRepository(d.DB)
		chatRepo = chat.NewPostgresRepository(d.DB)
	} else {
		idRepo = identity.NewMemoryRepository()
		orderRepo = orders.NewMemoryRepository()
		notifRepo = notifications.NewMemoryRepository()
		inquiryRepo = inquiries.NewMemoryRepository()
		chatRepo = chat.NewMemoryRepository()
	}

	var resets auth.ResetStore
	if d.Cache != nil {
		resets = auth.NewRedisResetStore(d.Cache)
	} else {
		resets = auth.NewMemoryResetStore()
	}

	bus := feed.NewBus(d.Cache, d.Logger)
	notifier := notify.NewLoggerNotifier(d.Logger)

	idSvc := identity.NewService(idRepo)
	authSvc := auth.NewService(d.Cfg, idRepo, resets, notifier)
	notifSvc := notifications.NewService(notifRepo, bus)
	orderSvc := orders.NewService(orderRepo, notifSvc, bus, d.Cfg.OrderVisibility)
	inquirySvc := inquiries.NewService(inquiryRepo, notifSvc, bus)
	chatSvc := chat.NewService(chatRepo, notifSvc, bus)

	authHandler := auth.NewHandler(idSvc, authSvc)
	orderHandler := orders.NewHandler(orderSvc)
	notifHandler := notifications.NewHandler(notifSvc)
	inquiryHandler := inquiries.NewHandler(inquirySvc)
	chatHandler := chat.NewHandler(chatSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, idSvc)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.BearerAuth(d.Cfg, idRepo)
	protected := api.Group("", jwtmw)

	RegisterAuthProtectedRoutes(protected, authHandler)
	RegisterProfileRoutes(protected, idSvc)

	// Order placement is the one unsafe op worth replay protection: a retried
	// checkout must not create two orders.
	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterOrderRoutes(protected, orderHandler, idem)
	RegisterNotificationRoutes(protected, notifHandler)
	RegisterInquiryRoutes(protected, inquiryHandler)
	RegisterChatRoutes(protected, chatHandler)
	RegisterStreamRoutes(protected, bus, orderSvc, notifSvc, inquirySvc, chatSvc, d.Logger)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
