package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"erp-backend/internal/admin"
	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/config"
	"erp-backend/internal/dashboard"
	"erp-backend/internal/database"
	"erp-backend/internal/database/memory"
	"erp-backend/internal/idempotency"
	"erp-backend/internal/inventory"
	"erp-backend/internal/logger"
	"erp-backend/internal/metrics"
	"erp-backend/internal/models"
	"erp-backend/internal/photo"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// store is everything the HTTP layer needs from persistence. Both the GORM
// repository and the in-memory store satisfy it.
type store interface {
	inventory.Repository
	auth.UserStore
	audit.Store
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	photos, err := photo.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("photo store: %w", err)
	}

	auditor := audit.NewWriter(st)
	recorder := metrics.New()
	svc := inventory.NewService(st,
		inventory.WithPhotoStore(photos),
		inventory.WithAuditor(auditor),
		inventory.WithRecorder(recorder),
		inventory.WithLogger(log.Named("inventory")),
	)

	keys, err := openKeyStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: inventory.ErrorHandler(log),
		BodyLimit:    photo.MaxUploadSize + 1<<20,
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(logger.RequestLogger(log))
	app.Use(recorder.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(requestTimeout(cfg.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", recorder.Handler())

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(st))
	api.Post("/auth/login", auth.LoginHandler(cfg.JWTSecret, st))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	if keys != nil {
		protected.Use(idempotency.Middleware(keys, cfg.IdempotencyTTL, log.Named("idempotency")))
	}

	protected.Get("/auth/me", auth.MeHandler(st))

	adminOnly := auth.RequireRole(models.RoleAdmin)
	inventory.RegisterRoutes(protected, svc, adminOnly)

	protected.Post("/photos", photo.UploadHandler(photos, log.Named("photo")))
	protected.Get("/photos/:name", photo.ServeHandler(photos))

	protected.Get("/dashboard/stock-chart", dashboard.StockChartHandler(svc, nil))
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(st))

	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(adminOnly)
	adminRoutes.Post("/users", admin.CreateUserHandler(st, auditor, log.Named("admin")))
	adminRoutes.Get("/users", admin.ListUsersHandler(st))

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageDriver))
		errc <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(cfg *config.Config, log *zap.Logger) (store, error) {
	switch cfg.StorageDriver {
	case "memory":
		return memory.New(), nil
	case "postgres", "":
		db, err := database.Open(cfg.DatabaseDSN, log)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db, log); err != nil {
			return nil, err
		}
		return database.NewRepository(db), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// openKeyStore returns nil when idempotency keys are disabled.
func openKeyStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (idempotency.KeyStore, error) {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("idempotency keys stored in redis", zap.String("addr", cfg.RedisAddr))
		return idempotency.NewRedisStore(rdb), nil
	}
	if cfg.StorageDriver == "memory" {
		return idempotency.NewMemoryStore(), nil
	}
	return nil, nil
}

// requestTimeout bounds the context handed to the service layer.
func requestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
