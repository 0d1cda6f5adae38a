package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"portfolioapi/docs"
	"portfolioapi/internal/bootstrap"
	"portfolioapi/internal/config"
	handlers "portfolioapi/internal/http/handler"
	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/logging"
	"portfolioapi/internal/metrics"
	"portfolioapi/internal/notify"
	"portfolioapi/internal/otel"
	"portfolioapi/internal/service"
)

// @title Portfolio API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location(), slog.LevelInfo)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		fatal(logger, "tracing_init_failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Open the configured storage slot (file, memory, redis, minio or postgres)
	slot, closer, err := bootstrap.OpenSlot(ctx, cfg, logger)
	if err != nil {
		fatal(logger, "storage_init_failed", err)
	}
	defer closer.Close()

	recorder, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}
	feed := notify.NewFeed(cfg.NotifyHistory, logger)

	portfolio, err := service.NewPortfolioService(ctx, slot,
		service.WithNotifier(feed),
		service.WithRecorder(recorder),
		service.WithLogger(logger),
		service.WithEncodeTimeout(cfg.UploadTimeout()),
	)
	if err != nil {
		fatal(logger, "portfolio_init_failed", err)
	}

	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(logger, "metrics_init_failed", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.BodyLimit(),
		DisableStartupMessage: true,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(logger))
	app.Use(httpMetrics.Handler())
	app.Use(otelfiber.Middleware())

	handlers.RegisterRoutes(app, handlers.Deps{
		Portfolio:      portfolio,
		Notifications:  feed,
		Gatherer:       prometheus.DefaultGatherer,
		ProjectSoftCap: cfg.Upload.ProjectSoftCap,
		PreviewTitle:   cfg.PreviewTitle,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		logger.Info("server_shutdown")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server_shutdown_failed", slog.String("error", err.Error()))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("server_started", slog.String("addr", addr), slog.String("storage_backend", cfg.Storage.Backend))
	if err := app.Listen(addr); err != nil {
		fatal(logger, "server_failed", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
