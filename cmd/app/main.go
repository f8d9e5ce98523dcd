package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/wichananm65/tabdil-hub-backend/internal/auth"
	"github.com/wichananm65/tabdil-hub-backend/internal/banner"
	"github.com/wichananm65/tabdil-hub-backend/internal/category"
	"github.com/wichananm65/tabdil-hub-backend/internal/city"
	"github.com/wichananm65/tabdil-hub-backend/internal/config"
	"github.com/wichananm65/tabdil-hub-backend/internal/country"
	"github.com/wichananm65/tabdil-hub-backend/internal/database"
	"github.com/wichananm65/tabdil-hub-backend/internal/item"
	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
	"github.com/wichananm65/tabdil-hub-backend/internal/publicdata"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/subscription"
	"github.com/wichananm65/tabdil-hub-backend/internal/upload"
	"github.com/wichananm65/tabdil-hub-backend/internal/user"
)

// multipart framing on top of the file itself
const uploadOverhead = 64 << 10

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          response.ErrorHandler,
		BodyLimit:             int(cfg.Storage.MaxUploadBytes) + uploadOverhead,
		DisableStartupMessage: true,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(logger.Middleware(log))

	if err := routes(ctx, app, db, cfg, log); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		errCh <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func routes(ctx context.Context, app *fiber.App, db *sql.DB, cfg config.Config, log *slog.Logger) error {
	users := user.NewService(user.NewPostgresRepository(db), log)
	countries := country.NewService(country.NewPostgresRepository(db), log)
	cities := city.NewService(city.NewPostgresRepository(db), log)
	categories := category.NewService(category.NewPostgresRepository(db), log)
	banners := banner.NewService(banner.NewPostgresRepository(db), log)
	items := item.NewService(item.NewPostgresRepository(db), log)
	plans := subscription.NewService(subscription.NewPostgresRepository(db), log)

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	auth.NewHandler(users, issuer).RegisterPublicRoutes(app)
	publicdata.NewHandler(publicdata.NewService(items, banners, categories, plans, users, log)).
		RegisterPublicRoutes(app)

	app.Use("/api", auth.Middleware(cfg.Auth.JWTSecret))

	user.NewHandler(users).RegisterProtectedRoutes(app)
	country.NewHandler(countries).RegisterProtectedRoutes(app)
	city.NewHandler(cities).RegisterProtectedRoutes(app)
	category.NewHandler(categories).RegisterProtectedRoutes(app)
	// /api/items/banners must win over /api/items/:id
	banner.NewHandler(banners).RegisterProtectedRoutes(app)
	item.NewHandler(items).RegisterProtectedRoutes(app)
	subscription.NewHandler(plans).RegisterProtectedRoutes(app)

	if cfg.Storage.Bucket == "" {
		log.Warn("storage bucket not configured, uploads disabled")
		return nil
	}
	host, err := upload.NewS3Host(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	uploads := upload.NewService(host, cfg.Storage.MaxDimension, log)
	upload.NewHandler(uploads, cfg.Storage.MaxUploadBytes).RegisterProtectedRoutes(app)
	return nil
}
