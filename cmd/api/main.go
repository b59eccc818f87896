package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cijene-me/cijene-api/internal/api/http"
	"github.com/cijene-me/cijene-api/internal/api/http/handlers"
	"github.com/cijene-me/cijene-api/internal/auth"
	"github.com/cijene-me/cijene-api/internal/cache"
	"github.com/cijene-me/cijene-api/internal/config"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/media"
	"github.com/cijene-me/cijene-api/internal/observability"
	"github.com/cijene-me/cijene-api/internal/persistence"
	"github.com/cijene-me/cijene-api/internal/repository"
	"github.com/cijene-me/cijene-api/internal/service"
	"github.com/cijene-me/cijene-api/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	if pg.Pool == nil {
		logger.Fatal("DATABASE_URL is not set")
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	brandRepo := repository.NewStoreBrandRepository(pool)
	locationRepo := repository.NewStoreLocationRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	entryRepo := repository.NewProductEntryRepository(pool)
	sessionRepo := repository.NewSessionRepository(rdb.Client, cfg.Cache.Prefix)

	dispatcher := events.NewInMemoryDispatcher(logger)

	var responses *cache.Store
	var invalidator worker.Invalidator
	if cfg.Cache.Enabled {
		responses = cache.New(rdb.Client, cfg.Cache.Prefix, cfg.Cache.TTL())
		invalidator = responses
	}

	var forward events.EventHandler
	if cfg.Events.RabbitMQURL != "" {
		forwarder, err := events.NewAMQPForwarder(cfg.Events.RabbitMQURL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer forwarder.Close()
		forward = forwarder.Handle
	}
	worker.StartEventWorker(dispatcher, invalidator, forward, logger)

	images, err := media.New(ctx, cfg.Media)
	if err != nil {
		logger.Fatal("failed to init media store", zap.Error(err))
	}
	if images == nil {
		logger.Warn("no MEDIA_DRIVER configured, product image uploads are disabled")
	}

	tokens := auth.NewTokenManager(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Tokens:      tokens,
		BcryptCost:  cfg.Auth.BcryptCost,
		Metrics:     metrics,
		Logger:      logger,
	})
	userService := service.NewUserService(userRepo, sessionRepo, dispatcher, logger)
	brandService := service.NewStoreBrandService(brandRepo, dispatcher, logger)
	locationService := service.NewStoreLocationService(locationRepo, brandRepo, dispatcher, logger)
	categoryService := service.NewCategoryService(categoryRepo, dispatcher, logger)
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo:    productRepo,
		CategoryRepo:   categoryRepo,
		Media:          images,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	entryService := service.NewProductEntryService(entryRepo, productRepo, locationRepo, brandRepo, dispatcher, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    rdb,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		StoreBrands:    handlers.NewStoreBrandsHandler(brandService),
		StoreLocations: handlers.NewStoreLocationsHandler(locationService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Products:       handlers.NewProductsHandler(productService),
		ProductEntries: handlers.NewProductEntriesHandler(entryService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		RateLimiter:    httptransport.NewRateLimiter(cfg.RateLimit, rdb.Client, cfg.Cache.Prefix, logger),
		Cache:          responses,
		Metrics:        metrics,
		Logger:         logger,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
