package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/api/http/handlers"
	"github.com/cijene-me/cijene-api/internal/auth"
	"github.com/cijene-me/cijene-api/internal/cache"
	"github.com/cijene-me/cijene-api/internal/observability"
)

// RouteConfig bundles dependencies for route registration. Cache and RateLimiter
// may be nil.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	StoreBrands    *handlers.StoreBrandsHandler
	StoreLocations *handlers.StoreLocationsHandler
	Categories     *handlers.CategoriesHandler
	Products       *handlers.ProductsHandler
	ProductEntries *handlers.ProductEntriesHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Cache          *cache.Store
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cached := func(ns cache.Namespace) fiber.Handler {
		return responseCache(cfg.Cache, ns, cfg.Metrics, logger)
	}
	limited := cfg.RateLimiter.Handler()
	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireAdmin()
	privileged := auth.RequirePrivileged()

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", limited, cfg.Auth.Register)
	authGroup.Post("/token", limited, cfg.Auth.Login)
	authGroup.Post("/login", limited, cfg.Auth.Login)
	authGroup.Post("/refresh", limited, cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Auth.Me)

	app.Get("/users/me", cfg.Auth.Me)
	users := app.Group("/users", authn, admin)
	users.Get("/", cfg.Users.List)
	users.Put("/:id/role", cfg.Users.ChangeRole)

	brands := app.Group("/store-brands")
	brands.Get("/", cached(cache.StoreBrands), cfg.StoreBrands.List)
	brands.Get("/:id", cached(cache.StoreBrands), cfg.StoreBrands.Get)
	brands.Post("/", authn, admin, cfg.StoreBrands.Create)
	brands.Put("/:id", authn, admin, cfg.StoreBrands.Update)
	brands.Delete("/:id", authn, admin, cfg.StoreBrands.Delete)

	locations := app.Group("/store-locations")
	locations.Get("/", cached(cache.StoreLocations), cfg.StoreLocations.List)
	locations.Get("/brand/:id", cached(cache.StoreLocations), cfg.StoreLocations.ListByBrand)
	locations.Get("/:id", cached(cache.StoreLocations), cfg.StoreLocations.Get)
	locations.Post("/", authn, privileged, cfg.StoreLocations.Create)
	locations.Put("/:id", authn, privileged, cfg.StoreLocations.Update)
	locations.Delete("/:id", authn, privileged, cfg.StoreLocations.Delete)

	categories := app.Group("/categories")
	categories.Get("/", cached(cache.Categories), cfg.Categories.List)
	categories.Get("/:id", cached(cache.Categories), cfg.Categories.Get)
	categories.Post("/", authn, privileged, cfg.Categories.Create)
	categories.Put("/:id", authn, privileged, cfg.Categories.Update)
	categories.Delete("/:id", authn, privileged, cfg.Categories.Delete)

	products := app.Group("/products")
	products.Get("/", cached(cache.Products), cfg.Products.List)
	products.Get("/:id", cached(cache.Products), cfg.Products.Get)
	products.Post("/", authn, privileged, cfg.Products.Create)
	products.Put("/:id", authn, privileged, cfg.Products.Update)
	products.Delete("/:id", authn, privileged, cfg.Products.Delete)
	products.Post("/:id/image", authn, privileged, cfg.Products.UploadImage)

	entries := app.Group("/product-entries")
	entries.Get("/", cached(cache.ProductEntries), cfg.ProductEntries.List)
	entries.Get("/product/:id", cached(cache.ProductEntries), cfg.ProductEntries.ListByProduct)
	entries.Get("/store-brand/:id", cached(cache.ProductEntries), cfg.ProductEntries.ListByStoreBrand)
	entries.Get("/store-location/:id", cached(cache.ProductEntries), cfg.ProductEntries.ListByStoreLocation)
	entries.Get("/:id", cached(cache.ProductEntries), cfg.ProductEntries.Get)
	entries.Post("/", authn, privileged, cfg.ProductEntries.Create)
}
