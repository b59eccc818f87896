package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cijene-me/cijene-api/internal/api/http/handlers"
	"github.com/cijene-me/cijene-api/internal/auth"
	"github.com/cijene-me/cijene-api/internal/cache"
	"github.com/cijene-me/cijene-api/internal/config"
	"github.com/cijene-me/cijene-api/internal/domain"
	"github.com/cijene-me/cijene-api/internal/events"
	"github.com/cijene-me/cijene-api/internal/observability"
	"github.com/cijene-me/cijene-api/internal/repository"
	"github.com/cijene-me/cijene-api/internal/service"
	"github.com/cijene-me/cijene-api/internal/testutil"
	"github.com/cijene-me/cijene-api/internal/worker"
)

type testServer struct {
	app    *fiber.App
	store  *testutil.MemStore
	tokens *auth.TokenManager

	mu  sync.Mutex
	now time.Time
}

func (s *testServer) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *testServer) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func newTestServer(t *testing.T, rl config.RateLimitConfig) *testServer {
	t.Helper()
	rdb, _ := testutil.NewRedis(t)
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	s := &testServer{store: testutil.NewMemStore(), now: time.Now()}
	s.tokens = testutil.NewTokenManager(s.clock)

	sessions := repository.NewSessionRepository(rdb, "test:")
	responses := cache.New(rdb, "test:", time.Minute)
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartEventWorker(dispatcher, responses, nil, logger)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:    s.store.Users(),
		SessionRepo: sessions,
		Tokens:      s.tokens,
		BcryptCost:  4,
		Metrics:     metrics,
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:      handlers.NewHealthHandler("cijene-api", "test", map[string]handlers.Pinger{}),
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUsersHandler(service.NewUserService(s.store.Users(), sessions, dispatcher, logger)),
		StoreBrands: handlers.NewStoreBrandsHandler(service.NewStoreBrandService(s.store.StoreBrands(), dispatcher, logger)),
		StoreLocations: handlers.NewStoreLocationsHandler(
			service.NewStoreLocationService(s.store.StoreLocations(), s.store.StoreBrands(), dispatcher, logger)),
		Categories: handlers.NewCategoriesHandler(service.NewCategoryService(s.store.Categories(), dispatcher, logger)),
		Products: handlers.NewProductsHandler(service.NewProductService(service.ProductDependencies{
			ProductRepo:  s.store.Products(),
			CategoryRepo: s.store.Categories(),
			Dispatcher:   dispatcher,
			Logger:       logger,
		})),
		ProductEntries: handlers.NewProductEntriesHandler(service.NewProductEntryService(
			s.store.ProductEntries(), s.store.Products(), s.store.StoreLocations(), s.store.StoreBrands(), dispatcher, logger)),
		AuthMiddleware: auth.NewAuthMiddleware(s.tokens, s.store.Users()),
		RateLimiter:    NewRateLimiter(rl, rdb, "test:", logger),
		Cache:          responses,
		Metrics:        metrics,
		Logger:         logger,
	})
	s.app = app
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp, decode(t, resp)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *testServer) tokenFor(t *testing.T, role domain.Role) string {
	t.Helper()
	u := testutil.SeedUser(t, s.store, strings.ToLower(string(role))+"@example.com", role)
	return testutil.AccessToken(t, s.tokens, u)
}

func (s *testServer) login(t *testing.T, email string) (access, refresh string) {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"email":    email,
		"password": testutil.TestPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "bearer", data["token_type"])
	return data["access_token"].(string), data["refresh_token"].(string)
}

var disabled = config.RateLimitConfig{}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, disabled)
	reg := map[string]string{"email": "ana@example.com", "full_name": "Ana Horvat", "password": testutil.TestPassword}

	resp, body := s.do(t, http.MethodPost, "/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	user := body["data"].(map[string]any)
	assert.Equal(t, "USER", user["role"])
	assert.NotContains(t, user, "password_hash")

	resp, body = s.do(t, http.MethodPost, "/auth/register", "", reg)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	access, refresh := s.login(t, "ana@example.com")

	resp, body = s.do(t, http.MethodGet, "/auth/me", access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "ana@example.com", body["data"].(map[string]any)["email"])

	// an access token cannot refresh
	resp, _ = s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": access})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	rotated := body["data"].(map[string]any)["refresh_token"].(string)

	resp, _ = s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": rotated})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": rotated})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": rotated})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
}

func TestUsersMeForRegularUser(t *testing.T) {
	s := newTestServer(t, disabled)
	token := s.tokenFor(t, domain.RoleUser)

	resp, body := s.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "user@example.com", body["data"].(map[string]any)["email"])

	resp, _ = s.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginWithPasswordForm(t *testing.T) {
	s := newTestServer(t, disabled)
	testutil.SeedUser(t, s.store, "ana@example.com", domain.RoleUser)

	form := url.Values{"username": {"ana@example.com"}, "password": {testutil.TestPassword}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body := decode(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.NotEmpty(t, body["data"].(map[string]any)["access_token"])
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	s := newTestServer(t, disabled)
	token := s.tokenFor(t, domain.RoleUser)

	resp, _ := s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.advance(31 * time.Minute)
	resp, body := s.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token expired", body["error"].(map[string]any)["message"])
}

func TestStoreBrandWritesRequireAdmin(t *testing.T) {
	s := newTestServer(t, disabled)
	payload := map[string]string{"name": "Konzum"}

	resp, _ := s.do(t, http.MethodPost, "/store-brands", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/store-brands", s.tokenFor(t, domain.RoleUser), payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	resp, _ = s.do(t, http.MethodPost, "/store-brands", s.tokenFor(t, domain.RoleModerator), payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/store-brands", s.tokenFor(t, domain.RoleAdmin), payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Konzum", body["data"].(map[string]any)["name"])
}

func TestDeleteBrandWithLocationsConflicts(t *testing.T) {
	s := newTestServer(t, disabled)
	admin := s.tokenFor(t, domain.RoleAdmin)

	resp, body := s.do(t, http.MethodPost, "/store-brands", admin, map[string]string{"name": "Spar"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	brandID := body["data"].(map[string]any)["id"]

	resp, body = s.do(t, http.MethodPost, "/store-locations", admin, map[string]any{
		"store_brand_id": brandID,
		"address":        "Vukovarska 5, Split",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Spar", body["data"].(map[string]any)["store_brand_name"])

	path := "/store-brands/" + jsonID(brandID)
	resp, body = s.do(t, http.MethodDelete, path, admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(body))

	resp, _ = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProductEntryFlow(t *testing.T) {
	s := newTestServer(t, disabled)
	mod := s.tokenFor(t, domain.RoleModerator)
	admin := s.tokenFor(t, domain.RoleAdmin)

	_, body := s.do(t, http.MethodPost, "/store-brands", admin, map[string]string{"name": "Lidl"})
	brandID := body["data"].(map[string]any)["id"]
	_, body = s.do(t, http.MethodPost, "/store-locations", mod, map[string]any{"store_brand_id": brandID, "address": "Avenija Dubrovnik 1"})
	locationID := body["data"].(map[string]any)["id"]
	_, body = s.do(t, http.MethodPost, "/categories", mod, map[string]string{"name": "Bakery"})
	categoryID := body["data"].(map[string]any)["id"]
	resp, body := s.do(t, http.MethodPost, "/products", mod, map[string]any{"name": "Bread", "barcode": "385001", "category_id": categoryID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	productID := body["data"].(map[string]any)["id"]

	resp, body = s.do(t, http.MethodPost, "/product-entries", mod, map[string]any{
		"product_id": productID, "store_location_id": locationID, "price": "-2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	resp, body = s.do(t, http.MethodPost, "/product-entries", mod, map[string]any{
		"product_id": productID, "store_location_id": locationID, "price": 1.5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	entry := body["data"].(map[string]any)
	assert.Equal(t, "1.50", entry["price"])
	assert.Equal(t, brandID, entry["store_brand_id"])

	resp, body = s.do(t, http.MethodGet, "/product-entries/store-brand/"+jsonID(brandID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, float64(1), body["total_count"])
	assert.Equal(t, float64(10), body["per_page"])

	resp, _ = s.do(t, http.MethodDelete, "/products/"+jsonID(productID), mod, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/products?order_by=price", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"].(map[string]any)["details"], "order_by")
}

func TestResponseCache(t *testing.T) {
	s := newTestServer(t, disabled)
	admin := s.tokenFor(t, domain.RoleAdmin)

	resp, _ := s.do(t, http.MethodGet, "/store-brands", "", nil)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	resp, body := s.do(t, http.MethodGet, "/store-brands", "", nil)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
	assert.Equal(t, float64(0), body["total_count"])

	resp, _ = s.do(t, http.MethodPost, "/store-brands", admin, map[string]string{"name": "Tommy"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/store-brands", "", nil)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.Equal(t, float64(1), body["total_count"])

	// errors are not cached
	resp, _ = s.do(t, http.MethodGet, "/store-brands/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/store-brands/999", "", nil)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
}

func TestRateLimitOnLogin(t *testing.T) {
	s := newTestServer(t, config.RateLimitConfig{Enabled: true, Capacity: 2, RefillPerSecond: 0.001})
	creds := map[string]string{"email": "nobody@example.com", "password": "x"}

	for i := 0; i < 2; i++ {
		resp, _ := s.do(t, http.MethodPost, "/auth/token", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := s.do(t, http.MethodPost, "/auth/token", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorCode(body))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// other routes have their own bucket
	resp, _ = s.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownRouteAndHealth(t *testing.T) {
	s := newTestServer(t, disabled)

	resp, body := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	resp, body = s.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mresp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(mresp.Body)
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestListPageBounds(t *testing.T) {
	s := newTestServer(t, disabled)

	resp, body := s.do(t, http.MethodGet, "/store-brands?page=9223372036854775807", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	resp, body = s.do(t, http.MethodGet, "/products?page=1000000&per_page=100", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, float64(1000000), body["page"])
	assert.Empty(t, body["data"])
}

func scrapeMetrics(t *testing.T, s *testServer) string {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	return string(raw)
}

func TestMetricsLabelsAcrossMixedTraffic(t *testing.T) {
	s := newTestServer(t, disabled)

	s.do(t, http.MethodGet, "/health/live", "", nil)
	s.do(t, http.MethodPost, "/auth/logout", "", nil)
	s.do(t, http.MethodDelete, "/store-brands/1", "", nil)
	for _, path := range []string{"/nope-aaa", "/nope-bbb", "/nope-ccc"} {
		resp, _ := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	first := scrapeMetrics(t, s)
	assert.Contains(t, first, `http_requests_total{method="GET",route="/health/live",status="200"} 1`)
	assert.Contains(t, first, `http_requests_total{method="POST",route="/auth/logout",status="400"} 1`)
	assert.Contains(t, first, `http_requests_total{method="DELETE",route="/store-brands/:id",status="401"} 1`)
	assert.Contains(t, first, `http_errors_total{code="UNAUTHORIZED",method="DELETE",route="/store-brands/:id"} 1`)
	assert.Contains(t, first, `http_requests_total{method="GET",route="unmatched",status="404"} 3`)
	assert.NotContains(t, first, "/nope-")

	s.do(t, http.MethodPut, "/store-brands/2", "", map[string]string{"name": "x"})
	second := scrapeMetrics(t, s)
	assert.Contains(t, second, `http_requests_total{method="GET",route="/health/live",status="200"} 1`)
	assert.Contains(t, second, `http_requests_total{method="PUT",route="/store-brands/:id",status="401"} 1`)
	assert.Contains(t, second, `http_requests_total{method="GET",route="/metrics",status="200"} 1`)
}

func jsonID(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestImageUploadWithoutMediaStore(t *testing.T) {
	s := newTestServer(t, disabled)
	mod := s.tokenFor(t, domain.RoleModerator)

	_, body := s.do(t, http.MethodPost, "/categories", mod, map[string]string{"name": "Drinks"})
	categoryID := body["data"].(map[string]any)["id"]
	_, body = s.do(t, http.MethodPost, "/products", mod, map[string]any{"name": "Water", "barcode": "385002", "category_id": categoryID})
	productID := body["data"].(map[string]any)["id"]

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "water.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/"+jsonID(productID)+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+mod)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body = decode(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MEDIA_UNAVAILABLE", errorCode(body))
}
