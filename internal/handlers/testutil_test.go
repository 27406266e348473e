package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/wanderlog/backend/internal/catalog"
	"github.com/wanderlog/backend/internal/config"
	"github.com/wanderlog/backend/internal/database"
	"github.com/wanderlog/backend/internal/middleware"
	"github.com/wanderlog/backend/internal/models"
	"github.com/wanderlog/backend/internal/services"
	"github.com/wanderlog/backend/internal/storage"
	"github.com/wanderlog/backend/pkg/logger"
	"github.com/wanderlog/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	store      *storage.DiskStore
	directions *services.DirectionsClient
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating models: %v", err)
	}

	store, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed creating disk store: %v", err)
	}

	directionsClient := services.NewDirectionsClient(config.DirectionsConfig{
		URL:    "http://127.0.0.1:1/unreachable",
		APIKey: "test-key",
	})

	authHandler := NewAuthHandler(db)
	usersHandler := NewUsersHandler(db, store)
	postsHandler := NewPostsHandler(db, store)
	hotelsHandler := NewHotelsHandler(catalog.Default())
	directionsHandler := NewDirectionsHandler(directionsClient)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)

	userRoutes := app.Group("/users")
	userRoutes.Get("/", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.List)
	userRoutes.Patch("/:id/role", authMiddleware.RequireAuth, middleware.AdminOnly, usersHandler.UpdateRole)
	userRoutes.Post("/profile-image", authMiddleware.RequireAuth, usersHandler.UploadProfileImage)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Put("/:id/update", authMiddleware.RequireAuth, usersHandler.Update)

	api := app.Group("/api")
	api.Get("/hotels", hotelsHandler.List)
	api.Get("/hotels/location/:location", hotelsHandler.ByLocation)

	blogRoutes := app.Group("/blogs")
	blogRoutes.Post("/create", postsHandler.Create)
	blogRoutes.Get("/", postsHandler.ListApproved)
	blogRoutes.Get("/pending", authMiddleware.RequireAuth, middleware.AdminOnly, postsHandler.ListPending)
	blogRoutes.Patch("/approve/:id", authMiddleware.RequireAuth, middleware.AdminOnly, postsHandler.Approve)
	blogRoutes.Patch("/reject/:id", authMiddleware.RequireAuth, middleware.AdminOnly, postsHandler.Reject)
	blogRoutes.Get("/image/:id", postsHandler.Image)

	app.Post("/get-route", directionsHandler.GetRoute)

	app.Static(storage.WebPrefix, store.Root())

	return &testEnv{app: app, db: db, store: store, directions: directionsClient}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func performMultipartRequest(t *testing.T, app *fiber.App, method, path string, fields map[string]string, fileField, fileName string, fileContent []byte, headers map[string]string) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed writing form field %q: %v", key, err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("failed creating form file: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("failed writing form file content: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed closing multipart writer: %v", err)
	}

	requestHeaders := map[string]string{"Content-Type": writer.FormDataContentType()}
	for key, value := range headers {
		requestHeaders[key] = value
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}

func dataObject(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", body["data"])
	}
	return data
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	if body["data"] == nil {
		return nil
	}
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %T", body["data"])
	}
	return data
}
