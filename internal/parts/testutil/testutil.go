package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/bitfantasy/partslib/internal/parts/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB       *gorm.DB
	Repos    *repository.Repositories
	Store    *storage.DiskStore
	Hub      *events.Hub
	Services *service.Services
	Logger   *zap.Logger
	T        *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnv loads .env from the project root
func loadEnv() {
	if root := projectRoot(); root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens a private in-memory sqlite database with all tables migrated.
// The pool holds a single connection, so the database lives exactly as long as the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(entity.All()...); err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupEnv builds repositories, a temp-dir file store, the event hub and services.
func SetupEnv(t *testing.T) *TestEnv {
	return SetupEnvWithOptions(t, service.Options{})
}

func SetupEnvWithOptions(t *testing.T, opts service.Options) *TestEnv {
	t.Helper()
	db := SetupTestDB(t)
	log := zaptest.NewLogger(t)

	store, err := storage.NewDiskStore(t.TempDir(), storage.DefaultMarker, log)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	hub := events.NewHub(log)
	repos := repository.NewRepositories(db)

	return &TestEnv{
		DB:       db,
		Repos:    repos,
		Store:    store,
		Hub:      hub,
		Services: service.NewServices(repos, store, hub, log, opts),
		Logger:   log,
		T:        t,
	}
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DoMultipart posts a single file plus form fields.
func DoMultipart(r http.Handler, path, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", filename)
	io.Copy(part, bytes.NewReader(content))
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a handler.Response-like map
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedComponent creates a minimal component with the given number.
func SeedComponent(t *testing.T, env *TestEnv, number string) *entity.Component {
	t.Helper()
	c, err := env.Services.Component.Create(t.Context(), &service.CreateComponentInput{
		Number: number,
		Name:   "Component " + number,
	})
	if err != nil {
		t.Fatalf("Failed to seed component %s: %v", number, err)
	}
	return c
}
