package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/models"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

const secret = "router-secret"

func testRouter(t *testing.T, origins ...string) (*gin.Engine, sqlmock.Sqlmock, string) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var cfg config.AppConfig
	cfg.Server.GinMode = "test"
	cfg.Server.JWTSecret = secret
	cfg.Server.JWTTTLHours = 1
	cfg.Server.AllowedOrigins = origins
	cfg.Limits.APIPer15Min = 1000
	cfg.Limits.LoginPer15Min = 100
	cfg.Limits.FormsPerHour = 100
	cfg.Storage.UploadDir = t.TempDir()

	store, err := storage.NewLocal(cfg.Storage)
	require.NoError(t, err)
	return SetupRouter(cfg, db, store), mock, cfg.Storage.UploadDir
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, 1, "staff@deifrati.it", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	msg, _ := body["message"].(string)
	return msg
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r, _, _ := testRouter(t)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to Dei Frati API", message(t, w))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", message(t, w))
}

func TestRouter_AdminGuard(t *testing.T) {
	r, _, _ := testRouter(t)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", message(t, w))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid or expired token", message(t, w))

	req = httptest.NewRequest(http.MethodPost, "/api/upload/image", nil)
	req.Header.Set("Authorization", bearer(t, models.RoleUser))
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", message(t, w))
}

func TestRouter_LocalUploadIsServed(t *testing.T) {
	r, _, dir := testRouter(t)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="piatto.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/image", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, models.RoleAdmin))
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		ImageURL string `json:"imageUrl"`
		Key      string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body.ImageURL, "http://example.com/uploads/"), body.ImageURL)
	assert.True(t, strings.HasSuffix(body.Key, ".png"), body.Key)

	stored, err := os.ReadFile(filepath.Join(dir, body.Key))
	require.NoError(t, err)
	assert.Equal(t, "fake png", string(stored))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/uploads/"+body.Key, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake png", w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	r, _, _ := testRouter(t, "https://deifrati.it")

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/menu", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		return serve(r, req)
	}

	w := preflight("https://deifrati.it")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://deifrati.it", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorsConfig_EmptyListAllowsAll(t *testing.T) {
	cfg := corsConfig(nil)
	assert.True(t, cfg.AllowOriginFunc("https://anything.example"))

	cfg = corsConfig([]string{"https://deifrati.it"})
	assert.True(t, cfg.AllowOriginFunc("https://deifrati.it"))
	assert.False(t, cfg.AllowOriginFunc("http://deifrati.it"))
}
