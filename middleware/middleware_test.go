package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deifrati/api/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    c.GetUint(ContextUserIDKey),
			"email": c.GetString(ContextEmailKey),
			"role":  c.GetString(ContextRoleKey),
		})
	})
	r.GET("/admin", AuthRequired(testSecret), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired_MissingToken(t *testing.T) {
	w := do(protectedEngine(), http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Access token required"}`, w.Body.String())
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	w := do(protectedEngine(), http.MethodGet, "/me", "not-a-jwt")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Invalid or expired token"}`, w.Body.String())
}

func TestAuthRequired_WrongSecret(t *testing.T) {
	tok, err := utils.GenerateToken("other", 1, "a@b.it", "admin", time.Hour)
	require.NoError(t, err)
	w := do(protectedEngine(), http.MethodGet, "/me", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthRequired_ValidTokenSetsContext(t *testing.T) {
	tok, err := utils.GenerateToken(testSecret, 7, "chef@deifrati.it", "user", time.Hour)
	require.NoError(t, err)
	w := do(protectedEngine(), http.MethodGet, "/me", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"email":"chef@deifrati.it","role":"user"}`, w.Body.String())
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	tok, err := utils.GenerateToken(testSecret, 8, "x@deifrati.it", "user", time.Hour)
	require.NoError(t, err)
	utils.RevokeToken(tok, time.Now().Add(time.Hour))

	w := do(protectedEngine(), http.MethodGet, "/me", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRequired(t *testing.T) {
	user, _ := utils.GenerateToken(testSecret, 2, "u@deifrati.it", "user", time.Hour)
	admin, _ := utils.GenerateToken(testSecret, 1, "admin@deifrati.it", "admin", time.Hour)

	w := do(protectedEngine(), http.MethodGet, "/admin", user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Admin access required"}`, w.Body.String())

	w = do(protectedEngine(), http.MethodGet, "/admin", admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/limited", RateLimit("test-limited", 2, time.Hour), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/limited", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/limited", "").Code)
	w := do(r, http.MethodGet, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_NamesDoNotShareBuckets(t *testing.T) {
	r := gin.New()
	r.GET("/a", RateLimit("bucket-a", 1, time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", RateLimit("bucket-b", 1, time.Hour), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/a", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/b", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/a", "").Code)
}

func TestRecoveryAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Something went wrong!"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
