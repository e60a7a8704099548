package utils

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/deifrati/api/config"
)

func TestMemoryCache(t *testing.T) {
	SetRedis(nil)
	InvalidateByPrefix("test:")

	CacheSetJSON("test:menu", map[string]int{"n": 1}, time.Minute)
	CacheSetBytes("test:other", []byte("x"), 0)
	CacheSetBytes("keep:me", []byte("y"), time.Minute)

	b, ok := CacheGetBytes("test:menu")
	require.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(b))

	InvalidateByPrefix("test:")
	_, ok = CacheGetBytes("test:menu")
	assert.False(t, ok)
	_, ok = CacheGetBytes("test:other")
	assert.False(t, ok)
	_, ok = CacheGetBytes("keep:me")
	assert.True(t, ok)
}

func TestMemoryCache_Expires(t *testing.T) {
	SetRedis(nil)
	CacheSetBytes("test:short", []byte("x"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	_, ok := CacheGetBytes("test:short")
	assert.False(t, ok)
}

func TestInitRedis_NoHost(t *testing.T) {
	assert.Nil(t, InitRedis(config.RedisConfig{}))
	assert.Nil(t, GetRedis())
}

func TestToken_RoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", 7, "chef@deifrati.it", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "chef@deifrati.it", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	_, err = ParseToken("other", tok)
	assert.Error(t, err)

	_, err = GenerateToken("", 1, "a@b.c", "user", time.Hour)
	assert.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	tok, err := GenerateToken("s3cret", 1, "a@b.c", "user", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", tok)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	SetRedis(nil)
	assert.False(t, IsTokenRevoked("abc"))

	RevokeToken("abc", time.Now().Add(time.Hour))
	assert.True(t, IsTokenRevoked("abc"))
	assert.False(t, IsTokenRevoked("abd"))

	// already expired tokens are not worth remembering
	RevokeToken("old", time.Now().Add(-time.Second))
	assert.False(t, IsTokenRevoked("old"))
}

func TestRevokeToken_RedisFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prevLogger := Logger
	Logger = zap.New(core)
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	SetRedis(rc)
	t.Cleanup(func() {
		SetRedis(nil)
		_ = rc.Close()
		Logger = prevLogger
	})

	RevokeToken("abc", time.Now().Add(time.Hour))

	entries := logs.FilterMessage("token revocation not stored").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "error")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("grappa123")
	require.NoError(t, err)
	assert.NotEqual(t, "grappa123", hash)
	assert.True(t, CheckPassword(hash, "grappa123"))
	assert.False(t, CheckPassword(hash, "grappa124"))
	assert.Equal(t, 6, MinPasswordLen)
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Table for 4 & a cake", SanitizeText("  <b>Table</b> for 4 &amp; a cake<script>alert(1)</script> "))
	assert.Equal(t, "O'Brien", SanitizeText("O'Brien"))
}

func TestChecker(t *testing.T) {
	var c Checker
	c.Check(MinLen(" Al ", 2), "name", " Al ", "Name must be at least 2 characters")
	c.Check(IsEmail("nope"), "email", "nope", "Valid email is required")
	c.Check(MinLen("é", 2), "subject", "é", "Subject too short")

	require.False(t, c.Valid())
	errs := c.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, FieldError{Type: "field", Value: "nope", Msg: "Valid email is required", Path: "email", Location: "body"}, errs[0])
	assert.Equal(t, "subject", errs[1].Path)
}

func TestParseISODate(t *testing.T) {
	for _, s := range []string{"2025-06-01", "2025-06-01T19:30:00Z", "2025-06-01T19:30"} {
		_, ok := ParseISODate(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseISODate("01/06/2025")
	assert.False(t, ok)
}

func TestNumberCoercion(t *testing.T) {
	n, ok := IntFrom(float64(4))
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	_, ok = IntFrom(4.5)
	assert.False(t, ok)
	n, ok = IntFrom(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	_, ok = IntFrom(nil)
	assert.False(t, ok)

	f, ok := FloatFrom("18.50")
	assert.True(t, ok)
	assert.Equal(t, 18.5, f)
	_, ok = FloatFrom(true)
	assert.False(t, ok)
}
