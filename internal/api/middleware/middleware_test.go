package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
	"github.com/infoamous-source/kiosk-sub001/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.Wrap(rdb, zap.NewNop())
}

func newJWT() *jwt.Manager {
	return jwt.NewManager("0123456789abcdef0123456789abcdef", &config.AuthConfig{
		AccessTokenTTL:          time.Hour,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 720 * time.Hour,
	})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	mgr := newJWT()
	rc := newRedis(t)
	sub := jwt.Subject{UserID: "u-1", Email: "a@b.co", Role: "instructor"}
	access, err := mgr.GenerateAccessToken(sub)
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(sub, false)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, rc, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id")+"|"+c.GetString("role"))
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return serve(r, req)
	}

	w := call("Bearer " + access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1|instructor", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Token "+access).Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+refresh).Code, "refresh tokens are not access tokens")

	claims, err := mgr.ParseToken(access)
	require.NoError(t, err)
	require.NoError(t, rc.BlacklistToken(context.Background(), claims.ID, time.Minute))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+access).Code, "revoked token")
}

func TestJWTAuth_NilBlacklist(t *testing.T) {
	mgr := newJWT()
	access, err := mgr.GenerateAccessToken(jwt.Subject{UserID: "u-1", Role: "student"})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRoleAuth(t *testing.T) {
	r := gin.New()
	r.GET("/x",
		func(c *gin.Context) { c.Set("role", c.Query("role")); c.Next() },
		RoleAuth("instructor"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest("GET", "/x?role=instructor", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, httptest.NewRequest("GET", "/x?role=student", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest("GET", "/x", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	rc := newRedis(t)
	r := gin.New()
	r.POST("/login", RateLimit(rc, 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest("POST", "/login", nil)).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest("POST", "/login", nil)).Code)
}

func TestRateLimit_NilClientPasses(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest("POST", "/login", nil)).Code)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/x", BodyLimit(8), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest("POST", "/x", strings.NewReader("small"))).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge,
		serve(r, httptest.NewRequest("POST", "/x", strings.NewReader("much too large"))).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", 100))
	w = serve(r, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	r := gin.New()
	r.Use(Metrics(m), Logger(zap.NewNop()))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest("GET", "/items/1", nil))
	serve(r, httptest.NewRequest("GET", "/items/2", nil))
	serve(r, httptest.NewRequest("GET", "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}
