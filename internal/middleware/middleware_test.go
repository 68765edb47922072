package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/config"
	"github.com/smallbiznis/jobboard/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORSOrigins(t *testing.T) {
	cfg := config.Config{
		CORSAllowedOrigins:   []string{"http://localhost:3000", "https://*.vercel.app"},
		CORSAllowedMethods:   []string{"GET", "POST"},
		CORSAllowedHeaders:   []string{"Authorization", "Content-Type"},
		CORSAllowCredentials: true,
	}
	r := gin.New()
	r.Use(middleware.CORS(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"http://localhost:3001", false},
		{"https://app.vercel.app", true},
		{"http://app.vercel.app", false},
		{"https://vercel.app", false},
		{"https://app.vercel.app.evil.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if tc.allowed {
				require.Equal(t, http.StatusOK, rec.Code)
				require.Equal(t, tc.origin, rec.Header().Get("Access-Control-Allow-Origin"))
				return
			}
			require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSWildcard(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS(config.Config{CORSAllowedOrigins: []string{"*"}, CORSAllowedMethods: []string{"GET"}}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://anything.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func limitedRouter(limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(limiter.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterInMemory(t *testing.T) {
	limiter := middleware.NewRateLimiter(60, nil, zap.NewNop())
	var limited []string
	limiter.OnLimit(func(route string) { limited = append(limited, route) })
	r := limitedRouter(limiter)

	// burst is rpm/10
	for i := 0; i < 6; i++ {
		require.Equal(t, http.StatusOK, hit(r).Code)
	}
	rec := hit(r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), `"error":"rate_limited"`)
	require.Equal(t, []string{"/ping"}, limited)
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := middleware.NewRateLimiter(0, nil, nil)
	require.Nil(t, limiter)
	r := limitedRouter(limiter)
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, hit(r).Code)
	}
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], 42 * time.Second, nil
}

func TestRateLimiterSharedWindow(t *testing.T) {
	counter := &fakeCounter{}
	r := limitedRouter(middleware.NewRateLimiter(2, counter, zap.NewNop()))

	rec := hit(r)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	require.Equal(t, http.StatusOK, hit(r).Code)

	rec = hit(r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "42", rec.Header().Get("Retry-After"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	counter := &fakeCounter{err: errors.New("connection refused")}
	r := limitedRouter(middleware.NewRateLimiter(600, counter, zap.NewNop()))

	rec := hit(r)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry, registry)
	// second registration reuses the collectors
	again := middleware.NewMetrics(registry, registry)

	r := gin.New()
	r.Use(metrics.Handler())
	r.GET("/jobs/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/jobs/1", "/jobs/2", "/missing"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}
	again.RateLimitHit("")

	count, err := testutil.GatherAndCount(registry, "jobboard_api_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	metrics.Exposition().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	require.Contains(t, body, `jobboard_api_http_requests_total{method="GET",route="/jobs/:id",status="200"} 2`)
	require.Contains(t, body, `jobboard_api_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	require.Contains(t, body, `jobboard_api_rate_limit_hits_total{route="unmatched"} 1`)
}
