package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"alcyxob/trainlog/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter allows the first n calls per key.
type countingLimiter struct {
	mu    sync.Mutex
	n     int
	calls map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[key]++
	if l.calls[key] > l.n {
		return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: 30 * time.Second}, nil
	}
	return &redis_rate.Result{Limit: limit, Allowed: 1, Remaining: l.n - l.calls[key]}, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{n: 2, calls: map[string]int{}}
	s := newTestServer(t, func(p *RouterParams) {
		p.RateLimiter = limiter
		p.RateLimitPerMinute = 2
	})

	body := map[string]any{"email": "nobody@example.com", "password": "password123"}
	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "31", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.instr.CounterRateLimited))

	// Limits are per route.
	rec = s.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_LimiterFailureLetsRequestsThrough(t *testing.T) {
	s := newTestServer(t, func(p *RouterParams) {
		p.RateLimiter = &countingLimiter{err: errors.New("redis down")}
		p.RateLimitPerMinute = 1
	})
	rec := s.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	instr := metrics.NewInstrumentationWithRegisterer("test", reg)
	s := newTestServer(t, func(p *RouterParams) {
		p.Instrumentation = instr
		p.Gatherer = reg
	})

	s.login(t, "metrics@example.com")
	s.do(t, http.MethodGet, "/ping", "", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(instr.CounterSignups))
	assert.Equal(t, 1.0, testutil.ToFloat64(instr.CounterLogins.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(instr.CounterRequests.WithLabelValues(http.MethodGet, "/ping", "200")))

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "trainlog_test_signups_total 1"))
}

func TestPanicRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(), PanicRecovery())
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong"}`, rec.Body.String())
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, requestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Body.String())
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
