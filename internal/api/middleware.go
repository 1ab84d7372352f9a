package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"alcyxob/trainlog/internal/metrics"
	"alcyxob/trainlog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextCurrentUserKey = "currentUser"
	ContextRequestIDKey   = "requestID"
)

const (
	SessionCookieName = "session_token"
	RequestIDHeader   = "X-Request-ID"
)

// CurrentUser is the authenticated caller, taken from a valid session token.
type CurrentUser struct {
	ID    primitive.ObjectID
	Email string
	Name  string
}

// SessionMiddleware reads the session token from the Authorization header or the
// session cookie. A valid token attaches a CurrentUser; anything else leaves the
// request anonymous. Enforcement is left to RequireAuth and RouteGate.
func SessionMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := authService.ParseToken(token)
		if err != nil {
			log.WithField("request_id", requestID(c)).Debug("ignoring invalid session token")
			c.Next()
			return
		}

		// ParseToken has already checked the id.
		userID, _ := primitive.ObjectIDFromHex(claims.UserID)
		c.Set(ContextCurrentUserKey, &CurrentUser{ID: userID, Email: claims.Email, Name: claims.Name})
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// Expecting "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie
}

// RequireAuth rejects anonymous requests. Must run AFTER SessionMiddleware.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated caller, or nil for anonymous requests.
func currentUser(c *gin.Context) *CurrentUser {
	raw, exists := c.Get(ContextCurrentUserKey)
	if !exists {
		return nil
	}
	user, _ := raw.(*CurrentUser)
	return user
}

var (
	appPaths  = []string{"/app"}
	authPaths = []string{"/login", "/signup", "/forgot-password", "/reset-password"}
)

// RouteGate keeps anonymous visitors out of the app pages and sends signed-in
// users away from the auth pages. A gated path matches itself and anything
// below it, so /apple-touch-icon.png or /login-help pass through.
func RouteGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		signedIn := currentUser(c) != nil

		switch {
		case !signedIn && underAny(path, appPaths):
			c.Redirect(http.StatusTemporaryRedirect, "/login")
			c.Abort()
		case signedIn && underAny(path, authPaths):
			c.Redirect(http.StatusTemporaryRedirect, "/app")
			c.Abort()
		default:
			c.Next()
		}
	}
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}

// RequestLogger tags every request with an id and logs it once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ua":         c.Request.UserAgent(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}

// PanicRecovery turns a handler panic into a 500 and logs the stack.
func PanicRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("request_id", requestID(c)).
					Errorf("http: panic serving %s: %v\n%s", c.Request.URL.Path, r, debug.Stack())
				abortWithError(c, http.StatusInternalServerError, "Something went wrong")
			}
		}()
		c.Next()
	}
}

// RequestMetrics counts requests and observes latency per matched route.
func RequestMetrics(instr *metrics.Instrumentation) gin.HandlerFunc {
	return func(c *gin.Context) {
		instr.GaugeRequests.Inc()
		defer instr.GaugeRequests.Dec()

		begin := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		instr.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		instr.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}).Inc()
	}
}

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows allowedPerMin requests per client IP and route. Limiter
// failures let the request through rather than locking users out.
func RateLimit(limiter RequestRateLimiter, instr *metrics.Instrumentation, allowedPerMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.FullPath() + ":" + c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), key, redis_rate.PerMinute(allowedPerMin))
		if err != nil {
			log.WithError(err).WithField("request_id", requestID(c)).Error("rate limiter unavailable")
			c.Next()
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		instr.CounterRateLimited.Inc()
		c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
		abortWithError(c, http.StatusTooManyRequests, "Too many requests, try again later")
	}
}
