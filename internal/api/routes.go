package api

import (
	"net/http"
	"time"

	"alcyxob/trainlog/internal/metrics"
	"alcyxob/trainlog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterParams carries everything the HTTP layer needs.
type RouterParams struct {
	AuthService     service.AuthService
	ExerciseService service.ExerciseService
	SessionService  service.SessionService
	TemplateService service.TemplateService
	ProgressService service.ProgressService
	// ExportService is nil when object storage is not configured.
	ExportService service.ExportService

	Instrumentation *metrics.Instrumentation
	// Gatherer backs /metrics; nil disables the route.
	Gatherer prometheus.Gatherer

	// RateLimiter guards the credential endpoints; nil disables limiting.
	RateLimiter        RequestRateLimiter
	RateLimitPerMinute int

	SessionTTL   time.Duration
	CookieSecure bool
	// StaticDir, when set, serves the presentation layer for unmatched paths.
	StaticDir string
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(p RouterParams) *gin.Engine {
	router := gin.New()
	router.Use(
		RequestLogger(),
		PanicRecovery(),
		RequestMetrics(p.Instrumentation),
		SessionMiddleware(p.AuthService),
		RouteGate(),
	)
	SetupRoutes(router, p)

	if p.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(p.StaticDir))
		router.NoRoute(gin.WrapH(fileServer))
	} else {
		router.NoRoute(func(c *gin.Context) {
			abortWithError(c, http.StatusNotFound, "Not found")
		})
	}
	return router
}

func SetupRoutes(router *gin.Engine, p RouterParams) {
	authHandler := NewAuthHandler(p.AuthService, p.Instrumentation, p.SessionTTL, p.CookieSecure)
	exerciseHandler := NewExerciseHandler(p.ExerciseService)
	sessionHandler := NewSessionHandler(p.SessionService, p.Instrumentation)
	templateHandler := NewTemplateHandler(p.TemplateService)
	progressHandler := NewProgressHandler(p.ProgressService, p.ExportService, p.Instrumentation)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if p.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	}

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if p.RateLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{RateLimit(p.RateLimiter, p.Instrumentation, p.RateLimitPerMinute), h}
	}

	apiGroup := router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/signup", limited(authHandler.Signup)...)
			authGroup.POST("/login", limited(authHandler.Login)...)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/forgot-password", limited(authHandler.ForgotPassword)...)
			authGroup.POST("/reset-password", limited(authHandler.ResetPassword)...)
		}
	}

	protected := apiGroup.Group("")
	protected.Use(RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/change-password", limited(authHandler.ChangePassword)...)

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PATCH("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("", sessionHandler.ListSessions)
			sessionGroup.POST("", sessionHandler.CreateSession)
			sessionGroup.GET("/:id", sessionHandler.GetSession)
			sessionGroup.PATCH("/:id", sessionHandler.UpdateSession)
			sessionGroup.DELETE("/:id", sessionHandler.DeleteSession)
			sessionGroup.POST("/:id/exercises", sessionHandler.AddSessionExercise)
			sessionGroup.POST("/:id/logs", sessionHandler.UpsertSetLogs)
		}

		templateGroup := protected.Group("/templates")
		{
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
			templateGroup.PATCH("/:id", templateHandler.UpdateTemplate)
			templateGroup.DELETE("/:id", templateHandler.DeleteTemplate)
			templateGroup.POST("/:id/exercises", templateHandler.AddTemplateExercise)
			templateGroup.PATCH("/:id/exercises/:teId", templateHandler.UpdateTemplateExercise)
			templateGroup.DELETE("/:id/exercises/:teId", templateHandler.DeleteTemplateExercise)
		}

		protected.GET("/progress/exercise/:exerciseId", progressHandler.ExerciseHistory)
		protected.GET("/progress/exercise/:exerciseId/last", progressHandler.LastBestSet)
		protected.POST("/export", progressHandler.Export)
	}
}
