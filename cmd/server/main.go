package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/trainlog/internal/api"
	"alcyxob/trainlog/internal/config"
	"alcyxob/trainlog/internal/logging"
	"alcyxob/trainlog/internal/mail"
	"alcyxob/trainlog/internal/metrics"
	"alcyxob/trainlog/internal/repository"
	"alcyxob/trainlog/internal/repository/memory"
	"alcyxob/trainlog/internal/repository/mongo"
	"alcyxob/trainlog/internal/service"
	"alcyxob/trainlog/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

// @title Trainlog API
// @version 1.0
// @description Personal training log: exercises, templates, sessions, set logs and progress.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	// --- Configuration ---
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	hostname, _ := os.Hostname()
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.Log.File,
		LogToStdout:      cfg.Log.Stdout,
		LogLevel:         cfg.Log.Level,
		LogFormatJSON:    cfg.Log.JSON,
		Environment:      cfg.Sentry.Environment,
		SentryEnabled:    cfg.Sentry.Enabled,
		SentryDSN:        cfg.Sentry.DSN,
		SentryServerName: hostname,
	})
	log.Info("starting trainlog server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Repositories ---
	repos, closeDB := setupRepositories(ctx, cfg.Database)
	defer closeDB()

	// --- Outbound collaborators ---
	var mailer mail.Mailer
	if cfg.Email.Enabled {
		mailer, err = mail.NewSESMailer(ctx, cfg.Email)
		if err != nil {
			log.Fatalf("failed to initialize SES mailer: %s", err)
		}
	} else {
		log.Warn("email disabled, reset links will only be logged")
		mailer = mail.NewLogMailer()
	}

	var exportService service.ExportService
	if cfg.S3.Enabled {
		fileStorage, err := storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %s", err)
		}
		exportService = service.NewExportService(repos, fileStorage)
	} else {
		log.Info("s3 disabled, export endpoint will answer 503")
	}

	// --- Services ---
	authService := service.NewAuthService(repos.Users, mailer, service.AuthConfig{
		JWTSecret:     cfg.Auth.Secret,
		SessionTTL:    cfg.Auth.SessionTTL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		BaseURL:       cfg.Server.BaseURL,
	})

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	instr := metrics.NewInstrumentationWithRegisterer("server", promRegistry)

	params := api.RouterParams{
		AuthService:     authService,
		ExerciseService: service.NewExerciseService(repos),
		SessionService:  service.NewSessionService(repos),
		TemplateService: service.NewTemplateService(repos),
		ProgressService: service.NewProgressService(repos),
		ExportService:   exportService,
		Instrumentation: instr,
		Gatherer:        promRegistry,
		SessionTTL:      cfg.Auth.SessionTTL,
		CookieSecure:    cfg.Auth.CookieSecure,
		StaticDir:       cfg.Server.StaticDir,
	}

	if cfg.RateLimit.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0, // use default DB
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Errorf("failed to close redis client conn: %s", err)
			}
		}()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("failed to ping redis: %s", err)
		}
		params.RateLimiter = redis_rate.NewLimiter(rdb)
		params.RateLimitPerMinute = cfg.RateLimit.PerMinute
	}

	if !log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(params)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	log.Info("server exiting")
}

// setupRepositories connects the configured driver and returns a cleanup func.
func setupRepositories(ctx context.Context, cfg config.DatabaseConfig) (repository.Repositories, func()) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using in-memory repositories, data is lost on restart")
		return memory.New(), func() {}
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		log.Fatalf("could not connect to MongoDB: %s", err)
	}
	appDB := dbClient.Database(cfg.Name)
	log.Info("database connection established")

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		log.Errorf("ensure indexes: %s", err)
	}

	return mongo.NewRepositories(appDB), func() {
		log.Info("disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("failed to disconnect MongoDB: %s", err)
		}
	}
}
