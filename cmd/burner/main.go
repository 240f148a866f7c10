package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/config"
	"github.com/kailas-cloud/burner/internal/db"
	dbRedis "github.com/kailas-cloud/burner/internal/db/redis"
	"github.com/kailas-cloud/burner/internal/journal"
	logpkg "github.com/kailas-cloud/burner/internal/logger"
	"github.com/kailas-cloud/burner/internal/metrics"
	"github.com/kailas-cloud/burner/internal/repository/counter"
	chiTransport "github.com/kailas-cloud/burner/internal/transport/chi"
	openaiProvider "github.com/kailas-cloud/burner/internal/transport/openai"
	"github.com/kailas-cloud/burner/internal/usecase/burn"
	healthuc "github.com/kailas-cloud/burner/internal/usecase/health"
	"github.com/kailas-cloud/burner/internal/usecase/settings"
	"github.com/kailas-cloud/burner/internal/usecase/status"
	"github.com/kailas-cloud/burner/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting burner daemon",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("provider_base_url", cfg.Provider.BaseURL),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register burn metrics explicitly (no init())
	metrics.RegisterBurnMetrics()

	counters := counter.New(store, cfg.Storage.KeyPrefix)

	settingsSvc := settings.New(settings.Defaults{
		IntervalMinutes: cfg.Burner.IntervalMinutes,
		AutoStart:       cfg.Burner.AutoStart,
	}, counters, logpkg.Component(logger, "settings"))
	settingsSvc.Load(ctx)

	provider := openaiProvider.NewProvider(&openaiProvider.Config{
		APIKey:  cfg.Provider.APIKey,
		BaseURL: cfg.Provider.BaseURL,
		Models:  cfg.Provider.Models,
		Timeout: time.Duration(cfg.Provider.RequestTimeoutSec) * time.Second,
		Logger:  logpkg.Component(logger, "provider"),
	})

	j := journal.New(cfg.Burner.JournalSize, logger)
	statusSvc := status.New(time.Duration(cfg.Burner.WarningTTLSec)*time.Second, logpkg.Component(logger, "status"))

	engine := burn.New(provider, counters, settingsSvc, j, statusSvc, logpkg.Component(logger, "engine")).Load(ctx)
	engine.Subscribe(statusSvc.Update)
	statusSvc.Update(engine.State())
	settingsSvc.OnIntervalChange(engine.UpdateInterval)

	if settingsSvc.AutoStart() {
		engine.Enable()
	}

	healthSvc := healthuc.New(store, provider, engine)

	server := chiTransport.NewServer(engine, settingsSvc, statusSvc, j, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.ErrorCodeBadRequest,
			Message: "unknown route",
		})
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
	srv.RegisterOnShutdown(server.Shutdown)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Stops the timer and waits for an in-flight burn to return.
	engine.Close()

	state := engine.State()
	logger.Info("Burner stopped gracefully",
		zap.Int64("session_count", state.SessionCount),
		zap.Int64("all_time_count", state.AllTimeCount),
	)
}

// openStore creates the counter store for the configured driver.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
