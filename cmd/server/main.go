package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CollinsRutto/realtorgpt/internal/config"
	"github.com/CollinsRutto/realtorgpt/internal/database"
	"github.com/CollinsRutto/realtorgpt/internal/handlers"
	"github.com/CollinsRutto/realtorgpt/internal/logger"
	"github.com/CollinsRutto/realtorgpt/internal/middleware"
	"github.com/CollinsRutto/realtorgpt/internal/queue"
	"github.com/CollinsRutto/realtorgpt/internal/services/chat"
	"github.com/CollinsRutto/realtorgpt/internal/services/llm"
	"github.com/CollinsRutto/realtorgpt/internal/services/supabase"
	"github.com/CollinsRutto/realtorgpt/internal/telemetry"
	"github.com/CollinsRutto/realtorgpt/internal/workers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "realtorgpt-api"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Connect to Redis for rate limiting and anonymous chat quotas
	redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for the usage event queue (optional).
	// When no broker is configured, usage metrics are written directly to
	// the database from the request path instead.
	// Retry connection with exponential backoff to handle RabbitMQ startup delays
	var eventQueue queue.EventQueue
	if cfg.RabbitMQURL != "" {
		const maxRetries = 10
		const initialDelay = 2 * time.Second
		var lastErr error

		for attempt := 0; attempt < maxRetries; attempt++ {
			eventQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err == nil {
				zapLogger.Info("connected_to_rabbitmq")
				defer func() {
					if err := eventQueue.Close(); err != nil {
						zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
					}
				}()
				break
			}

			lastErr = err
			delay := initialDelay * time.Duration(1<<uint(attempt)) // Exponential backoff
			if delay > 30*time.Second {
				delay = 30 * time.Second // Cap at 30 seconds
			}
			zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", maxRetries),
				zap.Error(err),
				zap.Duration("retry_delay", delay),
			)
			time.Sleep(delay)
		}

		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
				zap.Int("max_retries", maxRetries),
				zap.Error(lastErr),
			)
		}
	} else {
		zapLogger.Info("rabbitmq_not_configured_using_direct_usage_recording")
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	usageRepo := database.NewUsageMetricsRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)
	quotaConfigRepo := database.NewQuotaConfigRepository(db)

	// Initialize Supabase auth services
	verifier := supabase.NewVerifier(cfg.SupabaseURL, cfg.SupabaseJWTSecret)
	supabaseClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.FrontendURL+"/auth/callback")

	// Initialize the usage recorder: queue-backed when a broker is available,
	// direct database writes otherwise
	var recorder chat.UsageRecorder
	if eventQueue != nil {
		recorder = workers.NewQueueRecorder(eventQueue, zapLogger)
	} else {
		recorder = workers.NewDirectRecorder(usageRepo, zapLogger)
	}

	// Initialize the chat service. A missing API key is surfaced per-request
	// rather than refusing to start, so health and auth endpoints stay up.
	var chatService *chat.Service
	if cfg.DeepSeekKey != "" {
		provider := llm.NewDeepSeekProviderWithLogger(
			cfg.DeepSeekKey,
			cfg.DeepSeekBaseURL,
			cfg.AIModel,
			zapLogger,
			debugMode,
		)
		chatService = chat.NewService(provider, nil, recorder, zapLogger)
	} else {
		zapLogger.Warn("deepseek_api_key_not_configured_chat_disabled")
	}

	// Initialize handlers
	var responder handlers.ChatResponder
	if chatService != nil {
		responder = chatService
	}
	chatHandler := handlers.NewChatHandler(responder, zapLogger)
	usageHandler := handlers.NewUsageHandler(usageRepo, zapLogger)
	authHandler := handlers.NewAuthHandler(supabaseClient, cfg.FrontendURL, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, redisClient, eventQueue)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	// Outermost middleware (executes first):
	// 0. OpenTelemetry tracing (if enabled)
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(serviceName))
		zapLogger.Info("otel_middleware_enabled")
	}
	// 1. Security headers (should be set on all responses)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// 2. CORS (load from DB, hot-reload; fallback to FRONTEND_URL)
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())
	// Rate limit middleware (applied selectively to specific routes, not globally)
	rateLimitReloader := middleware.NewRateLimitReloader(redisClient, ratelimitConfigRepo, middleware.DefaultRatelimitRate, zapLogger, 1*time.Minute)
	if rateLimitReloader == nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader")
	}
	rateLimitMW := rateLimitReloader.Middleware()
	// 3. Request size limits (protects against DoS)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// 4. Content-Type validation for POST/PATCH/PUT requests
	r.Use(middleware.ContentType)
	// 5. Request timeout (30 seconds default)
	r.Use(middleware.Timeout(30 * time.Second))
	// 6. Error handler (catches panics)
	r.Use(middleware.ErrorHandler(zapLogger))
	// 7. Audit logging (for security events)
	r.Use(middleware.Audit(zapLogger))
	// 8. Logging (innermost, executes last before handler)
	r.Use(middleware.Logging(zapLogger))

	// Daily question quota for anonymous callers
	chatQuota := middleware.NewChatQuota(
		middleware.NewRedisQuotaStore(redisClient),
		quotaConfigRepo,
		zapLogger,
		1*time.Minute,
	)

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// OAuth callback from Supabase
	callbackRouter := r.PathPrefix("/auth").Subrouter()
	callbackRouter.Use(rateLimitMW)
	callbackRouter.HandleFunc("/callback", authHandler.Callback).Methods("GET")

	// API routes
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimitMW)

	// Chat: open to anonymous callers, but metered per IP per day until
	// they sign in
	chatRouter := apiRouter.PathPrefix("/chat").Subrouter()
	chatRouter.Use(middleware.OptionalAuth(userRepo, verifier, zapLogger))
	chatRouter.Use(chatQuota.Middleware())
	chatRouter.HandleFunc("", chatHandler.Chat).Methods("POST")

	// Usage: requires authentication
	usageRouter := apiRouter.PathPrefix("/usage").Subrouter()
	usageRouter.Use(middleware.Auth(userRepo, verifier, zapLogger))
	usageRouter.HandleFunc("", usageHandler.Usage).Methods("GET")

	// Catch-all OPTIONS handler for preflight requests
	// The CORS middleware will handle setting headers before this is called
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Config hot-reload loops
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)
	go chatQuota.Start(reloadCtx)

	// Start DLQ garbage collector if the queue implementation supports it
	// Run every hour, retain messages for 24 hours
	if dlqPurger, ok := eventQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour)
		go func() {
			if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info (sanitized for security)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
