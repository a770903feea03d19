package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/faycal55/respira/internal/auth"
	"github.com/faycal55/respira/internal/catalog"
	"github.com/faycal55/respira/internal/config"
	"github.com/faycal55/respira/internal/event"
	handler "github.com/faycal55/respira/internal/handler/http"
	"github.com/faycal55/respira/internal/repository/postgres"
	"github.com/faycal55/respira/internal/service"
	"github.com/faycal55/respira/internal/support"
	"github.com/faycal55/respira/internal/upstream"
	"github.com/faycal55/respira/migrations"
	"github.com/faycal55/respira/pkg/database"
	"github.com/faycal55/respira/pkg/health"
	"github.com/faycal55/respira/pkg/httpclient"
	pkgkafka "github.com/faycal55/respira/pkg/kafka"
	"github.com/faycal55/respira/pkg/middleware"
	"github.com/faycal55/respira/pkg/tracing"
)

const idempotencyTTL = 24 * time.Hour

// App wires together all dependencies and runs the API server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQ
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQuery > 0 {
		database.SetSlowQueryLogging(cfg.SlowQuery, logger)
	}

	// Redis is optional: without it consumer dedup falls back to memory.
	var (
		redisClient *redis.Client
		idempotency pkgkafka.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		idempotency = pkgkafka.NewRedisIdempotencyStore(redisClient, "respira:events:", idempotencyTTL)
		logger.Info("connected to Redis")
	} else {
		idempotency = pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
		logger.Warn("REDIS_URL not set, consumer idempotency is process-local")
	}

	// Initialize Kafka producer and dead-letter writer.
	producer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{Brokers: cfg.KafkaBrokers}, logger)
	dlq := pkgkafka.NewDLQ(cfg.KafkaBrokers, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Parse JWT expiry durations.
	accessExpiry, err := time.ParseDuration(cfg.JWTAccessExpiry)
	if err != nil {
		return nil, fmt.Errorf("parse JWT access expiry %q: %w", cfg.JWTAccessExpiry, err)
	}
	refreshExpiry, err := time.ParseDuration(cfg.JWTRefreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("parse JWT refresh expiry %q: %w", cfg.JWTRefreshExpiry, err)
	}

	// Upstream providers, each behind its own circuit breaker.
	aiHTTP := httpclient.DefaultConfig()
	aiHTTP.Timeout = cfg.AITimeout
	chatClient := upstream.NewChatClient(upstream.ChatConfig{
		BaseURL:   cfg.AIBaseURL,
		APIKey:    cfg.AIAPIKey,
		MaxTokens: cfg.AIMaxTokens,
		Models:    cfg.AIModels,
	}, upstream.NewDoer("ai-provider", aiHTTP, logger))
	ttsClient := upstream.NewTTSClient(upstream.TTSConfig{
		BaseURL: cfg.TTSBaseURL,
		APIKey:  cfg.TTSAPIKey,
	}, upstream.NewDoer("tts-provider", httpclient.DefaultConfig(), logger))
	sttClient := upstream.NewSTTClient(upstream.STTConfig{
		BaseURL: cfg.STTBaseURL,
		APIKey:  cfg.STTAPIKey,
	}, upstream.NewDoer("stt-provider", httpclient.DefaultConfig(), logger))

	// Build the dependency graph.
	cat := catalog.Default()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, accessExpiry, refreshExpiry)
	eventProducer := event.NewProducer(producer, logger)

	userRepo := postgres.NewUserRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(pool)
	resetRepo := postgres.NewPasswordResetRepository(pool)
	conversationRepo := postgres.NewConversationRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	supportRepo := postgres.NewSupportRequestRepository(pool)
	breathingRepo := postgres.NewBreathingSessionRepository(pool)

	services := handler.Services{
		Auth:          service.NewAuthService(userRepo, refreshTokenRepo, resetRepo, jwtManager, eventProducer, cfg.PasswordResetTTL, logger),
		Profiles:      service.NewProfileService(profileRepo, logger),
		Conversations: service.NewConversationService(conversationRepo, messageRepo, logger),
		Functions:     service.NewFunctionsService(chatClient, ttsClient, sttClient, subscriptionRepo, supportRepo, eventProducer, logger),
		Breathing:     service.NewBreathingService(breathingRepo, cat, eventProducer, logger),
	}

	// Kafka consumers delivering support and account mail.
	supportHandler := support.NewHandler(support.NewLogMailer(logger), cfg.SupportEmail, logger)
	consumers := support.NewConsumers(support.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaConsumerGroup,
	}, supportHandler, idempotency, dlq, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(services, cat, jwtManager.TokenValidator(), healthHandler, logger, handler.RouterConfig{
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		CatalogMaxAge:     cfg.CatalogMaxAge,
		FunctionsRPS:      cfg.FunctionsRPS,
		FunctionsBurst:    cfg.FunctionsBurst,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		dlq:            dlq,
		consumers:      consumers,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	consumerCtx, stopConsumers := context.WithCancel(ctx)
	defer stopConsumers()

	var wg sync.WaitGroup
	for _, consumer := range a.consumers {
		c := consumer
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Start(consumerCtx); err != nil {
				a.logger.Error("kafka consumer error", slog.String("error", err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopConsumers()
	wg.Wait()

	return errors.Join(runErr, a.Shutdown())
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka consumers, dead-letter writer and producer
// 4. Redis and PostgreSQL
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Kafka.
	for _, consumer := range a.consumers {
		if err := consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("kafka dlq close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 4. Stores.
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
