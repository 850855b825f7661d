package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/config"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/database"
	kafkainfra "github.com/WhiteMageDev/registration-login-demo/internal/infra/kafka"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
	redisinfra "github.com/WhiteMageDev/registration-login-demo/internal/infra/redis"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/security"
	postgresrepo "github.com/WhiteMageDev/registration-login-demo/internal/repository/postgres"
	redisrepo "github.com/WhiteMageDev/registration-login-demo/internal/repository/redis"
	"github.com/WhiteMageDev/registration-login-demo/internal/transport/http/middleware"
	"github.com/WhiteMageDev/registration-login-demo/internal/transport/http/routes"
	"github.com/WhiteMageDev/registration-login-demo/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := database.RunMigrations(ctx, cfg.Postgres); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var (
		producer       *kafkainfra.Producer
		eventPublisher port.EventPublisher
		notifier       port.Notifier
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using logging fallbacks", zap.Error(err))
			producer = nil
		}
	}
	if producer != nil {
		eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
		notifier = kafkainfra.NewMailNotifier(producer, cfg.Kafka.EmailTopic, log)
	} else {
		log.Info("kafka not available, using logging fallbacks")
		eventPublisher = kafkainfra.NewStubPublisher(log)
		notifier = kafkainfra.NewLogNotifier(log)
	}

	passwordValidator := security.DefaultPasswordValidator()
	if cfg.Registration.MinPasswordScore > 0 {
		passwordValidator = security.NewPasswordValidator(
			security.RequirePasswordStrengthRule(cfg.Registration.MinPasswordScore),
		)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	attemptLog := redisrepo.NewAttemptLog(redisClient.Client(), "registration:rate-limit", rateLimitWindow*2)
	rateLimiter := middleware.NewRateLimiter(attemptLog, log)

	metrics := middleware.NewHTTPMetrics(nil)

	registrationService := usecase.NewRegistrationService(
		repos.Users, repos.Tokens, hasher, notifier, eventPublisher,
		passwordValidator, cfg.Registration, log,
	)
	authService := usecase.NewAuthService(repos.Users, hasher, tokenManager, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting registration API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
