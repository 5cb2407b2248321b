package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/core/port"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/config"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/database"
	kafkainfra "github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/kafka"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/logger"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/notify"
	redisinfra "github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/redis"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/infra/security"
	memoryrepo "github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository/memory"
	postgresrepo "github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository/postgres"
	redisrepo "github.com/Kernel180-BE12/Final-2team-DrHong/internal/repository/redis"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/transport/http/middleware"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/transport/http/routes"
	"github.com/Kernel180-BE12/Final-2team-DrHong/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	audit  port.AuditPublisher
}

// New wires configuration into a runnable application. Construction fails
// fast on an unusable JWT secret or unreachable backing stores.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	codec, warnings, err := security.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		return nil, fmt.Errorf("init token codec: %w", err)
	}
	for _, warning := range warnings {
		log.Warn("jwt secret weakness detected", zap.String("warning", warning))
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	users := postgresrepo.NewUserRepository(pool)
	refreshTokens := redisrepo.NewRefreshTokenRepository(redisClient.Client())
	blacklist := redisrepo.NewBlacklistRepository(redisClient.Client())
	rateLimits := redisrepo.NewRateLimitRepository(redisClient.Client())
	oauthTemp := redisrepo.NewOAuthTempRepository(redisClient.Client(), cfg.OAuth.TempInfoTTL)

	var verification port.VerificationStore
	if cfg.Verification.Backend == "memory" {
		verification = memoryrepo.NewVerificationStore()
		log.Info("using in-memory verification code store")
	} else {
		verification = redisrepo.NewVerificationRepository(redisClient.Client())
	}

	var audit port.AuditPublisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewAuditProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			audit = kafkainfra.NewStubPublisher(log)
		} else {
			audit = producer
			log.Info("kafka audit publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		audit = kafkainfra.NewStubPublisher(log)
	}

	isDev := cfg.App.Env == "development"
	notifier := notify.NewLoggingNotifier(log, isDev)

	rateLimitService := usecase.NewRateLimitService(rateLimits, cfg.RateLimit, log)
	tokenService := usecase.NewTokenService(codec, refreshTokens, users, rateLimitService, audit, log,
		cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	blacklistService := usecase.NewBlacklistService(codec, blacklist, log)
	authService := usecase.NewAuthService(users, tokenService, blacklistService, rateLimitService, audit, log)
	registrationService := usecase.NewRegistrationService(users, verification, notifier, rateLimitService, audit, log,
		cfg.Verification.CodeTTL)
	socialService := usecase.NewSocialService(users, oauthTemp, tokenService, audit, log)

	var metrics *middleware.HTTPMetrics
	if cfg.Telemetry.MetricsEnabled {
		metrics, err = middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
			Namespace: cfg.Telemetry.Namespace,
		})
		if err != nil {
			return nil, fmt.Errorf("init http metrics: %w", err)
		}
	}

	engine := routes.Register(routes.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Social:       socialService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		audit:  audit,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
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
		if closer, ok := a.audit.(interface{ Close() error }); ok {
			_ = closer.Close()
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

	a.logger.Info("starting auth API",
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
