package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/smallbiznis/jobboard/internal/adapter/cache"
	"github.com/smallbiznis/jobboard/internal/bootstrap"
	"github.com/smallbiznis/jobboard/internal/config"
	httptransport "github.com/smallbiznis/jobboard/internal/http"
	"github.com/smallbiznis/jobboard/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/jobboard/internal/http/middleware"
	"github.com/smallbiznis/jobboard/internal/jwt"
	apimiddleware "github.com/smallbiznis/jobboard/internal/middleware"
	"github.com/smallbiznis/jobboard/internal/repository"
	"github.com/smallbiznis/jobboard/internal/server"
	"github.com/smallbiznis/jobboard/internal/service"
	"github.com/smallbiznis/jobboard/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newUserRepository,
			newJobRepository,
			newApplicationRepository,
			newWindowCounter,
			newRateLimiter,
			newMetrics,
			newTokenGenerator,
			service.NewAuthService,
			service.NewJobService,
			service.NewApplicationService,
			handler.NewAuthHandler,
			handler.NewJobHandler,
			handler.NewApplicationHandler,
			newHealthHandler,
			newAuthMiddleware,
			newRouter,
			newHTTPServer,
		),
		fx.Invoke(bootstrap.MigrateOnStart, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newJobRepository(pool *pgxpool.Pool) repository.JobRepository {
	return repository.NewPostgresJobRepo(pool)
}

func newApplicationRepository(pool *pgxpool.Pool) repository.ApplicationRepository {
	return repository.NewPostgresApplicationRepo(pool)
}

// newWindowCounter returns nil when REDIS_ADDR is unset so the limiter keeps
// its buckets in process.
func newWindowCounter(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (apimiddleware.WindowCounter, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client, err := cacheadapter.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	logger.Info("rate limiting backed by redis", zap.String("addr", cfg.RedisAddr))
	return cacheadapter.NewRedisWindowCounter(client), nil
}

func newRateLimiter(cfg config.Config, counter apimiddleware.WindowCounter, logger *zap.Logger) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM, counter, logger)
}

func newMetrics() *apimiddleware.Metrics {
	return apimiddleware.NewMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func newTokenGenerator(cfg config.Config) (*jwt.Generator, error) {
	return jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
}

func newHealthHandler(pool *pgxpool.Pool, logger *zap.Logger) *handler.HealthHandler {
	return handler.NewHealthHandler(pool, logger)
}

func newAuthMiddleware(authService *service.AuthService) *httpmiddleware.Auth {
	return httpmiddleware.NewAuth(authService)
}

type routerParams struct {
	fx.In

	Config         config.Config
	Logger         *zap.Logger
	Telemetry      *telemetry.Provider
	Metrics        *apimiddleware.Metrics
	RateLimiter    *apimiddleware.RateLimiter
	AuthMiddleware *httpmiddleware.Auth
	Auth           *handler.AuthHandler
	Jobs           *handler.JobHandler
	Applications   *handler.ApplicationHandler
	Health         *handler.HealthHandler
}

func newRouter(p routerParams) *gin.Engine {
	return httptransport.NewRouter(p.Config, httptransport.Handlers{
		Auth:         p.Auth,
		Jobs:         p.Jobs,
		Applications: p.Applications,
		Health:       p.Health,
	}, p.AuthMiddleware, httptransport.Options{
		Logger:         p.Logger,
		Metrics:        p.Metrics,
		RateLimiter:    p.RateLimiter,
		TracerProvider: p.Telemetry.TracerProvider(),
	})
}

func newHTTPServer(router *gin.Engine, cfg config.Config, logger *zap.Logger) *server.HTTPServer {
	return server.NewHTTPServer(router, cfg.ShutdownTimeout, logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := cfg.Addr()
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			logger.Info("http server listening", zap.String("addr", addr), zap.String("prefix", cfg.APIPrefix))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
