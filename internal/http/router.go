package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/config"
	"github.com/smallbiznis/jobboard/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/jobboard/internal/http/middleware"
	"github.com/smallbiznis/jobboard/internal/http/response"
	"github.com/smallbiznis/jobboard/internal/middleware"
	"github.com/smallbiznis/jobboard/internal/service"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Jobs         *handler.JobHandler
	Applications *handler.ApplicationHandler
	Health       *handler.HealthHandler
}

// Options carries the cross-cutting middleware. Nil members are skipped.
type Options struct {
	Logger         *zap.Logger
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter
	TracerProvider trace.TracerProvider
}

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, h Handlers, authMiddleware *httpmiddleware.Auth, opts Options) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Handler())
		opts.RateLimiter.OnLimit(opts.Metrics.RateLimitHit)
	}
	r.Use(middleware.CORS(cfg))
	r.Use(opts.RateLimiter.Handler())
	if opts.TracerProvider != nil {
		r.Use(otelgin.Middleware(cfg.ServiceName, otelgin.WithTracerProvider(opts.TracerProvider)))
	} else {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Exposition()))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", h.Health.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authMiddleware.ValidateJWT, h.Auth.Me)
	}

	jobs := api.Group("/jobs")
	{
		jobs.GET("", h.Jobs.List)
		jobs.GET("/my/posted", authMiddleware.ValidateJWT, h.Jobs.ListMine)
		jobs.GET("/:id", h.Jobs.Get)
		jobs.POST("", authMiddleware.ValidateJWT, h.Jobs.Create)
		jobs.PUT("/:id", authMiddleware.ValidateJWT, h.Jobs.Update)
		jobs.DELETE("/:id", authMiddleware.ValidateJWT, h.Jobs.Delete)
	}

	applications := api.Group("/applications", authMiddleware.ValidateJWT)
	{
		applications.POST("", h.Applications.Apply)
		applications.GET("/my", h.Applications.ListMine)
		applications.GET("/job/:jobId", h.Applications.ListForJob)
		applications.PUT("/:id/status", h.Applications.UpdateStatus)
		applications.DELETE("/:id", h.Applications.Withdraw)
	}

	r.NoRoute(func(c *gin.Context) {
		response.AbortWith(c, service.KindNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.AbortWith(c, service.KindNotFound, "route not found")
	})

	return r
}
