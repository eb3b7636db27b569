package handler

import (
	"ipn-relay/internal/adapter/http/middleware"
	"ipn-relay/internal/core/ports"
	"ipn-relay/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SigSvc         ports.SignatureService
	ReconcileSvc   ports.ReconcileService
	Recorder       ports.OutcomeRecorder
	SignatureHdr   string
	MaxBodyBytes   int64
	Mode           string                     // gin mode; empty = release
	RateLimitStore middleware.RateLimitStore  // nil = rate limiting disabled
	RateLimitRule  middleware.RateLimitRule
	Observer       middleware.RequestObserver // nil = no latency histogram
	Gatherer       prometheus.Gatherer        // nil = no /metrics
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Observer != nil {
		r.Use(middleware.Metrics(deps.Observer))
	}
	if deps.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))
	}

	ipn := NewIPNHandler(deps.SigSvc, deps.ReconcileSvc, deps.Recorder, deps.SignatureHdr, deps.Logger)

	r.GET("/", ipn.Root)
	r.HEAD("/", ipn.Root)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	var rl gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.RateLimitStore != nil {
		rl = middleware.RateLimiter(deps.RateLimitStore, "ipn", deps.RateLimitRule, deps.Logger)
	}
	r.POST("/ipn", rl, ipn.Receive)

	return r
}
