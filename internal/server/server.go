package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/spicyhq/peppers/internal/authorization"
	"github.com/spicyhq/peppers/internal/config"
	"github.com/spicyhq/peppers/internal/notify"
	"github.com/spicyhq/peppers/internal/observability"
	obsmiddleware "github.com/spicyhq/peppers/internal/observability/logger"
	obsmetrics "github.com/spicyhq/peppers/internal/observability/metrics"
	obstracing "github.com/spicyhq/peppers/internal/observability/tracing"
	pepperdomain "github.com/spicyhq/peppers/internal/pepper/domain"
	"github.com/spicyhq/peppers/internal/ratelimit"
	"github.com/spicyhq/peppers/internal/revision"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	pepperSvc pepperdomain.Service
	authzSvc  authorization.Service
	notifier  *notify.Notifier
	revisions *revision.CachedReader
	holder    *config.StreamConfigHolder
	metrics   *obsmetrics.Metrics
	limiter   *ratelimit.MutationLimiter
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	PepperSvc pepperdomain.Service
	AuthzSvc  authorization.Service
	Notifier  *notify.Notifier
	Revisions *revision.CachedReader
	Holder    *config.StreamConfigHolder
	Metrics   *obsmetrics.Metrics        `optional:"true"`
	Limiter   *ratelimit.MutationLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		log:       p.Log.Named("server"),
		pepperSvc: p.PepperSvc,
		authzSvc:  p.AuthzSvc,
		notifier:  p.Notifier,
		revisions: p.Revisions,
		holder:    p.Holder,
		metrics:   p.Metrics,
		limiter:   p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.identityMiddleware())

	peppers := api.Group("/peppers")
	peppers.GET("", s.requireAction(authorization.ActionRead), s.ListPeppers)
	peppers.POST("", s.requireAction(authorization.ActionCreate), s.rateLimitMutations(), s.AddPepper)
	peppers.DELETE("", s.requireAction(authorization.ActionDeleteAll), s.rateLimitMutations(), s.ResetPeppers)
	peppers.GET("/state-changes", s.requireAction(authorization.ActionRead), s.StreamStateChanges)
	peppers.DELETE("/:id", s.requireAction(authorization.ActionDeleteOwn), s.rateLimitMutations(), s.DeletePepper)
	peppers.POST("/:id/upvotes", s.requireAction(authorization.ActionUpvote), s.rateLimitMutations(), s.UpvotePepper)
	peppers.DELETE("/:id/upvotes", s.requireAction(authorization.ActionDeleteOwnUpvote), s.rateLimitMutations(), s.RemoveUpvote)
}
