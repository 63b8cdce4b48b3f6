package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tamedachi/tamedachi/internal/analyzer"
	analyzerdomain "github.com/tamedachi/tamedachi/internal/analyzer/domain"
	"github.com/tamedachi/tamedachi/internal/cache"
	"github.com/tamedachi/tamedachi/internal/config"
	"github.com/tamedachi/tamedachi/internal/observability"
	obsmiddleware "github.com/tamedachi/tamedachi/internal/observability/logger"
	obsmetrics "github.com/tamedachi/tamedachi/internal/observability/metrics"
	obstracing "github.com/tamedachi/tamedachi/internal/observability/tracing"
	"github.com/tamedachi/tamedachi/internal/pet"
	petdomain "github.com/tamedachi/tamedachi/internal/pet/domain"
	"github.com/tamedachi/tamedachi/internal/ratelimit"
	"github.com/tamedachi/tamedachi/internal/submission"
	submissiondomain "github.com/tamedachi/tamedachi/internal/submission/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	analyzer.Module,
	pet.Module,
	submission.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
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
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	petSvc        petdomain.Service
	submissionSvc submissiondomain.Service
	analyzerSvc   analyzerdomain.Service
	analysisCache cache.AnalysisCache
	obsMetrics    *obsmetrics.Metrics
	limiter       *ratelimit.AnalyzeLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	PetSvc        petdomain.Service
	SubmissionSvc submissiondomain.Service
	AnalyzerSvc   analyzerdomain.Service
	AnalysisCache cache.AnalysisCache       `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics       `optional:"true"`
	Limiter       *ratelimit.AnalyzeLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		petSvc:        p.PetSvc,
		submissionSvc: p.SubmissionSvc,
		analyzerSvc:   p.AnalyzerSvc,
		analysisCache: p.AnalysisCache,
		obsMetrics:    p.ObsMetrics,
		limiter:       p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.UserRequired())

	api.POST("/pet", s.CreatePet)
	api.GET("/pet", s.GetPet)

	api.POST("/analyze", s.AnalyzeContent)

	api.POST("/submissions", s.CreateSubmission)
	api.GET("/submissions", s.ListSubmissions)
	api.GET("/submissions/stats", s.SubmissionStats)
}
