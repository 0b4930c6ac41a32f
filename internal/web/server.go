// Package web serves the chunker page and its HTMX fragments.
package web

import (
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Zachkp/zach-dev-chunker/internal/chunker"
	"github.com/Zachkp/zach-dev-chunker/internal/connectivity"
	"github.com/Zachkp/zach-dev-chunker/internal/logger"
	"github.com/Zachkp/zach-dev-chunker/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

const viewCookie = "chunker_view"

// Service is the remote chunking service as the site consumes it.
type Service interface {
	connectivity.Prober
	chunker.ChunkingService
}

type Options struct {
	HealthTimeout time.Duration
	ChunkTimeout  time.Duration
	MaxViews      int
	ViewTTL       time.Duration
	// Now stamps exports; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	views   *viewRegistry
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewServer(service Service, m *metrics.Metrics, opts Options) *Server {
	if opts.MaxViews <= 0 {
		opts.MaxViews = 256
	}
	if opts.ViewTTL <= 0 {
		opts.ViewTTL = 30 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		views:   newViewRegistry(service, m, opts),
		metrics: m,
		now:     opts.Now,
	}
}

// Close tears down every live view.
func (s *Server) Close() {
	s.views.purge()
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.page)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	chunk := r.Group("/chunker")
	chunk.Use(s.requireView())
	chunk.GET("/status", s.status)
	chunk.POST("/refresh", s.refresh)
	chunk.POST("/settings", s.settings)
	chunk.POST("/text", s.editText)
	chunk.POST("/clear", s.clear)
	chunk.POST("/submit", s.submit)
	chunk.GET("/result", s.result)
	chunk.GET("/download", s.download)

	return r
}

// requestLogger tags each request with an id and a scoped logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		log := logger.GetDefault().With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), log))
		c.Header("X-Request-ID", requestID)

		c.Next()

		log.Info("request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func requestContext(c *gin.Context) context.Context {
	return c.Request.Context()
}
