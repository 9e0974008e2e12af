// Package server exposes ranking over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/storage"
	"github.com/spigell/resume-ranker/internal/suitability"
)

const (
	DefaultAddress        = ":8080"
	DefaultUploadDir      = "uploads"
	DefaultMaxUploadBytes = 16 << 20

	shutdownTimeout = 10 * time.Second
)

// Config holds HTTP settings.
type Config struct {
	Address        string  `mapstructure:"address"`
	UploadDir      string  `mapstructure:"upload-dir"`
	MaxUploadBytes int64   `mapstructure:"max-upload-bytes"`
	RateLimit      float64 `mapstructure:"rate-limit"`
	RateBurst      int     `mapstructure:"rate-burst"`
}

// Ranker ranks candidate texts against a job description.
type Ranker interface {
	Analyze(reference string, candidates []analysis.Candidate) (*analysis.Batch, error)
}

// Store persists batches and serves the latest one back.
type Store interface {
	SaveBatch(ctx context.Context, b *analysis.Batch) (*storage.BatchMeta, error)
	LatestResults(ctx context.Context) (*storage.BatchMeta, []report.Row, error)
}

// TextExtractor turns uploaded bytes into text.
type TextExtractor interface {
	Text(name string, data []byte) (string, error)
}

// Deps aggregates collaborators of the server.
type Deps struct {
	Ranker     Ranker
	Store      Store
	Extractor  TextExtractor
	Classifier suitability.Classifier
	Logger     *zap.Logger
}

type Server struct {
	cfg        Config
	ranker     Ranker
	store      Store
	extractor  TextExtractor
	classifier suitability.Classifier
	logger     *zap.Logger
	engine     *gin.Engine
}

// New validates deps, prepares the upload directory and builds the router.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Ranker == nil || deps.Store == nil || deps.Extractor == nil {
		return nil, errors.New("server requires a ranker, a store and a text extractor")
	}

	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = DefaultUploadDir
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.Classifier == nil {
		deps.Classifier = suitability.NewThreshold(suitability.DefaultThreshold)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", cfg.UploadDir, err)
	}

	s := &Server{
		cfg:        cfg,
		ranker:     deps.Ranker,
		store:      deps.Store,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		logger:     logger.WithFields(deps.Logger),
	}
	s.engine = s.router()

	return s, nil
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.cfg.MaxUploadBytes
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if s.cfg.RateLimit > 0 {
		burst := s.cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		api.Use(rateLimiter(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burst)))
	}
	{
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/resumes/:filename", s.handleDownload)
		api.GET("/report", s.handleReport)
	}

	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", s.cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func rateLimiter(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
