// Package server exposes an engine and a bulk client over HTTP: progressive
// single-word lookups, bulk translation, target-language switching and a
// server-sent event stream of cache changes.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	Mode            string // gin mode: "debug" | "release" | "test"
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Server serves the translation API.
type Server struct {
	cfg    Config
	engine *gotmemo.Engine
	client *gotmemo.Client
	logger *zap.Logger
	router *gin.Engine
}

// New creates a server. The client's target language is replaced per request
// by the requested or current engine language.
func New(cfg Config, engine *gotmemo.Engine, client *gotmemo.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		engine: engine,
		client: client,
		logger: logger,
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *gin.Engine {
	if s.cfg.Mode != "" {
		gin.SetMode(s.cfg.Mode)
	}

	r := gin.New()

	// Global middleware
	r.Use(Recovery(s.logger))
	r.Use(RequestLogger(s.logger))
	r.Use(CORS(s.cfg.CORSOrigins))
	r.Use(WithEngine(s.engine))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": gotmemo.FullVersion()})
	})

	v1 := r.Group("/v1")
	{
		v1.GET("/translate", s.translate)
		v1.POST("/bulk", s.bulk)
		v1.GET("/language", s.getLanguage)
		v1.PUT("/language", s.setLanguage)
		v1.GET("/events", s.events)
	}

	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
// Open event streams are ended before the shutdown deadline starts.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	cancelRequests()

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server exited gracefully")
	return nil
}
