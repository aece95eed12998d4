package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/internal/analyzer"
	"github.com/sozercan/aop-analyst/internal/config"
	"github.com/sozercan/aop-analyst/internal/framework"
	"github.com/sozercan/aop-analyst/internal/metrics"
	"github.com/sozercan/aop-analyst/internal/store"
)

const shutdownTimeout = 30 * time.Second

type Deps struct {
	Analyzer    *analyzer.Analyzer
	Editor      *framework.Editor
	Frameworks  framework.Store
	Submissions *store.Store
	Logger      *zap.Logger
}

type Server struct {
	cfg         config.ServerConfig
	router      *chi.Mux
	server      *http.Server
	analyzer    *analyzer.Analyzer
	editor      *framework.Editor
	frameworks  framework.Store
	submissions *store.Store
	logger      *zap.Logger
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		cfg:         cfg,
		router:      chi.NewRouter(),
		analyzer:    deps.Analyzer,
		editor:      deps.Editor,
		frameworks:  deps.Frameworks,
		submissions: deps.Submissions,
		logger:      deps.Logger,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/preview-prompt", s.handlePreviewPrompt)

		r.Get("/framework", s.handleGetFramework)
		r.Put("/framework", s.handlePutFramework)
		r.Post("/framework/reset", s.handleResetFramework)
		r.Post("/framework-chat", s.handleFrameworkChat)

		r.Route("/debug", func(r chi.Router) {
			r.Post("/prompt-stats", s.handlePromptStats)
			r.Post("/prompt-diff", s.handlePromptDiff)
			r.Post("/test-analysis", s.handleTestAnalysis)
			r.Post("/validate-form", s.handleValidateForm)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", s.handleCreateSubmission)
			r.Get("/", s.handleListSubmissions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSubmission)
				r.Patch("/status", s.handleUpdateStatus)
				r.Post("/analyze", s.handleAnalyzeSubmission)
				r.Post("/feedback", s.handleAddFeedback)
				r.Get("/feedback", s.handleListFeedback)
			})
		})

		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", promhttp.Handler())
	})
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

		s.logger.Info("HTTP request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) Run() error {
	// Create a channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("Starting server", zap.String("address", s.server.Addr))
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("Starting shutdown", zap.String("signal", sig.String()))

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}
