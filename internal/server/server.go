// Package server exposes the composition pipeline over a small HTTP API
// for external chat transports.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ixink/uiu-student-bot/internal/profile"
	"github.com/ixink/uiu-student-bot/internal/recommend"
)

type Server struct {
	svc      *recommend.Service
	profiles *profile.Store
	log      *zap.Logger
	http     *http.Server
}

// New builds the router and wraps it in an http.Server on addr.
func New(addr string, svc *recommend.Service, profiles *profile.Store, log *zap.Logger) *Server {
	s := &Server{svc: svc, profiles: profiles, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/recommendations", s.handleRecommendations)
		r.Get("/sources/{kind}", s.handleSources)
		r.Get("/profile/{userID}", s.handleGetProfile)
		r.Put("/profile/{userID}", s.handlePutProfile)
		r.Post("/users/{userID}/snippets", s.handleAddSnippet)
		r.Get("/users/{userID}/snippets", s.handleListSnippets)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
