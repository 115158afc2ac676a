// Package web serves the SQL API over HTTP using the chi router.
package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ItsPalash13/AdvanceDB/internal/engine"
	"github.com/ItsPalash13/AdvanceDB/internal/logging"
	"github.com/ItsPalash13/AdvanceDB/internal/sql/executor"
)

// Server is the HTTP front end over one SQL session.
type Server struct {
	router  *chi.Mux
	addr    string
	session *executor.Session
	store   *engine.Store
}

// NewServer wires routes and middleware. store may be nil when the
// session runs against an in-memory store; the table-stats endpoint
// then omits tree statistics.
func NewServer(addr string, session *executor.Session, store *engine.Store) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	s := &Server{
		router:  r,
		addr:    addr,
		session: session,
		store:   store,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/explain", s.handleExplain)
		r.Get("/tables", s.handleTables)
		r.Get("/tables/{name}", s.handleTable)
	})
}

// Router exposes the handler, mainly for httptest.
func (s *Server) Router() http.Handler { return s.router }

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.GetLogger().Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.GetLogger().Info("http server shutting down")
	return srv.Shutdown(ctx)
}
