// Package stub is a local stand-in for the marketplace backend. It serves the
// routes the client uses over SQLite so the client can be exercised end to
// end in tests and during development.
package stub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/repository"
)

type Options struct {
	AnonKey string
	// DevTokens accepts "Bearer <anon>" plus X-Dev-Token: dev-<user id>.
	DevTokens bool
	TokenTTL  time.Duration
	// Compress answers with brotli when the request accepts it.
	Compress bool
	Now      func() time.Time
	Logger   *slog.Logger
	// PathPrefix mounts the routes below a base path such as
	// "/functions/v1/server".
	PathPrefix string
}

type Server struct {
	db      *sql.DB
	uow     db.UnitOfWork
	opts    Options
	mux     *http.ServeMux
	faults  atomic.Int32
	faultAt atomic.Int32
}

// New creates a stub over an opened and migrated database.
func New(database *sql.DB, opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		db:   database,
		uow:  db.NewSQLiteUnitOfWork(database),
		opts: opts,
		mux:  http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /projects", s.authed(s.handleListProjects))
	s.mux.HandleFunc("POST /projects", s.authed(s.handleCreateProject))
	s.mux.HandleFunc("POST /proposals", s.authed(s.handleSubmitProposal))
	s.mux.HandleFunc("GET /projects/{id}/proposals", s.authed(s.handleListProposals))
	s.mux.HandleFunc("PUT /admin/users/{id}/status", s.authed(s.handleUpdateUserStatus))
	s.mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
}

// Handler returns the stub's HTTP handler with request logging and fault
// injection applied.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if p := strings.TrimRight(s.opts.PathPrefix, "/"); p != "" {
		h = http.StripPrefix(p, h)
	}
	return s.logRequests(s.injectFaults(h))
}

// FailNext makes the next n requests answer with status before any routing.
func (s *Server) FailNext(n int, status int) {
	s.faultAt.Store(int32(status))
	s.faults.Store(int32(n))
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for {
			n := s.faults.Load()
			if n <= 0 {
				break
			}
			if s.faults.CompareAndSwap(n, n-1) {
				status := int(s.faultAt.Load())
				s.writeError(w, r, status, errorBody{Error: http.StatusText(status)})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.opts.Logger.Debug("stub_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.opts.Logger.Info("stub_listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) users(conn db.DBTX) *repository.SQLiteUserRepo {
	return repository.NewSQLiteUserRepo(conn)
}

func (s *Server) sessions(conn db.DBTX) *repository.SQLiteSessionRepo {
	return repository.NewSQLiteSessionRepo(conn)
}

func (s *Server) projects(conn db.DBTX) *repository.SQLiteProjectRepo {
	return repository.NewSQLiteProjectRepo(conn)
}

func (s *Server) proposals(conn db.DBTX) *repository.SQLiteProposalRepo {
	return repository.NewSQLiteProposalRepo(conn)
}
