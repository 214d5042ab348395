// Package server exposes the HTTP API: account CRUD, institution
// mapping CRUD, CSV import, and import history. Authentication is
// handled upstream; the authenticated user arrives as the X-User-ID
// header.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MacroMan5/budgetmanager/internal/accounts"
	"github.com/MacroMan5/budgetmanager/internal/config"
	"github.com/MacroMan5/budgetmanager/internal/mapping"
	"github.com/MacroMan5/budgetmanager/internal/model"
)

// Importer runs one CSV import. Implemented by importer.Importer.
type Importer interface {
	Import(ctx context.Context, userID, accountID, institution, fileName string, r io.Reader) (*model.ImportReport, error)
}

// MappingStore is the mapping CRUD surface. Implemented by the postgres
// store.
type MappingStore interface {
	CreateMapping(ctx context.Context, m *mapping.Mapping) error
	GetMapping(ctx context.Context, userID, id string) (mapping.Mapping, error)
	ListMappings(ctx context.Context, userID string) ([]mapping.Mapping, error)
	UpdateMapping(ctx context.Context, m *mapping.Mapping) error
	DeleteMapping(ctx context.Context, userID, id string) error
}

// HistoryStore reads per-account import history and transactions.
type HistoryStore interface {
	ListBatches(ctx context.Context, accountID string) ([]model.ImportBatch, error)
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error)
}

// Server handles HTTP requests.
type Server struct {
	cfg      config.ServerConfig
	imports  config.ImportConfig
	logger   *log.Logger
	accounts *accounts.Service
	importer Importer
	mappings MappingStore
	history  HistoryStore
}

// New creates a Server.
func New(cfg *config.Config, logger *log.Logger, accts *accounts.Service, imp Importer, mappings MappingStore, history HistoryStore) *Server {
	return &Server{
		cfg:      cfg.Server,
		imports:  cfg.Import,
		logger:   logger,
		accounts: accts,
		importer: imp,
		mappings: mappings,
		history:  history,
	}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", s.handleGetAccount)
				r.Delete("/", s.handleDeactivateAccount)
				r.Post("/import", s.handleImport)
				r.Get("/imports", s.handleListImports)
				r.Get("/transactions", s.handleListTransactions)
			})
		})

		r.Route("/mappings", func(r chi.Router) {
			r.Get("/", s.handleListMappings)
			r.Post("/", s.handleCreateMapping)
			r.Get("/presets", s.handleListPresets)
			r.Route("/{mappingID}", func(r chi.Router) {
				r.Get("/", s.handleGetMapping)
				r.Put("/", s.handleUpdateMapping)
				r.Delete("/", s.handleDeleteMapping)
			})
		})
	})

	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ctxKey string

const userIDKey ctxKey = "userID"

// requireUser reads the authenticated user from the X-User-ID header.
// The upstream auth layer sets it after validating credentials.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			http.Error(w, `{"error":"missing X-User-ID header"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
