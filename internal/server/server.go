// Package server exposes the catalog, selection and export state over a small
// JSON API, mirroring what the original browser UI drove directly.
package server

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/wdgames/gameshelf/internal/utils"
	"github.com/wdgames/gameshelf/pkg/catalog"
	"github.com/wdgames/gameshelf/pkg/editor"
	"github.com/wdgames/gameshelf/pkg/ghrepo"
	"github.com/wdgames/gameshelf/pkg/plan"
)

type Server struct {
	Username string
	Password string

	// Repo may be nil; refresh and commit then report that no repository is
	// configured instead of failing obscurely.
	Repo *ghrepo.Client

	// mu serializes all state mutation: the original app was single-threaded
	// event handling, and the API keeps that discipline per request.
	mu     sync.Mutex
	store  *catalog.Store
	plan   *plan.Plan
	editor *editor.Editor
	sha    string // revision token of the loaded document

	// busy guards the single in-flight refresh/commit. A second trigger is
	// rejected, not queued, matching the disabled-button behavior.
	busy atomic.Bool
}

func New(store *catalog.Store, p *plan.Plan, repo *ghrepo.Client, sha, user, pass string) *Server {
	return &Server{
		Username: user,
		Password: pass,
		Repo:     repo,
		store:    store,
		plan:     p,
		editor:   editor.New(store),
		sha:      sha,
	}
}

// Handler builds the API mux. Split from Start so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/catalog", s.basicAuth(s.handleCatalog))
	mux.HandleFunc("GET /api/entries/{id}", s.basicAuth(s.handleGetEntry))
	mux.HandleFunc("POST /api/entries", s.basicAuth(s.handleAddEntry))
	mux.HandleFunc("PUT /api/entries/{id}", s.basicAuth(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.basicAuth(s.handleDeleteEntry))

	mux.HandleFunc("POST /api/selection/{id}/toggle", s.basicAuth(s.handleToggle))
	mux.HandleFunc("DELETE /api/selection/{id}", s.basicAuth(s.handleDeselect))
	mux.HandleFunc("GET /api/budget", s.basicAuth(s.handleBudget))
	mux.HandleFunc("PUT /api/budget/capacity", s.basicAuth(s.handleCapacity))

	mux.HandleFunc("GET /api/export/text", s.basicAuth(s.handleExportText))

	mux.HandleFunc("POST /api/refresh", s.basicAuth(s.handleRefresh))
	mux.HandleFunc("POST /api/commit", s.basicAuth(s.handleCommit))

	return mux
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting gameshelf server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
