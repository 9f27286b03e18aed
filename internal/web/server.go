// Package web serves the browser UI: one workspace with its panels per browser session.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/codesage/codesage/core"
	"github.com/codesage/codesage/internal/contract"
	"github.com/codesage/codesage/internal/markdown"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// sessionCookie names the cookie holding the browser session id.
const sessionCookie = "codesage_session"

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the per-browser sessions and the shared backend client.
type Server struct {
	client   contract.APIClient
	mgr      contract.CacheManager
	renderer *markdown.Renderer
	tpl      *template.Template

	mu            sync.Mutex // guards session creation and maxFileSizeMB
	sessions      *lru.Cache[string, *core.Session]
	maxFileSizeMB float64
}

// NewServer creates a server keeping at most sessionLimit sessions. mgr may be nil.
func NewServer(client contract.APIClient, mgr contract.CacheManager, sessionLimit int) (*Server, error) {
	if sessionLimit <= 0 {
		sessionLimit = contract.DefaultSessionLimit
	}
	sessions, err := lru.New[string, *core.Session](sessionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	tpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Server{
		client:   client,
		mgr:      mgr,
		renderer: markdown.NewRenderer(markdown.DefaultCodeStyle),
		tpl:      tpl,
		sessions: sessions,
	}, nil
}

// SetMaxFileSizeMB applies the backend upload limit to every current and future session.
func (s *Server) SetMaxFileSizeMB(mb float64) {
	if mb <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxFileSizeMB = mb
	for _, sess := range s.sessions.Values() {
		sess.SetMaxFileSizeMB(mb)
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/analyze", s.handleAnalyze)
	r.Route("/qa", func(r chi.Router) {
		r.Post("/language", s.handleLanguage)
		r.Post("/ask", s.handleAsk)
	})
	r.Route("/docs", func(r chi.Router) {
		r.Post("/from-analysis", s.handleDocsFromAnalysis)
		r.Post("/upload", s.handleDocsUpload)
		r.Get("/download", s.handleDocsDownload)
	})
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

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

// session returns the session of the requesting browser, creating one and
// setting its cookie when the cookie is missing, malformed or evicted.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			if sess, ok := s.sessions.Get(c.Value); ok {
				return sess
			}
		}
	}

	sess := core.NewSession(uuid.NewString(), s.client, s.mgr)
	if s.maxFileSizeMB > 0 {
		sess.SetMaxFileSizeMB(s.maxFileSizeMB)
	}
	s.sessions.Add(sess.ID, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	return s.sessions.Len()
}
