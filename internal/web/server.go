// Package web exposes the application over HTTP.
package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/mdewit/matchbox/internal/auth"
	"github.com/mdewit/matchbox/internal/errorz"
	"github.com/mdewit/matchbox/internal/web/sessions"
)

// ViewRenderer renders named views with the given data.
type ViewRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger   *slog.Logger
	Views    ViewRenderer
	Auth     *auth.Service
	Sessions *sessions.Store
	DistFS   http.FileSystem
}

type Server struct {
	deps    *ServerDeps
	mux     *http.ServeMux
	decoder *schema.Decoder
	handler http.Handler
}

func NewServer(deps *ServerDeps) *Server {
	s := &Server{
		deps:    deps,
		mux:     http.NewServeMux(),
		decoder: schema.NewDecoder(),
	}

	// Browsers are free to send fields we don't know about.
	s.decoder.IgnoreUnknownKeys(true)

	// The root path routes to the dashboard or the login form depending
	// on the session.
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	// Registration and login are open to anonymous clients.
	s.mux.HandleFunc("GET /register", s.handleRegisterForm)
	s.mux.HandleFunc("POST /register", s.handleRegister)
	s.mux.HandleFunc("GET /login", s.handleLoginForm)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("GET /logout", s.handleLogout)

	// Everything below requires a logged in user.
	s.mux.Handle("GET /dashboard", s.loggedIn(s.handleDashboard))
	s.mux.Handle("GET /profile", s.loggedIn(s.handleProfileForm))
	s.mux.Handle("POST /profile", s.loggedIn(s.handleProfileUpdate))

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(deps.DistFS)))

	// Wrap the mux with the global middlewares. The session middleware
	// runs innermost so every handler can assume a session in the context.
	middlewares := []func(http.Handler) http.Handler{
		requestID,
		accessLog(deps.Logger),
		recoverPanics(deps.Logger),
		s.session,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// loggedIn gates a handler on the presence of an authenticated session.
// Anonymous requests are redirected to the login form and the handler
// never executes.
func (s *Server) loggedIn(handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromCtx(r.Context())
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		if _, ok := sess.UserID(); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// handleError is the last line of defense: anything that was not
// converted to a rendered page by a handler ends up here. It never leaks
// internal detail to the client.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errorz.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var invalidInput errorz.InvalidInput
	if errors.As(err, &invalidInput) {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	s.deps.Logger.Error("internal server error",
		"url", r.URL.String(),
		"requestID", requestIDFromCtx(r.Context()),
		"error", err,
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
