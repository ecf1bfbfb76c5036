// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"net/http"

	"github.com/gorilla/mux"

	"chatboard/internal/app"
)

// sessionCookie is the name of the opaque session identifier cookie.
const sessionCookie = "session"

// cookieMaxAge bounds how long the browser keeps the session cookie.
const cookieMaxAge = 1800

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	sessions *app.SessionService
	presence *app.PresenceService
	messages *app.MessageService
	webDir   string
	secure   bool
}

// New creates a Server wired to the given application services. secure
// marks the session cookie Secure and should be set behind HTTPS.
func New(ss *app.SessionService, ps *app.PresenceService, ms *app.MessageService, webDir string, secure bool) *Server {
	return &Server{sessions: ss, presence: ps, messages: ms, webDir: webDir, secure: secure}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware, s.sessionMiddleware)

	api.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/username", s.handleUsername).Methods(http.MethodPost)
	api.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	// Board endpoints require the named-and-active state.
	api.Handle("/users", s.requireNamed(s.handleUsers)).Methods(http.MethodGet)
	api.Handle("/messages", s.requireNamed(s.handleMessagesGet)).Methods(http.MethodGet)
	api.Handle("/messages", s.requireNamed(s.handleMessagesPost)).Methods(http.MethodPost)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.webDir)))

	return withNoCache(r)
}
