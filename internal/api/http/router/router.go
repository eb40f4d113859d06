// Package router wires the HTTP handlers, middleware and per-session UI
// state into one http.Handler.
package router

import (
	"net/http"

	"github.com/awelch/personal-site/internal/api/http/handler"
	"github.com/awelch/personal-site/internal/api/http/httpcontext"
	"github.com/awelch/personal-site/internal/api/http/middleware"
	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/service"
	"github.com/awelch/personal-site/internal/ui"
)

// Router assembles the site's routes with their middleware.
type Router struct {
	authService    *service.Auth
	profileService *service.Profile
	noteService    *service.Note
	secureCookies  bool
	logger         *logger.Logger
}

// New creates a Router over the application services.
func New(
	authService *service.Auth,
	profileService *service.Profile,
	noteService *service.Note,
	secureCookies bool,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		profileService: profileService,
		noteService:    noteService,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

// Register builds the handler tree: route guard and request logging
// around the page handlers, with per-session UI state behind them. The
// returned closer releases the UI subscriptions.
func (r *Router) Register() (http.Handler, func(), error) {
	renderer, err := handler.NewRenderer(r.logger)
	if err != nil {
		return nil, nil, err
	}

	contextManager := httpcontext.NewManager()
	resolver := ui.NewSessionResolver(r.authService, r.logger)
	registry := ui.NewRegistry(resolver, r.profileService, r.noteService, r.logger)

	authHandler := handler.NewAuth(r.authService, contextManager, renderer, r.secureCookies, r.logger)
	dashboardHandler := handler.NewDashboard(registry, contextManager, renderer, r.logger)
	profileHandler := handler.NewProfile(registry, r.authService, contextManager, renderer, r.logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.LoginPage)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /signup", authHandler.SignupPage)
	mux.HandleFunc("POST /signup", authHandler.Signup)
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /reset-password", authHandler.ResetPasswordPage)
	mux.HandleFunc("POST /reset-password", authHandler.ResetPassword)
	mux.HandleFunc("GET /confirm-email", authHandler.ConfirmEmail)

	mux.HandleFunc("GET /dashboard", dashboardHandler.Page)
	mux.HandleFunc("POST /dashboard/notes", dashboardHandler.AddNote)
	mux.HandleFunc("POST /dashboard/notes/delete", dashboardHandler.DeleteNote)

	mux.HandleFunc("GET /profile", profileHandler.Page)
	mux.HandleFunc("POST /profile", profileHandler.Save)
	mux.HandleFunc("POST /profile/avatar", profileHandler.UploadAvatar)
	mux.HandleFunc("POST /profile/email", profileHandler.ChangeEmail)
	mux.HandleFunc("POST /profile/password", profileHandler.ChangePassword)

	authenticate := middleware.NewAuthenticate(resolver, r.authService, r.secureCookies, r.logger)
	logging := middleware.NewLogging(r.logger)

	root := logging.Handle(authenticate.Handle(contextManager, mux))

	closer := func() {
		registry.Close()
		resolver.Close()
	}

	return root, closer, nil
}
