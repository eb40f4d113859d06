package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/awelch/personal-site/internal/api/http/session"
	"github.com/awelch/personal-site/internal/logger"
	"github.com/awelch/personal-site/internal/model"
	"github.com/awelch/personal-site/internal/service"
)

// Auth serves the public auth surfaces: login, signup, logout, password
// reset and email-change confirmation.
type Auth struct {
	auth           *service.Auth
	contextManager model.ContextManager
	renderer       *Renderer
	secureCookies  bool
	logger         *logger.Logger
}

func NewAuth(auth *service.Auth, contextManager model.ContextManager, renderer *Renderer, secureCookies bool, logger *logger.Logger) *Auth {
	return &Auth{
		auth:           auth,
		contextManager: contextManager,
		renderer:       renderer,
		secureCookies:  secureCookies,
		logger:         logger,
	}
}

type authPage struct {
	Error          string
	Notice         string
	Email          string
	RedirectedFrom string
	ResetToken     string
}

// Home serves the landing page.
func (h *Auth) Home(w http.ResponseWriter, r *http.Request) {
	_, signedIn := h.contextManager.GetSessionFromContext(r.Context())
	h.renderer.Render(w, "index.html", struct{ SignedIn bool }{signedIn})
}

// LoginPage serves the login form.
func (h *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "login.html", authPage{
		RedirectedFrom: r.URL.Query().Get("redirectedFrom"),
		Notice:         r.URL.Query().Get("notice"),
	})
}

// Login handles the login form post. Invalid credentials re-render the
// form with an inline error; success sets the token cookies and sends
// the viewer back where they came from.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")
	redirectedFrom := r.FormValue("redirectedFrom")

	_, access, refresh, err := h.auth.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		h.renderer.Render(w, "login.html", authPage{
			Error:          messageFor(err),
			Email:          email,
			RedirectedFrom: redirectedFrom,
		})
		return
	}

	session.Set(w, access, refresh, h.secureCookies)

	target := "/dashboard"
	if strings.HasPrefix(redirectedFrom, "/") && !strings.HasPrefix(redirectedFrom, "//") {
		target = redirectedFrom
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// SignupPage serves the signup form.
func (h *Auth) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "signup.html", authPage{})
}

// Signup creates the account and signs the new user straight in.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if _, err := h.auth.SignUp(r.Context(), email, password); err != nil {
		h.renderer.Render(w, "signup.html", authPage{
			Error: messageFor(err),
			Email: email,
		})
		return
	}

	_, access, refresh, err := h.auth.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	session.Set(w, access, refresh, h.secureCookies)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout revokes the session and clears the cookies.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.contextManager.GetSessionFromContext(r.Context()); ok {
		if err := h.auth.SignOut(r.Context(), sess.UserID); err != nil {
			h.logger.Error("Auth handler: sign out failed",
				"user_id", sess.UserID,
				"error", err.Error())
		}
	}

	session.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// ResetPasswordPage serves either the request-a-link form or, when the
// link token is present, the choose-a-new-password form.
func (h *Auth) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.renderer.Render(w, "reset_password.html", authPage{})
		return
	}

	if _, err := h.auth.VerifyResetToken(r.Context(), token); err != nil {
		h.renderer.Render(w, "reset_password.html", authPage{
			Error: "This reset link is invalid or has expired. Request a new one.",
		})
		return
	}

	h.renderer.Render(w, "reset_password.html", authPage{ResetToken: token})
}

// ResetPassword handles both halves of the reset flow: requesting a
// link by email, and setting the new password from a verified link.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if token := r.FormValue("token"); token != "" {
		h.completeReset(w, r, token)
		return
	}

	email := r.FormValue("email")
	if err := h.auth.ResetPasswordForEmail(r.Context(), email); err != nil {
		h.renderer.Render(w, "reset_password.html", authPage{
			Error: messageFor(err),
			Email: email,
		})
		return
	}

	h.renderer.Render(w, "reset_password.html", authPage{
		Notice: "If that address has an account, a reset link is on its way.",
	})
}

func (h *Auth) completeReset(w http.ResponseWriter, r *http.Request, token string) {
	sess, err := h.auth.VerifyResetToken(r.Context(), token)
	if err != nil {
		h.renderer.Render(w, "reset_password.html", authPage{
			Error: "This reset link is invalid or has expired. Request a new one.",
		})
		return
	}

	if err := h.auth.UpdatePassword(r.Context(), sess.UserID, r.FormValue("password")); err != nil {
		h.renderer.Render(w, "reset_password.html", authPage{
			Error:      messageFor(err),
			ResetToken: token,
		})
		return
	}

	http.Redirect(w, r, "/login?notice="+notice("Password updated. Sign in with your new password."), http.StatusFound)
}

// ConfirmEmail applies a pending email change from its mailed link.
func (h *Auth) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.auth.ConfirmEmailChange(r.Context(), token); err != nil {
		h.renderer.Render(w, "message.html", struct{ Message string }{
			"This confirmation link is invalid or has expired.",
		})
		return
	}

	http.Redirect(w, r, "/login?notice="+notice("Email updated. Sign in with your new address."), http.StatusFound)
}

func notice(text string) string {
	return url.QueryEscape(text)
}
