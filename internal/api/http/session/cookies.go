// Package session carries the token cookies between browser and server.
package session

import "net/http"

const (
	// AccessCookie holds the short-lived access token.
	AccessCookie = "access_token"
	// RefreshCookie holds the rotating refresh token.
	RefreshCookie = "refresh_token"
)

// Set writes both token cookies.
func Set(w http.ResponseWriter, access, refresh string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both token cookies.
func Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
}

// AccessToken reads the access token cookie, empty when absent.
func AccessToken(r *http.Request) string {
	return cookieValue(r, AccessCookie)
}

// RefreshToken reads the refresh token cookie, empty when absent.
func RefreshToken(r *http.Request) string {
	return cookieValue(r, RefreshCookie)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
