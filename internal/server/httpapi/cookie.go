package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
)

// CookieConfig controls the session cookie. Secure is off only in
// development, where the frontend is served over plain HTTP.
type CookieConfig struct {
	ExpiresDays int
	Secure      bool
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	days := h.cookie.ExpiresDays
	if days < 1 {
		days = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(time.Duration(days) * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
