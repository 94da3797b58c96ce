package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// protect requires a valid session token, taken from the Authorization
// bearer header or else from the session cookie.
func (h *Handler) protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeFail(w, http.StatusUnauthorized, "You are not logged in, please log in to get access")
			return
		}

		user, err := h.svc.Authenticate(r.Context(), token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func sessionToken(r *http.Request) string {
	if v := r.Header.Get(common.AuthorizationHeaderName); v != "" {
		scheme, token, ok := strings.Cut(v, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(common.SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// currentUser returns the user put in the context by protect.
func currentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}
