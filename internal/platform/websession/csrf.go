package websession

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"
)

const (
	CSRFCookieName = "blog_csrf"
	CSRFFormField  = "formid"
	CSRFHeader     = "req-id"
)

// CSRF rejects unsafe requests without a token matching the browser's CSRF
// cookie. The token is read from the req-id header first, then from the
// formid form field. Without Secure the site is served over plain HTTP and
// the Referer origin check is skipped. Must run after Middleware so
// onFailure can flash.
func (m *Manager) CSRF(onFailure http.HandlerFunc) func(http.Handler) http.Handler {
	protect := csrf.Protect(m.csrfKey,
		csrf.CookieName(CSRFCookieName),
		csrf.FieldName(CSRFFormField),
		csrf.RequestHeader(CSRFHeader),
		csrf.Path("/"),
		csrf.MaxAge(int(m.maxAge/time.Second)),
		csrf.HttpOnly(true),
		csrf.Secure(m.secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(onFailure),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if m.secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// CSRFToken returns the masked token to embed in the request's forms, or ""
// outside the CSRF middleware.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}

// CSRFFailureReason explains why the CSRF check rejected r.
func CSRFFailureReason(r *http.Request) error {
	return csrf.FailureReason(r)
}
