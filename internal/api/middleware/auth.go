package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common/security"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
)

type contextKey string

const IdentityCtxKey contextKey = "identity"

const (
	LoginPath = "/usuario/login"
	HomePath  = "/"
)

// Identity is the authenticated user of a request whose session passed the
// liveness check.
type Identity struct {
	UserID    int64
	SessionID string
	Username  string
	IsAdmin   bool
}

// SessionResolver looks up the live session named by a token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, claims *security.SessionClaims) (*model.Session, error)
}

// Gate decides whether a request may proceed. Its middlewares expect the
// token to have been decoded by security.TokenAuth.Verifier.
type Gate struct {
	sessions SessionResolver
	secure   bool
}

func NewGate(sessions SessionResolver, secureCookies bool) *Gate {
	return &Gate{sessions: sessions, secure: secureCookies}
}

// AuthVerify lets the request through only when its token is valid and the
// session it names is active and unexpired. A valid token whose session is
// dead also loses its cookie.
func (g *Gate) AuthVerify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := security.ClaimsFromContext(r.Context())
		if err != nil {
			if !errors.Is(err, jwtauth.ErrNoTokenFound) {
				log.Printf("WARN: rejected token: %v", err)
			}
			common.Redirect(w, r, LoginPath)
			return
		}

		session, err := g.sessions.ResolveSession(r.Context(), claims)
		if err != nil {
			if !errors.Is(err, common.ErrSessionNotLive) {
				log.Printf("ERROR: session lookup failed: %v", err)
			}
			ClearTokenCookie(w, g.secure)
			common.Redirect(w, r, LoginPath)
			return
		}

		identity := &Identity{
			UserID:    session.UserID,
			SessionID: claims.SessionID,
			Username:  claims.Username,
			IsAdmin:   claims.IsAdmin,
		}
		ctx := context.WithValue(r.Context(), IdentityCtxKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VerifyAdmin requires the token's admin flag. It does not check session
// liveness by itself; when AuthVerify ran first it uses that identity.
func (g *Gate) VerifyAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin := false
		if identity, ok := GetIdentityFromContext(r.Context()); ok {
			isAdmin = identity.IsAdmin
		} else {
			claims, err := security.ClaimsFromContext(r.Context())
			if err != nil {
				common.Redirect(w, r, LoginPath)
				return
			}
			isAdmin = claims.IsAdmin
		}

		if !isAdmin {
			common.Redirect(w, r, HomePath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfAuthenticated sends visitors holding a valid token away from the
// login pages.
func (g *Gate) RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := security.ClaimsFromContext(r.Context()); err == nil {
			common.Redirect(w, r, HomePath)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsAdmin reports the admin flag of the request's token.
func (g *Gate) IsAdmin(r *http.Request) bool {
	if identity, ok := GetIdentityFromContext(r.Context()); ok {
		return identity.IsAdmin
	}
	claims, err := security.ClaimsFromContext(r.Context())
	return err == nil && claims.IsAdmin
}

// IsLogged reports whether the request carries a valid token with a live
// session.
func (g *Gate) IsLogged(r *http.Request) bool {
	if _, ok := GetIdentityFromContext(r.Context()); ok {
		return true
	}
	claims, err := security.ClaimsFromContext(r.Context())
	if err != nil {
		return false
	}
	_, err = g.sessions.ResolveSession(r.Context(), claims)
	return err == nil
}

// UserName returns the username of the request's token, or "".
func (g *Gate) UserName(r *http.Request) string {
	if identity, ok := GetIdentityFromContext(r.Context()); ok {
		return identity.Username
	}
	if claims, err := security.ClaimsFromContext(r.Context()); err == nil {
		return claims.Username
	}
	return ""
}

func GetIdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityCtxKey).(*Identity)
	return identity, ok && identity != nil
}

// SetTokenCookie stores a session token the way the browser must keep it.
func SetTokenCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearTokenCookie(w http.ResponseWriter, secure bool) {
	SetTokenCookie(w, "", -1, secure)
}
