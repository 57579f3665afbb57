package security

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenCookieName = "token"

	claimIsAdmin   = "isAdmin"
	claimSessionID = "sessionId"
	claimUsername  = "username"
)

// SessionClaims is the payload carried by a session token.
type SessionClaims struct {
	Username  string
	SessionID string
	IsAdmin   bool
	ExpiresAt time.Time
}

// TokenAuth issues and verifies the signed session tokens stored in the
// "token" cookie.
type TokenAuth struct {
	JWT *jwtauth.JWTAuth
	ttl time.Duration
	now func() time.Time
}

type TokenOption func(*TokenAuth)

// WithClock replaces the clock used for iat and exp when issuing tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(a *TokenAuth) { a.now = now }
}

// NewTokenAuth builds a token authority for one of the shared-secret HMAC
// algorithms.
func NewTokenAuth(alg string, secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenAuth, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("security: empty JWT secret")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("security: token lifetime must be positive")
	}

	var ja *jwtauth.JWTAuth
	switch alg {
	case "HS256":
		ja = jwtauth.New("HS256", secret, nil)
	case "HS384":
		ja = jwtauth.New("HS384", secret, nil)
	case "HS512":
		ja = jwtauth.New("HS512", secret, nil)
	default:
		return nil, fmt.Errorf("security: unsupported JWT algorithm %q", alg)
	}

	a := &TokenAuth{JWT: ja, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Issue signs a token for a new session.
func (a *TokenAuth) Issue(username, sessionID string, isAdmin bool) (string, *SessionClaims, error) {
	now := a.now()
	exp := time.Unix(now.Add(a.ttl).Unix(), 0)

	claims := map[string]interface{}{
		claimIsAdmin:   isAdmin,
		claimSessionID: sessionID,
		claimUsername:  username,
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, exp)

	_, tokenString, err := a.JWT.Encode(claims)
	if err != nil {
		return "", nil, fmt.Errorf("security: sign token: %w", err)
	}
	return tokenString, &SessionClaims{
		Username:  username,
		SessionID: sessionID,
		IsAdmin:   isAdmin,
		ExpiresAt: exp,
	}, nil
}

// Verify checks signature, algorithm and expiry of tokenString and returns
// its claims.
func (a *TokenAuth) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwtauth.VerifyToken(a.JWT, tokenString)
	if err != nil {
		return nil, err
	}
	return ClaimsFromToken(token)
}

// Verifier is the request middleware that decodes the token cookie once and
// stores the outcome in the request context.
func (a *TokenAuth) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(a.JWT, TokenFromCookie)
}

// TokenFromCookie reads the session token cookie.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ClaimsFromContext returns the claims of the token decoded by Verifier.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, jwtauth.ErrNoTokenFound
	}
	sc, err := claimsFromMap(claims)
	if err != nil {
		return nil, err
	}
	sc.ExpiresAt = token.Expiration()
	return sc, nil
}

type decodedToken interface {
	AsMap(ctx context.Context) (map[string]interface{}, error)
	Expiration() time.Time
}

func ClaimsFromToken(token decodedToken) (*SessionClaims, error) {
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	sc, err := claimsFromMap(claims)
	if err != nil {
		return nil, err
	}
	sc.ExpiresAt = token.Expiration()
	return sc, nil
}

func claimsFromMap(claims jwt.MapClaims) (*SessionClaims, error) {
	sessionID, err := GetSessionIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	username, err := GetUsernameFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &SessionClaims{
		Username:  username,
		SessionID: sessionID,
		IsAdmin:   GetIsAdminFromClaims(claims),
	}, nil
}

func GetSessionIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims[claimSessionID].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: sessionId is missing or not a string", jwt.ErrTokenInvalidClaims)
	}
	return id, nil
}

func GetUsernameFromClaims(claims jwt.MapClaims) (string, error) {
	name, ok := claims[claimUsername].(string)
	if !ok {
		return "", fmt.Errorf("%w: username is missing or not a string", jwt.ErrTokenInvalidClaims)
	}
	return name, nil
}

// GetIsAdminFromClaims treats a missing or malformed flag as false.
func GetIsAdminFromClaims(claims jwt.MapClaims) bool {
	isAdmin, _ := claims[claimIsAdmin].(bool)
	return isAdmin
}
