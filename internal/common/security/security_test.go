package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

func TestIssueAndVerify(t *testing.T) {
	auth, err := NewTokenAuth("HS256", testSecret, time.Hour)
	require.NoError(t, err)

	before := time.Now()
	token, issued, err := auth.Issue("ana", "sid-1", true)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, before.Add(time.Hour), issued.ExpiresAt, 2*time.Second)

	claims, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, issued.ExpiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyRejects(t *testing.T) {
	auth, err := NewTokenAuth("HS256", testSecret, time.Hour)
	require.NoError(t, err)
	token, _, err := auth.Issue("ana", "sid-1", false)
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		_, err := auth.Verify(token[:len(token)-2] + "xx")
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenAuth("HS256", []byte("other"), time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.Error(t, err)
	})

	t.Run("algorithm mismatch", func(t *testing.T) {
		strong, err := NewTokenAuth("HS512", testSecret, time.Hour)
		require.NoError(t, err)
		_, err = strong.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
		stale, err := NewTokenAuth("HS256", testSecret, time.Hour, WithClock(past))
		require.NoError(t, err)
		expired, _, err := stale.Issue("ana", "sid-2", false)
		require.NoError(t, err)

		_, err = auth.Verify(expired)
		assert.ErrorIs(t, err, jwtauth.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.Verify("not-a-token")
		assert.Error(t, err)
	})
}

func TestNewTokenAuthValidation(t *testing.T) {
	_, err := NewTokenAuth("none", testSecret, time.Hour)
	assert.Error(t, err)
	_, err = NewTokenAuth("HS256", nil, time.Hour)
	assert.Error(t, err)
	_, err = NewTokenAuth("HS256", testSecret, 0)
	assert.Error(t, err)
}

func TestVerifierAndClaimsFromContext(t *testing.T) {
	auth, err := NewTokenAuth("HS384", testSecret, time.Hour)
	require.NoError(t, err)
	token, _, err := auth.Issue("bob", "sid-3", false)
	require.NoError(t, err)

	var got *SessionClaims
	var gotErr error
	handler := auth.Verifier()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NoError(t, gotErr)
	assert.Equal(t, "bob", got.Username)
	assert.False(t, got.IsAdmin)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, gotErr, "no cookie")
}

func TestClaimHelpers(t *testing.T) {
	_, err := GetSessionIDFromClaims(jwt.MapClaims{"sessionId": 12})
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)

	_, err = GetUsernameFromClaims(jwt.MapClaims{})
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)

	assert.False(t, GetIsAdminFromClaims(jwt.MapClaims{"isAdmin": "true"}))
	assert.True(t, GetIsAdminFromClaims(jwt.MapClaims{"isAdmin": true}))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", hash)

	ok, err := h.Check("secreto123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Check("otra", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Check("secreto123", "not-a-hash")
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey(testSecret, "session-id")
	require.NoError(t, err)
	assert.Len(t, a, 32)

	again, err := DeriveKey(testSecret, "session-id")
	require.NoError(t, err)
	assert.Equal(t, a, again)

	other, err := DeriveKey(testSecret, "csrf")
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}
