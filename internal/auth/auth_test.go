package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaamgarau/internal/core"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func newService(t *testing.T) *JWTService {
	t.Helper()
	s, err := NewJWTService(testSecret, 24)
	require.NoError(t, err)
	return s
}

func TestNewJWTServiceRejectsWeakSecret(t *testing.T) {
	_, err := NewJWTService("short", 24)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService(t)
	userID := uuid.New()

	token, err := s.GenerateToken(userID, core.RoleFreelancer)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, core.RoleFreelancer, claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestGenerateTokenRejectsBadInput(t *testing.T) {
	s := newService(t)
	_, err := s.GenerateToken(uuid.Nil, core.RoleClient)
	assert.Error(t, err)
	_, err = s.GenerateToken(uuid.New(), core.Role("admin"))
	assert.ErrorIs(t, err, core.ErrInvalidRole)
}

func TestValidateTokenFailures(t *testing.T) {
	s := newService(t)
	token, err := s.GenerateToken(uuid.New(), core.RoleClient)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := s.ValidateToken("")
		assert.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTService(strings.Repeat("x", 40), 24)
		require.NoError(t, err)
		_, err = other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		defer func() { s.now = time.Now }()
		_, err := s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{UserID: uuid.New(), Role: core.RoleClient, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ValidateToken(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing role", func(t *testing.T) {
		claims := &Claims{UserID: uuid.New(), RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	s := newService(t)
	userID := uuid.New()
	token, err := s.GenerateToken(userID, core.RoleClient)
	require.NoError(t, err)

	var seen Identity
	h := Middleware(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/level", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "unauthorized")
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
	assert.Equal(t, Identity{UserID: userID, Role: core.RoleClient}, seen)
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireRole(core.RoleFreelancer)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: uuid.New(), Role: core.RoleClient}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: uuid.New(), Role: core.RoleFreelancer}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
