package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-length-1234"

func newTestManager(now time.Time) *TokenManager {
	m := NewTokenManager(TokenConfig{Secret: testSecret, Expiry: time.Hour, Issuer: "crm-api"})
	m.now = func() time.Time { return now }
	return m
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := newTestManager(now)

	token, err := m.Issue("user-1", "alice@example.com", "manager")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "crm-api", claims.Issuer)
	assert.True(t, now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
	assert.Equal(t, int64(3600), m.ExpiresIn())
}

func TestTokenManager_Verify_Rejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := newTestManager(now)

	valid, err := m.Issue("user-1", "alice@example.com", "employee")
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	baseClaims := func() Claims {
		return Claims{
			Email: "alice@example.com",
			Role:  "employee",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "garbage",
			token:   "not-a-token",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "wrong secret",
			token:   sign(jwt.SigningMethodHS256, []byte("another-secret"), baseClaims()),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "alg none",
			token:   sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims()),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "other hmac algorithm",
			token:   sign(jwt.SigningMethodHS512, []byte(testSecret), baseClaims()),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "tampered payload",
			token:   tamperRole(t, valid, "admin"),
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			token: func() string {
				c := baseClaims()
				c.ExpiresAt = nil
				return sign(jwt.SigningMethodHS256, []byte(testSecret), c)
			}(),
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing subject",
			token: func() string {
				c := baseClaims()
				c.Subject = ""
				return sign(jwt.SigningMethodHS256, []byte(testSecret), c)
			}(),
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func() string {
				c := baseClaims()
				c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
				return sign(jwt.SigningMethodHS256, []byte(testSecret), c)
			}(),
			wantErr: ErrExpiredToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenManager_Verify_ExpiresWithClock(t *testing.T) {
	issuedAt := time.Now().Truncate(time.Second)
	token, err := newTestManager(issuedAt).Issue("user-1", "alice@example.com", "employee")
	require.NoError(t, err)

	_, err = newTestManager(issuedAt.Add(59 * time.Minute)).Verify(token)
	assert.NoError(t, err)

	_, err = newTestManager(issuedAt.Add(2 * time.Hour)).Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// tamperRole rewrites the role claim while keeping the original signature.
func tamperRole(t *testing.T, token, role string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"role":"employee"`, `"role":"`+role+`"`, 1)
	require.NotEqual(t, string(payload), forged)

	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
	return strings.Join(parts, ".")
}
