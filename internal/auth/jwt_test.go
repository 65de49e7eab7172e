package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute)
}

func customerClaims() Claims {
	return Claims{UserID: "user-123", Email: "test@example.com", Role: "CUSTOMER"}
}

func TestJWTService_GenerateAccessToken_Success(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken(customerClaims())

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken(Claims{
		UserID:  "user-456",
		Email:   "staff@example.com",
		Role:    "CUSTOMER",
		IsStaff: true,
	})
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "staff@example.com", claims.Email)
	assert.Equal(t, "user-456", claims.Subject)
	assert.True(t, claims.IsStaff)
	assert.True(t, claims.IsAdmin())
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret", time.Millisecond)

	token, _, err := service.GenerateAccessToken(customerClaims())
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateAccessToken_WrongSignature(t *testing.T) {
	service1 := NewJWTService("secret-key-1", 15*time.Minute)
	service2 := NewJWTService("secret-key-2", 15*time.Minute)

	token, _, err := service1.GenerateAccessToken(customerClaims())
	require.NoError(t, err)

	claims, err := service2.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_WrongAlgorithm(t *testing.T) {
	service := newTestJWTService()

	c := customerClaims()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &c)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_MissingUser(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken(Claims{Email: "ghost@example.com"})
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_IsAdmin(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   bool
	}{
		{"customer", Claims{Role: "CUSTOMER"}, false},
		{"admin role", Claims{Role: "ADMIN"}, true},
		{"staff flag", Claims{Role: "CUSTOMER", IsStaff: true}, true},
		{"superuser flag", Claims{IsSuperuser: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.IsAdmin())
		})
	}
}

// ============================================
// TokenExpiry Tests
// ============================================

func TestTokenExpiry_ReadsExpWithoutKey(t *testing.T) {
	token, expiresAt, err := newTestJWTService().GenerateAccessToken(customerClaims())
	require.NoError(t, err)

	got, ok := TokenExpiry(token)

	require.True(t, ok)
	assert.Equal(t, expiresAt.Unix(), got.Unix())
}

func TestTokenExpiry_NotAJWT(t *testing.T) {
	_, ok := TokenExpiry("opaque-token")
	assert.False(t, ok)
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	tokenString, err := token.SignedString([]byte("whatever"))
	require.NoError(t, err)

	_, ok := TokenExpiry(tokenString)

	assert.False(t, ok)
}
