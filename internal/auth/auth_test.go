package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestTokens() *TokenService {
	return NewTokenService(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		Issuer:        "gallery-api",
		Audience:      "gallery-web",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      time.Hour,
	})
}

func TestIssuePairRoundTrip(t *testing.T) {
	s := newTestTokens()

	pair, err := s.IssuePair("admin-1", "admin@gallery.local", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.EqualValues(t, 900, pair.ExpiresIn)

	claims, err := s.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin@gallery.local", claims.Email)

	refresh, err := s.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", refresh.Subject)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	s := newTestTokens()
	pair, err := s.IssuePair("u1", "u@example.com", "user")
	require.NoError(t, err)
	reset, err := s.IssueReset("u1")
	require.NoError(t, err)

	_, err = s.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseAccess(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ParseReset(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := s.ParseReset(reset)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, TypePasswordReset, claims.Type)
}

func TestParseRejects(t *testing.T) {
	s := newTestTokens()
	good, err := s.IssueAccess("u1", "u@example.com", "user")
	require.NoError(t, err)

	other := NewTokenService(TokenConfig{
		AccessSecret: "access-secret", Issuer: "someone-else", Audience: "gallery-web",
		AccessTTL: time.Minute, RefreshTTL: time.Minute, ResetTTL: time.Minute,
	})
	wrongIssuer, err := other.IssueAccess("u1", "", "user")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1", "typ": TypeAccess, "iss": "gallery-api", "aud": "gallery-web",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "tampered", token: good + "x"},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "alg none", token: none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ParseAccess(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseRejectsExpired(t *testing.T) {
	s := newTestTokens()
	issued := time.Now()
	s.now = func() time.Time { return issued }

	token, err := s.IssueAccess("u1", "", "user")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = s.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshSecretDefaultsToAccessSecret(t *testing.T) {
	s := NewTokenService(TokenConfig{
		AccessSecret: "only", Issuer: "i", Audience: "a",
		AccessTTL: time.Minute, RefreshTTL: time.Hour, ResetTTL: time.Minute,
	})
	pair, err := s.IssuePair("x", "", "admin")
	require.NoError(t, err)
	_, err = s.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = 12 })

	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.True(t, CheckPassword(&hash, "Secret123"))
	assert.False(t, CheckPassword(&hash, "secret123"))
	assert.False(t, CheckPassword(nil, "Secret123"))
	empty := ""
	assert.False(t, CheckPassword(&empty, ""))
}

func TestDefaultCostIsTwelve(t *testing.T) {
	assert.Equal(t, 12, BcryptCost)
}

func TestIsPasswordStrong(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"short1", false},
		{"lettersonly", false},
		{"12345678", false},
		{"letters123", true},
		{"Pa55word", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPasswordStrong(tt.password), tt.password)
	}
}

func TestIsEmailValid(t *testing.T) {
	assert.True(t, IsEmailValid("jane.doe+art@example.com"))
	assert.True(t, IsEmailValid("a_b@sub.example.org"))
	assert.False(t, IsEmailValid("no-at-sign.example.com"))
	assert.False(t, IsEmailValid("x@y"))
	assert.False(t, IsEmailValid(""))
}

func TestRandomState(t *testing.T) {
	a, err := RandomState()
	require.NoError(t, err)
	b, err := RandomState()
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
