// Package auth issues and verifies the bearer tokens used by admins and
// storefront users, and hashes their passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim. A token is only accepted where
// its type is expected.
const (
	TypeAccess        = "access"
	TypeRefresh       = "refresh"
	TypePasswordReset = "password_reset"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
}

// TokenService signs HS256 tokens. Refresh tokens are signed with their own
// secret, which defaults to the access secret.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	return &TokenService{cfg: cfg, now: time.Now}
}

func (s *TokenService) sign(secret, subject, email, role, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Email: email,
		Role:  role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// IssueAccess returns a short-lived access token.
func (s *TokenService) IssueAccess(subject, email, role string) (string, error) {
	return s.sign(s.cfg.AccessSecret, subject, email, role, TypeAccess, s.cfg.AccessTTL)
}

// IssuePair returns an access and a refresh token for the same subject.
func (s *TokenService) IssuePair(subject, email, role string) (*TokenPair, error) {
	access, err := s.IssueAccess(subject, email, role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(s.cfg.RefreshSecret, subject, email, role, TypeRefresh, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

// IssueReset returns a password reset token bound to userID.
func (s *TokenService) IssueReset(userID string) (string, error) {
	return s.sign(s.cfg.AccessSecret, userID, "", "", TypePasswordReset, s.cfg.ResetTTL)
}

func (s *TokenService) parse(secret, raw, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ || claims.Subject == "" {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}
	return claims, nil
}

func (s *TokenService) ParseAccess(raw string) (*Claims, error) {
	return s.parse(s.cfg.AccessSecret, raw, TypeAccess)
}

func (s *TokenService) ParseRefresh(raw string) (*Claims, error) {
	return s.parse(s.cfg.RefreshSecret, raw, TypeRefresh)
}

func (s *TokenService) ParseReset(raw string) (*Claims, error) {
	return s.parse(s.cfg.AccessSecret, raw, TypePasswordReset)
}
