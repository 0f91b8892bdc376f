package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer     = "https://accounts.google.com"
	discoveryTimeout = 10 * time.Second
)

type GoogleIdentity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google runs the authorization code flow and verifies the returned ID token.
type Google struct {
	oauth  *oauth2.Config
	issuer string

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func NewGoogle(cfg GoogleConfig) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		issuer: googleIssuer,
	}
}

// RandomState returns an unguessable OAuth state value.
func RandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// idVerifier discovers the provider on first use. A failed discovery is
// retried by the next caller. Discovery never runs on a request context.
func (g *Google) idVerifier() (*oidc.IDTokenVerifier, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifier != nil {
		return g.verifier, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
	defer cancel()
	p, err := oidc.NewProvider(ctx, g.issuer)
	if err != nil {
		return nil, fmt.Errorf("discover google oidc provider: %w", err)
	}
	g.verifier = p.Verifier(&oidc.Config{ClientID: g.oauth.ClientID})
	return g.verifier, nil
}

// Exchange trades an authorization code for a verified identity.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleIdentity, error) {
	verifier, err := g.idVerifier()
	if err != nil {
		return nil, err
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("missing id_token")
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	var id GoogleIdentity
	if err := idToken.Claims(&id); err != nil {
		return nil, fmt.Errorf("decode id_token claims: %w", err)
	}
	if id.Subject == "" || id.Email == "" {
		return nil, errors.New("id_token missing sub or email")
	}
	return &id, nil
}
