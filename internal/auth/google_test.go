package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyIssuer fails discovery until healthy is set.
func flakyIssuer(t *testing.T, healthy *atomic.Bool, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		if !healthy.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/auth",
			"token_endpoint":                        srv.URL + "/token",
			"jwks_uri":                              srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleDiscoveryRetriesAfterFailure(t *testing.T) {
	var healthy atomic.Bool
	var hits atomic.Int32
	srv := flakyIssuer(t, &healthy, &hits)

	g := NewGoogle(GoogleConfig{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	g.issuer = srv.URL

	_, err := g.idVerifier()
	require.Error(t, err)

	healthy.Store(true)
	v, err := g.idVerifier()
	require.NoError(t, err)
	require.NotNil(t, v)

	again, err := g.idVerifier()
	require.NoError(t, err)
	assert.Same(t, v, again, "a successful discovery is reused")
	assert.EqualValues(t, 2, hits.Load())
}
