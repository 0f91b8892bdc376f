package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gallery-api/internal/apperr"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/infra/stripe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	createErr error
	requests  []stripe.CheckoutRequest
	event     *stripe.Event
	parseErr  error
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, req stripe.CheckoutRequest) (*stripe.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1", ExpiresAt: time.Now().Add(30 * time.Minute)}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*stripe.Event, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

func newCheckout(t *testing.T, f *fixture, g stripe.Gateway) *CheckoutService {
	t.Helper()
	return NewCheckoutService(g, f.store.Artworks(), f.store.Users(), f.cache, "https://gallery.test/")
}

func statusOf(t *testing.T, f *fixture, id string) catalog.ArtworkStatus {
	t.Helper()
	a, err := f.store.Artworks().FindActive(ctxb(), id)
	require.NoError(t, err)
	return a.Status
}

func TestCheckoutReservesArtwork(t *testing.T) {
	f := newFixture(t)
	buyer := registerUser(t, f, "buyer@example.com")
	c := seedCategory(t, f, "Paintings")
	a := seedArtwork(t, f, ArtworkInput{Name: "Dawn", CategoryID: c.ID})
	g := &fakeGateway{}
	svc := newCheckout(t, f, g)

	session, err := svc.Start(ctxb(), buyer.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, catalog.StatusReserved, statusOf(t, f, a.ID))

	require.Len(t, g.requests, 1)
	req := g.requests[0]
	assert.Equal(t, "buyer@example.com", req.CustomerEmail)
	assert.Equal(t, "https://gallery.test/artworks/"+a.ID+"?checkout=success", req.SuccessURL)

	_, err = svc.Start(ctxb(), buyer.ID, a.ID)
	assert.Equal(t, apperr.CodeArtworkUnavailable, code(t, err), "a reserved artwork cannot be bought twice")
}

func TestCheckoutReleasesReservationOnGatewayFailure(t *testing.T) {
	f := newFixture(t)
	buyer := registerUser(t, f, "buyer@example.com")
	c := seedCategory(t, f, "Paintings")
	a := seedArtwork(t, f, ArtworkInput{Name: "Dawn", CategoryID: c.ID})
	svc := newCheckout(t, f, &fakeGateway{createErr: errors.New("stripe down")})

	_, err := svc.Start(ctxb(), buyer.ID, a.ID)
	assert.Equal(t, apperr.CodeServiceUnavailable, code(t, err))
	assert.Equal(t, catalog.StatusAvailable, statusOf(t, f, a.ID))
}

func TestCheckoutDisabled(t *testing.T) {
	f := newFixture(t)
	svc := newCheckout(t, f, nil)
	assert.False(t, svc.Enabled())

	_, err := svc.Start(ctxb(), "u", "a")
	assert.Equal(t, apperr.CodeServiceUnavailable, code(t, err))
	_, err = svc.HandleWebhook(ctxb(), []byte("{}"), "sig")
	assert.Equal(t, apperr.CodeServiceUnavailable, code(t, err))
}

func TestCheckoutWebhookSettlesArtwork(t *testing.T) {
	f := newFixture(t)
	buyer := registerUser(t, f, "buyer@example.com")
	c := seedCategory(t, f, "Paintings")
	a := seedArtwork(t, f, ArtworkInput{Name: "Dawn", CategoryID: c.ID})
	g := &fakeGateway{}
	svc := newCheckout(t, f, g)
	_, err := svc.Start(ctxb(), buyer.ID, a.ID)
	require.NoError(t, err)

	g.event = &stripe.Event{ID: "evt_1", Type: stripe.EventCheckoutCompleted, ArtworkID: a.ID}
	result, err := svc.HandleWebhook(ctxb(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "received", result)
	assert.Equal(t, catalog.StatusSold, statusOf(t, f, a.ID))

	// a late expiry must not resurrect a sold artwork
	g.event = &stripe.Event{ID: "evt_2", Type: stripe.EventCheckoutExpired, ArtworkID: a.ID}
	_, err = svc.HandleWebhook(ctxb(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusSold, statusOf(t, f, a.ID))
}

func TestCheckoutWebhookExpiryReleases(t *testing.T) {
	f := newFixture(t)
	buyer := registerUser(t, f, "buyer@example.com")
	c := seedCategory(t, f, "Paintings")
	a := seedArtwork(t, f, ArtworkInput{Name: "Dawn", CategoryID: c.ID})
	g := &fakeGateway{}
	svc := newCheckout(t, f, g)
	_, err := svc.Start(ctxb(), buyer.ID, a.ID)
	require.NoError(t, err)

	g.event = &stripe.Event{ID: "evt_1", Type: stripe.EventCheckoutExpired, ArtworkID: a.ID}
	_, err = svc.HandleWebhook(ctxb(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusAvailable, statusOf(t, f, a.ID))
}

func TestCheckoutWebhookIgnoresAndRejects(t *testing.T) {
	f := newFixture(t)
	g := &fakeGateway{event: &stripe.Event{ID: "evt_1", Type: "invoice.paid"}}
	svc := newCheckout(t, f, g)

	result, err := svc.HandleWebhook(ctxb(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.Equal(t, "ignored", result)

	g.parseErr = stripe.ErrBadSignature
	_, err = svc.HandleWebhook(ctxb(), []byte("{}"), "bad")
	assert.Equal(t, apperr.CodeValidation, code(t, err))
}
