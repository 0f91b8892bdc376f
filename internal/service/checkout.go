package service

import (
	"context"
	"errors"
	"strings"

	"gallery-api/internal/apperr"
	"gallery-api/internal/cache"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/infra/stripe"
	"gallery-api/internal/logging"
	"gallery-api/internal/repository"
)

// CheckoutService reserves an artwork while the buyer pays and settles it
// from webhook events. A nil gateway disables it.
type CheckoutService struct {
	gateway  stripe.Gateway
	artworks repository.ArtworkRepository
	users    repository.UserRepository
	cache    *cache.ResourceCache
	baseURL  string
}

func NewCheckoutService(gateway stripe.Gateway, artworks repository.ArtworkRepository, usersRepo repository.UserRepository, c *cache.ResourceCache, publicBaseURL string) *CheckoutService {
	return &CheckoutService{
		gateway:  gateway,
		artworks: artworks,
		users:    usersRepo,
		cache:    c,
		baseURL:  strings.TrimRight(publicBaseURL, "/"),
	}
}

func checkoutDisabled() *apperr.Error {
	return apperr.Unavailable(apperr.CodeServiceUnavailable, "Payments are not configured")
}

func (s *CheckoutService) Enabled() bool { return s.gateway != nil }

// Start moves the artwork from AVAILABLE to RESERVED and opens a checkout
// session for it. The reservation is released if the session cannot be
// created.
func (s *CheckoutService) Start(ctx context.Context, userID, artworkID string) (*stripe.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, checkoutDisabled()
	}
	if !validID(artworkID) {
		return nil, invalidArtworkID()
	}
	buyer, err := s.users.FindByID(ctx, userID)
	if isNotFound(err) || (err == nil && !buyer.IsActive) {
		return nil, apperr.Unauthorized(apperr.CodeUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return nil, wrap("find user", err)
	}

	a, err := s.artworks.FindActive(ctx, artworkID)
	if isNotFound(err) {
		return nil, artworkNotFound()
	}
	if err != nil {
		return nil, wrap("find artwork", err)
	}

	reserved, err := s.artworks.UpdateStatus(ctx, artworkID, catalog.StatusReserved, catalog.StatusAvailable)
	if err != nil {
		return nil, wrap("reserve artwork", err)
	}
	if !reserved {
		return nil, apperr.Conflict(apperr.CodeArtworkUnavailable, "Artwork is not available for purchase")
	}
	invalidateAll(ctx, s.cache)

	req := stripe.CheckoutRequest{
		ArtworkID:     a.ID,
		ArtworkName:   a.Name,
		Price:         a.Price,
		UserID:        buyer.ID,
		CustomerEmail: buyer.Email,
		SuccessURL:    s.baseURL + "/artworks/" + a.ID + "?checkout=success",
		CancelURL:     s.baseURL + "/artworks/" + a.ID + "?checkout=cancelled",
	}
	if img := a.PrimaryImage(); img != nil {
		req.ImageURL = img.URL
	}
	session, err := s.gateway.CreateCheckout(ctx, req)
	if err != nil {
		if _, rerr := s.artworks.UpdateStatus(ctx, artworkID, catalog.StatusAvailable, catalog.StatusReserved); rerr != nil {
			logging.Ctx(ctx).Error().Err(rerr).Str("artwork_id", artworkID).Msg("could not release reservation")
		}
		invalidateAll(ctx, s.cache)
		return nil, apperr.Unavailable(apperr.CodeServiceUnavailable, "Could not start checkout").Wrap(err)
	}

	logging.Ctx(ctx).Info().
		Str("artwork_id", artworkID).
		Str("user_id", buyer.ID).
		Str("session_id", session.ID).
		Msg("checkout started")
	return session, nil
}

// HandleWebhook verifies a Stripe event and applies the status change it
// implies. Events that name no artwork are acknowledged and ignored.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	if s.gateway == nil {
		return "", checkoutDisabled()
	}
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, stripe.ErrBadSignature) {
			return "", apperr.BadRequest(apperr.CodeValidation, "Signature verification failed")
		}
		return "", apperr.BadRequest(apperr.CodeValidation, "Malformed webhook payload").Wrap(err)
	}

	to, from, ok := stripe.NextArtworkStatus(ev.Type)
	if !ok || ev.ArtworkID == "" || !validID(ev.ArtworkID) {
		return "ignored", nil
	}
	changed, err := s.artworks.UpdateStatus(ctx, ev.ArtworkID, to, from...)
	if err != nil {
		return "", wrap("apply checkout event", err)
	}
	if changed {
		invalidateAll(ctx, s.cache)
	}
	logging.Ctx(ctx).Info().
		Str("event_id", ev.ID).
		Str("event_type", ev.Type).
		Str("artwork_id", ev.ArtworkID).
		Bool("changed", changed).
		Msg("checkout event processed")
	return "received", nil
}
