// Package stripe sells artworks through Stripe Checkout.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

var ErrBadSignature = errors.New("stripe signature verification failed")

// checkout sessions cannot expire sooner than 30 minutes
const sessionLifetime = 30 * time.Minute

type CheckoutRequest struct {
	ArtworkID     string
	ArtworkName   string
	ImageURL      string
	Price         decimal.Decimal
	UserID        string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID        string    `json:"sessionId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Event is the part of a checkout webhook the gallery needs.
type Event struct {
	ID        string
	Type      string
	SessionID string
	ArtworkID string
}

// Gateway is what the checkout service depends on.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type Client struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewClient(secretKey, webhookSecret, currency string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, webhookSecret: webhookSecret, currency: strings.ToLower(currency)}
}

// MinorUnits converts a price to cents.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripego.String(req.ArtworkName),
	}
	if strings.HasPrefix(req.ImageURL, "https://") {
		product.Images = stripego.StringSlice([]string{req.ImageURL})
	}

	expires := time.Now().Add(sessionLifetime)
	params := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(req.SuccessURL),
		CancelURL:         stripego.String(req.CancelURL),
		ClientReferenceID: stripego.String(req.UserID),
		CustomerEmail:     stripego.String(req.CustomerEmail),
		ExpiresAt:         stripego.Int64(expires.Unix()),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				Quantity: stripego.Int64(1),
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripego.String(c.currency),
					UnitAmount:  stripego.Int64(MinorUnits(req.Price)),
					ProductData: product,
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("artwork_id", req.ArtworkID)
	params.AddMetadata("user_id", req.UserID)

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL, ExpiresAt: time.Unix(s.ExpiresAt, 0).UTC()}, nil
}

func (c *Client) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if _, _, ok := NextArtworkStatus(out.Type); !ok {
		return out, nil
	}
	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = session.ID
	out.ArtworkID = session.Metadata["artwork_id"]
	return out, nil
}
