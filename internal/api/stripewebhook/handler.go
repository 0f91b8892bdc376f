// Package stripewebhooks receives Stripe checkout events.
package stripewebhooks

import (
	"errors"
	"io"
	"net/http"

	"gallery-api/internal/api/response"
	"gallery-api/internal/apperr"
	"gallery-api/internal/service"

	"github.com/gin-gonic/gin"
)

// Stripe payloads are small; anything bigger is not from Stripe.
const maxPayload = 65536

type Handler struct {
	svc *service.CheckoutService
}

func NewHandler(svc *service.CheckoutService) *Handler {
	return &Handler{svc: svc}
}

// POST /api/stripe/webhook
func (h *Handler) Receive(c *gin.Context) {
	payload, err := readStripeBody(c, maxPayload)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.Fail(c, http.StatusRequestEntityTooLarge, apperr.CodeValidation, "Webhook payload too large")
			return
		}
		response.Error(c, apperr.Validation("Error reading request body"))
		return
	}

	result, err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Webhook processed", gin.H{"status": result})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
