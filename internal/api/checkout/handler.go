// Package checkout lets a signed-in customer buy an artwork through Stripe.
package checkout

import (
	"gallery-api/internal/api/response"
	"gallery-api/internal/app/http/middleware"
	"gallery-api/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.CheckoutService
}

func NewHandler(svc *service.CheckoutService) *Handler {
	return &Handler{svc: svc}
}

// POST /api/artworks/:id/checkout
func (h *Handler) Create(c *gin.Context) {
	session, err := h.svc.Start(c.Request.Context(), middleware.SubjectID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Checkout session created", session)
}
