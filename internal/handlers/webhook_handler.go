package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-marketplace/internal/config"
	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
	"github.com/BruksfildServices01/barber-marketplace/internal/settlement"
)

type WebhookHandler struct {
	cfg        *config.Config
	reconciler *settlement.Reconciler
}

func NewWebhookHandler(cfg *config.Config, reconciler *settlement.Reconciler) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, reconciler: reconciler}
}

// HandleStripe is the payment provider's delivery endpoint. A 2xx
// acknowledges the event; a 5xx makes the provider redeliver, so only
// transient failures return one.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		httperr.BadRequest(c, "invalid_body", "Could not read request body.")
		return
	}

	ev, err := settlement.VerifyAndParse(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.cfg.StripeWebhookSecret,
	)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	if err := h.reconciler.Handle(c.Request.Context(), ev); err != nil {
		httperr.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
