package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"listinglens-backend/internal/billing"
	"listinglens-backend/internal/models"
)

// StripeWebhookHandler receives checkout session events from Stripe. This is
// the only path that marks a project paid.
type StripeWebhookHandler struct {
	svc           *billing.Service
	webhookSecret string
	log           zerolog.Logger
}

func NewStripeWebhookHandler(svc *billing.Service, webhookSecret string, log zerolog.Logger) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		svc:           svc,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// HandleWebhook godoc
// @Summary Stripe webhook receiver
// @Description Verifies the event signature and applies checkout session transitions
// @Tags stripe
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Router /api/stripe/webhook [post]
func (h *StripeWebhookHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read request body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.log.Warn().Err(err).Msg("stripe webhook signature verification failed")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid webhook signature"})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to parse event data"})
		return
	}

	if err := h.svc.ApplySessionEvent(string(event.Type), session.ID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
