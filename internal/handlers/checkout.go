package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/billing"
	"listinglens-backend/internal/models"
)

// CheckoutHandler creates Stripe Checkout sessions for unpaid projects.
type CheckoutHandler struct {
	svc *billing.Service
	log zerolog.Logger
}

func NewCheckoutHandler(svc *billing.Service, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: log}
}

// CreateCheckout godoc
// @Summary Create a Stripe Checkout session
// @Description Builds a checkout session for the project's server-computed price
// @Tags stripe
// @Accept json
// @Produce json
// @Param request body models.CreateCheckoutRequest true "Checkout request"
// @Success 200 {object} models.CheckoutResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/stripe/create-checkout [post]
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "projectId is required"})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid projectId"})
		return
	}

	session, err := h.svc.CreateCheckoutSession(userID, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		URL:       session.URL,
		SessionID: session.SessionID,
	})
}
