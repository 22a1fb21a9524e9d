package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listinglens-backend/internal/billing"
	"listinglens-backend/internal/database"
	"listinglens-backend/internal/handlers"
	"listinglens-backend/internal/middleware"
	"listinglens-backend/internal/models"
)

type checkoutStore struct {
	user      *models.User
	workspace *models.Workspace
	project   *models.Project
}

func (s *checkoutStore) GetUserWithWorkspace(userID uuid.UUID) (*models.User, *models.Workspace, error) {
	if userID != s.user.ID {
		return nil, nil, database.ErrNotFound
	}
	return s.user, s.workspace, nil
}

func (s *checkoutStore) GetProjectByID(projectID uuid.UUID) (*models.Project, error) {
	if projectID != s.project.ID {
		return nil, database.ErrNotFound
	}
	return s.project, nil
}

func (s *checkoutStore) GetWorkspaceByID(workspaceID uuid.UUID) (*models.Workspace, error) {
	if workspaceID != s.workspace.ID {
		return nil, database.ErrNotFound
	}
	return s.workspace, nil
}

func (s *checkoutStore) CreatePayment(p *models.Payment) error { return nil }

func (s *checkoutStore) UpdateProjectPaymentStatus(projectID uuid.UUID, paymentStatus string) error {
	return nil
}

func (s *checkoutStore) GetPaymentBySessionID(stripeSessionID string) (*models.Payment, error) {
	return nil, database.ErrNotFound
}

func (s *checkoutStore) UpdatePaymentStatusBySession(stripeSessionID, status string) error {
	return nil
}

type stubCheckout struct{}

func (stubCheckout) CreateCheckoutSession(params billing.CheckoutParams) (*billing.CheckoutSession, error) {
	return &billing.CheckoutSession{
		SessionID: "cs_test_abc",
		URL:       "https://checkout.stripe.com/c/pay/cs_test_abc",
	}, nil
}

func checkoutRouter(t *testing.T) (*gin.Engine, *checkoutStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	wsID := uuid.New()
	store := &checkoutStore{
		user:      &models.User{ID: uuid.New(), WorkspaceID: wsID},
		workspace: &models.Workspace{ID: wsID},
		project: &models.Project{
			ID:            uuid.New(),
			WorkspaceID:   wsID,
			Name:          "12 Elm Street",
			PaymentStatus: models.PaymentStatusUnpaid,
			AmountCents:   1300,
		},
	}

	svc := billing.NewService(store, stubCheckout{}, zerolog.Nop())
	handler := handlers.NewCheckoutHandler(svc, zerolog.Nop())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, store.user.ID.String())
	})
	router.POST("/api/stripe/create-checkout", handler.CreateCheckout)
	return router, store
}

func TestCreateCheckout_MissingProjectID(t *testing.T) {
	router, _ := checkoutRouter(t)

	req, _ := http.NewRequest("POST", "/api/stripe/create-checkout", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "projectId")
}

func TestCreateCheckout_InvalidProjectID(t *testing.T) {
	router, _ := checkoutRouter(t)

	body := bytes.NewBufferString(`{"projectId":"not-a-uuid"}`)
	req, _ := http.NewRequest("POST", "/api/stripe/create-checkout", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckout_Success(t *testing.T) {
	router, store := checkoutRouter(t)

	payload, _ := json.Marshal(models.CreateCheckoutRequest{ProjectID: store.project.ID.String()})
	req, _ := http.NewRequest("POST", "/api/stripe/create-checkout", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cs_test_abc", resp.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", resp.URL)
}

func TestCreateCheckout_ProjectNotFound(t *testing.T) {
	router, _ := checkoutRouter(t)

	payload, _ := json.Marshal(models.CreateCheckoutRequest{ProjectID: uuid.NewString()})
	req, _ := http.NewRequest("POST", "/api/stripe/create-checkout", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCheckout_AlreadyPaid(t *testing.T) {
	router, store := checkoutRouter(t)
	store.project.PaymentStatus = models.PaymentStatusPaid

	payload, _ := json.Marshal(models.CreateCheckoutRequest{ProjectID: store.project.ID.String()})
	req, _ := http.NewRequest("POST", "/api/stripe/create-checkout", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
