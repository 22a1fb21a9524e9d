package billing

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/apperrors"
	"listinglens-backend/internal/database"
	"listinglens-backend/internal/models"
)

type Store interface {
	GetUserWithWorkspace(userID uuid.UUID) (*models.User, *models.Workspace, error)
	GetProjectByID(projectID uuid.UUID) (*models.Project, error)
	GetWorkspaceByID(workspaceID uuid.UUID) (*models.Workspace, error)
	CreatePayment(p *models.Payment) error
	UpdateProjectPaymentStatus(projectID uuid.UUID, paymentStatus string) error
	GetPaymentBySessionID(stripeSessionID string) (*models.Payment, error)
	UpdatePaymentStatusBySession(stripeSessionID, status string) error
}

// Service builds checkout sessions and applies processor webhook events.
// The builder never marks a project paid; only the webhook path does.
type Service struct {
	store    Store
	checkout CheckoutClient
	log      zerolog.Logger
}

func NewService(store Store, checkout CheckoutClient, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		checkout: checkout,
		log:      log,
	}
}

// CreateCheckoutSession validates project and workspace state, then asks the
// processor for a session priced from the server-stored amount. A project
// already marked paid is rejected before the processor is contacted.
func (s *Service) CreateCheckoutSession(userID, projectID uuid.UUID) (*CheckoutSession, error) {
	_, ws, err := s.store.GetUserWithWorkspace(userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.Authorization("user has no workspace")
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to resolve workspace", err)
	}

	project, err := s.store.GetProjectByID(projectID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.NotFound("project %s not found", projectID)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to load project", err)
	}

	if _, err := s.store.GetWorkspaceByID(project.WorkspaceID); errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.NotFound("workspace for project %s not found", projectID)
	} else if err != nil {
		return nil, apperrors.Persistence("failed to load workspace", err)
	}

	if project.WorkspaceID != ws.ID {
		return nil, apperrors.Authorization("project belongs to another workspace")
	}

	if project.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.Conflict("project %s is already paid", projectID)
	}

	if project.AmountCents <= 0 {
		return nil, apperrors.Validation("project %s has no billable amount", projectID)
	}

	sess, err := s.checkout.CreateCheckoutSession(CheckoutParams{
		ProjectID:   project.ID,
		AmountCents: project.AmountCents,
		ProductName: fmt.Sprintf("Listing media: %s", project.Name),
	})
	if err != nil {
		return nil, apperrors.External("stripe", "failed to create checkout session", err)
	}

	payment := &models.Payment{
		ID:              uuid.New(),
		ProjectID:       project.ID,
		WorkspaceID:     project.WorkspaceID,
		StripeSessionID: sess.SessionID,
		AmountCents:     project.AmountCents,
		Status:          models.PaymentPending,
	}
	if err := s.store.CreatePayment(payment); err != nil {
		return nil, apperrors.Persistence("failed to record payment", err)
	}

	if err := s.store.UpdateProjectPaymentStatus(project.ID, models.PaymentStatusSessionCreated); err != nil {
		return nil, apperrors.Persistence("failed to update payment status", err)
	}

	return sess, nil
}

// ApplySessionEvent moves payment and project status for a processor event.
// Unknown sessions are ignored; Stripe retries webhooks and sessions created
// by other environments can arrive here.
func (s *Service) ApplySessionEvent(eventType, stripeSessionID string) error {
	var paymentStatus, projectStatus string
	switch eventType {
	case "checkout.session.completed":
		paymentStatus = models.PaymentSucceeded
		projectStatus = models.PaymentStatusPaid
	case "checkout.session.expired":
		paymentStatus = models.PaymentFailed
		projectStatus = models.PaymentStatusExpired
	case "checkout.session.async_payment_failed":
		paymentStatus = models.PaymentFailed
		projectStatus = models.PaymentStatusFailed
	default:
		return nil
	}

	payment, err := s.store.GetPaymentBySessionID(stripeSessionID)
	if errors.Is(err, database.ErrNotFound) {
		s.log.Warn().Str("session_id", stripeSessionID).Str("event", eventType).Msg("webhook for unknown checkout session")
		return nil
	}
	if err != nil {
		return apperrors.Persistence("failed to load payment", err)
	}

	if err := s.store.UpdatePaymentStatusBySession(stripeSessionID, paymentStatus); err != nil {
		return apperrors.Persistence("failed to update payment", err)
	}
	if err := s.store.UpdateProjectPaymentStatus(payment.ProjectID, projectStatus); err != nil {
		return apperrors.Persistence("failed to update project payment status", err)
	}

	s.log.Info().
		Str("session_id", stripeSessionID).
		Str("project_id", payment.ProjectID.String()).
		Str("payment_status", projectStatus).
		Msg("payment status updated from webhook")
	return nil
}
