package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// Payment associates a project and workspace with a Stripe checkout session.
// Status transitions are driven by webhook events only.
type Payment struct {
	ID               uuid.UUID
	ProjectID        uuid.UUID
	WorkspaceID      uuid.UUID
	StripeSessionID  string
	StripeCustomerID sql.NullString
	AmountCents      int64
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EnhancementUsage records which provider served an enhancement attempt.
// Billing and cost attribution read these rows, so they are persisted
// rather than only logged.
type EnhancementUsage struct {
	ID           uuid.UUID
	WorkspaceID  uuid.UUID
	Provider     string
	DurationMS   int64
	Outcome      string
	ErrorMessage sql.NullString
	CreatedAt    time.Time
}
