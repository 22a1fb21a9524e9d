package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Project payment lifecycle. The only writer of PaymentStatusPaid is the
// Stripe webhook path.
const (
	PaymentStatusUnpaid         = "unpaid"
	PaymentStatusSessionCreated = "session_created"
	PaymentStatusPaid           = "paid"
	PaymentStatusFailed         = "failed"
	PaymentStatusExpired        = "expired"
)

const (
	ProjectStatusDraft      = "draft"
	ProjectStatusQueued     = "queued"
	ProjectStatusProcessing = "processing"
	ProjectStatusCompleted  = "completed"
	ProjectStatusFailed     = "failed"
)

type Workspace struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Email       string
	CreatedAt   time.Time
}

// Project is the billable unit of enhancement/video work owned by a workspace.
type Project struct {
	ID            uuid.UUID
	WorkspaceID   uuid.UUID
	Name          string
	Status        string
	PaymentStatus string
	AmountCents   int64
	ErrorMessage  sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MediaAsset is a stored file generated for a project (enhanced photo,
// rendered clip output).
type MediaAsset struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	WorkspaceID uuid.UUID
	Filename    string
	StoragePath string
	StorageURL  string
	FileSize    sql.NullInt64
	MimeType    string
	Provider    sql.NullString
	CreatedAt   time.Time
}
