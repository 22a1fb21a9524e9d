package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// VideoProject owns an ordered set of clips. It is 1:1 with a billable
// Project row; both are created in the same transaction.
type VideoProject struct {
	ID           uuid.UUID
	ProjectID    uuid.UUID
	WorkspaceID  uuid.UUID
	Status       string
	AspectRatio  string
	DurationTier string
	CostCents    int64
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VideoClip is one ordered segment of a video project. SequenceOrder is
// contiguous and zero-based within a project.
type VideoClip struct {
	ID              uuid.UUID
	VideoProjectID  uuid.UUID
	SourceImagePath string
	RoomType        string
	AspectRatio     string
	SequenceOrder   int
	OutputPath      sql.NullString
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
