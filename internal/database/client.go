package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"listinglens-backend/internal/models"
)

// ErrNotFound is returned when a query matches no rows. Services map it to
// their not-found error kind.
var ErrNotFound = errors.New("record not found")

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) GetUserWithWorkspace(userID uuid.UUID) (*models.User, *models.Workspace, error) {
	var user models.User
	var ws models.Workspace
	err := c.db.QueryRow(`
		SELECT u.id, u.workspace_id, u.email, u.created_at,
		       w.id, w.name, w.created_at
		FROM users u
		JOIN workspaces w ON w.id = u.workspace_id
		WHERE u.id = $1
	`, userID).Scan(
		&user.ID, &user.WorkspaceID, &user.Email, &user.CreatedAt,
		&ws.ID, &ws.Name, &ws.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user with workspace: %w", err)
	}

	return &user, &ws, nil
}

func (c *Client) GetWorkspaceByID(workspaceID uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	err := c.db.QueryRow(`
		SELECT id, name, created_at
		FROM workspaces
		WHERE id = $1
	`, workspaceID).Scan(&ws.ID, &ws.Name, &ws.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return &ws, nil
}

func (c *Client) GetProjectByID(projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := c.db.QueryRow(`
		SELECT id, workspace_id, name, status, payment_status, amount_cents, error_message, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, projectID).Scan(
		&p.ID, &p.WorkspaceID, &p.Name, &p.Status, &p.PaymentStatus,
		&p.AmountCents, &p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

func (c *Client) UpdateProjectStatus(projectID uuid.UUID, status string) error {
	_, err := c.db.Exec(`
		UPDATE projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, projectID)
	return err
}

func (c *Client) UpdateProjectPaymentStatus(projectID uuid.UUID, paymentStatus string) error {
	_, err := c.db.Exec(`
		UPDATE projects
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`, paymentStatus, projectID)
	return err
}

func (c *Client) DeleteProject(projectID uuid.UUID) error {
	_, err := c.db.Exec(`
		DELETE FROM projects
		WHERE id = $1
	`, projectID)
	return err
}

// CreateVideoProject inserts the billable project row, the video project row
// and every clip row in a single transaction. Either all rows exist
// afterwards or none do.
func (c *Client) CreateVideoProject(project *models.Project, vp *models.VideoProject, clips []models.VideoClip) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO projects (id, workspace_id, name, status, payment_status, amount_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, project.ID, project.WorkspaceID, project.Name, project.Status,
		project.PaymentStatus, project.AmountCents,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create project: %w", err)
	}

	err = tx.QueryRow(`
		INSERT INTO video_projects (id, project_id, workspace_id, status, aspect_ratio, duration_tier, cost_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, vp.ID, vp.ProjectID, vp.WorkspaceID, vp.Status, vp.AspectRatio,
		vp.DurationTier, vp.CostCents,
	).Scan(&vp.CreatedAt, &vp.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create video project: %w", err)
	}

	for i := range clips {
		clip := &clips[i]
		err = tx.QueryRow(`
			INSERT INTO video_clips (id, video_project_id, source_image_path, room_type, aspect_ratio, sequence_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at
		`, clip.ID, clip.VideoProjectID, clip.SourceImagePath, clip.RoomType,
			clip.AspectRatio, clip.SequenceOrder,
		).Scan(&clip.CreatedAt, &clip.UpdatedAt)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create clip %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit video project: %w", err)
	}

	return nil
}

func (c *Client) GetVideoProjectByID(videoProjectID uuid.UUID) (*models.VideoProject, error) {
	var vp models.VideoProject
	err := c.db.QueryRow(`
		SELECT id, project_id, workspace_id, status, aspect_ratio, duration_tier, cost_cents, error_message, created_at, updated_at
		FROM video_projects
		WHERE id = $1
	`, videoProjectID).Scan(
		&vp.ID, &vp.ProjectID, &vp.WorkspaceID, &vp.Status, &vp.AspectRatio,
		&vp.DurationTier, &vp.CostCents, &vp.ErrorMessage, &vp.CreatedAt, &vp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video project: %w", err)
	}

	return &vp, nil
}

func (c *Client) ListVideoClips(videoProjectID uuid.UUID) ([]models.VideoClip, error) {
	rows, err := c.db.Query(`
		SELECT id, video_project_id, source_image_path, room_type, aspect_ratio, sequence_order, output_path, created_at, updated_at
		FROM video_clips
		WHERE video_project_id = $1
		ORDER BY sequence_order ASC
	`, videoProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer rows.Close()

	var clips []models.VideoClip
	for rows.Next() {
		var clip models.VideoClip
		err := rows.Scan(
			&clip.ID, &clip.VideoProjectID, &clip.SourceImagePath, &clip.RoomType,
			&clip.AspectRatio, &clip.SequenceOrder, &clip.OutputPath,
			&clip.CreatedAt, &clip.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clip: %w", err)
		}
		clips = append(clips, clip)
	}

	return clips, nil
}

func (c *Client) UpdateVideoClip(clipID uuid.UUID, sourceImagePath, roomType, aspectRatio sql.NullString) error {
	_, err := c.db.Exec(`
		UPDATE video_clips
		SET source_image_path = COALESCE($1, source_image_path),
		    room_type = COALESCE($2, room_type),
		    aspect_ratio = COALESCE($3, aspect_ratio),
		    updated_at = NOW()
		WHERE id = $4
	`, sourceImagePath, roomType, aspectRatio, clipID)
	return err
}

func (c *Client) UpdateVideoClipOutput(clipID uuid.UUID, outputPath string) error {
	_, err := c.db.Exec(`
		UPDATE video_clips
		SET output_path = $1, updated_at = NOW()
		WHERE id = $2
	`, outputPath, clipID)
	return err
}

// ReorderVideoClips rewrites sequence_order for the full clip set in one
// transaction. Position in orderedClipIDs becomes the clip's new order.
func (c *Client) ReorderVideoClips(videoProjectID uuid.UUID, orderedClipIDs []uuid.UUID) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, clipID := range orderedClipIDs {
		res, err := tx.Exec(`
			UPDATE video_clips
			SET sequence_order = $1, updated_at = NOW()
			WHERE id = $2 AND video_project_id = $3
		`, i, clipID, videoProjectID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reorder clip %s: %w", clipID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			tx.Rollback()
			return fmt.Errorf("clip %s does not belong to video project %s", clipID, videoProjectID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	return nil
}

func (c *Client) UpdateVideoProjectStatus(videoProjectID uuid.UUID, status string) error {
	_, err := c.db.Exec(`
		UPDATE video_projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, videoProjectID)
	return err
}

func (c *Client) UpdateVideoProjectError(videoProjectID uuid.UUID, errorMsg string) error {
	_, err := c.db.Exec(`
		UPDATE video_projects
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2
	`, errorMsg, videoProjectID)
	return err
}

func (c *Client) CreatePayment(p *models.Payment) error {
	err := c.db.QueryRow(`
		INSERT INTO payments (id, project_id, workspace_id, stripe_session_id, stripe_customer_id, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.ProjectID, p.WorkspaceID, p.StripeSessionID, p.StripeCustomerID,
		p.AmountCents, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (c *Client) GetPaymentBySessionID(stripeSessionID string) (*models.Payment, error) {
	var p models.Payment
	err := c.db.QueryRow(`
		SELECT id, project_id, workspace_id, stripe_session_id, stripe_customer_id, amount_cents, status, created_at, updated_at
		FROM payments
		WHERE stripe_session_id = $1
	`, stripeSessionID).Scan(
		&p.ID, &p.ProjectID, &p.WorkspaceID, &p.StripeSessionID, &p.StripeCustomerID,
		&p.AmountCents, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &p, nil
}

func (c *Client) UpdatePaymentStatusBySession(stripeSessionID, status string) error {
	_, err := c.db.Exec(`
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE stripe_session_id = $2
	`, status, stripeSessionID)
	return err
}

func (c *Client) RecordEnhancementUsage(u *models.EnhancementUsage) error {
	_, err := c.db.Exec(`
		INSERT INTO enhancement_usage (id, workspace_id, provider, duration_ms, outcome, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.WorkspaceID, u.Provider, u.DurationMS, u.Outcome, u.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to record enhancement usage: %w", err)
	}
	return nil
}

func (c *Client) CreateMediaAsset(a *models.MediaAsset) error {
	_, err := c.db.Exec(`
		INSERT INTO media_assets (id, project_id, workspace_id, filename, storage_path, storage_url, file_size, mime_type, provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.ProjectID, a.WorkspaceID, a.Filename, a.StoragePath, a.StorageURL,
		a.FileSize, a.MimeType, a.Provider)
	if err != nil {
		return fmt.Errorf("failed to create media asset: %w", err)
	}
	return nil
}
