package video

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/apperrors"
	"listinglens-backend/internal/database"
	"listinglens-backend/internal/models"
	"listinglens-backend/internal/queue"
)

// Store is the slice of the database the orchestrator needs. The concrete
// implementation is *database.Client; tests substitute fakes.
type Store interface {
	GetUserWithWorkspace(userID uuid.UUID) (*models.User, *models.Workspace, error)
	GetProjectByID(projectID uuid.UUID) (*models.Project, error)
	CreateVideoProject(project *models.Project, vp *models.VideoProject, clips []models.VideoClip) error
	GetVideoProjectByID(videoProjectID uuid.UUID) (*models.VideoProject, error)
	ListVideoClips(videoProjectID uuid.UUID) ([]models.VideoClip, error)
	UpdateVideoClip(clipID uuid.UUID, sourceImagePath, roomType, aspectRatio sql.NullString) error
	ReorderVideoClips(videoProjectID uuid.UUID, orderedClipIDs []uuid.UUID) error
	DeleteProject(projectID uuid.UUID) error
}

// FileStore deletes stored media when a project goes away.
type FileStore interface {
	DeleteFile(storagePath string) error
}

// Service orchestrates video project creation and mutation. Generation
// itself runs in the background worker; the service only persists state and
// enqueues.
type Service struct {
	store    Store
	files    FileStore
	enqueuer queue.Enqueuer
	log      zerolog.Logger
}

func NewService(store Store, files FileStore, enqueuer queue.Enqueuer, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		files:    files,
		enqueuer: enqueuer,
		log:      log,
	}
}

// CreateVideoProject validates the request, persists the project and its
// clips atomically, then enqueues exactly one generation task. The rows are
// committed before the enqueue so the worker never sees a partial project.
func (s *Service) CreateVideoProject(ctx context.Context, userID uuid.UUID, req models.CreateVideoRequest) (*models.VideoProject, []models.VideoClip, error) {
	_, ws, err := s.store.GetUserWithWorkspace(userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, apperrors.Authorization("user has no workspace")
	}
	if err != nil {
		return nil, nil, apperrors.Persistence("failed to resolve workspace", err)
	}

	if len(req.Clips) == 0 {
		return nil, nil, apperrors.Validation("at least one clip is required")
	}

	aspect := AspectRatio(req.AspectRatio)
	if aspect == "" {
		aspect = AspectLandscape
	}
	if !ValidAspectRatio(aspect) {
		return nil, nil, apperrors.Validation("invalid aspect ratio %q", req.AspectRatio)
	}

	tier := DurationTier(req.DurationTier)
	if tier == "" {
		tier = TierStandard
	}
	if !ValidDurationTier(tier) {
		return nil, nil, apperrors.Validation("invalid duration tier %q", req.DurationTier)
	}

	var totalCost float64
	for i, clip := range req.Clips {
		room := RoomType(clip.RoomType)
		if !ValidRoomType(room) {
			return nil, nil, apperrors.Validation("invalid room type %q for clip %d", clip.RoomType, i)
		}
		clipAspect := aspect
		if clip.AspectRatio != "" {
			clipAspect = AspectRatio(clip.AspectRatio)
			if !ValidAspectRatio(clipAspect) {
				return nil, nil, apperrors.Validation("invalid aspect ratio %q for clip %d", clip.AspectRatio, i)
			}
		}
		totalCost += CalculateVideoCost(1, room, clipAspect, tier)
	}

	project := &models.Project{
		ID:            uuid.New(),
		WorkspaceID:   ws.ID,
		Name:          req.Name,
		Status:        models.ProjectStatusQueued,
		PaymentStatus: models.PaymentStatusUnpaid,
		AmountCents:   CostToCents(totalCost),
	}

	vp := &models.VideoProject{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		WorkspaceID:  ws.ID,
		Status:       models.ProjectStatusQueued,
		AspectRatio:  string(aspect),
		DurationTier: string(tier),
		CostCents:    project.AmountCents,
	}

	clips := make([]models.VideoClip, len(req.Clips))
	for i, in := range req.Clips {
		clips[i] = models.VideoClip{
			ID:              uuid.New(),
			VideoProjectID:  vp.ID,
			SourceImagePath: in.SourceImagePath,
			RoomType:        in.RoomType,
			AspectRatio:     in.AspectRatio,
			SequenceOrder:   i,
		}
	}

	if err := s.store.CreateVideoProject(project, vp, clips); err != nil {
		return nil, nil, apperrors.Persistence("failed to create video project", err)
	}

	if err := s.enqueuer.EnqueueGenerateVideo(ctx, vp.ID); err != nil {
		// Rows are committed; the task can be re-enqueued later.
		return nil, nil, apperrors.External("task-queue", "failed to enqueue video generation", err)
	}

	return vp, clips, nil
}

// GetVideoProject returns the project, its clips and the billing project.
func (s *Service) GetVideoProject(userID, videoProjectID uuid.UUID) (*models.VideoProject, []models.VideoClip, *models.Project, error) {
	vp, err := s.resolveOwned(userID, videoProjectID)
	if err != nil {
		return nil, nil, nil, err
	}

	clips, err := s.store.ListVideoClips(vp.ID)
	if err != nil {
		return nil, nil, nil, apperrors.Persistence("failed to list clips", err)
	}

	project, err := s.store.GetProjectByID(vp.ProjectID)
	if err != nil {
		return nil, nil, nil, apperrors.Persistence("failed to load project", err)
	}

	return vp, clips, project, nil
}

// ReorderClips rewrites sequence order for the full clip set. The given IDs
// must be exactly the project's clips; the result is always a contiguous
// zero-based ordering with no gaps or duplicates.
func (s *Service) ReorderClips(ctx context.Context, userID, videoProjectID uuid.UUID, orderedClipIDs []uuid.UUID) error {
	vp, err := s.resolveOwned(userID, videoProjectID)
	if err != nil {
		return err
	}

	clips, err := s.store.ListVideoClips(vp.ID)
	if err != nil {
		return apperrors.Persistence("failed to list clips", err)
	}

	if len(orderedClipIDs) != len(clips) {
		return apperrors.Validation("expected %d clip ids, got %d", len(clips), len(orderedClipIDs))
	}

	existing := make(map[uuid.UUID]bool, len(clips))
	for _, clip := range clips {
		existing[clip.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(orderedClipIDs))
	for _, id := range orderedClipIDs {
		if !existing[id] {
			return apperrors.Validation("clip %s does not belong to this video project", id)
		}
		if seen[id] {
			return apperrors.Validation("clip %s appears more than once", id)
		}
		seen[id] = true
	}

	if err := s.store.ReorderVideoClips(vp.ID, orderedClipIDs); err != nil {
		return apperrors.Persistence("failed to reorder clips", err)
	}

	return nil
}

// UpdateClip applies a partial update to one clip.
func (s *Service) UpdateClip(ctx context.Context, userID, videoProjectID, clipID uuid.UUID, req models.UpdateClipRequest) error {
	vp, err := s.resolveOwned(userID, videoProjectID)
	if err != nil {
		return err
	}

	clips, err := s.store.ListVideoClips(vp.ID)
	if err != nil {
		return apperrors.Persistence("failed to list clips", err)
	}
	found := false
	for _, clip := range clips {
		if clip.ID == clipID {
			found = true
			break
		}
	}
	if !found {
		return apperrors.NotFound("clip %s not found", clipID)
	}

	if req.RoomType != nil && !ValidRoomType(RoomType(*req.RoomType)) {
		return apperrors.Validation("invalid room type %q", *req.RoomType)
	}
	if req.AspectRatio != nil && *req.AspectRatio != "" && !ValidAspectRatio(AspectRatio(*req.AspectRatio)) {
		return apperrors.Validation("invalid aspect ratio %q", *req.AspectRatio)
	}

	if err := s.store.UpdateVideoClip(clipID, nullable(req.SourceImagePath), nullable(req.RoomType), nullable(req.AspectRatio)); err != nil {
		return apperrors.Persistence("failed to update clip", err)
	}

	return nil
}

// DeleteVideoProject removes stored media then deletes the rows. A file
// deletion failure is logged at warn level and never blocks the row
// deletion; remaining files are still attempted.
func (s *Service) DeleteVideoProject(ctx context.Context, userID, videoProjectID uuid.UUID) error {
	vp, err := s.resolveOwned(userID, videoProjectID)
	if err != nil {
		return err
	}

	clips, err := s.store.ListVideoClips(vp.ID)
	if err != nil {
		return apperrors.Persistence("failed to list clips", err)
	}

	for _, clip := range clips {
		paths := []string{clip.SourceImagePath}
		if clip.OutputPath.Valid {
			paths = append(paths, clip.OutputPath.String)
		}
		for _, path := range paths {
			if path == "" {
				continue
			}
			if err := s.files.DeleteFile(path); err != nil {
				s.log.Warn().Err(err).
					Str("video_project_id", vp.ID.String()).
					Str("storage_path", path).
					Msg("failed to delete stored file; continuing")
			}
		}
	}

	if err := s.store.DeleteProject(vp.ProjectID); err != nil {
		return apperrors.Persistence("failed to delete video project", err)
	}

	return nil
}

// resolveOwned loads a video project and verifies the caller's workspace
// owns it. Every mutation re-derives ownership from the database.
func (s *Service) resolveOwned(userID, videoProjectID uuid.UUID) (*models.VideoProject, error) {
	_, ws, err := s.store.GetUserWithWorkspace(userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.Authorization("user has no workspace")
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to resolve workspace", err)
	}

	vp, err := s.store.GetVideoProjectByID(videoProjectID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperrors.NotFound("video project %s not found", videoProjectID)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to load video project", err)
	}

	if vp.WorkspaceID != ws.ID {
		return nil, apperrors.Authorization("video project belongs to another workspace")
	}

	return vp, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
