package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/database"
	"listinglens-backend/internal/models"
	"listinglens-backend/internal/provider"
	"listinglens-backend/internal/storage"
)

// Store is the slice of the database the worker needs.
type Store interface {
	GetVideoProjectByID(videoProjectID uuid.UUID) (*models.VideoProject, error)
	ListVideoClips(videoProjectID uuid.UUID) ([]models.VideoClip, error)
	UpdateVideoProjectStatus(videoProjectID uuid.UUID, status string) error
	UpdateVideoProjectError(videoProjectID uuid.UUID, errorMsg string) error
	UpdateVideoClipOutput(clipID uuid.UUID, outputPath string) error
	UpdateProjectStatus(projectID uuid.UUID, status string) error
	CreateMediaAsset(a *models.MediaAsset) error
}

type Enhancer interface {
	Enhance(workspaceID uuid.UUID, req provider.Request) (*provider.Result, error)
}

type FileStore interface {
	Download(storagePath string) ([]byte, error)
	Upload(storagePath string, data []byte, contentType string) (string, error)
}

// Worker consumes video generation tasks. Returning a non-nil error (other
// than SkipRetry) makes asynq redeliver the task.
type Worker struct {
	srv      *asynq.Server
	mux      *asynq.ServeMux
	store    Store
	enhancer Enhancer
	files    FileStore
	log      zerolog.Logger
}

func NewWorker(redisOpt asynq.RedisClientOpt, concurrency int, store Store, enhancer Enhancer, files FileStore, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})
	mux := asynq.NewServeMux()

	w := &Worker{
		srv:      srv,
		mux:      mux,
		store:    store,
		enhancer: enhancer,
		files:    files,
		log:      log,
	}
	mux.HandleFunc(TypeGenerateVideo, w.HandleGenerateVideo)
	return w
}

// Start runs the asynq server in the background.
func (w *Worker) Start() {
	go func() {
		if err := w.srv.Run(w.mux); err != nil {
			w.log.Fatal().Err(err).Msg("task worker stopped")
		}
	}()
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

func (w *Worker) HandleGenerateVideo(ctx context.Context, t *asynq.Task) error {
	var payload GenerateVideoPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid task payload: %v: %w", err, asynq.SkipRetry)
	}

	videoProjectID, err := uuid.Parse(payload.VideoProjectID)
	if err != nil {
		return fmt.Errorf("invalid video project id %q: %w", payload.VideoProjectID, asynq.SkipRetry)
	}

	vp, err := w.store.GetVideoProjectByID(videoProjectID)
	if errors.Is(err, database.ErrNotFound) {
		// Project deleted before the task ran; nothing to do.
		return fmt.Errorf("video project %s gone: %w", videoProjectID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	w.log.Info().Str("video_project_id", vp.ID.String()).Msg("processing video generation task")

	if err := w.store.UpdateVideoProjectStatus(vp.ID, models.ProjectStatusProcessing); err != nil {
		return err
	}
	if err := w.store.UpdateProjectStatus(vp.ProjectID, models.ProjectStatusProcessing); err != nil {
		return err
	}

	clips, err := w.store.ListVideoClips(vp.ID)
	if err != nil {
		return err
	}

	for _, clip := range clips {
		if err := w.renderClip(vp, clip); err != nil {
			w.log.Error().Err(err).
				Str("video_project_id", vp.ID.String()).
				Str("clip_id", clip.ID.String()).
				Msg("clip generation failed")
			_ = w.store.UpdateVideoProjectError(vp.ID, err.Error())
			_ = w.store.UpdateProjectStatus(vp.ProjectID, models.ProjectStatusFailed)
			return err
		}
	}

	if err := w.store.UpdateVideoProjectStatus(vp.ID, models.ProjectStatusCompleted); err != nil {
		return err
	}
	if err := w.store.UpdateProjectStatus(vp.ProjectID, models.ProjectStatusCompleted); err != nil {
		return err
	}

	w.log.Info().Str("video_project_id", vp.ID.String()).Int("clips", len(clips)).Msg("video generation completed")
	return nil
}

func (w *Worker) renderClip(vp *models.VideoProject, clip models.VideoClip) error {
	sourceData, err := w.files.Download(clip.SourceImagePath)
	if err != nil {
		return fmt.Errorf("download source for clip %s: %w", clip.ID, err)
	}

	aspectRatio := clip.AspectRatio
	if aspectRatio == "" {
		aspectRatio = vp.AspectRatio
	}

	result, err := w.enhancer.Enhance(vp.WorkspaceID, provider.Request{
		Filename:  fmt.Sprintf("clip_%02d.jpg", clip.SequenceOrder),
		ImageData: sourceData,
		Options: provider.Options{
			SkyReplacement:        clip.RoomType == "exterior",
			PerspectiveCorrection: true,
			AspectRatio:           aspectRatio,
		},
	})
	if err != nil {
		return fmt.Errorf("enhance clip %s: %w", clip.ID, err)
	}

	filename := fmt.Sprintf("clip_%02d_%s.jpg", clip.SequenceOrder, clip.ID.String())
	outputPath := storage.ObjectPath(vp.WorkspaceID, vp.ProjectID, filename)

	storageURL, err := w.files.Upload(outputPath, result.ImageData, result.MimeType)
	if err != nil {
		return fmt.Errorf("upload output for clip %s: %w", clip.ID, err)
	}

	if err := w.store.UpdateVideoClipOutput(clip.ID, outputPath); err != nil {
		return fmt.Errorf("record output for clip %s: %w", clip.ID, err)
	}

	asset := &models.MediaAsset{
		ID:          uuid.New(),
		ProjectID:   vp.ProjectID,
		WorkspaceID: vp.WorkspaceID,
		Filename:    filename,
		StoragePath: outputPath,
		StorageURL:  storageURL,
		FileSize:    sql.NullInt64{Int64: int64(len(result.ImageData)), Valid: true},
		MimeType:    result.MimeType,
		Provider:    sql.NullString{String: result.Provider, Valid: true},
	}
	if err := w.store.CreateMediaAsset(asset); err != nil {
		return fmt.Errorf("record media asset for clip %s: %w", clip.ID, err)
	}

	return nil
}
