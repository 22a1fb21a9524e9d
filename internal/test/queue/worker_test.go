package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listinglens-backend/internal/database"
	"listinglens-backend/internal/models"
	"listinglens-backend/internal/provider"
	"listinglens-backend/internal/queue"
)

type fakeStore struct {
	vp    *models.VideoProject
	clips []models.VideoClip

	vpStatus      string
	projectStatus string
	vpError       string
	outputs       map[uuid.UUID]string
	assets        []models.MediaAsset
}

func (f *fakeStore) GetVideoProjectByID(videoProjectID uuid.UUID) (*models.VideoProject, error) {
	if f.vp == nil || videoProjectID != f.vp.ID {
		return nil, database.ErrNotFound
	}
	return f.vp, nil
}

func (f *fakeStore) ListVideoClips(videoProjectID uuid.UUID) ([]models.VideoClip, error) {
	return f.clips, nil
}

func (f *fakeStore) UpdateVideoProjectStatus(videoProjectID uuid.UUID, status string) error {
	f.vpStatus = status
	return nil
}

func (f *fakeStore) UpdateVideoProjectError(videoProjectID uuid.UUID, errorMsg string) error {
	f.vpError = errorMsg
	return nil
}

func (f *fakeStore) UpdateVideoClipOutput(clipID uuid.UUID, outputPath string) error {
	if f.outputs == nil {
		f.outputs = map[uuid.UUID]string{}
	}
	f.outputs[clipID] = outputPath
	return nil
}

func (f *fakeStore) UpdateProjectStatus(projectID uuid.UUID, status string) error {
	f.projectStatus = status
	return nil
}

func (f *fakeStore) CreateMediaAsset(a *models.MediaAsset) error {
	f.assets = append(f.assets, *a)
	return nil
}

type fakeEnhancer struct {
	requests []provider.Request
	err      error
}

func (f *fakeEnhancer) Enhance(workspaceID uuid.UUID, req provider.Request) (*provider.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Result{Provider: "imagen", ImageData: []byte("enhanced"), MimeType: "image/jpeg"}, nil
}

type fakeFiles struct {
	uploads map[string][]byte
}

func (f *fakeFiles) Download(storagePath string) ([]byte, error) {
	return []byte("source"), nil
}

func (f *fakeFiles) Upload(storagePath string, data []byte, contentType string) (string, error) {
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[storagePath] = data
	return "https://cdn.example.com/" + storagePath, nil
}

func seedStore() *fakeStore {
	vpID := uuid.New()
	vp := &models.VideoProject{
		ID:          vpID,
		ProjectID:   uuid.New(),
		WorkspaceID: uuid.New(),
		Status:      models.ProjectStatusQueued,
		AspectRatio: "16:9",
	}
	return &fakeStore{
		vp: vp,
		clips: []models.VideoClip{
			{ID: uuid.New(), VideoProjectID: vpID, SourceImagePath: "uploads/front.jpg", RoomType: "exterior", SequenceOrder: 0},
			{ID: uuid.New(), VideoProjectID: vpID, SourceImagePath: "uploads/living.jpg", RoomType: "living_room", SequenceOrder: 1},
		},
	}
}

func newWorker(store *fakeStore, enhancer *fakeEnhancer, files *fakeFiles) *queue.Worker {
	return queue.NewWorker(asynq.RedisClientOpt{Addr: "localhost:6379"}, 1, store, enhancer, files, zerolog.Nop())
}

func generateTask(t *testing.T, videoProjectID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(queue.GenerateVideoPayload{VideoProjectID: videoProjectID})
	require.NoError(t, err)
	return asynq.NewTask(queue.TypeGenerateVideo, payload)
}

func TestHandleGenerateVideo_Success(t *testing.T) {
	store := seedStore()
	enhancer := &fakeEnhancer{}
	files := &fakeFiles{}
	w := newWorker(store, enhancer, files)

	err := w.HandleGenerateVideo(context.Background(), generateTask(t, store.vp.ID.String()))
	require.NoError(t, err)

	assert.Equal(t, models.ProjectStatusCompleted, store.vpStatus)
	assert.Equal(t, models.ProjectStatusCompleted, store.projectStatus)

	require.Len(t, enhancer.requests, 2)
	assert.True(t, enhancer.requests[0].Options.SkyReplacement, "exterior clips get sky replacement")
	assert.False(t, enhancer.requests[1].Options.SkyReplacement)
	assert.Equal(t, "16:9", enhancer.requests[1].Options.AspectRatio)

	assert.Len(t, store.outputs, 2)
	require.Len(t, store.assets, 2)
	for _, asset := range store.assets {
		assert.Equal(t, store.vp.WorkspaceID, asset.WorkspaceID)
		assert.Equal(t, "imagen", asset.Provider.String)
	}
	assert.Len(t, files.uploads, 2)
}

func TestHandleGenerateVideo_EnhancementFailure(t *testing.T) {
	store := seedStore()
	enhancer := &fakeEnhancer{err: errors.New("all enhancement providers failed")}
	w := newWorker(store, enhancer, &fakeFiles{})

	err := w.HandleGenerateVideo(context.Background(), generateTask(t, store.vp.ID.String()))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "transient failures must be retried")

	assert.Equal(t, models.ProjectStatusFailed, store.projectStatus)
	assert.NotEmpty(t, store.vpError)
	assert.Empty(t, store.assets)
}

func TestHandleGenerateVideo_ProjectGone(t *testing.T) {
	store := &fakeStore{}
	w := newWorker(store, &fakeEnhancer{}, &fakeFiles{})

	err := w.HandleGenerateVideo(context.Background(), generateTask(t, uuid.NewString()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "deleted projects must not be retried")
}

func TestHandleGenerateVideo_BadPayload(t *testing.T) {
	w := newWorker(&fakeStore{}, &fakeEnhancer{}, &fakeFiles{})

	err := w.HandleGenerateVideo(context.Background(), asynq.NewTask(queue.TypeGenerateVideo, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = w.HandleGenerateVideo(context.Background(), generateTask(t, "not-a-uuid"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
