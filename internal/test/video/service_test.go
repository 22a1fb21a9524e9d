package video_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listinglens-backend/internal/apperrors"
	"listinglens-backend/internal/database"
	"listinglens-backend/internal/models"
	"listinglens-backend/internal/video"
)

type fakeStore struct {
	user      *models.User
	workspace *models.Workspace

	projects      map[uuid.UUID]*models.Project
	videoProjects map[uuid.UUID]*models.VideoProject
	clips         map[uuid.UUID][]models.VideoClip

	createCalls    int
	reorderedIDs   []uuid.UUID
	deletedProject uuid.UUID
	updatedClipID  uuid.UUID
}

func newFakeStore() *fakeStore {
	wsID := uuid.New()
	userID := uuid.New()
	return &fakeStore{
		user:          &models.User{ID: userID, WorkspaceID: wsID},
		workspace:     &models.Workspace{ID: wsID, Name: "Acme Realty"},
		projects:      map[uuid.UUID]*models.Project{},
		videoProjects: map[uuid.UUID]*models.VideoProject{},
		clips:         map[uuid.UUID][]models.VideoClip{},
	}
}

func (f *fakeStore) GetUserWithWorkspace(userID uuid.UUID) (*models.User, *models.Workspace, error) {
	if userID != f.user.ID {
		return nil, nil, database.ErrNotFound
	}
	return f.user, f.workspace, nil
}

func (f *fakeStore) GetProjectByID(projectID uuid.UUID) (*models.Project, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) CreateVideoProject(project *models.Project, vp *models.VideoProject, clips []models.VideoClip) error {
	f.createCalls++
	f.projects[project.ID] = project
	f.videoProjects[vp.ID] = vp
	f.clips[vp.ID] = clips
	return nil
}

func (f *fakeStore) GetVideoProjectByID(videoProjectID uuid.UUID) (*models.VideoProject, error) {
	vp, ok := f.videoProjects[videoProjectID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return vp, nil
}

func (f *fakeStore) ListVideoClips(videoProjectID uuid.UUID) ([]models.VideoClip, error) {
	return f.clips[videoProjectID], nil
}

func (f *fakeStore) UpdateVideoClip(clipID uuid.UUID, sourceImagePath, roomType, aspectRatio sql.NullString) error {
	f.updatedClipID = clipID
	return nil
}

func (f *fakeStore) ReorderVideoClips(videoProjectID uuid.UUID, orderedClipIDs []uuid.UUID) error {
	f.reorderedIDs = orderedClipIDs
	clips := f.clips[videoProjectID]
	byID := make(map[uuid.UUID]models.VideoClip, len(clips))
	for _, c := range clips {
		byID[c.ID] = c
	}
	reordered := make([]models.VideoClip, len(orderedClipIDs))
	for i, id := range orderedClipIDs {
		clip := byID[id]
		clip.SequenceOrder = i
		reordered[i] = clip
	}
	f.clips[videoProjectID] = reordered
	return nil
}

func (f *fakeStore) DeleteProject(projectID uuid.UUID) error {
	f.deletedProject = projectID
	delete(f.projects, projectID)
	return nil
}

type fakeFileStore struct {
	deleted  []string
	failPath string
}

func (f *fakeFileStore) DeleteFile(storagePath string) error {
	if storagePath == f.failPath {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, storagePath)
	return nil
}

type fakeEnqueuer struct {
	enqueued       []uuid.UUID
	err            error
	persistedFirst bool
	store          *fakeStore
}

func (f *fakeEnqueuer) EnqueueGenerateVideo(ctx context.Context, videoProjectID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if f.store != nil {
		_, ok := f.store.videoProjects[videoProjectID]
		f.persistedFirst = ok
	}
	f.enqueued = append(f.enqueued, videoProjectID)
	return nil
}

func newService(store *fakeStore, files *fakeFileStore, enqueuer *fakeEnqueuer) *video.Service {
	return video.NewService(store, files, enqueuer, zerolog.Nop())
}

func createRequest() models.CreateVideoRequest {
	return models.CreateVideoRequest{
		Name: "12 Elm Street",
		Clips: []models.ClipInput{
			{SourceImagePath: "uploads/front.jpg", RoomType: "exterior"},
			{SourceImagePath: "uploads/living.jpg", RoomType: "living_room"},
			{SourceImagePath: "uploads/kitchen.jpg", RoomType: "kitchen"},
		},
		AspectRatio:  "16:9",
		DurationTier: "standard",
	}
}

func TestCreateVideoProject_PersistsThenEnqueuesOnce(t *testing.T) {
	store := newFakeStore()
	enqueuer := &fakeEnqueuer{store: store}
	svc := newService(store, &fakeFileStore{}, enqueuer)

	vp, clips, err := svc.CreateVideoProject(context.Background(), store.user.ID, createRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, store.createCalls)
	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, vp.ID, enqueuer.enqueued[0])
	assert.True(t, enqueuer.persistedFirst, "rows must be committed before the task is enqueued")

	require.Len(t, clips, 3)
	for i, clip := range clips {
		assert.Equal(t, i, clip.SequenceOrder)
		assert.Equal(t, vp.ID, clip.VideoProjectID)
	}

	// 1 exterior (5.00) + 2 interiors (4.00 each) at the standard tier.
	assert.Equal(t, int64(1300), vp.CostCents)
	project := store.projects[vp.ProjectID]
	require.NotNil(t, project)
	assert.Equal(t, vp.CostCents, project.AmountCents)
	assert.Equal(t, models.PaymentStatusUnpaid, project.PaymentStatus)
	assert.Equal(t, store.workspace.ID, vp.WorkspaceID)
}

func TestCreateVideoProject_EnqueueFailureAfterCommit(t *testing.T) {
	store := newFakeStore()
	enqueuer := &fakeEnqueuer{err: errors.New("redis down")}
	svc := newService(store, &fakeFileStore{}, enqueuer)

	_, _, err := svc.CreateVideoProject(context.Background(), store.user.ID, createRequest())
	require.Error(t, err)

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindExternalService, ae.Kind)
	// The rows survive the enqueue failure.
	assert.Equal(t, 1, store.createCalls)
	assert.Len(t, store.videoProjects, 1)
}

func TestCreateVideoProject_RejectsEmptyClips(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})

	req := createRequest()
	req.Clips = nil
	_, _, err := svc.CreateVideoProject(context.Background(), store.user.ID, req)

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
	assert.Equal(t, 0, store.createCalls)
}

func TestCreateVideoProject_RejectsInvalidRoomType(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})

	req := createRequest()
	req.Clips[1].RoomType = "garage"
	_, _, err := svc.CreateVideoProject(context.Background(), store.user.ID, req)

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
}

func TestCreateVideoProject_UnknownUser(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})

	_, _, err := svc.CreateVideoProject(context.Background(), uuid.New(), createRequest())

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindAuthorization, ae.Kind)
}

func seedVideoProject(t *testing.T, store *fakeStore, svc *video.Service) (*models.VideoProject, []models.VideoClip) {
	t.Helper()
	vp, clips, err := svc.CreateVideoProject(context.Background(), store.user.ID, createRequest())
	require.NoError(t, err)
	return vp, clips
}

func TestReorderClips_RewritesContiguousOrder(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	reversed := []uuid.UUID{clips[2].ID, clips[1].ID, clips[0].ID}
	require.NoError(t, svc.ReorderClips(context.Background(), store.user.ID, vp.ID, reversed))

	assert.Equal(t, reversed, store.reorderedIDs)
	stored := store.clips[vp.ID]
	require.Len(t, stored, 3)
	for i, clip := range stored {
		assert.Equal(t, i, clip.SequenceOrder, "order must be contiguous and zero-based")
		assert.Equal(t, reversed[i], clip.ID)
	}
}

func TestReorderClips_RejectsWrongCount(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	err := svc.ReorderClips(context.Background(), store.user.ID, vp.ID, []uuid.UUID{clips[0].ID})

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
	assert.Nil(t, store.reorderedIDs)
}

func TestReorderClips_RejectsForeignClip(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	err := svc.ReorderClips(context.Background(), store.user.ID, vp.ID, []uuid.UUID{clips[0].ID, clips[1].ID, uuid.New()})

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
}

func TestReorderClips_RejectsDuplicates(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	err := svc.ReorderClips(context.Background(), store.user.ID, vp.ID, []uuid.UUID{clips[0].ID, clips[0].ID, clips[1].ID})

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
}

func TestReorderClips_OtherWorkspace(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	// Same video project, but owned by a different workspace.
	vp.WorkspaceID = uuid.New()

	err := svc.ReorderClips(context.Background(), store.user.ID, vp.ID, []uuid.UUID{clips[0].ID, clips[1].ID, clips[2].ID})

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindAuthorization, ae.Kind)
}

func TestUpdateClip_UnknownClip(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, _ := seedVideoProject(t, store, svc)

	err := svc.UpdateClip(context.Background(), store.user.ID, vp.ID, uuid.New(), models.UpdateClipRequest{})

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindNotFound, ae.Kind)
}

func TestUpdateClip_InvalidRoomType(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	bad := "garage"
	err := svc.UpdateClip(context.Background(), store.user.ID, vp.ID, clips[0].ID, models.UpdateClipRequest{RoomType: &bad})

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindValidation, ae.Kind)
}

func TestUpdateClip_PartialUpdate(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	room := "bathroom"
	require.NoError(t, svc.UpdateClip(context.Background(), store.user.ID, vp.ID, clips[1].ID, models.UpdateClipRequest{RoomType: &room}))
	assert.Equal(t, clips[1].ID, store.updatedClipID)
}

func TestDeleteVideoProject_ContinuesPastFileErrors(t *testing.T) {
	store := newFakeStore()
	files := &fakeFileStore{failPath: "uploads/front.jpg"}
	svc := newService(store, files, &fakeEnqueuer{})
	vp, _ := seedVideoProject(t, store, svc)

	require.NoError(t, svc.DeleteVideoProject(context.Background(), store.user.ID, vp.ID))

	// The failing file is skipped; the other two are deleted and the rows go.
	assert.ElementsMatch(t, []string{"uploads/living.jpg", "uploads/kitchen.jpg"}, files.deleted)
	assert.Equal(t, vp.ProjectID, store.deletedProject)
}

func TestDeleteVideoProject_RemovesRenderedOutputs(t *testing.T) {
	store := newFakeStore()
	files := &fakeFileStore{}
	svc := newService(store, files, &fakeEnqueuer{})
	vp, clips := seedVideoProject(t, store, svc)

	stored := store.clips[vp.ID]
	stored[0].OutputPath = sql.NullString{String: "renders/clip_00.jpg", Valid: true}
	store.clips[vp.ID] = stored

	require.NoError(t, svc.DeleteVideoProject(context.Background(), store.user.ID, vp.ID))
	assert.Contains(t, files.deleted, "renders/clip_00.jpg")
	assert.Contains(t, files.deleted, clips[0].SourceImagePath)
}

func TestDeleteVideoProject_NotFound(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeFileStore{}, &fakeEnqueuer{})

	err := svc.DeleteVideoProject(context.Background(), store.user.ID, uuid.New())

	var ae *apperrors.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperrors.KindNotFound, ae.Kind)
}
