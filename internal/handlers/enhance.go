package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/database"
	"listinglens-backend/internal/models"
	"listinglens-backend/internal/provider"
	"listinglens-backend/internal/storage"
)

type enhanceStore interface {
	GetUserWithWorkspace(userID uuid.UUID) (*models.User, *models.Workspace, error)
	GetProjectByID(projectID uuid.UUID) (*models.Project, error)
	CreateMediaAsset(a *models.MediaAsset) error
}

type enhanceFileStore interface {
	Download(storagePath string) ([]byte, error)
	Upload(storagePath string, data []byte, contentType string) (string, error)
}

type enhancer interface {
	Enhance(workspaceID uuid.UUID, req provider.Request) (*provider.Result, error)
}

// EnhanceHandler runs a single photo through the provider gateway and stores
// the result alongside the project's other media.
type EnhanceHandler struct {
	store   enhanceStore
	files   enhanceFileStore
	gateway enhancer
	log     zerolog.Logger
}

func NewEnhanceHandler(store enhanceStore, files enhanceFileStore, gateway enhancer, log zerolog.Logger) *EnhanceHandler {
	return &EnhanceHandler{
		store:   store,
		files:   files,
		gateway: gateway,
		log:     log,
	}
}

// Enhance godoc
// @Summary Enhance a listing photo
// @Description Downloads the source image, runs it through the enhancement providers, and stores the result
// @Tags enhance
// @Accept json
// @Produce json
// @Param request body models.EnhanceRequest true "Enhancement request"
// @Success 200 {object} models.EnhanceResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/enhance [post]
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	_, workspace, err := h.store.GetUserWithWorkspace(userID)
	if err != nil {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "user has no workspace"})
		return
	}

	project, err := h.store.GetProjectByID(projectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load project"})
		return
	}

	if project.WorkspaceID != workspace.ID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "project does not belong to your workspace"})
		return
	}

	imageData, err := h.files.Download(req.ImagePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read source image", Message: err.Error()})
		return
	}

	result, err := h.gateway.Enhance(workspace.ID, provider.Request{
		Filename:  path.Base(req.ImagePath),
		ImageData: imageData,
		Options: provider.Options{
			Instructions:          req.Instructions,
			SkyReplacement:        req.SkyReplacement,
			WindowPull:            req.WindowPull,
			PerspectiveCorrection: req.PerspectiveCorrection,
			AspectRatio:           req.AspectRatio,
		},
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("enhanced_%s", path.Base(req.ImagePath))
	storagePath := storage.ObjectPath(workspace.ID, project.ID, filename)

	storageURL, err := h.files.Upload(storagePath, result.ImageData, result.MimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to store enhanced image"})
		return
	}

	asset := &models.MediaAsset{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		WorkspaceID: workspace.ID,
		Filename:    filename,
		StoragePath: storagePath,
		StorageURL:  storageURL,
		FileSize:    sql.NullInt64{Int64: int64(len(result.ImageData)), Valid: true},
		MimeType:    result.MimeType,
		Provider:    sql.NullString{String: result.Provider, Valid: true},
	}
	if err := h.store.CreateMediaAsset(asset); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to record media asset"})
		return
	}

	c.JSON(http.StatusOK, models.EnhanceResponse{
		ProjectID:   project.ID.String(),
		Provider:    result.Provider,
		StoragePath: storagePath,
		StorageURL:  storageURL,
		FileSize:    int64(len(result.ImageData)),
	})
}
