package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"listinglens-backend/internal/models"
	"listinglens-backend/internal/video"
)

// VideosHandler exposes the video project lifecycle over HTTP. All business
// rules live in the video service; the handler only binds and translates.
type VideosHandler struct {
	svc *video.Service
	log zerolog.Logger
}

func NewVideosHandler(svc *video.Service, log zerolog.Logger) *VideosHandler {
	return &VideosHandler{svc: svc, log: log}
}

// CreateVideo godoc
// @Summary Create a video project
// @Description Creates a video project with its clips and queues generation
// @Tags videos
// @Accept json
// @Produce json
// @Param request body models.CreateVideoRequest true "Video project request"
// @Success 201 {object} models.VideoProjectResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/v1/videos [post]
func (h *VideosHandler) CreateVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	vp, clips, err := h.svc.CreateVideoProject(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, videoProjectResponse(vp, clips, ""))
}

// GetVideo godoc
// @Summary Get a video project
// @Description Returns a video project with its clips in sequence order
// @Tags videos
// @Produce json
// @Param video_id path string true "Video project ID"
// @Success 200 {object} models.VideoProjectResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/videos/{video_id} [get]
func (h *VideosHandler) GetVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	videoProjectID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid video project id"})
		return
	}

	vp, clips, project, err := h.svc.GetVideoProject(userID, videoProjectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, videoProjectResponse(vp, clips, project.PaymentStatus))
}

// ReorderClips godoc
// @Summary Reorder a video project's clips
// @Description Replaces the clip sequence with the supplied ordering
// @Tags videos
// @Accept json
// @Produce json
// @Param video_id path string true "Video project ID"
// @Param request body models.ReorderClipsRequest true "Full clip ordering"
// @Success 200 {object} models.VideoProjectResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/videos/{video_id}/clips/order [put]
func (h *VideosHandler) ReorderClips(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	videoProjectID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid video project id"})
		return
	}

	var req models.ReorderClipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	clipIDs := make([]uuid.UUID, 0, len(req.ClipIDs))
	for _, raw := range req.ClipIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid clip id: " + raw})
			return
		}
		clipIDs = append(clipIDs, id)
	}

	if err := h.svc.ReorderClips(c.Request.Context(), userID, videoProjectID, clipIDs); err != nil {
		respondError(c, h.log, err)
		return
	}

	vp, clips, project, err := h.svc.GetVideoProject(userID, videoProjectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, videoProjectResponse(vp, clips, project.PaymentStatus))
}

// UpdateClip godoc
// @Summary Update a clip
// @Description Applies a partial update to one clip of a video project
// @Tags videos
// @Accept json
// @Produce json
// @Param video_id path string true "Video project ID"
// @Param clip_id path string true "Clip ID"
// @Param request body models.UpdateClipRequest true "Fields to update"
// @Success 200 {object} models.VideoProjectResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/videos/{video_id}/clips/{clip_id} [patch]
func (h *VideosHandler) UpdateClip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	videoProjectID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid video project id"})
		return
	}

	clipID, err := uuid.Parse(c.Param("clip_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid clip id"})
		return
	}

	var req models.UpdateClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	if err := h.svc.UpdateClip(c.Request.Context(), userID, videoProjectID, clipID, req); err != nil {
		respondError(c, h.log, err)
		return
	}

	vp, clips, project, err := h.svc.GetVideoProject(userID, videoProjectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, videoProjectResponse(vp, clips, project.PaymentStatus))
}

// GetVideoStatus godoc
// @Summary Get a video project's status
// @Description Returns the generation and payment status without the clip list
// @Tags videos
// @Produce json
// @Param video_id path string true "Video project ID"
// @Success 200 {object} models.VideoStatusResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/videos/{video_id}/status [get]
func (h *VideosHandler) GetVideoStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	videoProjectID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid video project id"})
		return
	}

	vp, clips, project, err := h.svc.GetVideoProject(userID, videoProjectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	rendered := 0
	for _, clip := range clips {
		if clip.OutputPath.Valid {
			rendered++
		}
	}

	resp := models.VideoStatusResponse{
		ID:            vp.ID.String(),
		Status:        vp.Status,
		PaymentStatus: project.PaymentStatus,
		ClipsTotal:    len(clips),
		ClipsRendered: rendered,
	}
	if vp.ErrorMessage.Valid {
		resp.ErrorMessage = vp.ErrorMessage.String
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteVideo godoc
// @Summary Delete a video project
// @Description Removes a video project, its clips, and stored media files
// @Tags videos
// @Param video_id path string true "Video project ID"
// @Success 204 "No Content"
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/videos/{video_id} [delete]
func (h *VideosHandler) DeleteVideo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	videoProjectID, err := uuid.Parse(c.Param("video_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid video project id"})
		return
	}

	if err := h.svc.DeleteVideoProject(c.Request.Context(), userID, videoProjectID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func videoProjectResponse(vp *models.VideoProject, clips []models.VideoClip, paymentStatus string) models.VideoProjectResponse {
	clipResponses := make([]models.ClipResponse, 0, len(clips))
	for _, clip := range clips {
		cr := models.ClipResponse{
			ID:              clip.ID.String(),
			SourceImagePath: clip.SourceImagePath,
			RoomType:        clip.RoomType,
			AspectRatio:     clip.AspectRatio,
			SequenceOrder:   clip.SequenceOrder,
		}
		if clip.OutputPath.Valid {
			cr.OutputPath = clip.OutputPath.String
		}
		clipResponses = append(clipResponses, cr)
	}

	resp := models.VideoProjectResponse{
		ID:            vp.ID.String(),
		ProjectID:     vp.ProjectID.String(),
		Status:        vp.Status,
		AspectRatio:   vp.AspectRatio,
		DurationTier:  vp.DurationTier,
		CostCents:     vp.CostCents,
		PaymentStatus: paymentStatus,
		Clips:         clipResponses,
		CreatedAt:     vp.CreatedAt,
		UpdatedAt:     vp.UpdatedAt,
	}
	if vp.ErrorMessage.Valid {
		resp.ErrorMessage = vp.ErrorMessage.String
	}
	return resp
}
