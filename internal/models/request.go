package models

type EnhanceRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	ImagePath string `json:"image_path" binding:"required"`
	// Edit instructions forwarded to the provider.
	Instructions          string `json:"instructions,omitempty"`
	SkyReplacement        bool   `json:"sky_replacement,omitempty"`
	WindowPull            bool   `json:"window_pull,omitempty"`
	PerspectiveCorrection bool   `json:"perspective_correction,omitempty"`
	AspectRatio           string `json:"aspect_ratio,omitempty"`
}

type ClipInput struct {
	SourceImagePath string `json:"source_image_path" binding:"required"`
	RoomType        string `json:"room_type" binding:"required"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
}

type CreateVideoRequest struct {
	Name         string      `json:"name" binding:"required"`
	Clips        []ClipInput `json:"clips" binding:"required"`
	AspectRatio  string      `json:"aspect_ratio,omitempty"`
	DurationTier string      `json:"duration_tier,omitempty"`
}

type ReorderClipsRequest struct {
	ClipIDs []string `json:"clip_ids" binding:"required"`
}

type UpdateClipRequest struct {
	SourceImagePath *string `json:"source_image_path,omitempty"`
	RoomType        *string `json:"room_type,omitempty"`
	AspectRatio     *string `json:"aspect_ratio,omitempty"`
}

type CreateCheckoutRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
}
