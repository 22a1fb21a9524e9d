package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type EnhanceResponse struct {
	ProjectID   string `json:"project_id"`
	Provider    string `json:"provider"`
	StoragePath string `json:"storage_path"`
	StorageURL  string `json:"storage_url"`
	FileSize    int64  `json:"file_size"`
}

type ClipResponse struct {
	ID              string `json:"id"`
	SourceImagePath string `json:"source_image_path"`
	RoomType        string `json:"room_type"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	SequenceOrder   int    `json:"sequence_order"`
	OutputPath      string `json:"output_path,omitempty"`
}

type VideoProjectResponse struct {
	ID            string         `json:"video_project_id"`
	ProjectID     string         `json:"project_id"`
	Status        string         `json:"status"`
	AspectRatio   string         `json:"aspect_ratio"`
	DurationTier  string         `json:"duration_tier"`
	CostCents     int64          `json:"cost_cents"`
	PaymentStatus string         `json:"payment_status,omitempty"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	Clips         []ClipResponse `json:"clips,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type VideoStatusResponse struct {
	ID            string `json:"video_project_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	ClipsTotal    int    `json:"clips_total"`
	ClipsRendered int    `json:"clips_rendered"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}
