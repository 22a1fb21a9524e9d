package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// Client wraps Supabase storage with the bucket and path conventions used
// for listing media: workspaces/{workspace_id}/projects/{project_id}/{filename}.
type Client struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewClient(supabaseURL, serviceKey, bucket string) (*Client, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &Client{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// ObjectPath builds the canonical storage path for a project file.
func ObjectPath(workspaceID, projectID uuid.UUID, filename string) string {
	return fmt.Sprintf("workspaces/%s/projects/%s/%s", workspaceID.String(), projectID.String(), filename)
}

func (c *Client) Upload(storagePath string, data []byte, contentType string) (string, error) {
	upsert := true
	_, err := c.client.UploadFile(c.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return c.GetPublicURL(storagePath), nil
}

func (c *Client) Download(storagePath string) ([]byte, error) {
	data, err := c.client.DownloadFile(c.bucket, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return data, nil
}

func (c *Client) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, storagePath)
}

func (c *Client) DeleteFile(storagePath string) error {
	_, err := c.client.RemoveFile(c.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ListProjectFiles returns the storage paths under a project's prefix.
func (c *Client) ListProjectFiles(workspaceID, projectID uuid.UUID) ([]string, error) {
	prefix := fmt.Sprintf("workspaces/%s/projects/%s/", workspaceID.String(), projectID.String())

	files, err := c.client.ListFiles(c.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = file.Name
	}

	return paths, nil
}
