package imagen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"listinglens-backend/internal/provider"
)

const providerName = "imagen"

// Client talks to the Imagen AI editing API. A single Enhance call walks the
// project lifecycle the API requires: create project, upload, edit, wait for
// completion, download the edited file.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pollInterval: 2 * time.Second,
		pollTimeout:  3 * time.Minute,
	}
}

func (c *Client) Name() string {
	return providerName
}

func (c *Client) Enhance(req provider.Request) (*provider.Result, error) {
	projectUUID, err := c.createProject()
	if err != nil {
		return nil, err
	}

	uploadLink, err := c.getUploadLink(projectUUID, req.Filename)
	if err != nil {
		return nil, err
	}

	if err := c.uploadFile(uploadLink, req.ImageData); err != nil {
		return nil, err
	}

	if err := c.edit(projectUUID, req.Options); err != nil {
		return nil, err
	}

	if err := c.waitForEdit(projectUUID); err != nil {
		return nil, err
	}

	data, err := c.downloadEdited(projectUUID, req.Filename)
	if err != nil {
		return nil, err
	}

	return &provider.Result{
		Provider:  providerName,
		ImageData: data,
		MimeType:  "image/jpeg",
	}, nil
}

func (c *Client) createProject() (string, error) {
	url := strings.TrimSuffix(c.baseURL, "/") + "/projects/"

	body, err := c.do("POST", url, []byte("{}"))
	if err != nil {
		return "", err
	}

	var result struct {
		Data struct {
			ProjectUUID string `json:"project_uuid"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.Data.ProjectUUID == "" {
		return "", fmt.Errorf("project_uuid is empty in response, body: %s", string(body))
	}

	return result.Data.ProjectUUID, nil
}

func (c *Client) getUploadLink(projectUUID, filename string) (string, error) {
	requestBody := map[string]interface{}{
		"files_list": []map[string]string{{"file_name": filename}},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/projects/" + projectUUID + "/get_temporary_upload_links"
	body, err := c.do("POST", url, jsonData)
	if err != nil {
		return "", err
	}

	var result struct {
		FilesList []struct {
			FileName   string `json:"file_name"`
			UploadLink string `json:"upload_link"`
		} `json:"files_list"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.FilesList) == 0 {
		return "", fmt.Errorf("no upload link returned for %s", filename)
	}

	return result.FilesList[0].UploadLink, nil
}

func (c *Client) uploadFile(uploadLink string, data []byte) error {
	req, err := http.NewRequest("PUT", uploadLink, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to upload file: status %d, body: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) edit(projectUUID string, opts provider.Options) error {
	editReq := map[string]interface{}{
		"photography_type":       "REAL_ESTATE",
		"hdr_merge":              false,
		"straighten":             true,
		"sky_replacement":        opts.SkyReplacement,
		"window_pull":            opts.WindowPull,
		"perspective_correction": opts.PerspectiveCorrection,
	}
	if opts.AspectRatio != "" {
		editReq["crop"] = true
		editReq["crop_aspect_ratio"] = cropRatio(opts.AspectRatio)
	}

	jsonData, err := json.Marshal(editReq)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/projects/" + projectUUID + "/edit"
	_, err = c.do("POST", url, jsonData)
	return err
}

func (c *Client) waitForEdit(projectUUID string) error {
	url := strings.TrimSuffix(c.baseURL, "/") + "/projects/" + projectUUID + "/edit/status"
	deadline := time.Now().Add(c.pollTimeout)

	for {
		body, err := c.do("GET", url, nil)
		if err != nil {
			return err
		}

		var result struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		switch result.Status {
		case "Completed":
			return nil
		case "Failed":
			return fmt.Errorf("edit failed for project %s", projectUUID)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("edit timed out for project %s after %s", projectUUID, c.pollTimeout)
		}
		time.Sleep(c.pollInterval)
	}
}

func (c *Client) downloadEdited(projectUUID, filename string) ([]byte, error) {
	url := strings.TrimSuffix(c.baseURL, "/") + "/projects/" + projectUUID + "/edit/get_temporary_download_links"
	body, err := c.do("GET", url, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		FilesList []struct {
			FileName     string `json:"file_name"`
			DownloadLink string `json:"download_link"`
		} `json:"files_list"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	downloadLink := ""
	for _, f := range result.FilesList {
		if f.FileName == filename || downloadLink == "" {
			downloadLink = f.DownloadLink
		}
	}
	if downloadLink == "" {
		return nil, fmt.Errorf("no download link returned for %s", filename)
	}

	req, err := http.NewRequest("GET", downloadLink, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// do executes an authenticated API request and returns the response body on
// any 2xx status.
func (c *Client) do(method, url string, jsonBody []byte) ([]byte, error) {
	var reader io.Reader
	if jsonBody != nil {
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func cropRatio(aspectRatio string) string {
	switch aspectRatio {
	case "4:5", "5:4":
		return "4X5"
	case "5:7", "7:5":
		return "5X7"
	default:
		return "2X3"
	}
}
