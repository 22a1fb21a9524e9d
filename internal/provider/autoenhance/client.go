package autoenhance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"listinglens-backend/internal/provider"
)

const providerName = "autoenhance"

// Client talks to the Autoenhance.ai v3 image API. Enhance registers an
// image, uploads the bytes to the returned S3 link, waits for processing and
// downloads the enhanced result.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
}

type imageCreatedOut struct {
	ImageID   string `json:"image_id"`
	ImageName string `json:"image_name"`
	UploadURL string `json:"s3PutObjectUrl"`
}

type imageOut struct {
	ImageID      string `json:"image_id"`
	Status       string `json:"status"`
	StatusReason string `json:"status_reason"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
	created, err := c.createImage(req.Filename, req.Options)
	if err != nil {
		return nil, err
	}

	if err := c.uploadFile(created.UploadURL, req.ImageData); err != nil {
		return nil, err
	}

	if err := c.waitForImage(created.ImageID); err != nil {
		return nil, err
	}

	data, err := c.downloadEnhanced(created.ImageID)
	if err != nil {
		return nil, err
	}

	return &provider.Result{
		Provider:  providerName,
		ImageData: data,
		MimeType:  "image/jpeg",
	}, nil
}

func (c *Client) createImage(filename string, opts provider.Options) (*imageCreatedOut, error) {
	imageIn := map[string]interface{}{
		"image_name":          filename,
		"content_type":        "image/jpeg",
		"enhance_type":        "property",
		"sky_replacement":     opts.SkyReplacement,
		"vertical_correction": opts.PerspectiveCorrection,
	}
	if opts.WindowPull {
		imageIn["window_pull_type"] = "WINDOWS_WITH_SKIES"
	}

	jsonData, err := json.Marshal(imageIn)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpointURL := c.baseURL + "/images/"
	req, err := http.NewRequest("POST", endpointURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("failed to create image: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result imageCreatedOut
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.ImageID == "" || result.UploadURL == "" {
		return nil, fmt.Errorf("image_id or upload url missing in response, body: %s", string(body))
	}

	return &result, nil
}

func (c *Client) uploadFile(uploadURL string, data []byte) error {
	req, err := http.NewRequest("PUT", uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

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

func (c *Client) waitForImage(imageID string) error {
	deadline := time.Now().Add(c.pollTimeout)

	for {
		img, err := c.getImage(imageID)
		if err != nil {
			return err
		}

		switch img.Status {
		case "completed":
			return nil
		case "failed":
			return fmt.Errorf("image %s failed: %s", imageID, img.StatusReason)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("image %s timed out after %s", imageID, c.pollTimeout)
		}
		time.Sleep(c.pollInterval)
	}
}

func (c *Client) getImage(imageID string) (*imageOut, error) {
	endpointURL := c.baseURL + "/images/" + imageID
	req, err := http.NewRequest("GET", endpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get image: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result imageOut
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return &result, nil
}

func (c *Client) downloadEnhanced(imageID string) ([]byte, error) {
	params := url.Values{}
	params.Add("format", "jpeg")
	params.Add("watermark", "false")
	endpointURL := c.baseURL + "/images/" + imageID + "/enhanced?" + params.Encode()

	req, err := http.NewRequest("GET", endpointURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download enhanced image: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
