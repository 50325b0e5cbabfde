// Package extract consumes the external text extractor, an opaque service
// that reads the timestamp and location overlay burned into evidence photos.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ngocvo/rollcall/internal/constants"
)

const defaultExtractorURL = "http://localhost:8100"

// Extraction is the extractor's reading of one photo overlay. Either field
// may be empty when the overlay is unreadable.
type Extraction struct {
	Datetime string `json:"datetime"`
	Location string `json:"location"`
}

// ImageResult pairs a photo path with what the extractor read off it.
type ImageResult struct {
	Image string `json:"image"`
	Extraction
}

// Extractor reads overlay text from an evidence photo.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte) (Extraction, error)
}

// Client talks to the text extractor over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new extractor client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultExtractorURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

// Extract posts the photo to the extractor's /extract endpoint.
func (c *Client) Extract(ctx context.Context, imageData []byte) (Extraction, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return Extraction{}, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Extraction{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", &buf)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return Extraction{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Extraction{}, fmt.Errorf("extractor error (status %d): %s", resp.StatusCode, string(body))
	}

	var extraction Extraction
	if err := json.Unmarshal(body, &extraction); err != nil {
		return Extraction{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return extraction, nil
}
