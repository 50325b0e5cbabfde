// Package verify corroborates flagged attendance days with photographic
// evidence via an external face-verification oracle.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/ngocvo/rollcall/internal/constants"
)

const (
	defaultOracleURL   = "http://localhost:8000"
	defaultOracleModel = "vgg-face" // model name for reference only
)

// Result is one pairwise verification: distance in [0, 1], lower = more
// similar. Verified reflects the oracle's own threshold, which may differ
// from ours; the matcher applies its own cutoff on Distance.
type Result struct {
	Distance float64 `json:"distance"`
	Verified bool    `json:"verified"`
}

// Oracle compares two photographs and returns a similarity distance. The
// oracle is authoritative but unreliable: callers must tolerate per-call
// failures.
type Oracle interface {
	Verify(ctx context.Context, imgA, imgB []byte) (Result, error)
}

// Client talks to the verification oracle over HTTP.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a new oracle client.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultOracleURL
	}
	if model == "" {
		model = defaultOracleModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: constants.DefaultHTTPTimeout},
	}
}

// Verify posts both images to the oracle's /verify endpoint and decodes the
// distance. Any transport, status or decode problem is returned as an error
// for the caller to count and skip.
func (c *Client) Verify(ctx context.Context, imgA, imgB []byte) (Result, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for i, img := range [][]byte{imgA, imgB} {
		field := fmt.Sprintf("img%d", i+1)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="image.jpg"`, field))
		h.Set("Content-Type", detectMIMEType(img))
		part, err := writer.CreatePart(h)
		if err != nil {
			return Result{}, fmt.Errorf("failed to create form part: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return Result{}, fmt.Errorf("failed to write image data: %w", err)
		}
	}

	if err := writer.WriteField("model", c.model); err != nil {
		return Result{}, fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", &buf)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("oracle error (status %d): %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

// Model returns the model name being used.
func (c *Client) Model() string {
	return c.model
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// BMP: 42 4D
	if data[0] == 0x42 && data[1] == 0x4D {
		return "image/bmp"
	}
	return "application/octet-stream"
}
