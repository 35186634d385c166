package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to a remote text-detection/recognition service over HTTP.
// The service accepts a multipart image upload and returns recognized text
// regions with bounding polygons and confidences.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the engine at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// DetectImage uploads image bytes to the engine and returns its detections.
func (c *Client) DetectImage(ctx context.Context, img []byte, filename string) (*ImageResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return nil, fmt.Errorf("write upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr/image", &body)
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call detection engine: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("detection engine returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var er engineResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode engine response: %w", err)
	}
	return er.toImageResult(), nil
}
