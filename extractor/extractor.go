// Package extractor talks to the face descriptor service. The service is an
// opaque collaborator: it takes an encoded camera frame and answers with a
// 128-d descriptor or with "no face found".
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"FACEGATE/models"
)

// ErrNoFace means the frame contained no usable face. It is a normal outcome
// for a camera pointed at an empty room, not a transport failure.
var ErrNoFace = errors.New("no face found in image")

// Extractor produces a descriptor from an encoded image.
type Extractor interface {
	Extract(ctx context.Context, imageData string) ([]float64, error)
}

// Client is the HTTP extractor implementation.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// The per-frame deadline comes from the caller's context; this is
		// only a hard upper bound against a wedged connection.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type extractRequest struct {
	Image string `json:"image"` // base64, with or without a data-URL prefix
}

type extractResponse struct {
	FaceFound  bool      `json:"face_found"`
	Descriptor []float64 `json:"descriptor"`
}

// Extract posts the frame to the descriptor service and returns the vector.
func (c *Client) Extract(ctx context.Context, imageData string) ([]float64, error) {
	body, err := json.Marshal(extractRequest{Image: imageData})
	if err != nil {
		return nil, fmt.Errorf("extractor: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("extractor: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor: unexpected status %d", resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("extractor: decode response: %w", err)
	}
	if !out.FaceFound || len(out.Descriptor) == 0 {
		return nil, ErrNoFace
	}
	if len(out.Descriptor) != models.DescriptorSize {
		return nil, fmt.Errorf("extractor: descriptor has dimension %d, want %d", len(out.Descriptor), models.DescriptorSize)
	}
	return out.Descriptor, nil
}
