package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Google Cloud Vision REST endpoint.
const DefaultBaseURL = "https://vision.googleapis.com"

const scanTimeout = 10 * time.Second

// ErrNoText is returned when OCR found no readable text on the label.
var ErrNoText = errors.New("no text detected")

// Client performs OCR label scans against the Vision REST API. Unlike
// product lookups, scan failures surface to the caller; there is no sane
// fallback name for an unreadable label.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a vision client. An empty apiKey disables the client;
// ScanLabel then fails immediately instead of making doomed calls.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: scanTimeout},
		logger:  logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
	} `json:"responses"`
}

// ScanLabel runs TEXT_DETECTION over the image and returns the first
// non-empty text line, which the add flow treats as the item name.
func (c *Client) ScanLabel(ctx context.Context, image []byte) (string, error) {
	if !c.Enabled() {
		return "", errors.New("vision API key is not configured")
	}

	req := annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "TEXT_DETECTION", MaxResults: 1}},
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal annotate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build annotate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("Vision API call failed", zap.Error(err))
		return "", fmt.Errorf("vision API call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Vision API returned non-2xx", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("vision API returned status %d", resp.StatusCode)
	}

	var annotated annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&annotated); err != nil {
		return "", fmt.Errorf("failed to parse annotate response: %w", err)
	}

	if len(annotated.Responses) == 0 || len(annotated.Responses[0].TextAnnotations) == 0 {
		return "", ErrNoText
	}

	// The first annotation holds the full detected text; its first
	// non-empty line is the label's headline.
	for _, line := range strings.Split(annotated.Responses[0].TextAnnotations[0].Description, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", ErrNoText
}
