// Package gateways implements adapters for external services.
package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/ochairo/moddefs/internal/domain/interfaces/gateways"
)

const (
	// Max retries for transient errors
	maxRetries = 3
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second
)

// HTTPBuildLookupGateway implements BuildLookupGateway against the build
// system's JSON batch endpoints.
type HTTPBuildLookupGateway struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewHTTPBuildLookupGateway creates a gateway against the given endpoint URL.
func NewHTTPBuildLookupGateway(baseURL string) *HTTPBuildLookupGateway {
	return &HTTPBuildLookupGateway{
		client: &http.Client{
			Timeout: 2 * time.Minute, // Batches cover whole package sets
		},
		baseURL:   baseURL,
		userAgent: "moddefs/1.0",
	}
}

// isRetryableError checks if an HTTP status code is retryable
func isRetryableError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// calculateBackoff returns the backoff duration for a retry attempt
func calculateBackoff(attempt int) time.Duration {
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}

// doWithRetry executes an HTTP request with exponential backoff retry
func (g *HTTPBuildLookupGateway) doWithRetry(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt - 1)
			time.Sleep(backoff)

			// Rewind the consumed request body before re-sending
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("failed to rewind request body: %w", err)
				}
				req.Body = body
			}
		}

		resp, err = g.client.Do(req)
		if err != nil {
			// Network errors are retryable
			if attempt < maxRetries {
				continue
			}
			return nil, err
		}

		// Success or non-retryable error
		if !isRetryableError(resp.StatusCode) {
			return resp, nil
		}

		// Retryable error - close body and retry
		//nolint:errcheck,gosec // G104: Best effort close before retry
		resp.Body.Close()

		if attempt < maxRetries {
			continue
		}

		// Max retries reached
		return resp, nil
	}

	return resp, err
}

// getBuildsRequest is the wire format of the first batch phase.
type getBuildsRequest struct {
	NVRs []string `json:"nvrs"`
}

// buildRecord mirrors one build entry in the batch response. A null entry
// means the build is unknown.
type buildRecord struct {
	NVR    string `json:"nvr"`
	TaskID int64  `json:"task_id"`
}

type getBuildsResponse struct {
	Builds []*buildRecord `json:"builds"`
}

// taskLabelsRequest is the wire format of the second batch phase.
type taskLabelsRequest struct {
	TaskIDs []int64 `json:"task_ids"`
}

type taskLabelsResponse struct {
	Labels []string `json:"labels"`
}

// GetBuilds requests build records for a batch of identifiers. The response
// preserves request order; unknown builds come back as nil entries.
func (g *HTTPBuildLookupGateway) GetBuilds(ctx context.Context, nvrs []string) ([]*gateways.BuildRecord, error) {
	var resp getBuildsResponse
	if err := g.post(ctx, "/getBuilds", getBuildsRequest{NVRs: nvrs}, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch builds: %w", err)
	}

	records := make([]*gateways.BuildRecord, len(resp.Builds))
	for i, b := range resp.Builds {
		if b == nil {
			continue
		}
		records[i] = &gateways.BuildRecord{NVR: b.NVR, TaskID: b.TaskID}
	}
	return records, nil
}

// GetTaskLabels requests descriptive labels for a batch of task IDs, in
// request order.
func (g *HTTPBuildLookupGateway) GetTaskLabels(ctx context.Context, taskIDs []int64) ([]string, error) {
	var resp taskLabelsResponse
	if err := g.post(ctx, "/taskLabels", taskLabelsRequest{TaskIDs: taskIDs}, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch task labels: %w", err)
	}
	return resp.Labels, nil
}

func (g *HTTPBuildLookupGateway) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.doWithRetry(req)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("status %d (failed to read response)", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
