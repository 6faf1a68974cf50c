// Package driftwatch talks to the external drift monitoring service.
package driftwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
)

// Client reads drift snapshots from the drift monitor.
type Client interface {
	CurrentDrift(ctx context.Context) (*ensemble.DriftSignal, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client with a bounded request timeout so an
// unresponsive monitor can never stall an adaptation.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type driftStatusResponse struct {
	FeatureDrift    bool    `json:"feature_drift_detected"`
	PredictionDrift bool    `json:"prediction_drift_detected"`
	ConceptDrift    bool    `json:"concept_drift_detected"`
	OverallScore    float64 `json:"overall_drift_score"`
}

// CurrentDrift implements ensemble.DriftFeed. Any transport or decode
// failure is returned as an error; the engine degrades it to a zero
// drift contribution.
func (c *HTTPClient) CurrentDrift(ctx context.Context) (*ensemble.DriftSignal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/drift/status", nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("driftwatch GET /api/v1/drift/status: %d %s", resp.StatusCode, string(body))
	}

	var status driftStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode drift status: %w", err)
	}
	return &ensemble.DriftSignal{
		FeatureDriftDetected:    status.FeatureDrift,
		PredictionDriftDetected: status.PredictionDrift,
		ConceptDriftDetected:    status.ConceptDrift,
		OverallDriftScore:       status.OverallScore,
	}, nil
}
