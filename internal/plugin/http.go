package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cameronsjo/stevedore/internal/cluster"
)

// newClient builds a retrying HTTP client with logging silenced; retry and
// backoff policy lives here, not in the pipeline.
func newClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	return client
}

// HTTPFetcher fetches container configuration from a remote config service.
type HTTPFetcher struct {
	// BaseURL is the config service endpoint, e.g. "https://config.internal".
	BaseURL string

	client *retryablehttp.Client
}

// NewHTTPFetcher returns a fetcher for the given config service.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{BaseURL: baseURL, client: newClient()}
}

// fetchRequest is the config service request body.
type fetchRequest struct {
	Container   string `json:"container"`
	ImageTag    string `json:"image_tag,omitempty"`
	Branch      string `json:"branch,omitempty"`
	Cluster     string `json:"cluster"`
	Environment string `json:"environment,omitempty"`
	Namespace   string `json:"namespace,omitempty"`
}

// fetchResponse is the config service response body.
type fetchResponse struct {
	Env    []cluster.EnvVar `json:"env"`
	Fields map[string]any   `json:"fields,omitempty"`
}

// Fetch posts the artifact and cluster identity to the config service and
// returns the environment and extra fields it serves.
func (f *HTTPFetcher) Fetch(ctx context.Context, artifact *cluster.Artifact, def *cluster.Definition) (*FetchedConfig, error) {
	body, err := json.Marshal(fetchRequest{
		Container:   artifact.Name,
		ImageTag:    artifact.ImageTag,
		Branch:      artifact.Branch,
		Cluster:     def.Name,
		Environment: def.Environment,
		Namespace:   def.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("encode config request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL+"/config", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build config request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config for %s: %w", artifact.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("config service returned %d for %s", resp.StatusCode, artifact.Name)
	}

	var decoded fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode config response: %w", err)
	}
	return &FetchedConfig{Env: decoded.Env, Fields: decoded.Fields}, nil
}

// HTTPFlags evaluates feature toggles against a remote flag service.
type HTTPFlags struct {
	// BaseURL is the flag service endpoint.
	BaseURL string

	client *retryablehttp.Client
}

// NewHTTPFlags returns a flag client for the given flag service.
func NewHTTPFlags(baseURL string) *HTTPFlags {
	return &HTTPFlags{BaseURL: baseURL, client: newClient()}
}

// Toggle queries the flag service for a named feature.
func (f *HTTPFlags) Toggle(ctx context.Context, feature string) (bool, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/toggles/"+feature, nil)
	if err != nil {
		return false, fmt.Errorf("build toggle request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("evaluate toggle %s: %w", feature, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("flag service returned %d for %s", resp.StatusCode, feature)
	}

	var decoded struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, fmt.Errorf("decode toggle response: %w", err)
	}
	return decoded.Enabled, nil
}
