// Package songstats provides a client for the Songstats artist metadata API
// and normalization of its responses.
package songstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	baseURL   = "https://api.songstats.com"
	userAgent = "enrich-worker/1.0"
)

// Sentinel errors.
var (
	// ErrMissingArtistInfo is returned when the response lacks the
	// expected artist_info payload.
	ErrMissingArtistInfo = errors.New("response missing artist_info")
)

// StatusError is returned for non-2xx responses from the API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("songstats API returned status %d", e.Code)
}

// Client is a Songstats API client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Songstats API client. An empty base overrides
// nothing and uses the production endpoint.
func NewClient(apiKey, base string) *Client {
	if base == "" {
		base = baseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: base,
	}
}

// GetArtistInfo fetches the raw artist metadata payload for a Songstats
// artist ID. Non-2xx responses surface as a StatusError; a 2xx response
// without an artist_info object surfaces as ErrMissingArtistInfo.
func (c *Client) GetArtistInfo(ctx context.Context, songstatsID string) (*ArtistPayload, error) {
	reqURL := c.baseURL + "/api/artist/" + url.PathEscape(songstatsID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var parsed artistResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing artist response: %w", err)
	}
	if parsed.ArtistInfo == nil {
		return nil, ErrMissingArtistInfo
	}

	return parsed.ArtistInfo, nil
}
