// Package identity looks up user details from the external identity
// provider. Lookups are best-effort enrichment; callers must tolerate
// failure.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client resolves user emails from the identity provider.
type Client interface {
	// EmailForUser returns the user's primary email address.
	EmailForUser(ctx context.Context, userID string) (string, error)
}

// httpClient implements Client against the provider's REST API.
type httpClient struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a Client for the identity service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "identity-client").Logger(),
	}
}

// EmailForUser fetches GET {base}/users/{id} and returns the email field.
func (c *httpClient) EmailForUser(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build identity request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}
	if payload.Email == "" {
		return "", fmt.Errorf("user %s has no email address", userID)
	}

	c.logger.Debug().Str("user_id", userID).Msg("user email resolved")
	return payload.Email, nil
}
