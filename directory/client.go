// Package directory resolves a sender's email to a display name through the
// external user service.
package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// NicknameResolver resolves a user's email to their display name. The relay
// producer depends on this interface so a cached or batched resolver can be
// swapped in without touching the relay logic.
type NicknameResolver interface {
	NicknameByEmail(ctx context.Context, email string) (string, error)
}

// Client calls the user service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a directory client against the given user service base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NicknameByEmail fetches the display name for an email. An unknown email or
// an unavailable user service surfaces as an error to the caller.
func (c *Client) NicknameByEmail(ctx context.Context, email string) (string, error) {
	u := fmt.Sprintf("%s/api/users/nickname?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build nickname request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user service returned status %d for %q", resp.StatusCode, email)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read nickname response: %w", err)
	}
	return string(body), nil
}
