// internal/infra/vault/client.go
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned when the vault service cannot be reached or
// answers with a non-success status.
var ErrUnavailable = errors.New("vault service unavailable")

// HealthStatus is the structured readiness report from GET /health.
// Components maps each vault sub-dependency (storage, token issuer) to
// "online" or "offline".
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func (h HealthStatus) Online() bool {
	return strings.EqualFold(h.Status, "online")
}

type tokenResponse struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}

type notifiedListPayload struct {
	Source string   `json:"source"`
	IDs    []string `json:"ids"`
}

// Client is a thin HTTP wrapper over the companion vault service: it issues
// short-lived bearer credentials for the catalog and stores the durable
// notified-id list, keyed by a logical source name.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Health probes GET /health once. A transport failure or non-200 response is
// reported as ErrUnavailable; the caller decides how long to keep polling.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return HealthStatus{}, err
	}
	return status, nil
}

// FetchToken obtains a bearer credential for the named source from the vault
// token endpoint.
func (c *Client) FetchToken(ctx context.Context, source string) (string, error) {
	var resp tokenResponse
	if err := c.getJSON(ctx, "/api/tokens/"+source, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: token endpoint returned an empty token for source %q", ErrUnavailable, source)
	}
	return resp.Token, nil
}

// GetNotifiedList reads the durable notified-id list for the named source.
func (c *Client) GetNotifiedList(ctx context.Context, source string) ([]string, error) {
	var payload notifiedListPayload
	if err := c.getJSON(ctx, "/api/notifications/"+source, &payload); err != nil {
		return nil, err
	}
	return payload.IDs, nil
}

// PutNotifiedList replaces the durable notified-id list for the named source
// with the given ids. The write is the whole list, so repeating it is safe.
func (c *Client) PutNotifiedList(ctx context.Context, source string, ids []string) error {
	body, err := json.Marshal(notifiedListPayload{Source: source, IDs: ids})
	if err != nil {
		return fmt.Errorf("marshal notified list: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/notifications/"+source, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("build notified list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: PUT %s returned status %d", ErrUnavailable, req.URL.Path, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build vault request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned status %d", ErrUnavailable, path, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response body: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding GET %s response: %v", ErrUnavailable, path, err)
	}
	return nil
}
