// internal/infra/kavita/client.go
package kavita

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"kavita_notification_bot/internal/domain/catalog"
)

type libraryDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type seriesDTO struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

// Client implements catalog.Client against the Kavita REST API. Every call
// attaches the current bearer credential; a 401 response triggers exactly one
// transparent re-authentication and retry before the failure is surfaced.
type Client struct {
	baseURL     string
	credentials *CredentialProvider
	httpClient  *http.Client
}

func NewClient(baseURL string, credentials *CredentialProvider, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: credentials,
		httpClient:  httpClient,
	}
}

// ListCollections returns every library known to the catalog server.
func (c *Client) ListCollections(ctx context.Context) ([]catalog.Collection, error) {
	var libraries []libraryDTO
	if err := c.getJSON(ctx, "/api/Library", &libraries); err != nil {
		return nil, err
	}
	collections := make([]catalog.Collection, 0, len(libraries))
	for _, lib := range libraries {
		collections = append(collections, catalog.Collection{
			ID:   strconv.Itoa(lib.ID),
			Name: lib.Name,
		})
	}
	return collections, nil
}

// ListItems returns all series in the given library. The collection display
// name is attached upstream by the detector, which already holds it.
func (c *Client) ListItems(ctx context.Context, collectionID string) ([]catalog.Item, error) {
	var series []seriesDTO
	if err := c.getJSON(ctx, "/api/Series?libraryId="+collectionID, &series); err != nil {
		return nil, err
	}
	items := make([]catalog.Item, 0, len(series))
	for _, s := range series {
		items = append(items, catalog.Item{
			ID:           strconv.Itoa(s.ID),
			Name:         s.Name,
			CollectionID: collectionID,
			CreatedAt:    s.Created,
		})
	}
	return items, nil
}

// getJSON performs one authenticated GET. On a 401 it invalidates the cached
// credential, re-authenticates, and retries the request once; a second 401 is
// surfaced as an upstream error. Non-auth failures are surfaced immediately.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	retried := false
	for {
		token, err := c.credentials.Token(ctx)
		if err != nil {
			return err // Already wrapped as catalog.ErrAuth
		}

		status, body, err := c.do(ctx, path, token)
		if err != nil {
			return fmt.Errorf("%w: GET %s: %v", catalog.ErrUpstream, path, err)
		}

		if status == http.StatusUnauthorized {
			if retried {
				return fmt.Errorf("%w: GET %s rejected twice with status 401", catalog.ErrUpstream, path)
			}
			retried = true
			c.credentials.Invalidate()
			continue
		}
		if status != http.StatusOK {
			return fmt.Errorf("%w: GET %s returned status %d", catalog.ErrUpstream, path, status)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decoding GET %s response: %v", catalog.ErrUpstream, path, err)
		}
		return nil
	}
}

func (c *Client) do(ctx context.Context, path, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
