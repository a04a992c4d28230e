// Package azure provides a minimal Azure DevOps work item client.
//
// It talks to the work item tracking REST API using a Personal Access Token
// resolved once at startup. Errors are classified into the variants the UI
// cares about (not found, unauthorized, other API errors).
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "7.0"

// Sentinel errors for the failure modes rendered differently by the UI.
var (
	ErrNotFound     = errors.New("work item not found")
	ErrUnauthorized = errors.New("unauthorized: check your PAT and its Work Items (Read) scope")
)

// APIError is a non-2xx response that is neither 401/403 nor 404.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("azure devops api error (%d): %s", e.StatusCode, e.Body)
}

// Client fetches work items from one Azure DevOps organization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pat        string
}

// NewClient creates a client for the given organization URL and PAT.
// The URL may point at dev.azure.com/{org} or an on-prem collection.
func NewClient(organizationURL, pat string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(organizationURL, "/"),
		pat:        pat,
	}
}

// FetchWorkItem retrieves a single work item by id.
func (c *Client) FetchWorkItem(ctx context.Context, id uint64) (*WorkItem, error) {
	url := fmt.Sprintf("%s/_apis/wit/workitems/%d?api-version=%s", c.baseURL, id, apiVersion)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseWorkItem(body, id)
}

// Verify checks that the organization URL and PAT are usable by listing
// work item types, which needs the same read scope as fetching items.
func (c *Client) Verify(ctx context.Context) error {
	url := fmt.Sprintf("%s/_apis/wit/workitemtypes?api-version=%s", c.baseURL, apiVersion)
	_, err := c.get(ctx, url)
	return err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// Azure DevOps uses basic auth with an empty username and the PAT
	// as the password.
	req.SetBasicAuth("", c.pat)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure devops request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
}

// excerpt trims a response body down to something that fits a status line.
func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
