// Package client is the consumer side of the compound service: an HTTP
// client, an in-memory view model with debounced filtering, a local result
// cache, CSV export, and the chart projection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tntchem/devhub/store"
)

// Client talks to the compound service over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given server base URL. A non-empty token is
// sent as a Bearer credential on every request.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
			// Sign-out answers with a redirect; surface it instead of
			// following it so callers see the real status.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// StatusReport is the deployment status aggregation served by the server.
type StatusReport struct {
	Status      string                   `json:"status"`
	Deployments []*store.Deployment      `json:"deployments"`
	Errors      []*store.DeploymentError `json:"errors"`
}

// ListCompounds fetches the full compound list. Filtering is local.
func (c *Client) ListCompounds(ctx context.Context) ([]*store.Compound, error) {
	var resp struct {
		Compounds []*store.Compound `json:"compounds"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/compounds", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Compounds, nil
}

// SaveCompound submits a compound form and returns the stored record.
func (c *Client) SaveCompound(ctx context.Context, form store.CompoundForm) (*store.Compound, error) {
	var resp struct {
		Compound *store.Compound `json:"compound"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/compounds", form, &resp); err != nil {
		return nil, err
	}
	return resp.Compound, nil
}

// InsertSeed asks the server to insert the well-known seed record.
func (c *Client) InsertSeed(ctx context.Context) (*store.Compound, error) {
	var resp struct {
		Compound *store.Compound `json:"compound"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/compounds/seed", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Compound, nil
}

// Status fetches the deployment status aggregation. No session is required.
func (c *Client) Status(ctx context.Context) (*StatusReport, error) {
	var resp StatusReport
	if err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignOut revokes the current session. The server answers with a redirect,
// which is treated as success.
func (c *Client) SignOut(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusMovedPermanently || resp.StatusCode == http.StatusOK {
		return nil
	}
	return apiError(resp)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("server: %s (status %d)", body.Error, resp.StatusCode)
	}
	return fmt.Errorf("server: status %d", resp.StatusCode)
}
