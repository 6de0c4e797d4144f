// Package steveapi is the typed HTTP client for the upstream Steve backend,
// the system of record for all writes and authoritative reads.
package steveapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"steve-mcp/internal/logging"
)

const headerAuthorization = "Authorization"

// APIError is a non-2xx response from the backend. The body is surfaced
// verbatim to the tool caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("steve api: status %d: %s", e.StatusCode, e.Body)
}

// Unauthorized reports whether the error is an authentication failure
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// StatusOf returns the HTTP status of an APIError, or 0 for other errors
func StatusOf(err error) int {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode
	}
	return 0
}

// Client calls the Steve backend API. Immutable after construction; safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient creates a backend API client with an explicit request timeout
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetCurrentUser resolves the caller's identity from the bearer credential
func (c *Client) GetCurrentUser(ctx context.Context, authHeader string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, authHeader, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateTask creates a task through the backend. Writes never touch the
// local mirror so the backend's validation and side effects always run.
func (c *Client) CreateTask(ctx context.Context, authHeader string, input *TaskCreateInput) (*Task, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding task input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAuthorization, authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, newAPIError(resp)
	}

	var task Task
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("decoding created task: %w", err)
	}
	return &task, nil
}

// ListWorkspaceProducts lists products visible in a workspace
func (c *Client) ListWorkspaceProducts(ctx context.Context, authHeader, workspaceID string, limit int) ([]Product, error) {
	params := url.Values{}
	params.Set("workspace_id", workspaceID)
	params.Set("limit", strconv.Itoa(limit))

	var products []Product
	if err := c.getJSON(ctx, authHeader, "/products/workspace", params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductTasks lists tasks for a product with the given filters
func (c *Client) ListProductTasks(ctx context.Context, authHeader, productID string, query *TaskQuery) ([]Task, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.Type != "" {
		params.Set("type", query.Type)
	}
	if query.Status != "" {
		params.Set("status", query.Status)
	}
	if query.Priority != "" {
		params.Set("priority", query.Priority)
	}
	if query.DueAfter != nil {
		params.Set("due_after", query.DueAfter.UTC().Format(time.RFC3339))
	}
	if query.DueBefore != nil {
		params.Set("due_before", query.DueBefore.UTC().Format(time.RFC3339))
	}

	var tasks []Task
	if err := c.getJSON(ctx, authHeader, "/tasks/product/"+url.PathEscape(productID), params, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Health checks the backend's own health endpoint
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	return nil
}

// getJSON performs an authenticated GET and decodes a 200 response into out
func (c *Client) getJSON(ctx context.Context, authHeader, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(headerAuthorization, authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// newAPIError captures the status and body of a non-2xx response
func newAPIError(resp *http.Response) *APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		body = []byte(fmt.Sprintf("unreadable response body: %v", err))
	}
	return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
}
