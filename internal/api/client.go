package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultReadRetries is the number of automatic retries for read operations.
// It mirrors the upstream client library default rather than a deliberate
// contract; callers may tune it via Client.ReadRetries.
const DefaultReadRetries = 1

// Client issues requests against the backend REST API. Each operation sends
// exactly one request, except reads, which are retried ReadRetries times on
// failure. Writes are never retried automatically.
type Client struct {
	// BaseURL is the server root, e.g. "http://localhost:8000". The "/api"
	// prefix is appended by the client.
	BaseURL string

	// ReadRetries is the number of automatic retries for GETs.
	ReadRetries int

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// New returns a client for the given server root.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		ReadRetries: DefaultReadRetries,
		HTTPClient:  http.DefaultClient,
	}
}

// ListTasks fetches all tasks ordered by the given sort key.
func (c *Client) ListTasks(ctx context.Context, sort SortKey) ([]Task, error) {
	var tasks []Task
	err := c.doRead(ctx, "list tasks", fmt.Sprintf("/tasks?sort_by=%s", sort), &tasks)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, id int) (Task, error) {
	var t Task
	err := c.doRead(ctx, "get task", fmt.Sprintf("/tasks/%d", id), &t)
	return t, err
}

// CreateTask submits a draft and returns the server-assigned task.
func (c *Client) CreateTask(ctx context.Context, draft TaskCreate) (Task, error) {
	var t Task
	err := c.do(ctx, "create task", http.MethodPost, "/tasks", draft, &t)
	return t, err
}

// UpdateTask applies a partial update and returns the full task.
func (c *Client) UpdateTask(ctx context.Context, id int, update TaskUpdate) (Task, error) {
	var t Task
	err := c.do(ctx, "update task", http.MethodPut, fmt.Sprintf("/tasks/%d", id), update, &t)
	return t, err
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, "delete task", http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

// GetSettings fetches the settings singleton.
func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := c.doRead(ctx, "get settings", "/settings", &s)
	return s, err
}

// UpdateTheme replaces the theme settings and returns the stored value.
func (c *Client) UpdateTheme(ctx context.Context, theme ThemeSettings) (ThemeSettings, error) {
	var out ThemeSettings
	err := c.do(ctx, "update theme settings", http.MethodPut, "/settings/theme", theme, &out)
	return out, err
}

// UpdateNotifications replaces the notification settings and returns the
// stored value.
func (c *Client) UpdateNotifications(ctx context.Context, n NotificationSettings) (NotificationSettings, error) {
	var out NotificationSettings
	err := c.do(ctx, "update notification settings", http.MethodPut, "/settings/notifications", n, &out)
	return out, err
}

// doRead performs a GET with the configured retry budget.
func (c *Client) doRead(ctx context.Context, op, path string, out any) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = c.do(ctx, op, http.MethodGet, path, nil, out)
		if err == nil || attempt >= c.ReadRetries {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &RequestError{Op: op, Kind: KindDecode, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/api"+path, body)
	if err != nil {
		return &RequestError{Op: op, Kind: KindNetwork, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return &RequestError{Op: op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &RequestError{Op: op, Kind: KindHTTP, Status: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, Kind: KindDecode, Err: err}
	}
	return nil
}
