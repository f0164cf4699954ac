package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request identifier to the API.
const RequestIDHeader = "X-Request-ID"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 4 << 20

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client performs CRUD calls against the task collection endpoint.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewClient creates a client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...ClientOption) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:   base,
		http:   http.DefaultClient,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	raw := strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("api url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", apiURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api url %q: missing host", apiURL)
	}
	return u, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// CollectionURL returns {API_URL}/tasks/.
func (c *Client) CollectionURL() string {
	return c.resolve("tasks/")
}

// ItemURL returns {API_URL}/tasks/{id}/.
func (c *Client) ItemURL(id int) string {
	return c.resolve("tasks/" + strconv.Itoa(id) + "/")
}

func (c *Client) resolve(rel string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + rel
	return u.String()
}

// List fetches the full task collection.
func (c *Client) List(ctx context.Context) ([]Task, error) {
	body, _, err := c.do(ctx, "list", 0, http.MethodGet, c.CollectionURL(), nil)
	if err != nil {
		return nil, err
	}
	tasks, err := DecodeList(body)
	if err != nil {
		return nil, &Error{Op: "list", Kind: KindInvalidResponse, Err: err}
	}
	return tasks, nil
}

// Create posts a new task. The title is trimmed first; an empty title
// returns ErrEmptyTitle without sending a request.
func (c *Client) Create(ctx context.Context, title string) (*Task, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return nil, &Error{Op: "create", Kind: KindValidation, Err: ErrEmptyTitle}
	}
	body, _, err := c.do(ctx, "create", 0, http.MethodPost, c.CollectionURL(), map[string]string{"title": title})
	if err != nil {
		return nil, err
	}

	// Any 2xx is a success; the echoed task is a convenience.
	created := &Task{Title: title}
	if len(bytes.TrimSpace(body)) > 0 {
		var echoed Task
		if err := json.Unmarshal(body, &echoed); err == nil && !echoed.IsZero() {
			created = &echoed
		}
	}
	return created, nil
}

// SetCompleted updates the completed flag of a task.
func (c *Client) SetCompleted(ctx context.Context, id int, completed bool) error {
	_, _, err := c.do(ctx, "update", id, http.MethodPatch, c.ItemURL(id), map[string]bool{"completed": completed})
	return err
}

// Toggle flips the completed flag of t on the server.
func (c *Client) Toggle(ctx context.Context, t Task) error {
	return c.SetCompleted(ctx, t.ID, !t.Completed)
}

// Delete removes a task. A missing task matches ErrNotFound.
func (c *Client) Delete(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, "delete", id, http.MethodDelete, c.ItemURL(id), nil)
	return err
}

// Health checks the API's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, _, err := c.do(ctx, "health", 0, http.MethodGet, c.resolve("health/"), nil)
	return err
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op string, id int, method, target string, payload interface{}) ([]byte, int, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, &Error{Op: op, Kind: KindValidation, TaskID: id, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, 0, &Error{Op: op, Kind: KindTransport, TaskID: id, Err: fmt.Errorf("build request: %w", err)}
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "request_id", requestID, "err", err)
		return nil, 0, &Error{Op: op, Kind: KindTransport, TaskID: id, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.logger.Debug("request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode, TaskID: id}
	}
	if readErr != nil {
		return nil, resp.StatusCode, &Error{Op: op, Kind: KindTransport, TaskID: id, Err: fmt.Errorf("read response: %w", readErr)}
	}
	return body, resp.StatusCode, nil
}
