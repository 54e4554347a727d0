package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// API is the subset of the book-collection REST API shelf consumes.
// It is implemented by *Client and can be faked in tests.
type API interface {
	FetchStatuses(ctx context.Context) ([]StatusDefinition, error)
	FetchBooks(ctx context.Context, query BookQuery) ([]Book, error)
	FetchBookStatus(ctx context.Context, bookID int64) (*StatusDefinition, error)
	FetchBookHistory(ctx context.Context, bookID int64) ([]StatusEvent, error)
	SubmitBookStatus(ctx context.Context, bookID int64, update StatusUpdate) (StatusEvent, error)
	FetchUserAnalytics(ctx context.Context, userID int64) ([]StatusEvent, error)
	FetchCurrentUser(ctx context.Context) (User, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the book-collection HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
}

const (
	defaultAPIURL         = "http://127.0.0.1:8000/api"
	defaultUserAgent      = "shelf/0.1"
	defaultRequestTimeout = 15 * time.Second
	maxErrorBody          = 64 << 10
)

// NewClient builds a Client for apiURL (scheme optional, path prefix kept).
// A zero timeout uses the default.
func NewClient(apiURL, token string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		token:     strings.TrimSpace(token),
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchStatuses retrieves the status catalog.
func (c *Client) FetchStatuses(ctx context.Context) ([]StatusDefinition, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []StatusDefinition
	if err := c.do(ctx, http.MethodGet, "/statuses/", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// BookQuery configures /books requests.
type BookQuery struct {
	Skip   int
	Limit  int
	Search string
}

// FetchBooks retrieves the current user's books.
func (c *Client) FetchBooks(ctx context.Context, query BookQuery) ([]Book, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("skip", strconv.Itoa(max(query.Skip, 0)))
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		values.Set("search", search)
	}
	var payload []Book
	if err := c.do(ctx, http.MethodGet, "/books/", values, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchBookStatus retrieves the book's current status. A book without any
// status returns (nil, nil).
func (c *Client) FetchBookStatus(ctx context.Context, bookID int64) (*StatusDefinition, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload *StatusDefinition
	err := c.do(ctx, http.MethodGet, bookPath(bookID, "status"), nil, nil, &payload)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

// FetchBookHistory retrieves every status event recorded for a book.
func (c *Client) FetchBookHistory(ctx context.Context, bookID int64) ([]StatusEvent, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []StatusEvent
	if err := c.do(ctx, http.MethodGet, bookPath(bookID, "statuses"), nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SubmitBookStatus records a new status event for a book.
func (c *Client) SubmitBookStatus(ctx context.Context, bookID int64, update StatusUpdate) (StatusEvent, error) {
	if c == nil {
		return StatusEvent{}, fmt.Errorf("client is nil")
	}
	if update.StatusID <= 0 {
		return StatusEvent{}, fmt.Errorf("status id required")
	}
	var payload StatusEvent
	if err := c.do(ctx, http.MethodPost, bookPath(bookID, "status")+"/", nil, update, &payload); err != nil {
		return StatusEvent{}, err
	}
	return payload, nil
}

// FetchUserAnalytics retrieves every status event recorded by a user.
func (c *Client) FetchUserAnalytics(ctx context.Context, userID int64) ([]StatusEvent, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []StatusEvent
	path := "/analytics/user/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchCurrentUser retrieves the user the token belongs to.
func (c *Client) FetchCurrentUser(ctx context.Context) (User, error) {
	if c == nil {
		return User{}, fmt.Errorf("client is nil")
	}
	var payload User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &payload); err != nil {
		return User{}, err
	}
	return payload, nil
}

func bookPath(bookID int64, suffix string) string {
	return "/books/" + strconv.FormatInt(bookID, 10) + "/" + suffix
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := jsonAPI.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Messages:   decodeErrorMessages(raw),
		}
	}
	if dest == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	// Empty bodies leave dest untouched ("no current status").
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := jsonAPI.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
