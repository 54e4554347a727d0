package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "127.0.0.1:8000", u.Host)
	assert.Equal(t, "/api", u.Path)

	u, err = parseBaseURL("example.com:1234/api/?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:1234/api", u.String())

	_, err = parseBaseURL("http://")
	assert.Error(t, err)
}

func TestClient_FetchesEndpointsWithAuthAndQueries(t *testing.T) {
	t.Parallel()

	var gotBooksQuery url.Values
	var gotAuth, gotUserAgent, gotRequestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/api/statuses/":
			_ = json.NewEncoder(w).Encode([]StatusDefinition{{StatusID: 1, Name: "В планах"}, {StatusID: 3, Name: "Прочитано"}})
		case "/api/books/":
			gotBooksQuery = r.URL.Query()
			_ = json.NewEncoder(w).Encode([]Book{{BookID: 7, Title: "Solaris", Authors: []Author{{LastName: "Lem", FirstName: "Stanisław"}}}})
		case "/api/books/7/status":
			_ = json.NewEncoder(w).Encode(StatusDefinition{StatusID: 2, Name: "Читаю"})
		case "/api/books/7/statuses":
			_, _ = w.Write([]byte(`[{"analytics_id":5,"book_id":7,"status_id":2,"created_date":"2024-02-01T10:00:00","start_date":"2024-01-30","end_date":null,"pages_read":120}]`))
		case "/api/analytics/user/42":
			_, _ = w.Write([]byte(`[]`))
		case "/api/auth/me":
			_ = json.NewEncoder(w).Encode(User{UserID: 42, Login: "reader"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", "tok", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	statuses, err := c.FetchStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	books, err := c.FetchBooks(ctx, BookQuery{Limit: 100, Search: " lem "})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, []string{"Lem Stanisław"}, books[0].AuthorNames())
	assert.Equal(t, "0", gotBooksQuery.Get("skip"))
	assert.Equal(t, "100", gotBooksQuery.Get("limit"))
	assert.Equal(t, "lem", gotBooksQuery.Get("search"))

	current, err := c.FetchBookStatus(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "Читаю", current.Name)

	history, err := c.FetchBookHistory(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "", history[0].EndDate)
	require.NotNil(t, history[0].PagesRead)
	assert.Equal(t, 120, *history[0].PagesRead)

	events, err := c.FetchUserAnalytics(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, events)

	user, err := c.FetchCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.UserID)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.True(t, strings.HasPrefix(gotUserAgent, "shelf/"), "User-Agent = %q", gotUserAgent)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_FetchBookStatusNotFoundIsAbsent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books/1/status":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Статус не найден"}`))
		case "/books/2/status":
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", 0)
	require.NoError(t, err)

	status, err := c.FetchBookStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, status)

	status, err = c.FetchBookStatus(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = c.FetchBookStatus(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned status 500")
}

func TestClient_SubmitBookStatusSendsOnlyPresentFields(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"analytics_id":9,"book_id":3,"status_id":2,"created_date":"2024-03-01T08:00:00"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", 0)
	require.NoError(t, err)

	event, err := c.SubmitBookStatus(context.Background(), 3, StatusUpdate{StatusID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), event.AnalyticsID)
	assert.Equal(t, "/books/3/status/", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]any{"status_id": float64(2)}, gotBody)

	_, err = c.SubmitBookStatus(context.Background(), 3, StatusUpdate{})
	assert.Error(t, err)
}

func TestClient_APIErrorDecodesDetail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/books/1/status/":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":[{"loc":["body","pages_read"],"msg":"a"},{"msg":"b"}]}`))
		case "/books/2/status/":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Книга не найдена в вашей коллекции"}`))
		case "/statuses/":
			_, _ = w.Write([]byte("{not-json"))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, "", 0)
	require.NoError(t, err)

	_, err = c.SubmitBookStatus(context.Background(), 1, StatusUpdate{StatusID: 1})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, []string{"a", "b"}, apiErr.Messages)

	_, err = c.SubmitBookStatus(context.Background(), 2, StatusUpdate{StatusID: 1})
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"Книга не найдена в вашей коллекции"}, apiErr.Messages)

	_, err = c.FetchStatuses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestDecodeErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"empty", "", nil},
		{"not json", "oops", nil},
		{"string detail", `{"detail":" bad date "}`, []string{"bad date"}},
		{"list detail", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, []string{"a", "b"}},
		{"list without msgs", `{"detail":[{"type":"x"}, 3]}`, nil},
		{"missing detail", `{"error":"x"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeErrorMessages([]byte(tt.body)))
		})
	}
}
