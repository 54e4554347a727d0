// Package catalog provides an HTTP client for the book-collection REST API.
//
// # Overview
//
// The API owns books, authors, genres, publishers, reading statuses and the
// per-user status events ("analytics" records). shelf only reads from it,
// except for recording a new status event for a book.
//
// # Client Usage
//
//	client, err := catalog.NewClient("http://127.0.0.1:8000/api", token, 15*time.Second)
//	if err != nil {
//		return err
//	}
//	statuses, err := client.FetchStatuses(ctx)
//
// # API Endpoints
//
//   - GET  /statuses/                status catalog
//   - GET  /books/                   the token owner's books (skip, limit, search)
//   - GET  /books/{id}/status        current status, 404 when none
//   - GET  /books/{id}/statuses      status history
//   - POST /books/{id}/status/       record a status event
//   - GET  /analytics/user/{id}      every status event of a user
//   - GET  /auth/me                  the token owner
//
// # Request Handling
//
// All requests carry the bearer token, Accept: application/json, a shelf
// User-Agent and a fresh X-Request-ID. Bodies are encoded with json-iterator.
// The http.Client timeout bounds every call.
//
// # Error Handling
//
// Responses with status >= 400 become *APIError, which keeps the decoded
// `detail` messages (a string or a list of {msg}). errors.Is(err, ErrNotFound)
// matches 404s. Transport and decode failures are wrapped with fmt.Errorf.
package catalog
