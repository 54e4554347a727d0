package catalog

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates (start/end of reading).
const DateLayout = "2006-01-02"

// StatusDefinition mirrors an entry of /statuses.
type StatusDefinition struct {
	StatusID int64  `json:"status_id"`
	Name     string `json:"name"`
}

// Author is a book author as returned inside Book payloads.
type Author struct {
	AuthorID   int64  `json:"author_id"`
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
}

// FullName joins the non-empty name parts, surname first.
func (a Author) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.LastName, a.FirstName, a.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Genre mirrors /genres entries.
type Genre struct {
	GenreID int64  `json:"genre_id"`
	Name    string `json:"name"`
}

// Publisher mirrors /publishers entries.
type Publisher struct {
	PublisherID int64  `json:"publisher_id"`
	Name        string `json:"name"`
}

// Book mirrors the user-scoped /books payload.
type Book struct {
	BookID      int64     `json:"book_id"`
	Title       string    `json:"title"`
	Published   int       `json:"published"`
	Description string    `json:"description"`
	PublisherID int64     `json:"publisher_id"`
	AddedDate   string    `json:"added_date"`
	Authors     []Author  `json:"authors"`
	Genres      []Genre   `json:"genres"`
	Publisher   Publisher `json:"publisher"`
}

// AuthorNames returns the authors in order, formatted for display.
func (b Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		if name := a.FullName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParsedAddedDate returns the AddedDate timestamp, zero when unparseable.
func (b Book) ParsedAddedDate() time.Time {
	t, _ := ParseTimestamp(b.AddedDate)
	return t
}

// StatusEvent is one recorded status assignment for a book (an "analytics"
// record on the wire).
type StatusEvent struct {
	AnalyticsID int64  `json:"analytics_id"`
	BookID      int64  `json:"book_id"`
	StatusID    int64  `json:"status_id"`
	CreatedDate string `json:"created_date"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	PagesRead   *int   `json:"pages_read,omitempty"`
}

// ParsedCreatedDate returns the creation timestamp and whether it parsed.
func (e StatusEvent) ParsedCreatedDate() (time.Time, bool) {
	return ParseTimestamp(e.CreatedDate)
}

// ParsedStartDate returns the start date, zero when absent or malformed.
func (e StatusEvent) ParsedStartDate() time.Time {
	t, _ := ParseTimestamp(e.StartDate)
	return t
}

// ParsedEndDate returns the end date, zero when absent or malformed.
func (e StatusEvent) ParsedEndDate() time.Time {
	t, _ := ParseTimestamp(e.EndDate)
	return t
}

// StatusUpdate is the POST /books/{id}/status body. Only StatusID is
// mandatory; the rest are omitted from the payload when empty.
type StatusUpdate struct {
	StatusID  int64  `json:"status_id"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	PagesRead *int   `json:"pages_read,omitempty"`
}

// User mirrors /auth/me.
type User struct {
	UserID  int64  `json:"user_id"`
	Login   string `json:"login"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseTimestamp accepts the timestamp shapes the API emits (timezone-less
// ISO datetimes, RFC3339 and plain dates).
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
