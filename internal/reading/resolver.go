package reading

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shelf/internal/catalog"
)

// StatusSource is the part of the API the resolver reads and writes.
type StatusSource interface {
	FetchStatuses(ctx context.Context) ([]catalog.StatusDefinition, error)
	FetchBookStatus(ctx context.Context, bookID int64) (*catalog.StatusDefinition, error)
	FetchBookHistory(ctx context.Context, bookID int64) ([]catalog.StatusEvent, error)
	SubmitBookStatus(ctx context.Context, bookID int64, update catalog.StatusUpdate) (catalog.StatusEvent, error)
}

// Resolver answers "what is this book's status" questions against the API.
// It holds no cache: after SubmitStatusChange the caller reloads CurrentStatus
// and History itself.
type Resolver struct {
	source StatusSource
	logger *zap.Logger
}

// NewResolver builds a Resolver. A nil logger discards log output.
func NewResolver(source StatusSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Statuses returns the status catalog, or nil when it cannot be fetched.
func (r *Resolver) Statuses(ctx context.Context) []catalog.StatusDefinition {
	statuses, err := r.source.FetchStatuses(ctx)
	if err != nil {
		r.logger.Warn("status catalog fetch failed", zap.Error(err))
		return nil
	}
	return statuses
}

// CurrentStatus returns the book's current status. Fetch failures are logged
// and reported as "no current status".
func (r *Resolver) CurrentStatus(ctx context.Context, bookID int64) (catalog.StatusDefinition, bool) {
	status, err := r.source.FetchBookStatus(ctx, bookID)
	if err != nil {
		r.logger.Warn("current status fetch failed", zap.Int64("book_id", bookID), zap.Error(err))
		return catalog.StatusDefinition{}, false
	}
	if status == nil {
		return catalog.StatusDefinition{}, false
	}
	return *status, true
}

// History returns the book's status events, most recent first. Events whose
// created_date does not parse sort last, keeping their relative order.
// Fetch failures are logged and yield an empty history.
func (r *Resolver) History(ctx context.Context, bookID int64) []catalog.StatusEvent {
	events, err := r.source.FetchBookHistory(ctx, bookID)
	if err != nil {
		r.logger.Warn("status history fetch failed", zap.Int64("book_id", bookID), zap.Error(err))
		return []catalog.StatusEvent{}
	}
	return SortHistory(events)
}

// SortHistory returns a copy of events ordered by created_date descending.
func SortHistory(events []catalog.StatusEvent) []catalog.StatusEvent {
	sorted := make([]catalog.StatusEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, iok := sorted[i].ParsedCreatedDate()
		tj, jok := sorted[j].ParsedCreatedDate()
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
	return sorted
}

// StatusChange is a status update as entered by the user. Dates and pages are
// raw input; values that do not parse are left out of the request.
type StatusChange struct {
	StatusID  int64
	StartDate string
	EndDate   string
	PagesRead string
}

// Update converts the change into the wire payload.
func (c StatusChange) Update() catalog.StatusUpdate {
	update := catalog.StatusUpdate{StatusID: c.StatusID}
	if t, ok := catalog.ParseTimestamp(c.StartDate); ok {
		update.StartDate = t.Format(catalog.DateLayout)
	}
	if t, ok := catalog.ParseTimestamp(c.EndDate); ok {
		update.EndDate = t.Format(catalog.DateLayout)
	}
	if pages, err := strconv.Atoi(strings.TrimSpace(c.PagesRead)); err == nil && pages >= 0 {
		update.PagesRead = &pages
	}
	return update
}

const genericRejection = "status update rejected"

// ValidationError reports a status change the API refused (HTTP 422), or
// one that was missing its status.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return genericRejection
	}
	return strings.Join(e.Messages, ", ")
}

// SubmitStatusChange records a new status event for the book. API rejections
// come back as *ValidationError; other failures are wrapped and returned.
func (r *Resolver) SubmitStatusChange(ctx context.Context, bookID int64, change StatusChange) (catalog.StatusEvent, error) {
	if change.StatusID <= 0 {
		return catalog.StatusEvent{}, &ValidationError{Messages: []string{"status is required"}}
	}
	update := change.Update()
	event, err := r.source.SubmitBookStatus(ctx, bookID, update)
	if err != nil {
		var apiErr *catalog.APIError
		if errors.As(err, &apiErr) && apiErr.IsValidation() {
			r.logger.Info("status change rejected",
				zap.Int64("book_id", bookID),
				zap.Strings("messages", apiErr.Messages),
			)
			return catalog.StatusEvent{}, &ValidationError{Messages: apiErr.Messages}
		}
		return catalog.StatusEvent{}, fmt.Errorf("submit status for book %d: %w", bookID, err)
	}
	r.logger.Info("status change recorded",
		zap.Int64("book_id", bookID),
		zap.Int64("status_id", update.StatusID),
	)
	return event, nil
}

// BookStatus is everything known about one book's reading status.
type BookStatus struct {
	Statuses   []catalog.StatusDefinition
	Current    catalog.StatusDefinition
	HasCurrent bool
	History    []catalog.StatusEvent
}

// StatusName resolves id against the loaded catalog.
func (b BookStatus) StatusName(id int64) (string, bool) {
	for _, s := range b.Statuses {
		if s.StatusID == id {
			return s.Name, true
		}
	}
	return "", false
}

// Book loads the status catalog, the book's current status and its history
// concurrently. Each part degrades softly on its own.
func (r *Resolver) Book(ctx context.Context, bookID int64) BookStatus {
	var (
		g   errgroup.Group
		out BookStatus
	)
	g.Go(func() error {
		out.Statuses = r.Statuses(ctx)
		return nil
	})
	g.Go(func() error {
		out.Current, out.HasCurrent = r.CurrentStatus(ctx, bookID)
		return nil
	})
	g.Go(func() error {
		out.History = r.History(ctx, bookID)
		return nil
	})
	_ = g.Wait()
	return out
}
