package reading

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/session"
)

// EventSource provides a user's status events in bulk.
type EventSource interface {
	FetchUserAnalytics(ctx context.Context, userID int64) ([]catalog.StatusEvent, error)
}

// Source tells which data produced a Report.
type Source string

const (
	// SourceNone means nothing could be classified.
	SourceNone Source = "none"
	// SourceEvents means the bulk status events were used.
	SourceEvents Source = "events"
	// SourceLookups means per-book current status lookups were used.
	SourceLookups Source = "lookups"
)

// Report is the output of one aggregation pass.
type Report struct {
	Stats     Stats         `json:"stats" yaml:"stats"`
	Breakdown []StatusCount `json:"breakdown" yaml:"breakdown"`
	// Considered is the number of books the stats were drawn from.
	Considered int    `json:"considered" yaml:"considered"`
	Source     Source `json:"source" yaml:"source"`
}

// CompletionPercent forwards to Stats.
func (r Report) CompletionPercent() int {
	return r.Stats.CompletionPercent()
}

const defaultLookupWorkers = 4

// Aggregator turns a user's collection into a Report.
type Aggregator struct {
	resolver *Resolver
	events   EventSource
	buckets  Buckets
	workers  int
	logger   *zap.Logger
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithBuckets overrides the status names counted as planned/reading/completed.
func WithBuckets(b Buckets) AggregatorOption {
	return func(a *Aggregator) { a.buckets = b }
}

// WithLookupWorkers bounds concurrent per-book lookups during fallback.
func WithLookupWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// NewAggregator builds an Aggregator. A nil logger discards log output.
func NewAggregator(resolver *Resolver, events EventSource, logger *zap.Logger, opts ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		resolver: resolver,
		events:   events,
		buckets:  DefaultBuckets(),
		workers:  defaultLookupWorkers,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate computes the Report for sess's books. It never fails: remote
// errors degrade to empty inputs and are logged.
//
// Bulk status events are reduced to the latest per book and classified. When
// that classifies nothing, every book's current status is looked up instead.
func (a *Aggregator) Aggregate(ctx context.Context, sess session.Session, books []catalog.Book) Report {
	var (
		g        errgroup.Group
		statuses []catalog.StatusDefinition
		events   []catalog.StatusEvent
	)
	g.Go(func() error {
		statuses = a.resolver.Statuses(ctx)
		return nil
	})
	g.Go(func() error {
		events = a.fetchEvents(ctx, sess)
		return nil
	})
	_ = g.Wait()

	report := Report{Source: SourceNone}
	var observations []observation
	if len(events) > 0 {
		latest := latestPerBook(events)
		observations = observeEvents(latest, statusNames(statuses))
		report.Stats = a.buckets.tally(observations)
		report.Considered = len(latest)
		report.Source = SourceEvents
	}

	if report.Stats.Classified() == 0 {
		pages := report.Stats.TotalPages
		observations = a.lookupAll(ctx, books)
		report.Stats = a.buckets.tally(observations)
		// Lookups carry no page counts; keep what the events reported.
		report.Stats.TotalPages = pages
		report.Considered = len(books)
		report.Source = SourceLookups
		if report.Stats.Classified() == 0 && len(observations) == 0 {
			report.Source = SourceNone
		}
	}

	report.Stats = withPlaceholderAverage(report.Stats)
	report.Breakdown = breakdown(statuses, observations)

	a.logger.Debug("aggregation complete",
		zap.Int64("user_id", sess.UserID),
		zap.Int("books", len(books)),
		zap.Int("events", len(events)),
		zap.String("source", string(report.Source)),
		zap.Int("classified", report.Stats.Classified()),
	)
	return report
}

func (a *Aggregator) fetchEvents(ctx context.Context, sess session.Session) []catalog.StatusEvent {
	if a.events == nil || sess.UserID <= 0 {
		return nil
	}
	events, err := a.events.FetchUserAnalytics(ctx, sess.UserID)
	if err != nil {
		a.logger.Warn("user analytics fetch failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		return nil
	}
	return events
}

// lookupAll resolves every book's current status with at most a.workers
// requests in flight. Results keep collection order; failed or missing
// lookups are skipped.
func (a *Aggregator) lookupAll(ctx context.Context, books []catalog.Book) []observation {
	if len(books) == 0 {
		return nil
	}
	results := make([]*observation, len(books))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, book := range books {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			status, ok := a.resolver.CurrentStatus(ctx, book.BookID)
			if ok {
				results[i] = &observation{bookID: book.BookID, statusID: status.StatusID, name: status.Name}
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]observation, 0, len(books))
	for _, obs := range results {
		if obs != nil {
			out = append(out, *obs)
		}
	}
	return out
}
