package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/export"
	"github.com/five82/shelf/internal/reading"
	"github.com/five82/shelf/internal/session"
)

// Services is everything a command needs to talk to the API on behalf of
// the signed-in user.
type Services struct {
	Config     config.Config
	Client     *catalog.Client
	Session    session.Session
	Resolver   *reading.Resolver
	Aggregator *reading.Aggregator
	Logger     *zap.Logger
}

// Options configure Setup and Run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelf/prefs.toml
	Verbose    bool
}

// Setup loads the config, opens the log file and resolves the session. The
// returned cleanup flushes the logger.
func Setup(ctx context.Context, opts Options) (*Services, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := NewLogger(cfg.LogPath(), opts.Verbose)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }

	svc, err := Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// Bootstrap builds the client, session, resolver and aggregator for cfg.
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := catalog.NewClient(cfg.APIURL, cfg.Token, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	sess, err := session.Resolve(ctx, cfg.Token, client)
	if err != nil {
		if errors.Is(err, session.ErrNoToken) {
			return nil, fmt.Errorf("%w: set token in the config file or %s", err, config.EnvToken)
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if sess.Expired(time.Now()) {
		logger.Warn("api token has expired", zap.Time("expires_at", sess.ExpiresAt))
	}
	logger.Info("session resolved",
		zap.String("api_url", client.BaseURL()),
		zap.Int64("user_id", sess.UserID),
		zap.Bool("admin", sess.Admin),
	)

	resolver := reading.NewResolver(client, logger.Named("resolver"))
	aggregator := reading.NewAggregator(resolver, client, logger.Named("aggregator"),
		reading.WithBuckets(cfg.Buckets),
		reading.WithLookupWorkers(cfg.LookupWorkers),
	)
	return &Services{
		Config:     cfg,
		Client:     client,
		Session:    sess,
		Resolver:   resolver,
		Aggregator: aggregator,
		Logger:     logger,
	}, nil
}

// LoadReport fetches the user's books and aggregates them. Only the books
// request and cancellation can fail it; aggregation degrades softly.
func (s *Services) LoadReport(ctx context.Context) ([]catalog.Book, reading.Report, error) {
	books, err := s.Client.FetchBooks(ctx, catalog.BookQuery{Limit: s.Config.BookLimit})
	if err != nil {
		return nil, reading.Report{}, fmt.Errorf("fetch books: %w", err)
	}
	report := s.Aggregator.Aggregate(ctx, s.Session, books)
	// Aggregate degrades rather than fails; a cancelled pass is not a report.
	if err := ctx.Err(); err != nil {
		return nil, reading.Report{}, err
	}
	return books, report, nil
}

// ExportDocument gathers the report together with every status event of the
// user, resolved against the status catalog and the collection. A failed
// events fetch exports no events.
func (s *Services) ExportDocument(ctx context.Context) (export.Document, error) {
	books, report, err := s.LoadReport(ctx)
	if err != nil {
		return export.Document{}, err
	}
	doc := export.Document{
		GeneratedAt: time.Now().UTC(),
		UserID:      s.Session.UserID,
		Report:      report,
	}
	if s.Session.UserID <= 0 {
		return doc, nil
	}

	var (
		g        errgroup.Group
		events   []catalog.StatusEvent
		statuses []catalog.StatusDefinition
	)
	g.Go(func() error {
		var err error
		events, err = s.Client.FetchUserAnalytics(ctx, s.Session.UserID)
		if err != nil {
			// Same as aggregation: missing events export as none.
			s.Logger.Warn("fetch status events failed", zap.Int64("user_id", s.Session.UserID), zap.Error(err))
			events = nil
		}
		return nil
	})
	g.Go(func() error {
		statuses = s.Resolver.Statuses(ctx)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return export.Document{}, err
	}

	doc.Events = export.BuildRecords(events, statuses, books, s.Config.Buckets)
	return doc, nil
}
