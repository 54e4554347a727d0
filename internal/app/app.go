package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/ui"
)

// Run boots the shelf TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	// The TUI owns the terminal; logs only go to the file.
	opts.Verbose = false
	svc, cleanup, err := Setup(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		svc.Logger.Warn("load prefs failed", zap.Error(err))
	}

	store := &state.Store{}
	refresher := NewRefresher(ctx, store, svc, svc.Logger.Named("poller"))
	defer refresher.Close()

	// Populate the store before the first frame, then keep it fresh.
	_ = refresher.Refresh(ctx)
	StartPoller(ctx, refresher, svc.Config.RefreshInterval)

	svc.Logger.Info("shelf started",
		zap.String("api_url", svc.Config.APIURL),
		zap.Int64("user_id", svc.Session.UserID),
	)

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Resolver:  svc.Resolver,
		Session:   svc.Session,
		Buckets:   svc.Config.Buckets,
		Refresh:   refresher.Refresh,
		LogPath:   svc.Config.LogPath(),
		ThemeName: userPrefs.Theme,
		StartView: userPrefs.StartView,
		PrefsPath: opts.PrefsPath,
		Logger:    svc.Logger.Named("ui"),
	})
}
