// Package app is the composition root of shelf.
//
// Setup loads the config, opens the JSON log file and resolves the session
// from the bearer token; Bootstrap does the same for an already loaded
// config. The resulting Services value backs both the TUI and the one-shot
// CLI commands.
//
// Run starts the TUI. A background poller reloads the collection and its
// report into a state.Store every refresh interval, backing off
// exponentially while the API keeps failing:
//
//	Run()
//	  ├─> Setup()          config, logger, session
//	  ├─> Refresh()        first report before the first frame
//	  ├─> StartPoller()    Refresh() every interval
//	  └─> ui.Run()         reads store.Snapshot(), Refresh() on demand
//
// Every write to the store goes through one Refresher. A newer refresh
// cancels the one in flight, and a cancelled load never reaches the store.
// A failed refresh keeps the previous report; after two failures in a row
// the UI shows the data as offline.
package app
