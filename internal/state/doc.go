// Package state provides thread-safe state shared between the refresher and
// the UI.
//
// # Overview
//
// The background refresher loads the user's books and aggregates a reading
// report; the UI renders whatever was loaded last. Store is the coordination
// point between the two.
//
//	Producer (refresher):          Consumer (UI):
//	┌──────────────────┐           ┌──────────────────┐
//	│ FetchBooks()     │           │                  │
//	│ Aggregate()      │           │                  │
//	│      ↓           │           │                  │
//	│ store.Update()   │──────────→│ store.Snapshot() │
//	│ store.Fail()     │  (mutex)  │      ↓           │
//	│  repeat...       │           │  render view     │
//	└──────────────────┘           └──────────────────┘
//
// # Core Types
//
// Store:
//   - Thread-safe container for the latest books and report
//   - Uses sync.RWMutex; one writer, many readers
//
// Snapshot:
//   - Copy of the store at a point in time
//   - Books and breakdown rows are cloned, errors re-wrapped
//
// Flight:
//   - At most one in-flight request per key (for example "refresh")
//   - Begin cancels the previous request for the key
//   - Commit tells the caller whether its result is still wanted
//
// # Update Semantics
//
//	store.Update(books, report)
//	→ snapshot.Books, snapshot.Report replaced
//	→ snapshot.LastError = nil, ConsecutiveFailures = 0
//
//	store.Fail(err)
//	→ books and report unchanged
//	→ snapshot.LastError = err, ConsecutiveFailures++
//
// IsOffline reports two or more consecutive failures; the header shows it.
//
// The zero Store is ready to use.
package state
