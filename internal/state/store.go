package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/reading"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Books               []catalog.Book
	Report              reading.Report
	HasReport           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored books and report.
func (s *Store) Update(books []catalog.Book, report reading.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Books = cloneBooks(books)
	s.snapshot.Report = cloneReport(report)
	s.snapshot.HasReport = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records a refresh error. The previous books and report are kept.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Books = cloneBooks(s.snapshot.Books)
	snap.Report = cloneReport(s.snapshot.Report)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneBooks(books []catalog.Book) []catalog.Book {
	if len(books) == 0 {
		return nil
	}
	dup := make([]catalog.Book, len(books))
	copy(dup, books)
	return dup
}

func cloneReport(report reading.Report) reading.Report {
	if report.Breakdown != nil {
		rows := make([]reading.StatusCount, len(report.Breakdown))
		copy(rows, report.Breakdown)
		report.Breakdown = rows
	}
	return report
}
