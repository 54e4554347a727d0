package reading

import (
	"math"
	"strings"

	"github.com/five82/shelf/internal/catalog"
)

// Buckets names the three catalog statuses that summary stats count.
type Buckets struct {
	Planned   string
	Reading   string
	Completed string
}

// DefaultBuckets returns the status names the API seeds.
func DefaultBuckets() Buckets {
	return Buckets{
		Planned:   "В планах",
		Reading:   "Читаю",
		Completed: "Прочитано",
	}
}

type bucket int

const (
	bucketNone bucket = iota
	bucketPlanned
	bucketReading
	bucketCompleted
)

func (b Buckets) classify(name string) bucket {
	switch {
	case sameName(name, b.Planned):
		return bucketPlanned
	case sameName(name, b.Reading):
		return bucketReading
	case sameName(name, b.Completed):
		return bucketCompleted
	}
	return bucketNone
}

// Kind names the bucket a status falls into: "planned", "reading",
// "completed", or "" for any other status.
func (b Buckets) Kind(name string) string {
	switch b.classify(name) {
	case bucketPlanned:
		return "planned"
	case bucketReading:
		return "reading"
	case bucketCompleted:
		return "completed"
	}
	return ""
}

func sameName(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// Stats summarizes a user's collection.
type Stats struct {
	Planned    int `json:"planned" yaml:"planned"`
	Reading    int `json:"reading" yaml:"reading"`
	Completed  int `json:"completed" yaml:"completed"`
	TotalPages int `json:"totalPages" yaml:"total_pages"`
	// AvgReadingTime is a placeholder metric, round(classified / 3) once
	// anything is completed. It is not a duration.
	AvgReadingTime int `json:"avgReadingTime" yaml:"avg_reading_time"`
}

// Classified is the number of books counted in one of the three buckets.
func (s Stats) Classified() int {
	return s.Planned + s.Reading + s.Completed
}

// CompletionPercent is the rounded share of classified books completed.
func (s Stats) CompletionPercent() int {
	total := s.Classified()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Completed) / float64(total)))
}

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	StatusID int64  `json:"status_id" yaml:"status_id"`
	Name     string `json:"name" yaml:"name"`
	Count    int    `json:"count" yaml:"count"`
}

// observation is one book's resolved status, from either source.
type observation struct {
	bookID   int64
	statusID int64
	name     string
	pages    int
}

// latestPerBook keeps, per book, the event with the greatest created_date.
// Only a strictly later event replaces the incumbent, so among equal
// timestamps the first one seen wins. Events with an unparseable created_date
// are dropped. Books keep the order in which they first appear.
func latestPerBook(events []catalog.StatusEvent) []catalog.StatusEvent {
	index := make(map[int64]int, len(events))
	latest := make([]catalog.StatusEvent, 0, len(events))
	for _, ev := range events {
		created, ok := ev.ParsedCreatedDate()
		if !ok {
			continue
		}
		i, seen := index[ev.BookID]
		if !seen {
			index[ev.BookID] = len(latest)
			latest = append(latest, ev)
			continue
		}
		incumbent, _ := latest[i].ParsedCreatedDate()
		if created.After(incumbent) {
			latest[i] = ev
		}
	}
	return latest
}

// observeEvents resolves each latest event's status name. Events whose
// status_id is not in the catalog are ignored entirely.
func observeEvents(latest []catalog.StatusEvent, names map[int64]string) []observation {
	out := make([]observation, 0, len(latest))
	for _, ev := range latest {
		name, ok := names[ev.StatusID]
		if !ok {
			continue
		}
		obs := observation{bookID: ev.BookID, statusID: ev.StatusID, name: name}
		if ev.PagesRead != nil && *ev.PagesRead > 0 {
			obs.pages = *ev.PagesRead
		}
		out = append(out, obs)
	}
	return out
}

// tally counts observations into the three buckets and sums pages.
func (b Buckets) tally(observations []observation) Stats {
	var stats Stats
	for _, obs := range observations {
		switch b.classify(obs.name) {
		case bucketPlanned:
			stats.Planned++
		case bucketReading:
			stats.Reading++
		case bucketCompleted:
			stats.Completed++
		}
		stats.TotalPages += obs.pages
	}
	return stats
}

func withPlaceholderAverage(stats Stats) Stats {
	stats.AvgReadingTime = 0
	if stats.Completed > 0 {
		stats.AvgReadingTime = int(math.Round(float64(stats.Classified()) / 3))
	}
	return stats
}

// breakdown counts observations per catalog status, in catalog order.
// Observations are matched by name, so lookups that only carry a name and
// events that only carry an id land on the same row.
func breakdown(statuses []catalog.StatusDefinition, observations []observation) []StatusCount {
	rows := make([]StatusCount, len(statuses))
	byName := make(map[string]int, len(statuses))
	for i, s := range statuses {
		rows[i] = StatusCount{StatusID: s.StatusID, Name: s.Name}
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}
	for _, obs := range observations {
		if i, ok := byName[strings.ToLower(strings.TrimSpace(obs.name))]; ok {
			rows[i].Count++
		}
	}
	return rows
}

func statusNames(statuses []catalog.StatusDefinition) map[int64]string {
	names := make(map[int64]string, len(statuses))
	for _, s := range statuses {
		names[s.StatusID] = s.Name
	}
	return names
}
