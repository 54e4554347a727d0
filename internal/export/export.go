package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/reading"
)

// Format is an output encoding.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts a format name, case-insensitively. "yml" is an alias
// for yaml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: yaml, json, parquet)", name)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Record is one status event with its status and book resolved.
type Record struct {
	AnalyticsID int64  `json:"analytics_id" yaml:"analytics_id" parquet:"analytics_id"`
	BookID      int64  `json:"book_id" yaml:"book_id" parquet:"book_id"`
	Title       string `json:"title" yaml:"title" parquet:"title"`
	StatusID    int64  `json:"status_id" yaml:"status_id" parquet:"status_id"`
	Status      string `json:"status" yaml:"status" parquet:"status"`
	// Bucket is planned, reading or completed; empty for other statuses.
	Bucket      string `json:"bucket,omitempty" yaml:"bucket,omitempty" parquet:"bucket"`
	CreatedDate string `json:"created_date" yaml:"created_date" parquet:"created_date"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty" parquet:"start_date"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty" parquet:"end_date"`
	PagesRead   *int64 `json:"pages_read,omitempty" yaml:"pages_read,omitempty" parquet:"pages_read,optional"`
}

// Document is the yaml/json export body.
type Document struct {
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	UserID      int64          `json:"user_id" yaml:"user_id"`
	Report      reading.Report `json:"report" yaml:"report"`
	Events      []Record       `json:"events,omitempty" yaml:"events,omitempty"`
}

// UnknownStatus labels events whose status id is not in the catalog.
const UnknownStatus = "Unknown status"

// BuildRecords resolves each event's status name and book title. Records are
// ordered most recent first.
func BuildRecords(events []catalog.StatusEvent, statuses []catalog.StatusDefinition, books []catalog.Book, buckets reading.Buckets) []Record {
	names := make(map[int64]string, len(statuses))
	for _, s := range statuses {
		names[s.StatusID] = s.Name
	}
	titles := make(map[int64]string, len(books))
	for _, b := range books {
		titles[b.BookID] = b.Title
	}

	sorted := reading.SortHistory(events)
	records := make([]Record, 0, len(sorted))
	for _, ev := range sorted {
		name, ok := names[ev.StatusID]
		if !ok {
			name = UnknownStatus
		}
		rec := Record{
			AnalyticsID: ev.AnalyticsID,
			BookID:      ev.BookID,
			Title:       titles[ev.BookID],
			StatusID:    ev.StatusID,
			Status:      name,
			CreatedDate: ev.CreatedDate,
			StartDate:   ev.StartDate,
			EndDate:     ev.EndDate,
		}
		if ok {
			rec.Bucket = buckets.Kind(name)
		}
		if ev.PagesRead != nil {
			pages := int64(*ev.PagesRead)
			rec.PagesRead = &pages
		}
		records = append(records, rec)
	}
	return records
}

// Write encodes doc to w. Parquet carries only the event rows.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	case FormatJSON:
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatParquet:
		pw := parquet.NewGenericWriter[Record](w)
		if _, err := pw.Write(doc.Events); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		if err := pw.Close(); err != nil {
			return fmt.Errorf("close parquet writer: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// WriteFile writes doc to path, creating parent directories.
func WriteFile(path string, format Format, doc Document) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close export file: %w", cerr)
		}
	}()
	return Write(file, format, doc)
}
