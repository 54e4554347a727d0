package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/reading"
)

func pages(n int) *int { return &n }

func sampleDocument() Document {
	statuses := []catalog.StatusDefinition{
		{StatusID: 1, Name: "В планах"},
		{StatusID: 3, Name: "Прочитано"},
		{StatusID: 4, Name: "Брошено"},
	}
	books := []catalog.Book{{BookID: 10, Title: "Солярис"}, {BookID: 11, Title: "Аэлита"}}
	events := []catalog.StatusEvent{
		{AnalyticsID: 1, BookID: 10, StatusID: 1, CreatedDate: "2024-01-01T09:00:00"},
		{AnalyticsID: 2, BookID: 10, StatusID: 3, CreatedDate: "2024-03-01T09:00:00", StartDate: "2024-02-01", EndDate: "2024-03-01", PagesRead: pages(320)},
		{AnalyticsID: 3, BookID: 11, StatusID: 4, CreatedDate: "2024-02-01T09:00:00"},
		{AnalyticsID: 4, BookID: 12, StatusID: 99, CreatedDate: "2023-12-01T09:00:00"},
	}
	return Document{
		GeneratedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		UserID:      7,
		Report: reading.Report{
			Stats:      reading.Stats{Planned: 0, Completed: 1, TotalPages: 320, AvgReadingTime: 0},
			Considered: 2,
			Source:     reading.SourceEvents,
		},
		Events: BuildRecords(events, statuses, books, reading.DefaultBuckets()),
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{" YML ", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{"parquet", FormatParquet, false},
		{"csv", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	f, ok := FormatFromPath("/tmp/out.parquet")
	assert.True(t, ok)
	assert.Equal(t, FormatParquet, f)

	_, ok = FormatFromPath("/tmp/out")
	assert.False(t, ok)

	_, ok = FormatFromPath("/tmp/out.csv")
	assert.False(t, ok)
}

func TestBuildRecords(t *testing.T) {
	records := sampleDocument().Events
	require.Len(t, records, 4)

	// Most recent first.
	assert.Equal(t, []int64{2, 3, 1, 4}, []int64{
		records[0].AnalyticsID, records[1].AnalyticsID, records[2].AnalyticsID, records[3].AnalyticsID,
	})

	done := records[0]
	assert.Equal(t, "Солярис", done.Title)
	assert.Equal(t, "Прочитано", done.Status)
	assert.Equal(t, "completed", done.Bucket)
	require.NotNil(t, done.PagesRead)
	assert.EqualValues(t, 320, *done.PagesRead)

	custom := records[1]
	assert.Equal(t, "Брошено", custom.Status)
	assert.Empty(t, custom.Bucket)

	unknown := records[3]
	assert.Equal(t, UnknownStatus, unknown.Status)
	assert.Empty(t, unknown.Title)
	assert.Nil(t, unknown.PagesRead)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleDocument()))

	var decoded struct {
		UserID int64 `yaml:"user_id"`
		Report struct {
			Source string `yaml:"source"`
			Stats  struct {
				TotalPages int `yaml:"total_pages"`
			} `yaml:"stats"`
		} `yaml:"report"`
		Events []map[string]any `yaml:"events"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, 7, decoded.UserID)
	assert.Equal(t, "events", decoded.Report.Source)
	assert.Equal(t, 320, decoded.Report.Stats.TotalPages)
	require.Len(t, decoded.Events, 4)
	assert.Equal(t, "Прочитано", decoded.Events[0]["status"])
	_, hasPages := decoded.Events[1]["pages_read"]
	assert.False(t, hasPages, "absent pages should be omitted")
}

func TestWriteJSONOmitsEventsWhenEmpty(t *testing.T) {
	doc := sampleDocument()
	doc.Events = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, doc))

	var decoded map[string]any
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &decoded))
	assert.NotContains(t, decoded, "events")
	report, ok := decoded["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "events", report["source"])
}

func TestWriteFileParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.parquet")
	doc := sampleDocument()
	require.NoError(t, WriteFile(path, FormatParquet, doc))

	rows, err := parquet.ReadFile[Record](path)
	require.NoError(t, err)
	require.Len(t, rows, len(doc.Events))
	assert.Equal(t, doc.Events[0].Status, rows[0].Status)
	require.NotNil(t, rows[0].PagesRead)
	assert.EqualValues(t, 320, *rows[0].PagesRead)
	assert.Nil(t, rows[1].PagesRead)
}

func TestWriteUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("csv"), Document{}))
}
