// Package logtail reads and formats the tail of shelf's own log file.
//
// # Reading
//
// Read returns the last N lines of a file using a ring buffer, so memory is
// bounded by N rather than by the file size. A missing file is not an error;
// the Logs view simply shows nothing yet.
//
//	lines, err := logtail.Read(cfg.LogPath(), 500)
//
// # Formatting
//
// The logger writes one JSON object per line. Parse decodes a line into an
// Entry and Format renders it for display:
//
//	2024-10-10 14:32:15 WARN [resolver] current status fetch failed – book_id=3 error=timeout
//
// FormatLines applies both and passes anything that is not JSON through
// unchanged.
package logtail
