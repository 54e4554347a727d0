// Package export writes a user's status events and analytics report to
// YAML, JSON or Parquet. YAML and JSON carry the full Document; Parquet holds
// one row per event so the file can be loaded straight into a dataframe.
package export
