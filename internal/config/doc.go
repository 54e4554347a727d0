// Package config loads shelf's TOML configuration.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelf/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. If the file exists but fields are empty, use defaults for those fields
//
// SHELF_API_URL and SHELF_TOKEN override the file in every case. The CLI
// loads a .env file into the environment before Load runs.
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000/api"
//	token = ""
//	log_dir = "~/.local/share/shelf"
//	request_timeout = "15s"
//	refresh_interval = "30s"
//	lookup_workers = 4
//	book_limit = 100
//
//	[buckets]
//	planned = "В планах"
//	reading = "Читаю"
//	completed = "Прочитано"
//
// Every field is optional. Tilde expansion is performed on log_dir.
//
// # Error Handling
//
// Load returns errors for unreadable files, invalid TOML and durations that
// do not parse or are not positive. A missing file is not an error.
package config
