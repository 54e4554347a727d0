// Package cli defines the shelf command tree. The root command starts the
// TUI; stats, history, set-status and export are one-shot commands against
// the same API services.
package cli
