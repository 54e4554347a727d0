// Package ui is the Bubble Tea front end of shelf.
//
// Three views share one Model: Analytics (the collection report), Books (the
// collection table) and Logs (a tail of shelf's own JSON log). Enter on a
// book opens the status dialog, which loads the book's current status and
// history and records status changes through reading.Resolver.
//
// The model never calls the API on the Update path. Loads run as tea.Cmds
// keyed in a state.Flight, so reopening the dialog or refreshing again
// cancels the earlier request and its late result is dropped.
//
// Key bindings:
//
//   - a / b / l: Analytics, Books, Logs (tab and shift+tab cycle)
//   - enter or s: status dialog for the selected book
//   - r: refresh analytics
//   - space: pause or follow the log tail
//   - T: cycle theme
//   - h or ?: help
//   - e or ctrl+c: quit
package ui
