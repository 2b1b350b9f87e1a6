// Package app provides the orchestration layer for the ferry application.
//
// # Overview
//
// This package wires together configuration, the API client, polling, state
// management and the UI. It is the composition root: the single *api.Client is
// built here and passed by reference to the poller and the UI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()       Read ferry config (+ FERRY_API_URL)
//	       ├─────> prefs.Load()        Theme preference
//	       ├─────> openDiagnostics()   <log_dir>/ferry.log
//	       ├─────> api.NewClient()     HTTP client with diagnostic logger
//	       ├─────> refresh()           Initial snapshot
//	       ├─────> StartPoller()       Launch background updates
//	       └─────> ui.Run()            Mount the TUI (blocks)
//
// # Polling Behavior
//
// Each refresh calls CheckHealth, ListItems and ListFiles concurrently through
// an errgroup. A failure in any of them fails the refresh: the store keeps the
// previous data and counts the failure. After consecutive failures the poller
// doubles its interval, capped at 30 seconds, and returns to the base interval
// after the next success.
//
// # Error Handling
//
// Fatal errors (returned from Run): invalid configuration, unreadable prefs
// path, an unwritable log directory, an unparseable base URL, or the UI
// program failing. Poll failures are logged to the diagnostics file and never
// stop the application.
package app
