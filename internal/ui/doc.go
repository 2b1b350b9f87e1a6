// Package ui provides the Bubble Tea terminal UI for ferry.
//
// The model reads state.Store snapshots on every tick and never blocks on the
// network itself: item, cache and upload actions run as tea.Cmds against an
// api.Service and report back as messages. Writes that succeed trigger an
// immediate refresh so the tables reflect them without waiting for the poller.
//
// Views:
//   - Items: table plus a detail pane; updates and deletes echo the item's
//     timestamp so stale edits are refused by the server.
//   - Cache: keys looked up or set this session (the API cannot list keys).
//   - Files: the bucket listing, with upload by local path.
//   - Diagnostics: a tail of the diagnostics log where failed calls land.
//
// Theme and starting view persist via the prefs package.
package ui
