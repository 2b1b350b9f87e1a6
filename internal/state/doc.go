// Package state holds the snapshot shared between the background poller and
// the UI.
//
// The poller calls Store.Update after every refresh; the UI reads copies via
// Store.Snapshot on each tick. A failed refresh keeps the previous data and
// only records the error and bumps ConsecutiveFailures, so the UI can keep
// rendering the last known items while flagging the backend as offline
// (Snapshot.IsOffline, two or more failures in a row).
//
// Snapshot returns deep enough copies (items slice, file list, health
// services map, wrapped error) that callers may mutate the result freely.
package state
