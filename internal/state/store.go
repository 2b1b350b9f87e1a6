package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/ferry/internal/api"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Health              api.Health
	HasHealth           bool
	Items               []api.Item
	Bucket              string
	Files               []api.Value
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Refresh is the data gathered by one successful poll.
type Refresh struct {
	Health *api.Health
	Items  []api.Item
	Files  *api.FileList
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(r Refresh, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Items = cloneItems(r.Items)
	if r.Health != nil {
		s.snapshot.Health = cloneHealth(*r.Health)
		s.snapshot.HasHealth = true
	} else {
		s.snapshot.HasHealth = false
	}
	if r.Files != nil {
		s.snapshot.Bucket = r.Files.Bucket
		s.snapshot.Files = cloneValues(r.Files.Files)
	} else {
		s.snapshot.Bucket = ""
		s.snapshot.Files = nil
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	snap.Files = cloneValues(s.snapshot.Files)
	snap.Health = cloneHealth(s.snapshot.Health)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneItems(items []api.Item) []api.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]api.Item, len(items))
	copy(dup, items)
	return dup
}

func cloneValues(values []api.Value) []api.Value {
	if len(values) == 0 {
		return nil
	}
	dup := make([]api.Value, len(values))
	copy(dup, values)
	return dup
}

func cloneHealth(h api.Health) api.Health {
	if h.Services == nil {
		return h
	}
	services := make(map[string]string, len(h.Services))
	for k, v := range h.Services {
		services[k] = v
	}
	h.Services = services
	return h
}
