package fs

import (
	"maps"
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Root          string     `json:"root"`
	SystemDir     string     `json:"system_dir"`
	Pattern       string     `json:"pattern"`
	Workers       int        `json:"workers"`
	CacheSize     int        `json:"cache_size"`
	Serializers   []string   `json:"serializers"`
	WatcherActive bool       `json:"watcher_active"`
	LastScan      *time.Time `json:"last_scan,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Root:          s.Root,
		SystemDir:     s.config.SystemDir,
		Pattern:       s.config.Pattern,
		Workers:       s.config.Workers,
		CacheSize:     s.cache.Len(),
		Serializers:   slices.Sorted(maps.Keys(DefaultSerializers(false))),
		WatcherActive: s.watcherActive,
		LastScan:      s.lastScan,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
