package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/gazelib/gazelib/pkg/core"
)

// DefaultPattern matches every JSON container below the root.
const DefaultPattern = "**/*.json"

// Config holds the configuration for a dataset store.
type Config struct {
	Root          string
	SystemDir     string // e.g. ".gazelib"; holds the summary index
	Pattern       string // glob used by List; defaults to DefaultPattern
	Workers       int    // concurrent loads; defaults to 4
	HumanReadable bool   // JSON layout used by Save
	Logger        *slog.Logger
	ErrorHandler  func(error) // receives watcher errors; nil logs them
}

// Store implements core.Repository over a directory of container files.
// IDs are slash separated paths relative to Root.
type Store struct {
	Root   string
	config Config
	cache  *cache

	mu            sync.RWMutex
	watcherActive bool
	lastScan      *time.Time
}

// NewStore creates a store rooted at config.Root.
func NewStore(config Config) *Store {
	if config.SystemDir == "" {
		config.SystemDir = ".gazelib"
	}
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		Root:   config.Root,
		config: config,
		cache:  newCache(config.Root, config.SystemDir),
	}
}

var _ core.Repository = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)

// resolvePath maps an ID to a file path, rejecting IDs that leave the root.
func (s *Store) resolvePath(id string) (string, error) {
	clean := path.Clean(filepath.ToSlash(id))
	if !fs.ValidPath(clean) || clean == "." {
		return "", fmt.Errorf("invalid id %q", id)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

// resolveID maps a file path below the root to its ID.
func (s *Store) resolveID(p string) (string, error) {
	rel, err := filepath.Rel(s.Root, p)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if !fs.ValidPath(rel) || rel == "." {
		return "", fmt.Errorf("%s is outside %s", p, s.Root)
	}
	return rel, nil
}

// ignored reports whether an ID belongs to the store's own bookkeeping.
func (s *Store) ignored(id string) bool {
	first, _, _ := strings.Cut(id, "/")
	return first == s.config.SystemDir || strings.HasPrefix(path.Base(id), TempFilePrefix)
}

// List returns the IDs matching the configured pattern.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.Glob(ctx, s.config.Pattern)
}

// Glob returns the sorted IDs of regular files matching pattern.
func (s *Store) Glob(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	fsys := os.DirFS(s.Root)
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.Root, err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if !s.ignored(m) {
			ids = append(ids, m)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Load reads and validates the container stored under id.
func (s *Store) Load(ctx context.Context, id string) (*core.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.resolvePath(id)
	if err != nil {
		return nil, err
	}
	c, err := Load(p)
	if err != nil {
		return nil, err
	}
	s.config.Logger.Debug("container loaded", "id", id, "streams", len(c.StreamNames()))
	return c, nil
}

// Save writes c under id atomically.
func (s *Store) Save(ctx context.Context, id string, c *core.Container) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.resolvePath(id)
	if err != nil {
		return err
	}
	if err := Save(p, c, HumanReadable(s.config.HumanReadable)); err != nil {
		return err
	}
	s.config.Logger.Debug("container saved", "id", id, "human_readable", s.config.HumanReadable)
	return nil
}

// Entry is a container loaded by LoadAll.
type Entry struct {
	ID        string
	Container *core.Container
}

// LoadAll loads every container matching pattern with bounded concurrency.
// The first failure cancels the remaining loads.
func (s *Store) LoadAll(ctx context.Context, pattern string) ([]Entry, error) {
	ids, err := s.Glob(ctx, pattern)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.Load(ctx, id)
			if err != nil {
				return err
			}
			entries[i] = Entry{ID: id, Container: c}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary describes one container file. Invalid files are reported with
// Valid false and the validation error.
type Summary struct {
	ID            string   `json:"id"`
	Valid         bool     `json:"valid"`
	Error         string   `json:"error,omitempty"`
	TimeReference int64    `json:"time_reference,omitempty"`
	Timelines     []string `json:"timelines,omitempty"`
	Streams       []string `json:"streams,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Events        int      `json:"events"`
	Samples       int      `json:"samples"`
	Duration      int64    `json:"duration"`
}

func summarize(id string, c *core.Container) Summary {
	state := c.State().(core.ContainerState)
	d, _ := c.Duration()
	return Summary{
		ID:            id,
		Valid:         true,
		TimeReference: state.TimeReference,
		Timelines:     state.Timelines,
		Streams:       state.Streams,
		Tags:          state.Tags,
		Events:        state.EventCount,
		Samples:       state.Samples,
		Duration:      d,
	}
}

// Summaries describes every file matching pattern. Unchanged files are served
// from the index in SystemDir; the rest are loaded concurrently.
func (s *Store) Summaries(ctx context.Context, pattern string) ([]Summary, error) {
	ids, err := s.Glob(ctx, pattern)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Load(); err != nil {
		s.config.Logger.Warn("summary index unreadable, rebuilding", "error", err)
	}

	out := make([]Summary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.resolvePath(id)
			if err != nil {
				return err
			}
			info, err := os.Stat(p)
			if err != nil {
				return err
			}
			if entry, hit := s.cache.Get(id, info.ModTime()); hit {
				out[i] = entry.Summary
				return nil
			}

			c, err := s.Load(gctx, id)
			var sum Summary
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.config.Logger.Warn("skipping invalid container", "id", id, "error", err)
				sum = Summary{ID: id, Error: err.Error()}
			} else {
				sum = summarize(id, c)
			}
			s.cache.Set(id, &indexEntry{Summary: sum, LastModified: info.ModTime()})
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.Prune(func(id string) bool {
		p, err := s.resolvePath(id)
		if err != nil {
			return false
		}
		_, err = os.Stat(p)
		return err == nil
	})
	if err := s.cache.Save(); err != nil {
		s.config.Logger.Warn("failed to save summary index", "error", err)
	}

	now := time.Now()
	s.mu.Lock()
	s.lastScan = &now
	s.mu.Unlock()
	return out, nil
}
