package gazelib

import (
	"log/slog"

	"github.com/gazelib/gazelib/internal/platform"
	"github.com/gazelib/gazelib/pkg/adapters/fs"
	"github.com/gazelib/gazelib/pkg/core"
	"github.com/gazelib/gazelib/pkg/typed"
)

// --- Types ---

// Container is a public alias for the common container.
type Container = core.Container

// Recording is a public alias for a container with a typed environment.
type Recording[T any] = typed.Recording[T]

// TypedRepository is a public alias for the typed repository.
type TypedRepository[T any] = typed.Repository[T]

// --- Configuration ---

// Option defines a functional option for configuring gazelib.
type Option = platform.Option

// WithLogger sets the logger for stores and file operations.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom repository.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSystemDir sets the hidden directory holding the summary index (default ".gazelib").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithPattern sets the glob selecting container files in a dataset.
func WithPattern(pattern string) Option {
	return platform.WithPattern(pattern)
}

// WithWorkers bounds the number of files loaded concurrently.
func WithWorkers(n int) Option {
	return platform.WithWorkers(n)
}

// WithHumanReadable selects the indented, key sorted JSON layout for saves.
func WithHumanReadable(enabled bool) Option {
	return platform.WithHumanReadable(enabled)
}

// WithMustExist controls whether a dataset directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithWatcherErrorHandler registers a callback for watch loop errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates an empty container whose time reference is the current time.
func New() *Container {
	return core.New()
}

// NewAt creates an empty container with the given time reference in
// microseconds since the Unix epoch.
func NewAt(timeReference int64) *Container {
	return core.NewAt(timeReference)
}

// Open loads and validates a container file (.json, .yaml or .yml).
func Open(path string, opts ...Option) (*Container, error) {
	return platform.Load(path, opts...)
}

// Save writes a container file atomically.
func Save(path string, c *Container, opts ...Option) error {
	return platform.Save(path, c, opts...)
}

// OpenStore opens a dataset directory.
func OpenStore(root string, opts ...Option) (*fs.Store, error) {
	return platform.OpenStore(root, opts...)
}

// OpenTyped opens a dataset directory with typed environment access.
func OpenTyped[T any](root string, opts ...Option) (*TypedRepository[T], error) {
	return platform.OpenTyped[T](root, opts...)
}

// --- Utils ---

// Anonymize returns a copy of c with its time reference at the epoch and
// identifying environment entries removed.
func Anonymize(c *Container) (*Container, error) {
	return platform.Anonymize(c, nil)
}

// FindRoot looks upwards from startDir for a dataset root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
