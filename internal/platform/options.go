package platform

import (
	"log/slog"

	"github.com/gazelib/gazelib/pkg/core"
)

// options holds the internal configuration shared by the factories.
type options struct {
	repository    core.Repository
	logger        *slog.Logger
	systemDir     string
	pattern       string
	workers       int
	humanReadable bool
	mustExist     bool
	errorHandler  func(error)
}

// Option defines a functional option for configuring gazelib.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger:    slog.New(slog.DiscardHandler),
		mustExist: true,
	}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithLogger sets the logger for stores and file operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom repository (e.g. a mock).
// When set, OpenRepository skips the filesystem store.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithSystemDir sets the hidden directory holding the summary index.
// Defaults to ".gazelib".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithPattern sets the glob that selects container files in a dataset.
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithWorkers bounds the number of files loaded concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithHumanReadable selects the indented, key sorted JSON layout for saves.
func WithHumanReadable(enabled bool) Option {
	return func(o *options) {
		o.humanReadable = enabled
	}
}

// WithMustExist controls whether the dataset directory must already exist.
// When false, opening a store creates it.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
