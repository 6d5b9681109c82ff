package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gazelib/gazelib/pkg/adapters/fs"
	"github.com/gazelib/gazelib/pkg/core"
	"github.com/gazelib/gazelib/pkg/typed"
)

// ErrNotDirectory is returned when a dataset root is a regular file.
var ErrNotDirectory = errors.New("dataset root is not a directory")

// OpenStore opens the dataset directory at root as a filesystem store.
//
//	store, err := platform.OpenStore("./recordings", platform.WithWorkers(8))
func OpenStore(root string, opts ...Option) (*fs.Store, error) {
	o := apply(opts)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist) && !o.mustExist:
		if err := os.MkdirAll(abs, 0755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
		o.logger.Debug("created dataset directory", "path", abs)
	case err != nil:
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	return fs.NewStore(fs.Config{
		Root:          abs,
		SystemDir:     o.systemDir,
		Pattern:       o.pattern,
		Workers:       o.workers,
		HumanReadable: o.humanReadable,
		Logger:        o.logger,
		ErrorHandler:  o.errorHandler,
	}), nil
}

// OpenRepository returns the injected repository, or a store at root.
func OpenRepository(root string, opts ...Option) (core.Repository, error) {
	o := apply(opts)
	if o.repository != nil {
		return o.repository, nil
	}
	return OpenStore(root, opts...)
}

// OpenTyped wraps the repository at root with typed environment access.
func OpenTyped[T any](root string, opts ...Option) (*typed.Repository[T], error) {
	repo, err := OpenRepository(root, opts...)
	if err != nil {
		return nil, err
	}
	return typed.NewRepository[T](repo), nil
}
