package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gazelib/gazelib/pkg/core"
)

type saveOptions struct {
	humanReadable bool
	perm          os.FileMode
}

// SaveOption configures Save.
type SaveOption func(*saveOptions)

// HumanReadable writes JSON with sorted keys and indentation.
func HumanReadable(enabled bool) SaveOption {
	return func(o *saveOptions) {
		o.humanReadable = enabled
	}
}

// WithPerm sets the permission bits of the written file.
func WithPerm(perm os.FileMode) SaveOption {
	return func(o *saveOptions) {
		o.perm = perm
	}
}

// Load reads and validates a container file. The format follows the extension.
func Load(path string) (*core.Container, error) {
	s, err := SerializerFor(path, false)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := s.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path atomically, creating parent directories as needed.
func Save(path string, c *core.Container, opts ...SaveOption) error {
	o := saveOptions{perm: 0644}
	for _, opt := range opts {
		opt(&o)
	}
	s, err := SerializerFor(path, o.humanReadable)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return writeFileAtomic(path, o.perm, func(w io.Writer) error {
		return s.Encode(w, c)
	})
}
