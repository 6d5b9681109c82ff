package platform

import (
	"fmt"
	"slices"

	"github.com/gazelib/gazelib/pkg/adapters/fs"
	"github.com/gazelib/gazelib/pkg/core"
)

// Load reads a container file, picking the format by extension.
func Load(path string, opts ...Option) (*core.Container, error) {
	o := apply(opts)
	c, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("loaded container", "path", path, "streams", len(c.StreamNames()), "events", c.CountEvents())
	return c, nil
}

// Save writes a container file atomically, picking the format by extension.
func Save(path string, c *core.Container, opts ...Option) error {
	o := apply(opts)
	if err := fs.Save(path, c, fs.HumanReadable(o.humanReadable)); err != nil {
		return err
	}
	o.logger.Debug("saved container", "path", path, "human_readable", o.humanReadable)
	return nil
}

// IdentifyingEnvironment lists the environment entries Anonymize removes by default.
var IdentifyingEnvironment = []string{
	"gazelib/gaze/head_id",
	"gazelib/general/source_files",
}

// Anonymize returns a copy of c whose time reference is moved to the epoch
// and whose identifying environment entries are removed. Relative times are
// kept, so the recording keeps its internal timing. A nil remove list means
// IdentifyingEnvironment.
func Anonymize(c *core.Container, remove []string) (*core.Container, error) {
	if remove == nil {
		remove = IdentifyingEnvironment
	}
	doc := c.Document()
	doc.TimeReference = 0
	for name := range doc.Environment {
		if slices.Contains(remove, name) {
			delete(doc.Environment, name)
		}
	}
	out, err := core.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to anonymize: %w", err)
	}
	return out, nil
}
