// Package typed provides type-safe views over loosely typed container data.
package typed

import (
	"fmt"

	"github.com/gazelib/gazelib/pkg/core"
)

// Values decodes the samples of a stream into T. Missing samples are nil.
func Values[T any](c *core.Container, stream string) ([]*T, error) {
	raw, err := c.StreamValues(stream)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		var typed T
		if err := convert(v, &typed); err != nil {
			return nil, fmt.Errorf("stream %q value %d: %w", stream, i, err)
		}
		out[i] = &typed
	}
	return out, nil
}

// Environment decodes a single environment entry into T.
func Environment[T any](c *core.Container, name string) (T, error) {
	var typed T
	raw, err := c.Environment(name)
	if err != nil {
		return typed, err
	}
	if err := convert(raw, &typed); err != nil {
		return typed, fmt.Errorf("environment %q: %w", name, err)
	}
	return typed, nil
}
