package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gazelib/gazelib/pkg/core"
)

// Recording wraps a container with a typed view of its environment.
// Each field of Env maps to one environment entry through its JSON name,
// e.g. `json:"gazelib/general/participant"`.
type Recording[T any] struct {
	ID        string
	Container *core.Container
	Env       T        // The typed environment
	Saver     Saver[T] // Active Record reference interface
}

// Saver avoids tight coupling between a Recording and its Repository.
type Saver[T any] interface {
	Save(ctx context.Context, rec *Recording[T]) error
}

// Save persists the recording using the attached saver.
func (r *Recording[T]) Save(ctx context.Context) error {
	if r.Saver == nil {
		return fmt.Errorf("recording is detached (missing Saver)")
	}
	return r.Saver.Save(ctx, r)
}

// Repository wraps a core.Repository to provide type-safe access to environments.
type Repository[T any] struct {
	repo core.Repository
}

// NewRepository creates a new type-safe wrapper around an existing repository.
func NewRepository[T any](repo core.Repository) *Repository[T] {
	return &Repository[T]{repo: repo}
}

// Save writes Env back into the container environment and persists it.
func (r *Repository[T]) Save(ctx context.Context, rec *Recording[T]) error {
	if rec.Container == nil {
		rec.Container = core.New()
	}
	entries, err := toMap(rec.Env)
	if err != nil {
		return fmt.Errorf("failed to convert typed environment: %w", err)
	}
	for name, value := range entries {
		rec.Container.AddEnvironment(name, value)
	}

	if rec.Saver == nil {
		rec.Saver = r
	}
	return r.repo.Save(ctx, rec.ID, rec.Container)
}

// Get loads a container and decodes its environment.
func (r *Repository[T]) Get(ctx context.Context, id string) (*Recording[T], error) {
	c, err := r.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromContainer(id, c, r)
}

// List loads every container in the repository.
func (r *Repository[T]) List(ctx context.Context) ([]*Recording[T], error) {
	ids, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*Recording[T], 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to process recording %s: %w", id, err)
		}
		result = append(result, rec)
	}
	return result, nil
}

func fromContainer[T any](id string, c *core.Container, saver Saver[T]) (*Recording[T], error) {
	raw := make(map[string]any)
	for _, name := range c.EnvironmentNames() {
		v, _ := c.Environment(name)
		raw[name] = v
	}
	var env T
	if err := convert(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return &Recording[T]{
		ID:        id,
		Container: c,
		Env:       env,
		Saver:     saver,
	}, nil
}

func toMap(v any) (map[string]any, error) {
	var m map[string]any
	if err := convert(v, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// convert copies src into dst through its JSON form.
func convert(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
