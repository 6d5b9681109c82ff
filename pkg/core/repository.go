package core

import "context"

// Repository defines the contract for storing and retrieving containers by ID.
// An ID is a slash separated path relative to the repository root.
type Repository interface {
	// List returns the IDs of all stored containers, sorted.
	List(ctx context.Context) ([]string, error)

	// Load reads and validates a container.
	Load(ctx context.Context, id string) (*Container, error)

	// Save persists a container, replacing any previous version atomically.
	Save(ctx context.Context, id string, c *Container) error
}

// ChangeType represents the kind of change observed in a repository.
type ChangeType string

const (
	ChangeCreate ChangeType = "CREATE"
	ChangeModify ChangeType = "MODIFY"
	ChangeDelete ChangeType = "DELETE"
	// ChangeInvalid marks a file that changed but no longer validates.
	ChangeInvalid ChangeType = "INVALID"
)

// Change describes a container that was created, modified or deleted.
type Change struct {
	Type      ChangeType
	ID        string
	Timestamp int64 // Unix timestamp
	// Err is set for ChangeInvalid.
	Err error
}

// String implements fmt.Stringer.
func (c Change) String() string {
	return string(c.Type) + " " + c.ID
}

// Watchable is implemented by repositories that can report changes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Change, error)
}
