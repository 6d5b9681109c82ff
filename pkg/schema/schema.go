// Package schema validates raw container documents against the
// gazelib/common/v1 structural schema before they are wrapped.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// CommonV1 is the discriminator stored in the "schema" field of every document.
const CommonV1 = "gazelib/common/v1"

//go:embed common_v1.json
var commonV1Schema []byte

var (
	resolveOnce sync.Once
	resolved    *jsonschema.Resolved
	resolveErr  error
)

// ValidationError describes why a raw document was rejected.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s document: %v", CommonV1, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Schema returns the parsed JSON schema. The returned value must not be modified.
func Schema() (*jsonschema.Schema, error) {
	var s jsonschema.Schema
	if err := json.Unmarshal(commonV1Schema, &s); err != nil {
		return nil, fmt.Errorf("failed to parse embedded schema: %w", err)
	}
	return &s, nil
}

func load() (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		s, err := Schema()
		if err != nil {
			resolveErr = err
			return
		}
		resolved, resolveErr = s.Resolve(nil)
		if resolveErr != nil {
			resolveErr = fmt.Errorf("failed to resolve embedded schema: %w", resolveErr)
		}
	})
	return resolved, resolveErr
}

// Validate checks a raw document (typically map[string]any decoded from JSON or YAML).
// Values are normalized through encoding/json first so that Go integers, YAML
// decodings and json.Number all validate the same way.
func Validate(raw any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return &ValidationError{Err: fmt.Errorf("document is not JSON compatible: %w", err)}
	}
	return ValidateJSON(data)
}

// ValidateJSON checks an encoded JSON document.
func ValidateJSON(data []byte) error {
	rs, err := load()
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &ValidationError{Err: fmt.Errorf("invalid json: %w", err)}
	}
	if err := rs.Validate(instance); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
