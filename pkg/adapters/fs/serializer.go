package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gazelib/gazelib/pkg/core"
)

// Serializer defines how to read and write a container in a specific file format.
type Serializer interface {
	// Decode reads a document from r and validates it.
	Decode(r io.Reader) (*core.Container, error)
	// Encode writes the document of c to w.
	Encode(w io.Writer, c *core.Container) error
}

// DefaultSerializers returns the standard set of serializers keyed by file extension.
func DefaultSerializers(humanReadable bool) map[string]Serializer {
	return map[string]Serializer{
		".json": &JSONSerializer{HumanReadable: humanReadable},
		".yaml": &YAMLSerializer{},
		".yml":  &YAMLSerializer{},
	}
}

// SerializerFor picks a serializer by the extension of path.
func SerializerFor(path string, humanReadable bool) (Serializer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	s, ok := DefaultSerializers(humanReadable)[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
	return s, nil
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing gazelib/common/v1 JSON files.
type JSONSerializer struct {
	// HumanReadable writes sorted keys with 4 space indentation.
	// Otherwise the output is compact. Non-ASCII text is never escaped.
	HumanReadable bool
}

func (s *JSONSerializer) Decode(r io.Reader) (*core.Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return core.FromJSON(data)
}

func (s *JSONSerializer) Encode(w io.Writer, c *core.Container) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if s.HumanReadable {
		enc.SetIndent("", "    ")
	}
	// Struct fields are declared in key order and maps encode sorted,
	// so every document comes out with sorted keys.
	return enc.Encode(c)
}

// --- YAML Serializer ---

// YAMLSerializer reads and writes the same document shape as YAML.
type YAMLSerializer struct{}

func (s *YAMLSerializer) Decode(r io.Reader) (*core.Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	return core.FromRaw(payload)
}

func (s *YAMLSerializer) Encode(w io.Writer, c *core.Container) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlValue(raw)); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// yamlValue turns json.Number leaves into int64 or float64 so that integers,
// time stamps in particular, are written without an exponent.
func yamlValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = yamlValue(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = yamlValue(val)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	}
	return v
}
