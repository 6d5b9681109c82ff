package core

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/gazelib/gazelib/pkg/schema"
)

// Environment holds the session metadata of a document.
type Environment map[string]any

// Timeline is a sequence of sample times in microseconds relative to the
// document's time reference. Slicing assumes it is non-decreasing.
type Timeline []int64

// Stream is a sequence of values sampled at the times of one timeline.
// Fields are declared in JSON key order so encoded documents have sorted keys.
type Stream struct {
	// Confidence is nil when the stream carries no confidence.
	Confidence []float64 `json:"confidence,omitempty"`
	Derived    string    `json:"derived,omitempty"`
	Timeline   string    `json:"timeline"`
	// Values are JSON-compatible samples; nil marks a missing sample.
	Values []any `json:"values"`
}

// Range is an inclusive [start, end] pair of relative times.
type Range [2]int64

// Start returns the first bound.
func (r Range) Start() int64 { return r[0] }

// End returns the second bound.
func (r Range) End() int64 { return r[1] }

// Event is a tagged annotation over a time range.
type Event struct {
	Derived string   `json:"derived,omitempty"`
	Extra   any      `json:"extra,omitempty"`
	Range   Range    `json:"range"`
	Tags    []string `json:"tags"`
}

// HasTag reports whether the event carries tag.
func (e Event) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// HasAnyTag reports whether the event carries at least one of tags.
func (e Event) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if e.HasTag(t) {
			return true
		}
	}
	return false
}

func (e Event) copy() Event {
	return Event{
		Derived: e.Derived,
		Extra:   deepCopyValue(e.Extra),
		Range:   e.Range,
		Tags:    slices.Clone(e.Tags),
	}
}

// Document is the canonical in-memory form of a gazelib/common/v1 file.
type Document struct {
	Environment   Environment         `json:"environment"`
	Events        []Event             `json:"events"`
	Schema        string              `json:"schema"`
	Streams       map[string]Stream   `json:"streams"`
	TimeReference int64               `json:"time_reference"`
	Timelines     map[string]Timeline `json:"timelines"`
}

func newDocument(timeReference int64) Document {
	return Document{
		Schema:        schema.CommonV1,
		TimeReference: timeReference,
		Environment:   Environment{},
		Timelines:     map[string]Timeline{},
		Streams:       map[string]Stream{},
		Events:        []Event{},
	}
}

// normalize replaces nil collections so that encoded documents always carry
// every required field.
func (d *Document) normalize() {
	if d.Environment == nil {
		d.Environment = Environment{}
	}
	if d.Timelines == nil {
		d.Timelines = map[string]Timeline{}
	}
	if d.Streams == nil {
		d.Streams = map[string]Stream{}
	}
	if d.Events == nil {
		d.Events = []Event{}
	}
	for i := range d.Events {
		if d.Events[i].Tags == nil {
			d.Events[i].Tags = []string{}
		}
	}
	for name, s := range d.Streams {
		if s.Values == nil {
			s.Values = []any{}
			d.Streams[name] = s
		}
	}
}

// clone returns a deep copy of the document. Environment values and event
// extras are copied through their JSON form.
func (d Document) clone() Document {
	out := Document{
		Schema:        d.Schema,
		TimeReference: d.TimeReference,
		Environment:   make(Environment, len(d.Environment)),
		Timelines:     make(map[string]Timeline, len(d.Timelines)),
		Streams:       make(map[string]Stream, len(d.Streams)),
		Events:        make([]Event, len(d.Events)),
	}
	for k, v := range d.Environment {
		out.Environment[k] = deepCopyValue(v)
	}
	for name, tl := range d.Timelines {
		out.Timelines[name] = slices.Clone(tl)
	}
	for name, s := range d.Streams {
		out.Streams[name] = Stream{
			Timeline:   s.Timeline,
			Derived:    s.Derived,
			Values:     deepCopyValues(s.Values),
			Confidence: slices.Clone(s.Confidence),
		}
	}
	for i, e := range d.Events {
		out.Events[i] = e.copy()
	}
	return out
}

func deepCopyValues(values []any) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = deepCopyValue(v)
	}
	return out
}

// deepCopyValue copies maps and slices recursively; scalars are returned as is.
func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = deepCopyValue(val)
		}
		return m
	case Environment:
		m := make(Environment, len(t))
		for k, val := range t {
			m[k] = deepCopyValue(val)
		}
		return m
	case []any:
		return deepCopyValues(t)
	case []string:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []int64:
		return slices.Clone(t)
	}
	return v
}

// shallowCopyExtra duplicates the top level of an event extra so that a
// clipped event copy never aliases the source map itself.
func shallowCopyExtra(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return maps.Clone(t)
	case []any:
		return slices.Clone(t)
	}
	return v
}

// jsonTree encodes the document and decodes it into a generic value tree.
func (d Document) jsonTree() (any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
