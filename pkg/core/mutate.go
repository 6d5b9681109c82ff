package core

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/gazelib/gazelib/pkg/schema"
	"github.com/gazelib/gazelib/pkg/validation"
)

// StreamOption configures optional fields of AddStream.
type StreamOption func(*Stream)

// WithConfidence attaches per-sample confidence values in [0, 1].
func WithConfidence(confidence []float64) StreamOption {
	return func(s *Stream) {
		s.Confidence = confidence
	}
}

// WithStreamDerived records how the stream was derived (e.g. the producing model).
func WithStreamDerived(derived string) StreamOption {
	return func(s *Stream) {
		s.Derived = derived
	}
}

// EventOption configures optional fields of AddEvent.
type EventOption func(*Event)

// WithEventDerived records how the event was derived.
func WithEventDerived(derived string) EventOption {
	return func(e *Event) {
		e.Derived = derived
	}
}

// WithExtra attaches arbitrary JSON-compatible data to the event.
func WithExtra(extra any) EventOption {
	return func(e *Event) {
		e.Extra = extra
	}
}

// AddEnvironment inserts or replaces an environment entry. The value is stored
// as given; callers should use namespaced names such as "gazelib/gaze/head_id".
func (c *Container) AddEnvironment(name string, value any) {
	c.init()
	c.doc.Environment[name] = value
}

// init allocates the collections of a zero Container.
func (c *Container) init() {
	if c.doc.Schema == "" {
		c.doc.Schema = schema.CommonV1
	}
	if c.doc.Environment == nil {
		c.doc.Environment = Environment{}
	}
	if c.doc.Timelines == nil {
		c.doc.Timelines = map[string]Timeline{}
	}
	if c.doc.Streams == nil {
		c.doc.Streams = map[string]Stream{}
	}
	if c.doc.Events == nil {
		c.doc.Events = []Event{}
	}
}

// AddTimeline stores a copy of values under name, replacing any existing timeline
// of that name. A replacement must keep the length of the streams bound to it.
// Monotonicity is the caller's responsibility.
func (c *Container) AddTimeline(name string, values []int64) error {
	c.init()
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTimeline)
	}
	if values == nil {
		values = []int64{}
	}
	if _, ok := c.doc.Timelines[name]; ok {
		for _, sname := range slices.Sorted(maps.Keys(c.doc.Streams)) {
			s := c.doc.Streams[sname]
			if s.Timeline == name && len(s.Values) != len(values) {
				return fmt.Errorf("%w: %q has %d points but stream %q bound to it has %d values",
					ErrInvalidTimeline, name, len(values), sname, len(s.Values))
			}
		}
	}
	c.doc.Timelines[name] = slices.Clone(values)
	return nil
}

// AddTimelineValues accepts a loosely typed sequence (e.g. []any from a decoder
// or []int) of integral numbers.
func (c *Container) AddTimelineValues(name string, values any) error {
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("%w: %q values are %T, not a sequence", ErrInvalidTimeline, name, values)
	}
	out := make([]int64, rv.Len())
	for i := range out {
		v, ok := validation.AsInt64(rv.Index(i).Interface())
		if !ok {
			return fmt.Errorf("%w: %q element %d is not an integer", ErrInvalidTimeline, name, i)
		}
		out[i] = v
	}
	return c.AddTimeline(name, out)
}

// AddStream binds values to an existing timeline, replacing any stream of the same name.
// The container keeps its own copy of values and confidence.
func (c *Container) AddStream(name, timeline string, values []any, opts ...StreamOption) error {
	c.init()
	tl, ok := c.doc.Timelines[timeline]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingTimeline, timeline)
	}
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidStream)
	}

	s := Stream{Timeline: timeline, Values: values}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Values == nil {
		s.Values = []any{}
	}
	if err := checkStream(name, tl, s.Values, s.Confidence); err != nil {
		return err
	}

	s.Values = deepCopyValues(s.Values)
	s.Confidence = slices.Clone(s.Confidence)
	c.doc.Streams[name] = s
	return nil
}

// checkStream enforces the length and confidence invariants of a stream.
func checkStream(name string, tl Timeline, values []any, confidence []float64) error {
	if len(values) != len(tl) {
		return fmt.Errorf("%w: %q has %d values but its timeline has %d points", ErrInvalidStream, name, len(values), len(tl))
	}
	for i, v := range values {
		if !validation.IsJSONValue(v) {
			return fmt.Errorf("%w: %q value %d (%T) is not JSON compatible", ErrInvalidStream, name, i, v)
		}
	}
	if confidence == nil {
		return nil
	}
	if len(confidence) != len(values) {
		return fmt.Errorf("%w: %q has %d confidence values for %d values", ErrInvalidStream, name, len(confidence), len(values))
	}
	for i, conf := range confidence {
		if math.IsNaN(conf) || conf < 0.0 || conf > 1.0 {
			return fmt.Errorf("%w: %q confidence %d is %v, outside [0, 1]", ErrInvalidStream, name, i, conf)
		}
	}
	return nil
}

// AddEvent appends an event covering [start, end].
func (c *Container) AddEvent(tags []string, start, end int64, opts ...EventOption) error {
	if start > end {
		return fmt.Errorf("%w: start %d after end %d", ErrInvalidEvent, start, end)
	}
	e := Event{Tags: slices.Clone(tags), Range: Range{start, end}}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	for _, opt := range opts {
		opt(&e)
	}
	if !validation.IsJSONValue(e.Extra) {
		return fmt.Errorf("%w: extra (%T) is not JSON compatible", ErrInvalidEvent, e.Extra)
	}
	c.init()
	c.doc.Events = append(c.doc.Events, e)
	return nil
}

// AddRawEvent appends an event from loosely typed input, validating that tags
// is a list of strings and that both bounds are integers.
func (c *Container) AddRawEvent(tags any, start, end any, opts ...EventOption) error {
	if !validation.IsListOfStrings(tags) {
		return fmt.Errorf("%w: tags must be a list of strings, got %T", ErrInvalidEvent, tags)
	}
	s, ok := validation.AsInt64(start)
	if !ok {
		return fmt.Errorf("%w: start %v is not an integer", ErrInvalidEvent, start)
	}
	e, ok := validation.AsInt64(end)
	if !ok {
		return fmt.Errorf("%w: end %v is not an integer", ErrInvalidEvent, end)
	}
	var list []string
	switch t := tags.(type) {
	case []string:
		list = t
	case []any:
		list = make([]string, len(t))
		for i, item := range t {
			list[i] = item.(string)
		}
	}
	return c.AddEvent(list, s, e, opts...)
}

// SetTimeReference changes the origin of relative times. Stored relative
// times are not rewritten, so their absolute times shift (useful for anonymization).
func (c *Container) SetTimeReference(microseconds int64) {
	c.doc.TimeReference = microseconds
}

// SetTimeReferenceValue is SetTimeReference for loosely typed input.
func (c *Container) SetTimeReferenceValue(v any) error {
	us, ok := validation.AsInt64(v)
	if !ok {
		return fmt.Errorf("%w: %v (%T) is not an integer number of microseconds", ErrInvalidTime, v, v)
	}
	c.SetTimeReference(us)
	return nil
}
