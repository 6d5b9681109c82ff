package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/gazelib/gazelib/pkg/schema"
	"github.com/gazelib/gazelib/pkg/stats"
	"github.com/gazelib/gazelib/pkg/validation"
)

// requiredFields are the top-level keys every raw document must carry.
var requiredFields = []string{"schema", "time_reference", "environment", "timelines", "streams", "events"}

// Container wraps a gazelib/common/v1 document and keeps its invariants:
// streams reference existing timelines, stream lengths match their
// timeline, confidence lengths match values and lie within [0, 1].
//
// Use New, NewAt or one of the From constructors. The mutators also accept a
// zero Container, filling in the schema and empty collections. A Container
// is not safe for concurrent mutation.
type Container struct {
	doc Document
}

// New returns an empty container stamped with the current time as its time reference.
func New() *Container {
	return NewAt(time.Now().UnixMicro())
}

// NewAt returns an empty container with the given time reference (microseconds since the Unix epoch).
func NewAt(timeReference int64) *Container {
	return &Container{doc: newDocument(timeReference)}
}

// FromRaw validates a loosely typed document (as decoded from JSON or YAML)
// and wraps it. The container does not retain raw.
func FromRaw(raw map[string]any) (*Container, error) {
	if missing := validation.MissingKeys(raw, requiredFields); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %v", ErrValidation, missing)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return FromJSON(data)
}

// FromJSON validates an encoded document and wraps it.
func FromJSON(data []byte) (*Container, error) {
	if err := schema.ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return FromDocument(doc)
}

// FromDocument wraps a typed document after checking its invariants.
// The document is deep-copied.
func FromDocument(doc Document) (*Container, error) {
	if doc.Schema != schema.CommonV1 {
		return nil, fmt.Errorf("%w: unknown schema %q", ErrValidation, doc.Schema)
	}
	if err := checkInvariants(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	c := &Container{doc: doc.clone()}
	c.doc.normalize()
	return c, nil
}

// checkInvariants verifies the referential rules the schema cannot express.
func checkInvariants(doc Document) error {
	for name, s := range doc.Streams {
		tl, ok := doc.Timelines[s.Timeline]
		if !ok {
			return fmt.Errorf("stream %q: %w: %q", name, ErrMissingTimeline, s.Timeline)
		}
		if err := checkStream(name, tl, s.Values, s.Confidence); err != nil {
			return err
		}
	}
	for i, e := range doc.Events {
		if e.Range.Start() > e.Range.End() {
			return fmt.Errorf("event %d: %w: start %d after end %d", i, ErrInvalidEvent, e.Range.Start(), e.Range.End())
		}
	}
	return nil
}

// Equal reports whether both containers hold the same document value.
// Maps compare regardless of order, sequences in order, and numbers by value.
func (c *Container) Equal(other *Container) bool {
	if c == nil || other == nil {
		return c == other
	}
	a, err := c.doc.jsonTree()
	if err != nil {
		return false
	}
	b, err := other.doc.jsonTree()
	if err != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Document returns a deep copy of the underlying document.
func (c *Container) Document() Document {
	return c.doc.clone()
}

// Raw returns the document as a generic JSON value tree.
func (c *Container) Raw() (map[string]any, error) {
	tree, err := c.doc.jsonTree()
	if err != nil {
		return nil, err
	}
	return tree.(map[string]any), nil
}

// MarshalJSON encodes the document in its persisted shape. HTML characters
// are left unescaped so text survives a round trip byte for byte.
func (c *Container) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON replaces the container with a validated decoded document.
func (c *Container) UnmarshalJSON(data []byte) error {
	loaded, err := FromJSON(data)
	if err != nil {
		return err
	}
	c.doc = loaded.doc
	return nil
}

// --- Accessors ---

// Schema returns the document discriminator.
func (c *Container) Schema() string {
	return c.doc.Schema
}

// TimeReference returns the origin of all relative times, in microseconds since the Unix epoch.
func (c *Container) TimeReference() int64 {
	return c.doc.TimeReference
}

// ConvertToUnixTime converts a relative time to microseconds since the Unix epoch.
func (c *Container) ConvertToUnixTime(relative int64) int64 {
	return c.doc.TimeReference + relative
}

// ConvertToRelativeTime converts microseconds since the Unix epoch to a relative time.
func (c *Container) ConvertToRelativeTime(unix int64) int64 {
	return unix - c.doc.TimeReference
}

// ConvertOptionalToUnixTime is ConvertToUnixTime with nil passed through.
func (c *Container) ConvertOptionalToUnixTime(relative *int64) *int64 {
	if relative == nil {
		return nil
	}
	t := c.ConvertToUnixTime(*relative)
	return &t
}

// ConvertOptionalToRelativeTime is ConvertToRelativeTime with nil passed through.
func (c *Container) ConvertOptionalToRelativeTime(unix *int64) *int64 {
	if unix == nil {
		return nil
	}
	t := c.ConvertToRelativeTime(*unix)
	return &t
}

// Timeline returns a copy of the named timeline.
func (c *Container) Timeline(name string) (Timeline, error) {
	tl, ok := c.doc.Timelines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTimeline, name)
	}
	return slices.Clone(tl), nil
}

// TimelineNames returns the timeline names in lexicographic order.
func (c *Container) TimelineNames() []string {
	return slices.Sorted(maps.Keys(c.doc.Timelines))
}

// Stream returns a copy of the named stream.
func (c *Container) Stream(name string) (Stream, error) {
	s, ok := c.doc.Streams[name]
	if !ok {
		return Stream{}, fmt.Errorf("%w: %q", ErrMissingStream, name)
	}
	return Stream{
		Timeline:   s.Timeline,
		Derived:    s.Derived,
		Values:     deepCopyValues(s.Values),
		Confidence: slices.Clone(s.Confidence),
	}, nil
}

// StreamValues returns a copy of the values of the named stream.
func (c *Container) StreamValues(name string) ([]any, error) {
	s, ok := c.doc.Streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingStream, name)
	}
	return deepCopyValues(s.Values), nil
}

// StreamConfidence returns a copy of the confidence of the named stream, nil if it has none.
func (c *Container) StreamConfidence(name string) ([]float64, error) {
	s, ok := c.doc.Streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingStream, name)
	}
	return slices.Clone(s.Confidence), nil
}

// StreamTimelineName returns the name of the timeline the stream is bound to.
func (c *Container) StreamTimelineName(name string) (string, error) {
	s, ok := c.doc.Streams[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingStream, name)
	}
	return s.Timeline, nil
}

// Environment returns the named environment value. Nested maps and slices
// are shared with the container.
func (c *Container) Environment(name string) (any, error) {
	v, ok := c.doc.Environment[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingEnvironment, name)
	}
	return v, nil
}

// StreamNames returns a snapshot of the stream names in lexicographic order.
func (c *Container) StreamNames() []string {
	return slices.Sorted(maps.Keys(c.doc.Streams))
}

// EnvironmentNames returns a snapshot of the environment names in lexicographic order.
func (c *Container) EnvironmentNames() []string {
	return slices.Sorted(maps.Keys(c.doc.Environment))
}

// Tags returns the distinct tags over all events, sorted.
func (c *Container) Tags() []string {
	seen := make(map[string]struct{})
	for _, e := range c.doc.Events {
		for _, t := range e.Tags {
			seen[t] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Events returns a copy of the events in document order. Tags and extras
// are copied too, so edits to the result never reach the container.
func (c *Container) Events() []Event {
	out := make([]Event, len(c.doc.Events))
	for i, e := range c.doc.Events {
		out[i] = e.copy()
	}
	return out
}

// HasStreams reports whether all named streams exist.
func (c *Container) HasStreams(names []string) bool {
	for _, n := range names {
		if _, ok := c.doc.Streams[n]; !ok {
			return false
		}
	}
	return true
}

// HasEnvironments reports whether all named environments exist.
func (c *Container) HasEnvironments(names []string) bool {
	for _, n := range names {
		if _, ok := c.doc.Environment[n]; !ok {
			return false
		}
	}
	return true
}

// AssertHasStreams fails with an *InsufficientDataError naming the missing streams.
func (c *Container) AssertHasStreams(names []string) error {
	return assertHas("streams", names, c.StreamNames(), func(n string) bool {
		_, ok := c.doc.Streams[n]
		return ok
	})
}

// AssertHasEnvironments fails with an *InsufficientDataError naming the missing environments.
func (c *Container) AssertHasEnvironments(names []string) error {
	return assertHas("environments", names, c.EnvironmentNames(), func(n string) bool {
		_, ok := c.doc.Environment[n]
		return ok
	})
}

func assertHas(kind string, required, available []string, has func(string) bool) error {
	var missing []string
	for _, n := range required {
		if !has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &InsufficientDataError{
		Kind:      kind,
		Required:  slices.Clone(required),
		Available: available,
		Missing:   missing,
	}
}

// timeBounds collects the first and last element of every timeline and
// every event bound.
func (c *Container) timeBounds() []int64 {
	var bounds []int64
	for _, tl := range c.doc.Timelines {
		if len(tl) > 0 {
			bounds = append(bounds, tl[0], tl[len(tl)-1])
		}
	}
	for _, e := range c.doc.Events {
		bounds = append(bounds, e.Range.Start(), e.Range.End())
	}
	return bounds
}

// RelativeStartTime returns the earliest time present in the document.
func (c *Container) RelativeStartTime() (int64, error) {
	bounds := c.timeBounds()
	if len(bounds) == 0 {
		return 0, ErrEmptyContainer
	}
	return slices.Min(bounds), nil
}

// RelativeEndTime returns the latest time present in the document.
func (c *Container) RelativeEndTime() (int64, error) {
	bounds := c.timeBounds()
	if len(bounds) == 0 {
		return 0, ErrEmptyContainer
	}
	return slices.Max(bounds), nil
}

// Duration returns the end time minus the start time.
func (c *Container) Duration() (int64, error) {
	start, err := c.RelativeStartTime()
	if err != nil {
		return 0, err
	}
	end, err := c.RelativeEndTime()
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// RelativeTimeByIndex returns the time at index of the named timeline.
func (c *Container) RelativeTimeByIndex(timeline string, index int) (int64, error) {
	tl, ok := c.doc.Timelines[timeline]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingTimeline, timeline)
	}
	if index < 0 || index >= len(tl) {
		return 0, fmt.Errorf("%w: index %d of timeline %q with %d points", ErrOutOfRange, index, timeline, len(tl))
	}
	return tl[index], nil
}

// TimelineMeanInterval returns the mean difference between consecutive times.
func (c *Container) TimelineMeanInterval(timeline string) (float64, error) {
	tl, ok := c.doc.Timelines[timeline]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingTimeline, timeline)
	}
	mean, ok := stats.Mean(stats.Deltas([]int64(tl)))
	if !ok {
		return 0, fmt.Errorf("%w: timeline %q has %d points, need at least 2", ErrInsufficientData, timeline, len(tl))
	}
	return mean, nil
}

// CountEvents returns the total number of events.
func (c *Container) CountEvents() int {
	return len(c.doc.Events)
}

// CountEventsByTag returns the number of events carrying tag.
func (c *Container) CountEventsByTag(tag string) int {
	n := 0
	for _, e := range c.doc.Events {
		if e.HasTag(tag) {
			n++
		}
	}
	return n
}

// EventByTag returns the index-th event (0-based, document order) carrying tag.
func (c *Container) EventByTag(tag string, index int) (Event, error) {
	matches := 0
	for _, e := range c.doc.Events {
		if !e.HasTag(tag) {
			continue
		}
		if matches == index {
			return e.copy(), nil
		}
		matches++
	}
	if matches == 0 {
		return Event{}, fmt.Errorf("%w: %q", ErrMissingTag, tag)
	}
	return Event{}, fmt.Errorf("%w: event %d of tag %q, only %d found", ErrOutOfRange, index, tag, matches)
}
