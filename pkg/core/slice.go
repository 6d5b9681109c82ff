package core

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// SliceByRelativeTime returns a new container restricted to [start, end).
//
// Stream samples with start <= t < end are kept; timelines and streams left
// without samples are dropped. Events overlapping the range are kept, clipped
// to it if they cross a bound. The time reference is not shifted.
func (c *Container) SliceByRelativeTime(start, end int64) (*Container, error) {
	if start >= end {
		return nil, fmt.Errorf("%w: start %d must be before end %d", ErrInvalidRange, start, end)
	}
	return c.slice(start, &end), nil
}

// SliceFromRelativeTime returns a new container restricted to [start, +inf).
func (c *Container) SliceFromRelativeTime(start int64) *Container {
	return c.slice(start, nil)
}

// SliceByUnixTime is SliceByRelativeTime with bounds in microseconds since the Unix epoch.
func (c *Container) SliceByUnixTime(start, end int64) (*Container, error) {
	return c.SliceByRelativeTime(c.ConvertToRelativeTime(start), c.ConvertToRelativeTime(end))
}

// SliceFromUnixTime is SliceFromRelativeTime with start in microseconds since the Unix epoch.
func (c *Container) SliceFromUnixTime(start int64) *Container {
	return c.SliceFromRelativeTime(c.ConvertToRelativeTime(start))
}

// SliceByTimeline slices to the times found at the given indices of a timeline.
// startIndex is clamped into the timeline; an endIndex past the last point
// slices to the end of the data.
func (c *Container) SliceByTimeline(timeline string, startIndex, endIndex int) (*Container, error) {
	tl, ok := c.doc.Timelines[timeline]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTimeline, timeline)
	}
	if startIndex >= endIndex {
		return nil, fmt.Errorf("%w: start index %d must be before end index %d", ErrInvalidRange, startIndex, endIndex)
	}
	if len(tl) == 0 {
		return nil, fmt.Errorf("%w: timeline %q is empty", ErrOutOfRange, timeline)
	}
	last := len(tl) - 1
	start := tl[clamp(startIndex, 0, last)]
	if endIndex > last {
		return c.slice(start, nil), nil
	}
	return c.SliceByRelativeTime(start, tl[max(0, endIndex)])
}

// SliceTimelineFrom slices from the time at startIndex (clamped) to the end of the data.
func (c *Container) SliceTimelineFrom(timeline string, startIndex int) (*Container, error) {
	tl, ok := c.doc.Timelines[timeline]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTimeline, timeline)
	}
	if len(tl) == 0 {
		return nil, fmt.Errorf("%w: timeline %q is empty", ErrOutOfRange, timeline)
	}
	return c.slice(tl[clamp(startIndex, 0, len(tl)-1)], nil), nil
}

// SliceByTag slices to the range of the index-th event carrying tag.
func (c *Container) SliceByTag(tag string, index int) (*Container, error) {
	e, err := c.EventByTag(tag, index)
	if err != nil {
		return nil, err
	}
	return c.SliceByRelativeTime(e.Range.Start(), e.Range.End())
}

// SliceFirstMicroseconds slices to [start, start+n) where start is the earliest time in the document.
func (c *Container) SliceFirstMicroseconds(n int64) (*Container, error) {
	start, err := c.RelativeStartTime()
	if err != nil {
		return nil, err
	}
	return c.SliceByRelativeTime(start, start+n)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// searchTimeline returns the leftmost index whose time is >= t.
func searchTimeline(tl Timeline, t int64) int {
	return sort.Search(len(tl), func(i int) bool { return tl[i] >= t })
}

// slice builds the new document. end == nil means the range is open.
func (c *Container) slice(start int64, end *int64) *Container {
	out := Document{
		Schema:        c.doc.Schema,
		TimeReference: c.doc.TimeReference,
		// Shallow copy: nested environment values are shared with the source.
		Environment: maps.Clone(c.doc.Environment),
		Timelines:   map[string]Timeline{},
		Streams:     map[string]Stream{},
		Events:      []Event{},
	}
	if out.Environment == nil {
		out.Environment = Environment{}
	}

	type cut struct{ first, end int }
	cuts := make(map[string]cut, len(c.doc.Timelines))

	for name, s := range c.doc.Streams {
		tl := c.doc.Timelines[s.Timeline]
		k, ok := cuts[s.Timeline]
		if !ok {
			k.first = searchTimeline(tl, start)
			k.end = len(tl)
			if end != nil {
				k.end = searchTimeline(tl, *end)
			}
			k.end = max(k.first, k.end)
			cuts[s.Timeline] = k
		}
		if k.first == k.end {
			continue
		}

		if _, done := out.Timelines[s.Timeline]; !done {
			out.Timelines[s.Timeline] = slices.Clone(tl[k.first:k.end])
		}
		sub := Stream{
			Timeline: s.Timeline,
			Derived:  s.Derived,
			Values:   slices.Clone(s.Values[k.first:k.end]),
		}
		if s.Confidence != nil {
			sub.Confidence = slices.Clone(s.Confidence[k.first:k.end])
		}
		out.Streams[name] = sub
	}

	for _, e := range c.doc.Events {
		evStart, evEnd := e.Range.Start(), e.Range.End()
		if evEnd <= start || (end != nil && *end <= evStart) {
			continue
		}
		clipStart := evStart < start
		clipEnd := end != nil && evEnd > *end
		if !clipStart && !clipEnd {
			out.Events = append(out.Events, e)
			continue
		}
		clipped := Event{
			Tags:    slices.Clone(e.Tags),
			Range:   e.Range,
			Derived: e.Derived,
			Extra:   shallowCopyExtra(e.Extra),
		}
		if clipStart {
			clipped.Range[0] = start
		}
		if clipEnd {
			clipped.Range[1] = *end
		}
		out.Events = append(out.Events, clipped)
	}

	return &Container{doc: out}
}
