package core

import "iter"

// IterEventsByTag yields, in document order, the events carrying tag.
// Each call to the returned sequence walks the current event list again.
func (c *Container) IterEventsByTag(tag string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for i := 0; i < len(c.doc.Events); i++ {
			e := c.doc.Events[i]
			if e.HasTag(tag) && !yield(e) {
				return
			}
		}
	}
}

// IterEventsByTags yields the events carrying at least one of tags.
func (c *Container) IterEventsByTags(tags []string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for i := 0; i < len(c.doc.Events); i++ {
			e := c.doc.Events[i]
			if e.HasAnyTag(tags) && !yield(e) {
				return
			}
		}
	}
}

// IterByTag yields one slice per event carrying tag, in document order.
// A limit greater than zero stops after that many slices. Events whose
// range is empty yield an ErrInvalidRange error and iteration continues.
func (c *Container) IterByTag(tag string, limit int) iter.Seq2[*Container, error] {
	return func(yield func(*Container, error) bool) {
		n := 0
		for e := range c.IterEventsByTag(tag) {
			if limit > 0 && n >= limit {
				return
			}
			n++
			if !yield(c.SliceByRelativeTime(e.Range.Start(), e.Range.End())) {
				return
			}
		}
	}
}
