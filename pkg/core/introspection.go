package core

import (
	"github.com/aretw0/introspection"
)

// ContainerState exposes a summary of a container for observability.
type ContainerState struct {
	Schema        string   `json:"schema"`
	TimeReference int64    `json:"time_reference"`
	Timelines     []string `json:"timelines"`
	Streams       []string `json:"streams"`
	Environments  []string `json:"environments"`
	Tags          []string `json:"tags"`
	EventCount    int      `json:"event_count"`
	Samples       int      `json:"samples"`
}

// State implements introspection.Introspectable.
func (c *Container) State() any {
	samples := 0
	for _, s := range c.doc.Streams {
		samples += len(s.Values)
	}
	return ContainerState{
		Schema:        c.doc.Schema,
		TimeReference: c.doc.TimeReference,
		Timelines:     c.TimelineNames(),
		Streams:       c.StreamNames(),
		Environments:  c.EnvironmentNames(),
		Tags:          c.Tags(),
		EventCount:    len(c.doc.Events),
		Samples:       samples,
	}
}

// ComponentType implements introspection.Component.
func (c *Container) ComponentType() string {
	return "container"
}

var _ introspection.Introspectable = (*Container)(nil)
var _ introspection.Component = (*Container)(nil)
