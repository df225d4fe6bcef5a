// Package canvas implements the named pixel surface plus its ordered
// list of feature views. Canvas owns its features; it owns no channels.
package canvas

import (
	"github.com/google/uuid"

	"github.com/davepl/NDSCPP/internal/effects"
	"github.com/davepl/NDSCPP/internal/feature"
	"github.com/davepl/NDSCPP/internal/pixel"
)

// Canvas holds one graphics surface, the ordered features that view into
// it, and the effects manager driving it. Feature order is transmission
// order within a render tick.
type Canvas struct {
	ID   uuid.UUID
	Name string

	surface *pixel.Surface

	features []*feature.Feature

	Effects *effects.Manager
}

// New creates an empty, named canvas over a width x height surface, with
// its own effects manager targeting targetFPS (<= 0 means the manager's
// default).
func New(name string, width, height int, targetFPS float64) *Canvas {
	return &Canvas{
		ID:      uuid.New(),
		Name:    name,
		surface: pixel.NewSurface(width, height),
		Effects: effects.NewManager(targetFPS),
	}
}

// Surface returns the canvas's pixel grid. Satisfies effects.Canvas.
func (c *Canvas) Surface() *pixel.Surface {
	return c.surface
}

// AddFeature appends f to the canvas's ordered feature list.
func (c *Canvas) AddFeature(f *feature.Feature) {
	c.features = append(c.features, f)
}

// Features returns the canvas's features in transmission order. The
// returned slice is owned by the canvas; callers must not mutate it.
// Satisfies effects.Canvas.
func (c *Canvas) Features() []*feature.Feature {
	return c.features
}
