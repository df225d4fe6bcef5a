// Package effects implements the effect list and the render loop that
// drives the currently selected effect at a target frame rate, pushing
// encoded frames to channels after each tick.
package effects

import (
	"errors"
	"time"

	"github.com/davepl/NDSCPP/internal/feature"
	"github.com/davepl/NDSCPP/internal/pixel"
)

// ErrInvalidArgument is returned by AddEffect/RemoveEffect for a nil
// effect.
var ErrInvalidArgument = errors.New("effects: invalid argument")

// ErrOutOfRange is returned by SetCurrent for an out-of-bounds index.
var ErrOutOfRange = errors.New("effects: index out of range")

// Canvas is the minimal view of a canvas an effect and the render loop
// need. internal/canvas.Canvas satisfies this interface structurally;
// this package does not import internal/canvas to avoid a dependency
// cycle (Canvas holds a Manager).
type Canvas interface {
	Surface() *pixel.Surface
	Features() []*feature.Feature
}

// Effect mutates a canvas's pixels over time. Start is called once when
// the effect becomes current; Update is called once per render tick
// with the wall-clock delta since the previous tick.
type Effect interface {
	Start(c Canvas)
	Update(c Canvas, delta time.Duration)
}
