// Package feature implements the rectangular, channel-bound view into a
// canvas that turns canvas pixels into an encoded wire frame.
package feature

import (
	"github.com/google/uuid"

	"github.com/davepl/NDSCPP/internal/pixel"
	"github.com/davepl/NDSCPP/internal/wire"
)

// Feature is a derived view: it carries no pixel storage of its own and
// names its channel by host (a back-reference resolved at use sites by
// the controller), rather than holding a pointer to it — see
// DESIGN.md / spec.md §9 on raw pointers between Feature and Channel.
type Feature struct {
	ID uuid.UUID

	HostName string
	Port     int

	Width, Height   int
	OffsetX, OffsetY int

	ChannelNumber int

	Reversed     bool
	RedGreenSwap bool

	ClientBufferCount uint
	TimeOffset        float64
}

// New returns a Feature with the given geometry and channel binding.
func New(hostName string, port, width, height, offsetX, offsetY, channelNumber int) *Feature {
	return &Feature{
		ID:            uuid.New(),
		HostName:      hostName,
		Port:          port,
		Width:         width,
		Height:        height,
		OffsetX:       offsetX,
		OffsetY:       offsetY,
		ChannelNumber: channelNumber,
	}
}

// Surface is the minimal view of a canvas's pixel grid a feature needs
// in order to snapshot its window; satisfied by *pixel.Surface.
type Surface interface {
	GetPixel(x, y int) pixel.Pixel
}

// snapshot reads the feature's rectangle out of surface in row-major
// order. Coordinates outside the surface read as black — Surface.GetPixel
// already clips, so no bounds checking is needed here.
func (f *Feature) snapshot(surface Surface) []pixel.Pixel {
	pixels := make([]pixel.Pixel, 0, f.Width*f.Height)
	for y := f.OffsetY; y < f.OffsetY+f.Height; y++ {
		for x := f.OffsetX; x < f.OffsetX+f.Width; x++ {
			pixels = append(pixels, surface.GetPixel(x, y))
		}
	}
	return pixels
}

// GetDataFrame snapshots the feature's window of surface and encodes it
// as an uncompressed outbound frame stamped at nowSeconds + TimeOffset.
// Compression happens in the channel, not here, so channel-level byte
// counters reflect what actually goes on the wire.
func (f *Feature) GetDataFrame(surface Surface, nowSeconds float64) []byte {
	pixels := f.snapshot(surface)
	return wire.BuildFrame(uint16(f.ChannelNumber), pixels, f.Reversed, f.RedGreenSwap, nowSeconds+f.TimeOffset)
}
