// Package wire implements the binary protocol spoken with LED
// controllers: little-endian frame encoding, zlib compression, and
// telemetry parsing. It performs no I/O — every function here is a pure
// transform over byte slices, kept separate from internal/channel so it
// can be tested without a socket.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/davepl/NDSCPP/internal/pixel"
)

// CommandSetPixels is the only outbound command this repo emits.
const CommandSetPixels uint16 = 3

// EncodeU16LE appends v to dst in little-endian order.
func EncodeU16LE(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

// EncodeU32LE appends v to dst in little-endian order.
func EncodeU32LE(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// EncodeU64LE appends v to dst in little-endian order.
func EncodeU64LE(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// EncodeF64LE appends the IEEE-754 bit pattern of v to dst in
// little-endian byte order.
func EncodeF64LE(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

// DecodeU16LE reads a little-endian uint16 from the front of b.
func DecodeU16LE(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// DecodeU32LE reads a little-endian uint32 from the front of b.
func DecodeU32LE(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// DecodeU64LE reads a little-endian uint64 from the front of b.
func DecodeU64LE(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

// DecodeF64LE reads a little-endian IEEE-754 double from the front of b.
func DecodeF64LE(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// PixelsToBytes packs pixels into a 3*len(pixels)-byte slice. If reversed
// is set, pixels are emitted from the last index to the first. If
// redGreenSwap is set, each pixel is emitted G, R, B instead of R, G, B.
func PixelsToBytes(pixels []pixel.Pixel, reversed, redGreenSwap bool) []byte {
	out := make([]byte, 0, 3*len(pixels))
	n := len(pixels)
	for i := 0; i < n; i++ {
		idx := i
		if reversed {
			idx = n - 1 - i
		}
		p := pixels[idx]
		if redGreenSwap {
			out = append(out, p.G, p.R, p.B)
		} else {
			out = append(out, p.R, p.G, p.B)
		}
	}
	return out
}

// Timestamp splits a duration-since-epoch expressed in seconds into
// integer seconds and the remaining whole microseconds, the layout the
// outbound frame header requires.
func Timestamp(seconds float64) (secs, micros uint64) {
	secs = uint64(seconds)
	frac := seconds - float64(secs)
	micros = uint64(frac * 1e6)
	return secs, micros
}

// BuildFrame assembles the uncompressed outbound frame for one channel:
// header (command, channel, pixel count, timestamp) followed by packed
// pixel bytes. timestampSeconds is the wall-clock time (feature time
// offset already applied) the frame is stamped with.
func BuildFrame(channel uint16, pixels []pixel.Pixel, reversed, redGreenSwap bool, timestampSeconds float64) []byte {
	pixelBytes := PixelsToBytes(pixels, reversed, redGreenSwap)
	secs, micros := Timestamp(timestampSeconds)

	out := make([]byte, 0, 24+len(pixelBytes))
	out = EncodeU16LE(out, CommandSetPixels)
	out = EncodeU16LE(out, channel)
	out = EncodeU32LE(out, uint32(len(pixels)))
	out = EncodeU64LE(out, secs)
	out = EncodeU64LE(out, micros)
	out = append(out, pixelBytes...)
	return out
}
