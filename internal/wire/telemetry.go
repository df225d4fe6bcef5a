package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// currentResponseSize is the wire size of ClientResponse (with sequence).
const currentResponseSize = 68

// legacyResponseSize is the wire size of the pre-sequence ClientResponse.
const legacyResponseSize = 60

// ErrBadResponseSize is returned when a telemetry payload is neither the
// legacy nor the current length.
var ErrBadResponseSize = errors.New("wire: bad client response size")

// ClientResponse is the normalized, host-endian telemetry report a
// controller sends back after processing frames. Size is always
// currentResponseSize once parsed, regardless of which wire form it came
// from — see ParseClientResponse.
//
// wifiSignal travels on the wire as a 32-bit float, not a 64-bit double
// like the other measurements; that is the field that makes the legacy
// (60-byte) and current (68-byte) sizes land where spec'd instead of 4
// bytes over both — see DESIGN.md's Open Question notes.
type ClientResponse struct {
	Size         uint32
	Sequence     uint64
	FlashVersion uint32
	CurrentClock float64
	OldestPacket float64
	NewestPacket float64
	Brightness   float64
	WifiSignal   float64
	BufferSize   uint32
	BufferPos    uint32
	FPSDrawing   uint32
	Watts        uint32
}

// ParseClientResponse decodes the first n bytes of b as a raw telemetry
// payload. b must hold at least n bytes (it may be a larger read buffer),
// and n must be either 60 (legacy, no sequence field) or 68 (current).
// The legacy form is widened to the current form with Sequence == 0.
func ParseClientResponse(b []byte, n int) (ClientResponse, error) {
	if len(b) < n {
		return ClientResponse{}, fmt.Errorf("%w: got %d bytes, want %d", ErrBadResponseSize, len(b), n)
	}
	switch n {
	case currentResponseSize:
		return parseCurrent(b), nil
	case legacyResponseSize:
		return parseLegacy(b), nil
	default:
		return ClientResponse{}, fmt.Errorf("%w: %d", ErrBadResponseSize, n)
	}
}

// current (68 bytes):
// size(4) sequence(8) flashVersion(4) currentClock(8) oldestPacket(8)
// newestPacket(8) brightness(8) wifiSignal(4, f32) bufferSize(4)
// bufferPos(4) fpsDrawing(4) watts(4)
func parseCurrent(b []byte) ClientResponse {
	return ClientResponse{
		Size:         readU32(b[0:4]),
		Sequence:     readU64(b[4:12]),
		FlashVersion: readU32(b[12:16]),
		CurrentClock: readF64(b[16:24]),
		OldestPacket: readF64(b[24:32]),
		NewestPacket: readF64(b[32:40]),
		Brightness:   readF64(b[40:48]),
		WifiSignal:   float64(readF32(b[48:52])),
		BufferSize:   readU32(b[52:56]),
		BufferPos:    readU32(b[56:60]),
		FPSDrawing:   readU32(b[60:64]),
		Watts:        readU32(b[64:68]),
	}
}

// legacy (60 bytes): same as current but without the sequence field.
func parseLegacy(b []byte) ClientResponse {
	return ClientResponse{
		Size:         currentResponseSize,
		Sequence:     0,
		FlashVersion: readU32(b[4:8]),
		CurrentClock: readF64(b[8:16]),
		OldestPacket: readF64(b[16:24]),
		NewestPacket: readF64(b[24:32]),
		Brightness:   readF64(b[32:40]),
		WifiSignal:   float64(readF32(b[40:44])),
		BufferSize:   readU32(b[44:48]),
		BufferPos:    readU32(b[48:52]),
		FPSDrawing:   readU32(b[52:56]),
		Watts:        readU32(b[56:60]),
	}
}

// SerializeClientResponse encodes r back into its wire form, used by
// tests to round-trip against ParseClientResponse. Only the current
// (68-byte) form is ever serialized — the legacy form is a read-only
// migration source, never something this host writes.
func SerializeClientResponse(r ClientResponse) []byte {
	out := make([]byte, 0, currentResponseSize)
	out = EncodeU32LE(out, currentResponseSize)
	out = EncodeU64LE(out, r.Sequence)
	out = EncodeU32LE(out, r.FlashVersion)
	out = EncodeF64LE(out, r.CurrentClock)
	out = EncodeF64LE(out, r.OldestPacket)
	out = EncodeF64LE(out, r.NewestPacket)
	out = EncodeF64LE(out, r.Brightness)
	out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(r.WifiSignal)))
	out = EncodeU32LE(out, r.BufferSize)
	out = EncodeU32LE(out, r.BufferPos)
	out = EncodeU32LE(out, r.FPSDrawing)
	out = EncodeU32LE(out, r.Watts)
	return out
}

// readU32/readU64/readF64/readF32 read little-endian wire values and
// byte-swap them on a big-endian host, matching TranslateClientResponse's
// architecture check in the original source.
func readU32(b []byte) uint32 {
	if isBigEndianHost() {
		return binary.BigEndian.Uint32(swap4(b))
	}
	return binary.LittleEndian.Uint32(b)
}

func readU64(b []byte) uint64 {
	if isBigEndianHost() {
		return binary.BigEndian.Uint64(swap8(b))
	}
	return binary.LittleEndian.Uint64(b)
}

func readF64(b []byte) float64 {
	return math.Float64frombits(readU64(b))
}

func readF32(b []byte) float32 {
	return math.Float32frombits(readU32(b))
}

func swap4(b []byte) []byte {
	return []byte{b[3], b[2], b[1], b[0]}
}

func swap8(b []byte) []byte {
	return []byte{b[7], b[6], b[5], b[4], b[3], b[2], b[1], b[0]}
}

// isBigEndianHost reports whether the running architecture is
// big-endian. On little-endian hosts (the overwhelming majority in
// practice) this is a no-op branch, matching the source's
// std::endian::native check.
func isBigEndianHost() bool {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	return b[0] == 0
}
