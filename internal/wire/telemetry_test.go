package wire

import (
	"errors"
	"testing"
)

func TestParseClientResponseRoundTrip(t *testing.T) {
	want := ClientResponse{
		Sequence:     42,
		FlashVersion: 7,
		CurrentClock: 123.456,
		OldestPacket: 1.0,
		NewestPacket: 2.0,
		Brightness:   0.75,
		WifiSignal:   -55.0,
		BufferSize:   64,
		BufferPos:    12,
		FPSDrawing:   30,
		Watts:        18,
	}

	encoded := SerializeClientResponse(want)
	got, err := ParseClientResponse(encoded, len(encoded))
	if err != nil {
		t.Fatalf("ParseClientResponse() error = %v", err)
	}

	got.Size = 0 // Size is written by SerializeClientResponse, not taken from want.
	want.Size = 0
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestParseClientResponseLegacyWiden(t *testing.T) {
	legacy := makeLegacyResponse(t, 7, 0.5, 12)

	got, err := ParseClientResponse(legacy, len(legacy))
	if err != nil {
		t.Fatalf("ParseClientResponse() error = %v", err)
	}

	if got.Size != currentResponseSize {
		t.Errorf("Size = %d, want %d", got.Size, currentResponseSize)
	}
	if got.Sequence != 0 {
		t.Errorf("Sequence = %d, want 0", got.Sequence)
	}
	if got.FlashVersion != 7 {
		t.Errorf("FlashVersion = %d, want 7", got.FlashVersion)
	}
	if got.Brightness != 0.5 {
		t.Errorf("Brightness = %v, want 0.5", got.Brightness)
	}
	if got.Watts != 12 {
		t.Errorf("Watts = %d, want 12", got.Watts)
	}
}

func TestParseClientResponseBadSize(t *testing.T) {
	_, err := ParseClientResponse(make([]byte, 40), 40)
	if !errors.Is(err, ErrBadResponseSize) {
		t.Errorf("err = %v, want ErrBadResponseSize", err)
	}
}

// makeLegacyResponse hand-builds a 60-byte legacy telemetry payload with
// the given flashVersion, brightness and watts; every other field is
// zero. It exercises the legacy layout independently from
// SerializeClientResponse, which only ever writes the current form.
func makeLegacyResponse(t *testing.T, flashVersion uint32, brightness float64, watts uint32) []byte {
	t.Helper()
	b := make([]byte, 0, legacyResponseSize)
	b = EncodeU32LE(b, legacyResponseSize)
	b = EncodeU32LE(b, flashVersion)
	b = EncodeF64LE(b, 0) // currentClock
	b = EncodeF64LE(b, 0) // oldestPacket
	b = EncodeF64LE(b, 0) // newestPacket
	b = EncodeF64LE(b, brightness)
	b = EncodeU32LE(b, 0) // wifiSignal (f32 slot, zero)
	b = EncodeU32LE(b, 0) // bufferSize
	b = EncodeU32LE(b, 0) // bufferPos
	b = EncodeU32LE(b, 0) // fpsDrawing
	b = EncodeU32LE(b, watts)
	if len(b) != legacyResponseSize {
		t.Fatalf("built %d bytes, want %d", len(b), legacyResponseSize)
	}
	return b
}
