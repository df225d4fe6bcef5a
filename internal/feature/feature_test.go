package feature

import (
	"bytes"
	"testing"

	"github.com/davepl/NDSCPP/internal/pixel"
)

func TestGetDataFrameSinglePixel(t *testing.T) {
	surface := pixel.NewSurface(4, 4)
	surface.Fill(pixel.Pixel{R: 255, G: 0, B: 0})

	f := New("controller-a", 7777, 1, 1, 0, 0, 1)

	got := f.GetDataFrame(surface, 10.0)

	want := []byte{
		0x03, 0x00, // command
		0x01, 0x00, // channel
		0x01, 0x00, 0x00, 0x00, // pixel count
		0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // seconds
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // micros
		0xFF, 0x00, 0x00, // pixel
	}

	if !bytes.Equal(got, want) {
		t.Errorf("GetDataFrame() = % X, want % X", got, want)
	}
}

func TestGetDataFrameClipsOutOfBoundsToBlack(t *testing.T) {
	surface := pixel.NewSurface(2, 2)
	surface.Fill(pixel.Pixel{R: 10, G: 20, B: 30})

	// Offset window extends past the surface bounds.
	f := New("controller-a", 7777, 3, 1, 1, 0, 1)

	got := f.GetDataFrame(surface, 0)

	// Header is 24 bytes; pixel payload is 3 pixels * 3 bytes.
	pixels := got[24:]
	if len(pixels) != 9 {
		t.Fatalf("len(pixels) = %d, want 9", len(pixels))
	}

	// x=1 is inside the 2-wide surface, x=2 and x=3 are not.
	if pixels[0] != 10 || pixels[1] != 20 || pixels[2] != 30 {
		t.Errorf("in-bounds pixel = %v, want (10,20,30)", pixels[:3])
	}
	for i := 3; i < 9; i++ {
		if pixels[i] != 0 {
			t.Errorf("out-of-bounds byte %d = %d, want 0", i, pixels[i])
		}
	}
}

func TestGetDataFrameRowMajorOrder(t *testing.T) {
	surface := pixel.NewSurface(2, 2)
	surface.SetPixel(0, 0, pixel.Pixel{R: 1})
	surface.SetPixel(1, 0, pixel.Pixel{R: 2})
	surface.SetPixel(0, 1, pixel.Pixel{R: 3})
	surface.SetPixel(1, 1, pixel.Pixel{R: 4})

	f := New("controller-a", 7777, 2, 2, 0, 0, 1)
	got := f.GetDataFrame(surface, 0)
	pixels := got[24:]

	want := []byte{1, 0, 0, 2, 0, 0, 3, 0, 0, 4, 0, 0}
	if !bytes.Equal(pixels, want) {
		t.Errorf("pixels = % X, want % X", pixels, want)
	}
}
