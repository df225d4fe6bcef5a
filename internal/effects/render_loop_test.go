package effects

import (
	"errors"
	"testing"
	"time"

	"github.com/davepl/NDSCPP/internal/channel"
	"github.com/davepl/NDSCPP/internal/controller"
	"github.com/davepl/NDSCPP/internal/feature"
	"github.com/davepl/NDSCPP/internal/pixel"
)

type redEffect struct{}

func (redEffect) Start(c Canvas) {
	c.Surface().Fill(pixel.Pixel{R: 255})
}

func (redEffect) Update(c Canvas, delta time.Duration) {}

// testCanvas is a minimal Canvas for these tests; internal/canvas cannot
// be imported here because it imports this package.
type testCanvas struct {
	surface  *pixel.Surface
	features []*feature.Feature
}

func (c *testCanvas) Surface() *pixel.Surface      { return c.surface }
func (c *testCanvas) Features() []*feature.Feature { return c.features }

func TestRenderLoopEnqueuesFrames(t *testing.T) {
	f := feature.New("host-a", 7777, 2, 2, 0, 0, 1)
	cv := &testCanvas{surface: pixel.NewSurface(2, 2), features: []*feature.Feature{f}}

	ctrl := controller.New()
	ch := channel.New("host-a", "A", 7777, 8)
	if err := ctrl.AddChannel(ch); err != nil {
		t.Fatalf("AddChannel() error = %v", err)
	}

	m := NewManager(1000) // fast tick for a short-lived test
	if err := m.AddEffect(redEffect{}); err != nil {
		t.Fatalf("AddEffect() error = %v", err)
	}

	m.Start(cv, ctrl)
	defer m.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if ch.GetCurrentQueueDepth() > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no frame enqueued within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRenderLoopStopsOnUnresolvedHost(t *testing.T) {
	f := feature.New("missing-host", 7777, 1, 1, 0, 0, 1)
	cv := &testCanvas{surface: pixel.NewSurface(1, 1), features: []*feature.Feature{f}}

	ctrl := controller.New() // no channels registered

	m := NewManager(1000)
	if err := m.AddEffect(redEffect{}); err != nil {
		t.Fatalf("AddEffect() error = %v", err)
	}

	m.Start(cv, ctrl)

	deadline := time.After(2 * time.Second)
	for {
		m.mu.Lock()
		running := m.running
		m.mu.Unlock()
		if !running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("render loop did not stop after unresolved host")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDeliverFramesReturnsErrorForUnresolvedHost(t *testing.T) {
	f := feature.New("missing-host", 7777, 1, 1, 0, 0, 1)
	cv := &testCanvas{surface: pixel.NewSurface(1, 1), features: []*feature.Feature{f}}

	ctrl := controller.New()
	m := NewManager(30)

	err := m.deliverFrames(cv, ctrl, time.Now())
	if !errors.Is(err, controller.ErrChannelNotFound) {
		t.Errorf("err = %v, want ErrChannelNotFound", err)
	}
}
