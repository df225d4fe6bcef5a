package channel

import (
	"context"
	"testing"
	"time"
)

func TestEnqueueFrameQueueOverflow(t *testing.T) {
	c := New("unreachable.invalid", "test", 9999, 2)

	if !c.EnqueueFrame([]byte("a")) {
		t.Fatal("first enqueue should succeed")
	}
	if !c.EnqueueFrame([]byte("b")) {
		t.Fatal("second enqueue should succeed")
	}
	if c.EnqueueFrame([]byte("c")) {
		t.Fatal("third enqueue should be dropped")
	}
	if depth := c.GetCurrentQueueDepth(); depth != 2 {
		t.Fatalf("depth = %d, want 2", depth)
	}

	<-c.queue // drain one, simulating the sender

	if depth := c.GetCurrentQueueDepth(); depth != 1 {
		t.Fatalf("depth after drain = %d, want 1", depth)
	}
	if !c.EnqueueFrame([]byte("d")) {
		t.Fatal("enqueue after drain should succeed")
	}
}

func TestEnqueueFrameFIFOOrder(t *testing.T) {
	c := New("unreachable.invalid", "test", 9999, 8)

	frames := [][]byte{[]byte("1"), []byte("2"), []byte("3"), []byte("4")}
	for _, f := range frames {
		if !c.EnqueueFrame(f) {
			t.Fatalf("enqueue %q failed", f)
		}
	}

	for _, want := range frames {
		got := <-c.queue
		if string(got) != string(want) {
			t.Errorf("dequeued %q, want %q", got, want)
		}
	}
}

func TestBackoffProgression(t *testing.T) {
	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}

	backoff := initialBackoff
	for i, w := range want {
		backoff = nextBackoff(backoff)
		if backoff != w {
			t.Errorf("step %d: backoff = %v, want %v", i, backoff, w)
		}
	}
}

func TestNewChannelInitialState(t *testing.T) {
	c := New("host.example", "Friendly", 7777, 4)

	if c.IsConnected() {
		t.Error("new channel should not be connected")
	}
	if got := c.State(); got != StateClosed {
		t.Errorf("State() = %v, want %v", got, StateClosed)
	}
	if got := c.GetReconnectCount(); got != 0 {
		t.Errorf("GetReconnectCount() = %d, want 0", got)
	}
	if _, ok := c.LastClientResponse(); ok {
		t.Error("new channel should have no client response")
	}
	if got := c.GetQueueMaxSize(); got != 4 {
		t.Errorf("GetQueueMaxSize() = %d, want 4", got)
	}
}

func TestOpenCloseIdempotent(t *testing.T) {
	c := New("127.0.0.1", "test", 1, 4)

	c.Open(context.Background())
	c.Open(context.Background()) // no-op, must not deadlock or panic

	c.Close()
	c.Close() // no-op
}

// TestCloseAbortsInFlightDial pins down that Close() cancels a stuck dial
// immediately rather than waiting out dialTimeout: 192.0.2.1 is a
// TEST-NET-1 (RFC 5737) address guaranteed to be unroutable, so the dial
// would otherwise hang for the full dialTimeout before failing.
func TestCloseAbortsInFlightDial(t *testing.T) {
	c := New("192.0.2.1", "test", 7777, 4)

	c.Open(context.Background())
	time.Sleep(20 * time.Millisecond) // let run() start dialing

	start := time.Now()
	c.Close()
	if elapsed := time.Since(start); elapsed > 1*time.Second {
		t.Errorf("Close() took %v, want well under dialTimeout", elapsed)
	}
}
