// Package channel implements the durable, reconnecting link to one
// remote LED controller: a bounded outbound frame queue, a state
// machine that dials and redials the controller with exponential
// backoff, and telemetry ingest from the controller's responses.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davepl/NDSCPP/internal/wire"
)

// State names the channel's position in the connection state machine
// described by spec.md §4.C.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateConnected
	StateDisconnected
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateBackoff:
		return "backoff"
	default:
		return "unknown"
	}
}

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	dialTimeout    = 5 * time.Second
	idleTimeout    = 5 * time.Second
	writeTimeout   = 5 * time.Second
	ewmaAlpha      = 0.2
)

// ErrQueueFull is an error value for a full queue, for callers that want
// one (e.g. for logging). EnqueueFrame itself reports a full queue through
// its bool result and never returns this error.
var ErrQueueFull = errors.New("channel: queue full")

// Channel owns one TCP connection to a controller, its bounded outbound
// frame queue and its background sender/receiver goroutines. Lifetime of
// the socket and its goroutines equals the lifetime of the Channel.
type Channel struct {
	ID           uuid.UUID
	HostName     string
	FriendlyName string
	Port         int

	queueMaxSize int
	queue        chan []byte

	mu             sync.RWMutex
	state          State
	reconnectCount uint64
	bytesPerSecond float64
	lastResponse   wire.ClientResponse
	haveResponse   bool

	connMu sync.Mutex
	conn   net.Conn

	cancel context.CancelFunc
	done   chan struct{}
	openMu sync.Mutex
	opened bool
}

// New creates a channel bound to hostName:port with the given bounded
// queue capacity. The channel does not connect until Open is called.
func New(hostName, friendlyName string, port int, queueMaxSize int) *Channel {
	return &Channel{
		ID:           uuid.New(),
		HostName:     hostName,
		FriendlyName: friendlyName,
		Port:         port,
		queueMaxSize: queueMaxSize,
		queue:        make(chan []byte, queueMaxSize),
		state:        StateClosed,
	}
}

// Open starts the connection-management goroutine. Calling Open on an
// already-open channel is a no-op.
func (c *Channel) Open(ctx context.Context) {
	c.openMu.Lock()
	defer c.openMu.Unlock()
	if c.opened {
		return
	}
	c.opened = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(runCtx)
}

// Close stops the channel's goroutines and closes its socket. Calling
// Close on an already-closed or never-opened channel is a no-op.
func (c *Channel) Close() {
	c.openMu.Lock()
	defer c.openMu.Unlock()
	if !c.opened {
		return
	}
	c.opened = false

	c.cancel()
	<-c.done

	c.setState(StateClosed)
}

// EnqueueFrame appends an already-encoded, already-compressed frame to
// the outbound queue. It never blocks; if the queue is full it drops the
// new frame and returns false (drop-newest policy per spec.md §4.C).
func (c *Channel) EnqueueFrame(frame []byte) bool {
	select {
	case c.queue <- frame:
		return true
	default:
		return false
	}
}

// CompressFrame is a convenience wrapper over the wire codec's zlib
// compression, kept on Channel so callers never import internal/wire
// directly for this one call.
func (c *Channel) CompressFrame(frame []byte) ([]byte, error) {
	return wire.Compress(frame)
}

// IsConnected reports whether the channel currently has a live socket.
func (c *Channel) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StateConnected
}

// State returns the channel's current state-machine position.
func (c *Channel) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// GetReconnectCount returns the number of times the channel has
// transitioned from backoff back into connecting.
func (c *Channel) GetReconnectCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reconnectCount
}

// GetCurrentQueueDepth returns the number of frames currently queued,
// without disturbing their order.
func (c *Channel) GetCurrentQueueDepth() int {
	return len(c.queue)
}

// GetQueueMaxSize returns the queue's fixed capacity.
func (c *Channel) GetQueueMaxSize() int {
	return c.queueMaxSize
}

// GetLastBytesPerSecond returns the exponential moving average of bytes
// actually written to the socket, sampled over one-second windows.
func (c *Channel) GetLastBytesPerSecond() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesPerSecond
}

// LastClientResponse returns the most recently parsed telemetry report,
// and whether one has ever been received.
func (c *Channel) LastClientResponse() (wire.ClientResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastResponse, c.haveResponse
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Channel) recordResponse(r wire.ClientResponse) {
	c.mu.Lock()
	c.lastResponse = r
	c.haveResponse = true
	c.mu.Unlock()
}

func (c *Channel) recordBytesPerSecond(rate float64) {
	c.mu.Lock()
	c.bytesPerSecond = ewmaAlpha*rate + (1-ewmaAlpha)*c.bytesPerSecond
	c.mu.Unlock()
}

func (c *Channel) incrementReconnectCount() {
	c.mu.Lock()
	c.reconnectCount++
	c.mu.Unlock()
}

// run drives the connect / backoff / connected state machine until ctx
// is cancelled by Close. It is the channel's single owner of c.conn's
// lifecycle.
func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	backoff := initialBackoff
	firstAttempt := true

	for {
		if ctx.Err() != nil {
			return
		}

		if !firstAttempt {
			c.setState(StateBackoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			c.incrementReconnectCount()
			backoff = nextBackoff(backoff)
		}
		firstAttempt = false

		c.setState(StateConnecting)
		dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
		conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", fmt.Sprintf("%s:%d", c.HostName, c.Port))
		dialCancel()
		if err != nil {
			log.Printf("channel %s: dial failed: %v", c.HostName, err)
			continue
		}

		backoff = initialBackoff
		c.setConn(conn)
		c.setState(StateConnected)
		log.Printf("channel %s: connected", c.HostName)

		c.runConnected(ctx, conn)

		c.setConn(nil)
		c.setState(StateDisconnected)
	}
}

func (c *Channel) setConn(conn net.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

// runConnected launches the sender and receiver for one live socket and
// blocks until either fails or ctx is cancelled.
func (c *Channel) runConnected(ctx context.Context, conn net.Conn) {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		c.sendLoop(connCtx, conn)
		cancel()
	}()
	go func() {
		defer wg.Done()
		c.receiveLoop(connCtx, conn)
		cancel()
	}()

	wg.Wait()
	conn.Close()
}

// sendLoop pops frames off the bounded queue in FIFO order and writes
// them to the socket, accumulating throughput into a one-second EWMA
// window. It exits (closing nothing itself) on a write error or ctx
// cancellation.
func (c *Channel) sendLoop(ctx context.Context, conn net.Conn) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	var windowBytes int64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.recordBytesPerSecond(float64(windowBytes))
			windowBytes = 0
		case frame, ok := <-c.queue:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Printf("channel %s: set write deadline: %v", c.HostName, err)
				return
			}
			n, err := conn.Write(frame)
			windowBytes += int64(n)
			if err != nil {
				log.Printf("channel %s: write failed: %v", c.HostName, err)
				return
			}
		}
	}
}

// receiveLoop reads telemetry reports from the socket and records the
// most recent one. A read exceeding idleTimeout, or any other socket
// error, is treated as a link failure.
func (c *Channel) receiveLoop(ctx context.Context, conn net.Conn) {
	buf := make([]byte, 128)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			log.Printf("channel %s: set read deadline: %v", c.HostName, err)
			return
		}
		n, err := conn.Read(buf)
		if err != nil {
			log.Printf("channel %s: read failed: %v", c.HostName, err)
			return
		}
		if n == 0 {
			continue
		}
		resp, err := wire.ParseClientResponse(buf, n)
		if err != nil {
			log.Printf("channel %s: discarding malformed telemetry: %v", c.HostName, err)
			continue
		}
		c.recordResponse(resp)
	}
}

func nextBackoff(cur time.Duration) time.Duration {
	next := cur * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
