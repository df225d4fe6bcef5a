package effects

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davepl/NDSCPP/internal/controller"
)

const defaultTargetFPS = 30.0

// Manager owns the effect list, the current-effect index, and the
// render-loop goroutine. It is the single writer of effect state and
// the single enqueuer of frames onto channels, so no lock is needed
// between the renderer and channel senders beyond the channel queue's
// own — see spec.md §4.G "Why this shape".
type Manager struct {
	mu      sync.Mutex
	effects []Effect
	current int // -1 means no effect selected

	targetFPS float64

	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	fps            atomic.Uint64 // math.Float64bits of the measured FPS
	queueFullCount atomic.Uint64
}

// NewManager returns an empty manager targeting targetFPS render ticks
// per second. A targetFPS <= 0 defaults to 30, per spec.md §4.G.
func NewManager(targetFPS float64) *Manager {
	if targetFPS <= 0 {
		targetFPS = defaultTargetFPS
	}
	return &Manager{current: -1, targetFPS: targetFPS}
}

// AddEffect appends e to the effect list. If the list was empty, e
// becomes current (but is not Started — Start/SetCurrent does that).
func (m *Manager) AddEffect(e Effect) error {
	if e == nil {
		return fmt.Errorf("%w: nil effect", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.effects = append(m.effects, e)
	if m.current == -1 {
		m.current = 0
	}
	return nil
}

// RemoveEffect removes the first occurrence of e. If the removed index
// is at or before current, current shifts left by one (a current of 0
// stays 0); if the list becomes empty, current becomes "none" (-1).
func (m *Manager) RemoveEffect(e Effect) error {
	if e == nil {
		return fmt.Errorf("%w: nil effect", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, existing := range m.effects {
		if existing == e {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	m.effects = append(m.effects[:idx], m.effects[idx+1:]...)

	switch {
	case len(m.effects) == 0:
		m.current = -1
	case idx <= m.current:
		if m.current > 0 {
			m.current--
		} else {
			m.current = 0
		}
	}
	return nil
}

// SetCurrent selects the effect at index i and starts it against
// canvas.
func (m *Manager) SetCurrent(i int, canvas Canvas) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.effects) {
		m.mu.Unlock()
		return fmt.Errorf("%w: index %d, have %d effects", ErrOutOfRange, i, len(m.effects))
	}
	m.current = i
	e := m.effects[i]
	m.mu.Unlock()

	e.Start(canvas)
	return nil
}

// NextEffect advances to the next effect, wrapping modularly. A no-op
// on an empty list.
func (m *Manager) NextEffect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.effects) == 0 {
		return
	}
	m.current = (m.current + 1) % len(m.effects)
}

// PreviousEffect retreats to the previous effect, wrapping modularly. A
// no-op on an empty list.
func (m *Manager) PreviousEffect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.effects) == 0 {
		return
	}
	m.current = (m.current - 1 + len(m.effects)) % len(m.effects)
}

// currentEffect returns the effect at m.current, or nil if none.
func (m *Manager) currentEffect() Effect {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current < 0 || m.current >= len(m.effects) {
		return nil
	}
	return m.effects[m.current]
}

// GetFPS returns the most recently measured render-loop rate.
func (m *Manager) GetFPS() float64 {
	return math.Float64frombits(m.fps.Load())
}

// GetQueueFullCount returns the number of drop-on-full events observed
// by the render loop since it started.
func (m *Manager) GetQueueFullCount() uint64 {
	return m.queueFullCount.Load()
}

// Start begins the render loop against canvas, resolving each feature's
// channel through ctrl. Start is idempotent: calling it while already
// running has no effect.
func (m *Manager) Start(canvas Canvas, ctrl *controller.Controller) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	if e := m.currentEffect(); e != nil {
		e.Start(canvas)
	}

	go m.renderLoop(ctx, canvas, ctrl)
}

// Stop halts the render loop and waits for it to exit. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
}

// renderLoop is the single cooperative task described in spec.md §4.G:
// per tick it advances the current effect, then encodes and enqueues a
// frame for every feature of canvas. It uses a deadline-based scheduler
// (see DESIGN.md Open Question (a)) rather than a fixed-interval ticker
// so a slow tick does not compound drift: under sustained overload it
// free-runs instead of trying to catch up more than one frame.
func (m *Manager) renderLoop(ctx context.Context, canvas Canvas, ctrl *controller.Controller) {
	defer close(m.done)
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	frameInterval := time.Duration(float64(time.Second) / m.targetFPS)
	lastTime := time.Now()
	nextTick := lastTime.Add(frameInterval)
	frameCount := 0
	fpsWindowStart := lastTime

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		delta := now.Sub(lastTime)
		lastTime = now

		if e := m.currentEffect(); e != nil {
			e.Update(canvas, delta)
		}

		if err := m.deliverFrames(canvas, ctrl, now); err != nil {
			log.Printf("effects: render loop stopping: %v", err)
			return
		}

		frameCount++
		if elapsed := now.Sub(fpsWindowStart); elapsed >= time.Second {
			rate := float64(frameCount) / elapsed.Seconds()
			m.fps.Store(math.Float64bits(rate))
			frameCount = 0
			fpsWindowStart = now
		}

		sleep := time.Until(nextTick)
		nextTick = nextTick.Add(frameInterval)
		if sleep <= 0 {
			// Overloaded: don't try to catch up, just keep going.
			nextTick = time.Now().Add(frameInterval)
			continue
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// deliverFrames encodes and enqueues one frame per feature of canvas.
// An unresolved channel host is a programming error and is fatal to the
// loop per spec.md §7; a full queue is a non-fatal, counted event.
func (m *Manager) deliverFrames(canvas Canvas, ctrl *controller.Controller, now time.Time) error {
	nowSeconds := float64(now.UnixNano()) / 1e9

	for _, f := range canvas.Features() {
		ch, err := ctrl.FindChannelByHost(f.HostName)
		if err != nil {
			return fmt.Errorf("feature %s: %w", f.ID, err)
		}

		frame := f.GetDataFrame(canvas.Surface(), nowSeconds)

		compressed, err := ch.CompressFrame(frame)
		if err != nil {
			log.Printf("effects: discarding frame for %s: %v", f.HostName, err)
			continue
		}

		if !ch.EnqueueFrame(compressed) {
			m.queueFullCount.Add(1)
		}
	}
	return nil
}
