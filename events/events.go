package events

import (
	"sync"

	"github.com/corecast/client/coords"
)

// Event is a marker interface for all session events
type Event interface {
	isEvent()
}

// Base implementation for all events
type baseEvent struct{}

func (baseEvent) isEvent() {}

// TuningChanged is fired when frequency, mode, bandwidth or the demodulator
// options change
type TuningChanged struct {
	baseEvent
	Freq      float64
	Mode      string
	Bandwidth float64
}

// SpanChanged is fired when pan/zoom changes the visible span
type SpanChanged struct {
	baseEvent
	Span coords.Span
}

// DisplayChanged is fired when the waterfall dB range or zoom changes
type DisplayChanged struct {
	baseEvent
	MinDb float64
	MaxDb float64
	Zoom  float64
}

// PlayStateChanged is fired when audio playback starts or stops
type PlayStateChanged struct {
	baseEvent
	Playing bool
}

// FrameReceived is fired when a new spectrum frame arrives. Bins must not be
// modified by subscribers.
type FrameReceived struct {
	baseEvent
	Bins []float64
}

// LevelChanged is fired when the smoothed audio level moves
type LevelChanged struct {
	baseEvent
	Db float64
}

// ConnectionError is fired when a socket fails to connect or drops
type ConnectionError struct {
	baseEvent
	Stream string // "audio", "waterfall"
	Err    error
}

// Bus fans events out to subscriber channels. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel buffered to bufferSize. It is closed by Close.
func (b *Bus) Subscribe(bufferSize int) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
