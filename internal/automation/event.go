package automation

import (
	"sync"
	"time"
)

// BoardEvent represents a board mutation that can trigger automation rules.
type BoardEvent struct {
	BoardID    uint
	Trigger    string         // One of the entities.Trigger* constants
	CardID     uint           // Card the event is about; 0 for board-level events
	Properties map[string]any // Event-specific properties for condition evaluation
	Timestamp  time.Time
}

// BoardEventHandler processes board events.
type BoardEventHandler func(event *BoardEvent)

const (
	// eventBusBufferSize is the capacity of the async event channel.
	// Events are dropped if the buffer is full to avoid blocking callers.
	eventBusBufferSize = 1000
)

// EventBus is an async pub/sub for board events. Publish is non-blocking:
// events are sent to a buffered channel and processed by a worker goroutine,
// so board mutation handlers are never blocked by rule evaluation or DB
// writes. Each engine owns its bus; there is no package-level instance.
type EventBus struct {
	handlers []BoardEventHandler
	mu       sync.RWMutex
	eventCh  chan *BoardEvent
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewEventBus creates a new board event bus and starts its worker.
func NewEventBus() *EventBus {
	b := &EventBus{
		handlers: make([]BoardEventHandler, 0),
		eventCh:  make(chan *BoardEvent, eventBusBufferSize),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go b.processLoop()
	return b
}

// Subscribe registers a handler for board events.
func (b *EventBus) Subscribe(handler BoardEventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish enqueues an event for async processing. Non-blocking: if the
// buffer is full the event is dropped to protect callers on hot paths.
// Events are silently dropped after Stop() has been called.
func (b *EventBus) Publish(event *BoardEvent) {
	select {
	case <-b.stopCh:
		return // Bus is stopped, discard event
	default:
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	default:
		// Buffer full — drop event to avoid blocking callers
	}
}

// Stop shuts down the worker goroutine after draining queued events.
// Safe to call multiple times; blocks until the worker has exited.
func (b *EventBus) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})
	<-b.doneCh
}

// processLoop drains the event channel and dispatches to handlers.
func (b *EventBus) processLoop() {
	defer close(b.doneCh)
	for {
		select {
		case event := <-b.eventCh:
			b.dispatch(event)
		case <-b.stopCh:
			// Drain remaining events before exiting
			for {
				select {
				case event := <-b.eventCh:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *EventBus) dispatch(event *BoardEvent) {
	b.mu.RLock()
	handlers := make([]BoardEventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.safeCall(handler, event)
	}
}

// safeCall invokes a handler with panic recovery so a panicking handler
// cannot kill the event bus goroutine.
func (b *EventBus) safeCall(handler BoardEventHandler, event *BoardEvent) {
	defer func() {
		// Swallow panics to keep the bus alive. There is no logger
		// available at this level; the handler should do its own logging.
		recover() //nolint:errcheck // intentionally swallowed to keep bus alive
	}()
	handler(event)
}
