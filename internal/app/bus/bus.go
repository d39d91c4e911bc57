package bus

import (
	"context"
	"sync"
	"time"
)

// EventType represents the type of engine event
type EventType string

const (
	EventSourceStarted  EventType = "source_started"
	EventSourceStopped  EventType = "source_stopped"
	EventSourceFailed   EventType = "source_failed"
	EventFilterApplied  EventType = "filter_applied"
	EventReflowComplete EventType = "reflow_complete"
	EventFlushComplete  EventType = "flush_complete"
	EventStoreReset     EventType = "store_reset"
)

// Event represents an engine event
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
	Critical  bool
}

// SourceStartedData contains source start details
type SourceStartedData struct {
	Name string
}

// SourceStoppedData contains source end-of-stream details
type SourceStoppedData struct {
	Name  string
	Lines int
}

// SourceFailedData contains source failure details
type SourceFailedData struct {
	Name  string
	Error error
}

// ReflowCompleteData contains full-reflow completion details
type ReflowCompleteData struct {
	Generation uint64
	Matched    int
	Scanned    int
	Elapsed    time.Duration
}

// FlushCompleteData contains incremental flush details
type FlushCompleteData struct {
	Generation uint64
	Buffered   int
	Matched    int
}

// StoreResetData contains reset details
type StoreResetData struct {
	Generation uint64
}

// Bus defines the interface for event publishing and subscription
type Bus interface {
	Subscribe(ctx context.Context) <-chan Event
	Publish(event Event)
	Close()
}

type eventBus struct {
	subscribers []chan Event
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
}

// New creates a new event bus with the specified buffer size
func New(bufferSize int) Bus {
	return &eventBus{
		subscribers: make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a new subscription channel for events
func (eb *eventBus) Subscribe(ctx context.Context) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers = append(eb.subscribers, ch)

	go func() {
		<-ctx.Done()
		eb.unsubscribe(ch)
	}()

	return ch
}

// Publish sends an event to all subscribers. Non-critical events are dropped
// for slow subscribers rather than blocking the publisher.
func (eb *eventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	event.Timestamp = time.Now()

	for _, ch := range eb.subscribers {
		if event.Critical {
			ch <- event
			continue
		}

		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes all subscriber channels
func (eb *eventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, ch := range eb.subscribers {
		close(ch)
	}

	eb.subscribers = nil
}

func (eb *eventBus) unsubscribe(ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)

			close(ch)

			break
		}
	}
}

// NoOp returns a no-op bus for tests and headless runs
func NoOp() Bus {
	return &noOpBus{}
}

type noOpBus struct{}

// Subscribe returns an already-closed channel; a no-op bus never delivers,
// so subscribers drain to completion immediately
func (n *noOpBus) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event)
	close(ch)

	return ch
}

func (n *noOpBus) Publish(event Event) {}
func (n *noOpBus) Close()              {}
