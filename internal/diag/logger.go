package diag

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultBufferSize is the event channel capacity.
	DefaultBufferSize = 1024

	// appendTimeout bounds a single sink write.
	appendTimeout = 5 * time.Second
)

// Sink persists diagnostic events.
type Sink interface {
	Append(ctx context.Context, event *Event) error
}

// Logger records diagnostic events without ever failing the caller.
// Events go through a bounded channel drained by a single writer
// goroutine; when the buffer is full the event is dropped and counted.
type Logger struct {
	sink    Sink
	logger  *slog.Logger
	events  chan *Event
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewLogger creates a Logger and starts its writer goroutine.
// bufferSize <= 0 falls back to DefaultBufferSize.
func NewLogger(sink Sink, logger *slog.Logger, bufferSize int) *Logger {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	l := &Logger{
		sink:   sink,
		logger: logger.With("component", "diag.logger"),
		events: make(chan *Event, bufferSize),
		done:   make(chan struct{}),
	}

	go l.run()

	return l
}

// Log enqueues an event. Fire-and-forget: it never blocks on the sink,
// never returns an error and is safe for concurrent use. A full buffer
// drops the event.
func (l *Logger) Log(event *Event) {
	if event == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}

	select {
	case l.events <- event:
	default:
		dropped := l.dropped.Add(1)
		l.logger.Warn("diagnostic event dropped",
			"step", event.Step,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of events dropped due to a full buffer.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

// run drains the event channel into the sink until Shutdown closes it.
func (l *Logger) run() {
	defer close(l.done)

	for event := range l.events {
		l.append(event)
	}
}

// append writes one event, swallowing sink failures. A logging failure
// must never affect the request that produced the event.
func (l *Logger) append(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := l.sink.Append(ctx, event); err != nil {
		l.logger.Warn("failed to persist diagnostic event",
			"event_id", event.ID,
			"step", event.Step,
			"error", err,
		)
	}
}

// Shutdown stops accepting events and drains what is buffered.
// Returns the context's error if draining does not finish in time.
func (l *Logger) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.events)
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
