package service

import (
	"context"
	"log"
	"sync"
	"time"

	"feeportal/internal/domain"
)

// EventHandler consumes post-commit events.
type EventHandler interface {
	Handle(ctx context.Context, evt domain.PaymentEvent) error
}

// Dispatcher queues post-commit events and hands them to an EventHandler on
// background workers, so request latency never includes notification latency.
// Handler failures are logged and dropped.
type Dispatcher struct {
	handler EventHandler
	queue   chan domain.PaymentEvent
	workers int
	timeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// DefaultEventTimeout bounds the time spent handling a single event.
const DefaultEventTimeout = 30 * time.Second

// NewDispatcher creates a Dispatcher with a bounded queue.
func NewDispatcher(handler EventHandler, queueSize, workers int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		handler: handler,
		queue:   make(chan domain.PaymentEvent, queueSize),
		workers: workers,
		timeout: DefaultEventTimeout,
	}
}

// Start launches the workers. Calling Start more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Publish enqueues an event without blocking.
func (d *Dispatcher) Publish(evt domain.PaymentEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- evt:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Stop stops accepting events and waits for queued ones to be handled, or
// for ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for evt := range d.queue {
		d.process(evt)
	}
}

func (d *Dispatcher) process(evt domain.PaymentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Dispatcher] panic handling %s for Order %s: %v", evt.Type, evt.OrderID, r)
		}
	}()

	if err := d.handler.Handle(ctx, evt); err != nil {
		log.Printf("[Dispatcher] %s for Order %s failed: %v", evt.Type, evt.OrderID, err)
	}
}
