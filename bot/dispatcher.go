package bot

import (
	"context"
	"sync"
)

// Handler processes one event to completion
type Handler interface {
	Handle(ctx context.Context, ev Event)
}

// Dispatcher fans events out to a fixed set of workers. Events from the
// same chat always land on the same worker, so a conversation is handled
// in arrival order while different chats proceed in parallel.
type Dispatcher struct {
	handler Handler
	queues  []chan Event
	wg      sync.WaitGroup
	once    sync.Once
}

// NewDispatcher creates a dispatcher with the given number of workers,
// each with a queue of queueSize pending events
func NewDispatcher(handler Handler, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	d := &Dispatcher{
		handler: handler,
		queues:  make([]chan Event, workers),
	}
	for i := range d.queues {
		d.queues[i] = make(chan Event, queueSize)
	}
	return d
}

// Start launches the workers. ctx is handed to every Handle call; cancel
// it only after Stop so queued events still get a live context.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, q := range d.queues {
		d.wg.Add(1)
		go func(q <-chan Event) {
			defer d.wg.Done()
			for ev := range q {
				d.handler.Handle(ctx, ev)
			}
		}(q)
	}
}

// Dispatch queues ev on its chat's worker. It blocks while that queue is
// full and gives up when ctx is done. Must not be called after Stop.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	q := d.queues[d.shard(SourceOf(ev).ChatID)]
	select {
	case q <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queues and waits for workers to finish what is queued
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		for _, q := range d.queues {
			close(q)
		}
	})
	d.wg.Wait()
}

func (d *Dispatcher) shard(chatID int64) int {
	// group chats have negative ids
	return int(uint64(chatID) % uint64(len(d.queues)))
}
