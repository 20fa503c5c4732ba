package live

import (
	"context"
	"log"
)

// Snapshot is the full result of one query evaluation.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Query is a read query bound to the tables it reads from.
type Query[T any] struct {
	hub    *Hub
	tables []Table
	eval   func(ctx context.Context) (T, error)
}

// NewQuery binds eval to the tables it reads.
func NewQuery[T any](hub *Hub, eval func(ctx context.Context) (T, error), tables ...Table) *Query[T] {
	return &Query[T]{hub: hub, tables: tables, eval: eval}
}

// Tables returns the tables whose writes invalidate the query.
func (q *Query[T]) Tables() []Table {
	return append([]Table(nil), q.tables...)
}

// Get evaluates the query once.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	return q.eval(ctx)
}

// Observe delivers the current result and then a fresh result after every
// committed write to one of the query's tables. Invalidations that arrive while
// the consumer is busy are folded into a single re-evaluation, so the newest
// snapshot always reflects the latest committed state.
//
// The channel is closed once ctx is done; the subscription is released at the
// same time.
func (q *Query[T]) Observe(ctx context.Context) <-chan Snapshot[T] {
	out := make(chan Snapshot[T])
	// Register before the first evaluation so no write slips between the two.
	sub, unsubscribe := q.hub.subscribe(q.tables)

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			value, err := q.eval(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Printf("live: evaluating query on %v: %v", q.tables, err)
			}

			select {
			case out <- Snapshot[T]{Value: value, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-sub.signal:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Map derives a query whose snapshots are fn applied to q's snapshots.
func Map[T, U any](q *Query[T], fn func(T) (U, error)) *Query[U] {
	return &Query[U]{
		hub:    q.hub,
		tables: q.tables,
		eval: func(ctx context.Context) (U, error) {
			v, err := q.eval(ctx)
			if err != nil {
				var zero U
				return zero, err
			}
			return fn(v)
		},
	}
}
