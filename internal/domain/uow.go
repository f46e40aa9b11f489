package domain

import (
	"context"

	"linkgate/internal/domain/event"
)

// UnitOfWork runs store operations atomically.
type UnitOfWork interface {
	// Do runs fn in one transaction and commits if fn returns nil. The ctx
	// passed to fn carries the transaction; repositories called with it join
	// it. After the commit, the pending events of aggregates are published
	// and cleared. A rollback keeps them pending.
	Do(ctx context.Context, fn func(ctx context.Context) error, aggregates ...AggregateRoot) error
}

// AggregateRoot collects events until its changes are committed.
type AggregateRoot interface {
	Events() []event.Event
	ClearEvents()
}
