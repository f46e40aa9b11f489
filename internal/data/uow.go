package data

import (
	"context"

	"linkgate/internal/domain"
	"linkgate/internal/domain/event"
	"linkgate/internal/infra/eventbus"

	"entgo.io/ent/dialect"
	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.UnitOfWork = (*unitOfWork)(nil)

type txKey struct{}

// unitOfWork implements domain.UnitOfWork over the SQL driver. Events of the
// given aggregates are published after a successful commit.
type unitOfWork struct {
	data *Data
	bus  *eventbus.EventBus
	log  *log.Helper
}

// NewUnitOfWork creates a new UnitOfWork. bus may be nil.
func NewUnitOfWork(data *Data, bus *eventbus.EventBus, logger log.Logger) domain.UnitOfWork {
	return &unitOfWork{
		data: data,
		bus:  bus,
		log:  log.NewHelper(logger),
	}
}

// Do executes fn within a database transaction. A transaction already present
// in ctx is reused.
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error, aggregates ...domain.AggregateRoot) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := u.data.db.Tx(ctx)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			u.log.WithContext(ctx).Errorf("rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	u.publish(ctx, aggregates)
	return nil
}

func (u *unitOfWork) publish(ctx context.Context, aggregates []domain.AggregateRoot) {
	var events []event.Event
	for _, aggregate := range aggregates {
		events = append(events, aggregate.Events()...)
		aggregate.ClearEvents()
	}
	if len(events) == 0 || u.bus == nil {
		return
	}
	if err := u.bus.PublishAll(ctx, events); err != nil {
		u.log.WithContext(ctx).Warnf("failed to publish domain events: %v", err)
	}
}

// TxFromContext retrieves the transaction from context.
func TxFromContext(ctx context.Context) dialect.Tx {
	tx, _ := ctx.Value(txKey{}).(dialect.Tx)
	return tx
}

// conn returns the transaction in ctx, or the driver itself.
func (d *Data) conn(ctx context.Context) dialect.ExecQuerier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return d.db
}
