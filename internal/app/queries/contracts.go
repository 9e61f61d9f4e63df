package queries

import (
	"context"
	"errors"
	"fmt"
)

// Query is a read-only request. Key names the single handler that answers it.
type Query interface {
	Key() string
}

// Handler answers one query type. Handlers open read-only units and never
// write to the store.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

// Ask sends query through bus and narrows the answer to R. A nil answer
// yields the zero R.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var answer R
	if bus == nil {
		return answer, ErrNilBus
	}
	raw, err := bus.Ask(ctx, query)
	if err != nil || raw == nil {
		return answer, err
	}
	answer, ok := raw.(R)
	if !ok {
		return answer, fmt.Errorf("%w: %s answered %T", ErrResultType, query.Key(), raw)
	}
	return answer, nil
}
