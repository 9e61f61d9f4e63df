package uow

import (
	"context"
	"errors"
	"testing"
)

type stubUnit struct {
	UnitOfWork
	bound bool
}

type sessionKey struct{}

func (u *stubUnit) InjectContext(ctx context.Context) context.Context {
	u.bound = true
	return context.WithValue(ctx, sessionKey{}, "session")
}

type stubFactory struct {
	unit *stubUnit
}

func (f stubFactory) Begin(context.Context, TxOptions) (UnitOfWork, error) {
	return f.unit, nil
}

func TestStartBindsUnitAndSession(t *testing.T) {
	unit := &stubUnit{}
	got, ctx, err := Start(context.Background(), stubFactory{unit: unit}, TxOptions{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if got != unit || !unit.bound {
		t.Fatalf("unexpected unit %+v", got)
	}
	if ctx.Value(sessionKey{}) != "session" {
		t.Fatal("session not carried by the returned context")
	}
	joined, ok := FromContext(ctx)
	if !ok || joined != unit {
		t.Fatalf("FromContext = %v, %v", joined, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("empty context must not carry a unit")
	}
}

func TestStartWithoutFactory(t *testing.T) {
	if _, _, err := Start(context.Background(), nil, TxOptions{}); !errors.Is(err, ErrUnitOfWorkMissing) {
		t.Fatalf("expected ErrUnitOfWorkMissing, got %v", err)
	}
}
