package support

import (
	"context"

	"hotelbook/internal/app/uow"
)

// BeginReadOnlyUnit joins the unit already in ctx or starts a read-only one.
// cleanup is nil when an outer unit is reused.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	unit, execCtx, err := uow.Start(ctx, factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// Managed runs fn inside the unit found in ctx, or inside a new unit that is
// committed when fn succeeds and rolled back otherwise.
func Managed(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	return Owned(ctx, factory, fn)
}

// Owned always starts a fresh unit, ignoring any unit already in ctx.
func Owned(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	unit, execCtx, err := uow.Start(ctx, factory, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()
	if err := fn(execCtx, unit); err != nil {
		return err
	}
	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	committed = true
	return nil
}
