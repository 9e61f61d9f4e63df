package middleware

import (
	"context"
	"errors"
	"strings"

	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/queries"
)

var (
	ErrUnauthenticated = errors.New("middleware: authentication required")
	ErrForbidden       = errors.New("middleware: insufficient permissions")
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Actor identifies the caller of a command or query.
type Actor struct {
	ClientID string
	Roles    []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

type actorKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// RoleRestricted messages require the actor to hold a role.
type RoleRestricted interface {
	RequiredRole() string
}

// RoleAuthorizer enforces RoleRestricted messages against the context actor.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(RoleRestricted)
	if !ok || restricted.RequiredRole() == "" {
		return nil
	}
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !actor.HasRole(restricted.RequiredRole()) {
		return ErrForbidden
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
