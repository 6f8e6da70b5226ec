package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role names carried in JWT claims.
const (
	// RoleSuperadmin is the elevated tier: acts across all organizations
	// and is the only role that may resolve edit requests.
	RoleSuperadmin = "superadmin"
	// RoleOperator is the scoped tier: bound to exactly one organization.
	RoleOperator = "operator"
)

// Actor is the resolved identity for one request. It is built once by the
// auth middleware from validated JWT claims and passed explicitly into every
// service call; handlers never read role flags from ambient request state.
type Actor struct {
	ID             string
	Role           string
	OrganizationID uuid.UUID
}

// Elevated reports whether the actor holds cross-organization authority.
func (a Actor) Elevated() bool {
	return a.Role == RoleSuperadmin
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the actor placed on the context by the auth
// middleware. The second return is false when no actor is present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}
