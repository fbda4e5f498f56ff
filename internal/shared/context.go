package shared

import "context"

type actorContextKey struct{}

// Actor identifies the staff member performing a request. The API gateway
// authenticates the user and forwards the identity via headers; this service
// only plumbs it through.
type Actor struct {
	ID   int64
	Name string
}

// ContextWithActor stores the acting user in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting user from context.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
