package grpcserver

import (
	"context"

	"github.com/vx6Fid/envelopr/internal/model"
)

type ctxKey string

const actorKey ctxKey = "envelopr.actor"

// WithActor stores the resolved request actor in context.
func WithActor(ctx context.Context, a model.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromCtx fetches the request actor. A context without one is anonymous.
func ActorFromCtx(ctx context.Context) model.Actor {
	a, ok := ctx.Value(actorKey).(model.Actor)
	if !ok {
		return model.Anonymous
	}
	return a
}
