package users

import (
	"context"

	"github.com/tabdeel/pulse/internal/activity"
)

type profileContextKey struct{}

// ContextWithProfile stores the active user's profile in context.
func ContextWithProfile(ctx context.Context, p Profile) context.Context {
	return context.WithValue(ctx, profileContextKey{}, p)
}

// ProfileFromContext returns the active user's profile, if any.
func ProfileFromContext(ctx context.Context) (Profile, bool) {
	p, ok := ctx.Value(profileContextKey{}).(Profile)
	return p, ok
}

// Actor converts the profile into an activity actor.
func (p Profile) Actor() activity.Actor {
	return activity.Actor{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
}

// ActorFromContext returns the active user as an activity actor.
func ActorFromContext(ctx context.Context) activity.Actor {
	p, ok := ProfileFromContext(ctx)
	if !ok {
		return activity.Actor{Name: "System"}
	}
	return p.Actor()
}
