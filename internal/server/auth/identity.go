package auth

import (
	"context"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying user as the request identity.
func WithIdentity(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFromContext returns the identity attached by WithIdentity.
func IdentityFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(identityKey{}).(*models.User)
	return user, ok && user != nil
}
