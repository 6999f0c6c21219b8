package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
)

// UserFinder is the slice of the credential store the resolver needs.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// IdentityResolver turns a bearer token into the user it names.
type IdentityResolver struct {
	codec *TokenCodec
	users UserFinder
}

func NewIdentityResolver(codec *TokenCodec, users UserFinder) *IdentityResolver {
	return &IdentityResolver{codec: codec, users: users}
}

// Resolve returns (nil, nil) for an empty, malformed, tampered or expired
// token so the request proceeds anonymously. A valid token whose user no
// longer exists yields common.ErrIdentityNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	id, err := r.codec.Validate(token)
	if err != nil {
		return nil, nil
	}

	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("resolve identity %d: %w", id, err)
	}

	return user, nil
}
