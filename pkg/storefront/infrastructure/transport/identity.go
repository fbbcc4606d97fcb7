package transport

import (
	"context"

	"github.com/google/uuid"

	"storefront/pkg/storefront/domain/model"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   model.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.Admin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}
