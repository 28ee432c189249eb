package auth

import (
	"context"

	"github.com/techmaa/portal/types"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID int64
	Role   types.Role
}

type identityKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID < 1 {
		return Identity{}, false
	}
	return id, true
}
