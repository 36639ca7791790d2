package shared

import "context"

// Identity is the resolved caller attached to a request after the
// authentication middleware accepts it.
type Identity struct {
	AccountID int64
	Email     string
	// Token is the raw bearer token the request presented, kept so logout
	// can remove exactly this session.
	Token string
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, nil when the
// request was never authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
