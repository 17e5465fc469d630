package internal

import (
	"context"
)

type ctxKey string

// ContextPrincipalKey holds the authenticated principal for a request.
const ContextPrincipalKey ctxKey = "principal"

// Principal is the authenticated identity attached to a request after the
// session token has been verified and the user record loaded.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role. There is no
// role hierarchy: an admin is not implicitly an employee and vice versa.
func (p *Principal) IsAdmin() bool {
	return p.Role == "admin"
}

// CanAccessOwned passes iff the principal owns the resource or is an admin.
func (p *Principal) CanAccessOwned(ownerID int64) bool {
	return p.ID == ownerID || p.IsAdmin()
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

// RequireOwnerOrAdmin passes iff the principal owns the resource or carries
// the admin role. Returns a typed Forbidden error for the handler to map.
func RequireOwnerOrAdmin(p *Principal, resourceOwnerID int64) error {
	if p == nil {
		return NewUnauthorizedError("Authentication required", ErrCodeInvalidToken)
	}
	if !p.CanAccessOwned(resourceOwnerID) {
		return NewForbiddenError("Access denied", ErrCodeAccessDenied)
	}
	return nil
}
