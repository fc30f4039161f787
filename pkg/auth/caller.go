package auth

import (
	"context"

	"stablebook/pkg/model"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID string
	Role   string
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

func (c *Caller) IsRider() bool {
	return c != nil && c.Role == model.RoleRider
}

type callerKey struct{}

func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns nil for anonymous requests.
func CallerFromContext(ctx context.Context) *Caller {
	caller, _ := ctx.Value(callerKey{}).(*Caller)
	return caller
}
