// Package identity carries the resolved viewer id through request context.
// Authentication itself happens upstream; the engine only trusts the
// X-User-ID header its gateway sets.
package identity

import "context"

type ctxKey struct{}

func With(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func FromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(ctxKey{}).(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}
