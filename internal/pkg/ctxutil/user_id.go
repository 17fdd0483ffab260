package ctxutil

import "context"

// private key type so no other package can collide with it
type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// WithUserID stores the caller id in ctx. The auth middleware calls it after a token
// has been verified:
//
//	ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
//	c.Request = c.Request.WithContext(ctx)
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the caller id and whether one is present.
func GetUserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(userIDKey)
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// UserIDOrEmpty returns the caller id, or "" for anonymous callers.
func UserIDOrEmpty(ctx context.Context) string {
	id, _ := GetUserID(ctx)
	return id
}
