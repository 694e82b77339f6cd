package middleware

import "context"

type contextKey string

const ctxUID contextKey = "uid"

func UIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUID).(string); ok {
		return v
	}
	return ""
}

// WithUID injects the verified subject ID into the context.
func WithUID(ctx context.Context, uid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUID, uid)
}
