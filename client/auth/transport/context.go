package transport

import "context"

type contextKey string

// ContextDestinationKey carries the location the user was on when a request was issued
const ContextDestinationKey contextKey = "destination"

// WithDestination returns a context whose requests redirect back to destination after login
func WithDestination(ctx context.Context, destination string) context.Context {
	return context.WithValue(ctx, ContextDestinationKey, destination)
}

func getDestination(ctx context.Context) string {
	if v := ctx.Value(ContextDestinationKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

type silentKey struct{}

// WithSilentTerminal returns a context whose requests end without notification or redirect on an
// unrecoverable auth failure; the token store is still cleared per policy
func WithSilentTerminal(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentKey{}, true)
}

func isSilent(ctx context.Context) bool {
	silent, _ := ctx.Value(silentKey{}).(bool)
	return silent
}
