package booking

import (
	"context"
	"strings"
)

type idempotencyKeyCtx struct{}

// NewContextWithIdempotencyKey stores the client's key for the marketplace
// booking call. Surrounding whitespace is dropped.
func NewContextWithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyCtx{}, strings.TrimSpace(key))
}

func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKeyCtx{}).(string)

	return key, ok && key != ""
}
