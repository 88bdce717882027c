package gate

import (
	"context"

	"github.com/mehmetcc/mbg/internal/token"
)

type ctxKey string

const claimsKey ctxKey = "claims"

func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the caller attached by Require or by the page
// middleware, or nil.
func ClaimsFromContext(ctx context.Context) *token.Claims {
	c, _ := ctx.Value(claimsKey).(*token.Claims)
	return c
}
