package gate

import (
	"context"
	"fmt"

	"github.com/mehmetcc/mbg/internal/role"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
)

type Mode int

const (
	// Hierarchical admits any role at or above the required level.
	Hierarchical Mode = iota
	// Strict admits only the required role.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "hierarchical"
}

// Verifier is the part of token.TokenService the gate depends on.
type Verifier interface {
	Verify(ctx context.Context, tokenString string) (*token.Claims, error)
}

// Permits compares a claim role against the required one.
func Permits(have, need role.Role, mode Mode) bool {
	if !have.Valid() || !need.Valid() {
		return false
	}
	if mode == Strict {
		return have == need
	}
	return role.Level(have) >= role.Level(need)
}

type Gate struct {
	verifier Verifier
	logger   *zap.Logger
}

func New(verifier Verifier, logger *zap.Logger) *Gate {
	return &Gate{verifier: verifier, logger: logger}
}

// Authorize resolves the caller of an Authorization header value and checks
// it against need.
func (g *Gate) Authorize(ctx context.Context, authorization string, need role.Role, mode Mode) (*token.Claims, error) {
	raw, ok := token.ExtractFromHeader(authorization)
	if !ok {
		return nil, ErrMissingCredential
	}
	return g.AuthorizeToken(ctx, raw, need, mode)
}

// AuthorizeToken is Authorize for a token that was already extracted, e.g.
// from a cookie. With ErrInsufficientPermission the verified claims are
// returned as well.
func (g *Gate) AuthorizeToken(ctx context.Context, raw string, need role.Role, mode Mode) (*token.Claims, error) {
	claims, err := g.verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !Permits(claims.Role, need, mode) {
		g.logger.Debug("permission denied",
			zap.String("sub", claims.Subject),
			zap.String("role", claims.Role.String()),
			zap.String("required_role", need.String()),
			zap.Stringer("mode", mode),
		)
		return claims, ErrInsufficientPermission
	}
	return claims, nil
}

// verify never lets a verifier panic escape.
func (g *Gate) verify(ctx context.Context, raw string) (claims *token.Claims, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("token verification panicked", zap.Any("panic", rec))
			claims, err = nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, rec)
		}
	}()

	claims, err = g.verifier.Verify(ctx, raw)
	if err != nil {
		g.logger.Debug("token rejected", zap.Error(err))
		return nil, ErrInvalidCredential
	}
	if claims == nil || !claims.Role.Valid() {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}
