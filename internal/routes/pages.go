package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/role"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
)

type Pages struct {
	table  *Table
	gate   *gate.Gate
	logger *zap.Logger
}

func NewPages(table *Table, g *gate.Gate, logger *zap.Logger) *Pages {
	return &Pages{table: table, gate: g, logger: logger}
}

// Handler guards page routes using the per-role cookies. A visitor without a
// usable session goes to the login page; a visitor signed in under another
// role goes to that role's home page.
func (p *Pages) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := p.table.Classify(r.URL.Path)
		if !c.RequiresAuth {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := p.sessionFor(r, c.Role)
		if err == nil {
			next.ServeHTTP(w, r.WithContext(gate.WithClaims(r.Context(), claims)))
			return
		}

		target := p.table.LoginPageFor(r.URL.Path)
		if claims != nil {
			target = claims.Role.HomePage()
		}
		p.logger.Debug("redirecting page request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.String("target", target),
			zap.Error(err))
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// sessionFor looks for a session of need first, then for any other signed-in
// role. Claims are returned with ErrInsufficientPermission when only a
// foreign role is signed in.
func (p *Pages) sessionFor(r *http.Request, need role.Role) (*token.Claims, error) {
	if claims, err := p.fromCookie(r, need, need); err == nil || claims != nil {
		return claims, err
	}
	for _, other := range role.All {
		if other == need {
			continue
		}
		claims, err := p.fromCookie(r, other, need)
		if claims != nil {
			return claims, err
		}
	}
	return nil, gate.ErrMissingCredential
}

func (p *Pages) fromCookie(r *http.Request, cookieRole, need role.Role) (*token.Claims, error) {
	cookie, err := r.Cookie(cookieRole.CookieName())
	if err != nil || cookie.Value == "" {
		return nil, gate.ErrMissingCredential
	}
	claims, err := p.gate.AuthorizeToken(r.Context(), cookie.Value, need, gate.Strict)
	if err != nil && !errors.Is(err, gate.ErrInsufficientPermission) {
		return nil, err
	}
	return claims, err
}
