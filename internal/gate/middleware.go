package gate

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
	"go.uber.org/zap"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// Require guards an API route. The caller's claims are stored in the request
// context and mirrored into the X-User-Id and X-User-Role request headers.
func (g *Gate) Require(need role.Role, mode Mode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := g.Authorize(r.Context(), r.Header.Get("Authorization"), need, mode)
			if err != nil {
				g.reject(w, r, err)
				return
			}

			r.Header.Set(HeaderUserID, claims.Subject)
			r.Header.Set(HeaderUserRole, claims.Role.String())
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetReqID(r.Context())
	switch {
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrInvalidCredential):
		g.logger.Debug("unauthenticated request",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		httpx.WriteError(w, http.StatusUnauthorized, httpx.Unauthorized(err.Error()))
	case errors.Is(err, ErrInsufficientPermission):
		g.logger.Warn("forbidden request",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path))
		httpx.WriteError(w, http.StatusForbidden, httpx.Forbidden(err.Error()))
	default:
		g.logger.Error("authentication failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: ErrAuthenticationFailed.Error(),
		})
	}
}
