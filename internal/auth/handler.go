package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/mehmetcc/mbg/internal/config"
	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
)

type AuthenticationHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	SignIns(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type authenticationHandler struct {
	logger      *zap.Logger
	authService AuthService
	cookies     *config.CookieConfig
	rateLimit   *config.RateLimitConfig
}

func NewAuthenticationHandler(authService AuthService, cookies *config.CookieConfig, rateLimit *config.RateLimitConfig, l *zap.Logger) AuthenticationHandler {
	return &authenticationHandler{
		logger:      l,
		authService: authService,
		cookies:     cookies,
		rateLimit:   rateLimit,
	}
}

// Routes holds the unauthenticated endpoints. Me and SignIns are mounted
// behind the gate by the server.
func (a *authenticationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(httprate.LimitByIP(a.rateLimit.LoginRequests, a.rateLimit.LoginWindow)).
		Post("/{role}/login", a.Login)
	r.Post("/{role}/logout", a.Logout)
	return r
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=64"`
	Password   string `json:"password"   validate:"required,maxbytes=72"`
}

type loginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Claims      *token.Claims `json:"claims"`
}

func (a *authenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rl, ok := role.Parse(chi.URLParam(r, "role"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: ErrUnknownRole.Error(),
		})
		return
	}

	var req loginRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	res, err := a.authService.Login(ctx, rl, req.Identifier, req.Password, httpx.ReadDeviceMeta(r))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.logger.Debug("login rejected", zap.String("role", rl.String()))
			httpx.WriteError(w, http.StatusUnauthorized, httpx.Unauthorized(err.Error()))
			return
		}
		a.logger.Error("internal server error", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.Internal())
		return
	}

	http.SetCookie(w, a.cookie(rl, res.Token.AccessToken, int(time.Until(res.Token.AccessExpiresAt).Seconds())))
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.Token.AccessToken,
		ExpiresAt:   res.Token.AccessExpiresAt,
		Claims:      res.Claims,
	})
}

// Logout only clears the role cookie. Issued tokens stay valid until they
// expire.
func (a *authenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	rl, ok := role.Parse(chi.URLParam(r, "role"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: ErrUnknownRole.Error(),
		})
		return
	}
	http.SetCookie(w, a.cookie(rl, "", -1))
	w.WriteHeader(http.StatusNoContent)
}

func (a *authenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, gate.ClaimsFromContext(r.Context()))
}

func (a *authenticationHandler) SignIns(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := a.authService.SignIns(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		a.logger.Error("failed to list sign-ins", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.Internal())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (a *authenticationHandler) cookie(rl role.Role, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     rl.CookieName(),
		Value:    value,
		Path:     "/",
		Domain:   a.cookies.CookieDomain,
		MaxAge:   maxAge,
		Secure:   a.cookies.CookieSecure,
		HttpOnly: true,
		SameSite: a.cookies.CookieSameSite,
	}
}
