package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mehmetcc/mbg/internal/config"
	"go.uber.org/zap"
)

type TokenService interface {
	Issue(ctx context.Context, claims *Claims) (*IssueResult, error)
	Verify(ctx context.Context, tokenString string) (*Claims, error)
	TTL() time.Duration
}

type IssueResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
}

type tokenService struct {
	logger     *zap.Logger
	cfg        *config.JWTConfig
	signingAlg jwt.SigningMethod
	now        func() time.Time
}

func NewTokenService(logger *zap.Logger, cfg *config.JWTConfig) TokenService {
	return &tokenService{
		logger:     logger,
		cfg:        cfg,
		signingAlg: jwt.SigningMethodHS256,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *tokenService) TTL() time.Duration {
	return s.cfg.AccessTTL
}

func (s *tokenService) Issue(ctx context.Context, c *Claims) (*IssueResult, error) {
	if c == nil || c.Payload == nil || c.Payload.Role() != c.Role {
		return nil, ErrPayloadMismatch
	}

	issuedAt := s.now()
	accessExp := issuedAt.Add(s.cfg.AccessTTL)
	claims := &wireClaims{
		Role: c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    s.cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWTAudience},
			ExpiresAt: jwt.NewNumericDate(accessExp),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        s.generateJTI(),
		},
	}
	claims.setPayload(c.Payload)

	jwtToken := jwt.NewWithClaims(s.signingAlg, claims)
	if s.cfg.JWTKID != "" {
		jwtToken.Header["kid"] = s.cfg.JWTKID
	}
	accessToken, err := jwtToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}

	return &IssueResult{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
	}, nil
}

// Verify checks signature, expiry, issuer, audience and the role payload.
// Every failure is reported as ErrInvalidToken.
func (s *tokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.signingAlg.Alg()}),
		jwt.WithIssuer(s.cfg.JWTIssuer),
		jwt.WithAudience(s.cfg.JWTAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims wireClaims
	tkn, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	p, err := claims.payload()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return &Claims{
		Subject: claims.Subject,
		Role:    claims.Role,
		Payload: p,
	}, nil
}

func (s *tokenService) generateJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
