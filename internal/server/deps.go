package server

import (
	"database/sql"

	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/auth"
	"github.com/mehmetcc/mbg/internal/config"
	"github.com/mehmetcc/mbg/internal/distribution"
	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/routes"
	"github.com/mehmetcc/mbg/internal/session"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
)

// NewDependencies wires repositories, services and handlers over one
// database handle.
func NewDependencies(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Dependencies {
	governments := account.NewGovernmentRepo(db, logger)
	schools := account.NewSchoolRepo(db, logger)
	students := account.NewStudentRepo(db, logger)
	sessions := session.NewSessionRepo(db, logger)
	distributions := distribution.NewRepo(db, logger)

	tokenService := token.NewTokenService(logger, cfg.JWTConfig)
	g := gate.New(tokenService, logger)

	accountService := account.NewAccountService(governments, schools, students, logger)
	authService := auth.NewAuthenticationService(governments, schools, students, sessions, tokenService, logger)
	distributionService := distribution.NewDistributionService(distributions, schools, logger)

	return &Dependencies{
		DB:            db,
		AppConfig:     cfg.AppConfig,
		Logger:        logger,
		Gate:          g,
		Pages:         routes.NewPages(routes.DefaultTable(), g, logger),
		Accounts:      account.NewAccountHandler(accountService, logger),
		Auth:          auth.NewAuthenticationHandler(authService, cfg.CookieConfig, cfg.RateLimitConfig, logger),
		Distributions: distribution.NewDistributionHandler(distributionService, logger),
		Dashboards:    distribution.NewDashboardHandler(distributionService, logger),
	}
}
