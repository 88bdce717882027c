package server

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/auth"
	"github.com/mehmetcc/mbg/internal/config"
	"github.com/mehmetcc/mbg/internal/distribution"
	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
	"github.com/mehmetcc/mbg/internal/routes"
	"go.uber.org/zap"
	"moul.io/chizap"
)

type Dependencies struct {
	DB            *sql.DB
	AppConfig     *config.AppConfig
	Logger        *zap.Logger
	Gate          *gate.Gate
	Pages         *routes.Pages
	Accounts      account.AccountHandler
	Auth          auth.AuthenticationHandler
	Distributions distribution.DistributionHandler
	Dashboards    distribution.DashboardHandler
}

func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chizap.New(deps.Logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(deps.AppConfig.WriteTimeout))

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.DB))

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AppConfig.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-Id", "X-Device-Name", "X-Client-Platform"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/student/register", deps.Accounts.RegisterStudent)
			r.Group(func(r chi.Router) {
				r.Use(deps.Gate.Require(role.Student, gate.Hierarchical))
				r.Get("/me", deps.Auth.Me)
				r.Get("/sessions", deps.Auth.SignIns)
			})
			r.Mount("/", deps.Auth.Routes())
		})

		r.Route("/government", func(r chi.Router) {
			r.Use(deps.Gate.Require(role.Government, gate.Strict))
			r.Post("/schools", deps.Accounts.CreateSchool)
			r.Get("/schools", deps.Accounts.ListSchools)
			r.Get("/summary", deps.Distributions.ProvinceSummary)
		})

		r.Route("/school", func(r chi.Router) {
			r.Use(deps.Gate.Require(role.School, gate.Strict))
			r.Post("/students", deps.Accounts.CreateStudent)
			r.Get("/students", deps.Accounts.ListStudents)
			r.Post("/distributions", deps.Distributions.Record)
			r.Get("/distributions", deps.Distributions.List)
		})

		r.Route("/student", func(r chi.Router) {
			r.Use(deps.Gate.Require(role.Student, gate.Strict))
			r.Post("/receipts", deps.Distributions.Receive)
			r.Get("/receipts", deps.Distributions.Receipts)
		})

		r.With(deps.Gate.Require(role.School, gate.Hierarchical)).
			Get("/schools/{schoolID}/summary", deps.Distributions.SchoolSummary)
	})

	// page routes; the session middleware classifies every path itself
	r.Group(func(r chi.Router) {
		r.Use(deps.Pages.Handler)

		r.Get("/", landingPage)
		r.Get("/{role}/auth/login", loginPage)
		r.Get("/school/auth/register", schoolRegisterPage)
		r.Get("/student/auth/register", studentRegisterPage)

		r.Get("/government/home", deps.Dashboards.GovernmentHome)
		r.Get("/government/monitoring", deps.Dashboards.GovernmentMonitoring)
		r.Get("/school/home", deps.Dashboards.SchoolHome)
		r.Get("/school/monitoring", deps.Dashboards.SchoolMonitoring)
		r.Get("/student/home", deps.Dashboards.StudentHome)
		r.Get("/student/qr", deps.Dashboards.StudentQR)
	})

	// unrouted pages still go through the session check, so protected
	// prefixes redirect before revealing what exists
	pageNotFound := deps.Pages.Handler(http.HandlerFunc(notFound))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if isAPI(r.URL.Path) {
			notFound(w, r)
			return
		}
		pageNotFound.ServeHTTP(w, r)
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
		Code:    httpx.ErrNotFound,
		Message: "endpoint not found",
	})
}

func isAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readyz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "database unavailable",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
