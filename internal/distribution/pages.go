package distribution

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
)

// DashboardHandler serves the role dashboards mounted behind the page
// session middleware. Each page is a JSON document.
type DashboardHandler interface {
	GovernmentHome(w http.ResponseWriter, r *http.Request)
	GovernmentMonitoring(w http.ResponseWriter, r *http.Request)
	SchoolHome(w http.ResponseWriter, r *http.Request)
	SchoolMonitoring(w http.ResponseWriter, r *http.Request)
	StudentHome(w http.ResponseWriter, r *http.Request)
	StudentQR(w http.ResponseWriter, r *http.Request)
}

type dashboardHandler struct {
	logger  *zap.Logger
	service DistributionService
}

func NewDashboardHandler(service DistributionService, l *zap.Logger) DashboardHandler {
	return &dashboardHandler{
		logger:  l,
		service: service,
	}
}

type governmentHome struct {
	Province      token.GovernmentPayload `json:"province"`
	Schools       int                     `json:"schools"`
	Distributions int                     `json:"distributions"`
	Portions      int                     `json:"portions"`
	Receipts      int                     `json:"receipts"`
}

type schoolHome struct {
	School  token.SchoolPayload `json:"school"`
	Today   *Distribution       `json:"today"`
	Summary *SchoolSummary      `json:"summary"`
}

type studentHome struct {
	Student  token.StudentPayload `json:"student"`
	Today    *Distribution        `json:"today"`
	Receipts []Receipt            `json:"receipts"`
}

type studentQR struct {
	StudentNumber string `json:"student_number"`
	SchoolID      string `json:"school_id"`
	Content       string `json:"content"`
}

func (d *dashboardHandler) GovernmentHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims := gate.ClaimsFromContext(ctx)
	summary, err := d.service.ProvinceSummary(ctx, claims)
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	p, _ := claims.Government()
	httpx.WriteJSON(w, http.StatusOK, governmentHome{
		Province:      p,
		Schools:       len(summary.Schools),
		Distributions: summary.Distributions,
		Portions:      summary.Portions,
		Receipts:      summary.Receipts,
	})
}

func (d *dashboardHandler) GovernmentMonitoring(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	summary, err := d.service.ProvinceSummary(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (d *dashboardHandler) SchoolHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims := gate.ClaimsFromContext(ctx)
	p, ok := claims.School()
	if !ok {
		writeServiceError(d.logger, w, ErrNotPermitted)
		return
	}
	today, err := d.today(ctx, claims)
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	summary, err := d.service.SchoolSummary(ctx, claims, p.SchoolID)
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, schoolHome{School: p, Today: today, Summary: summary})
}

func (d *dashboardHandler) SchoolMonitoring(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := d.service.List(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (d *dashboardHandler) StudentHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims := gate.ClaimsFromContext(ctx)
	p, ok := claims.Student()
	if !ok {
		writeServiceError(d.logger, w, ErrNotPermitted)
		return
	}
	today, err := d.today(ctx, claims)
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	receipts, err := d.service.Receipts(ctx, claims)
	if err != nil {
		writeServiceError(d.logger, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, studentHome{Student: p, Today: today, Receipts: receipts})
}

func (d *dashboardHandler) StudentQR(w http.ResponseWriter, r *http.Request) {
	p, ok := gate.ClaimsFromContext(r.Context()).Student()
	if !ok {
		writeServiceError(d.logger, w, ErrNotPermitted)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, studentQR{
		StudentNumber: p.StudentNumber,
		SchoolID:      p.SchoolID.String(),
		Content:       fmt.Sprintf("mbg:student:%s:%s", p.SchoolID, p.StudentNumber),
	})
}

// today treats a day without a distribution as an empty slot.
func (d *dashboardHandler) today(ctx context.Context, claims *token.Claims) (*Distribution, error) {
	t, err := d.service.Today(ctx, claims)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return t, err
}
