package distribution

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/httpx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type DistributionHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Receive(w http.ResponseWriter, r *http.Request)
	Receipts(w http.ResponseWriter, r *http.Request)
	SchoolSummary(w http.ResponseWriter, r *http.Request)
	ProvinceSummary(w http.ResponseWriter, r *http.Request)
}

type distributionHandler struct {
	logger  *zap.Logger
	service DistributionService
}

func NewDistributionHandler(service DistributionService, l *zap.Logger) DistributionHandler {
	return &distributionHandler{
		logger:  l,
		service: service,
	}
}

type recordRequest struct {
	ServedOn string `json:"served_on" validate:"omitempty,datetime=2006-01-02"`
	Portions int    `json:"portions"  validate:"required,min=1,max=10000"`
	Menu     string `json:"menu"      validate:"required,min=3,max=256"`
}

type receiveRequest struct {
	DistributionID string `json:"distribution_id" validate:"required,uuid"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func (h *distributionHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req recordRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	var servedOn time.Time
	if req.ServedOn != "" {
		// format already checked by the validator
		servedOn, _ = time.Parse(dateLayout, req.ServedOn)
	}

	id, err := h.service.Record(ctx, gate.ClaimsFromContext(ctx), servedOn, req.Portions, req.Menu)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (h *distributionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.service.List(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *distributionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req receiveRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	id, err := h.service.Receive(ctx, gate.ClaimsFromContext(ctx), uuid.MustParse(req.DistributionID))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (h *distributionHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.service.Receipts(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *distributionHandler) SchoolSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	schoolID, err := uuid.Parse(chi.URLParam(r, "schoolID"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "school not found",
		})
		return
	}

	summary, err := h.service.SchoolSummary(ctx, gate.ClaimsFromContext(ctx), schoolID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (h *distributionHandler) ProvinceSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	summary, err := h.service.ProvinceSummary(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (h *distributionHandler) writeServiceError(w http.ResponseWriter, err error) {
	writeServiceError(h.logger, w, err)
}

func writeServiceError(logger *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicateDistribution), errors.Is(err, ErrAlreadyReceived):
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: err.Error(),
		})
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, ErrForeignSchool), errors.Is(err, ErrNotPermitted):
		httpx.WriteError(w, http.StatusForbidden, httpx.Forbidden(err.Error()))
	default:
		logger.Error("internal server error", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.Internal())
	}
}
