package account

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mehmetcc/mbg/internal/gate"
	"github.com/mehmetcc/mbg/internal/httpx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AccountHandler interface {
	CreateSchool(w http.ResponseWriter, r *http.Request)
	ListSchools(w http.ResponseWriter, r *http.Request)
	CreateStudent(w http.ResponseWriter, r *http.Request)
	ListStudents(w http.ResponseWriter, r *http.Request)
	RegisterStudent(w http.ResponseWriter, r *http.Request)
}

type accountHandler struct {
	logger  *zap.Logger
	service AccountService
}

func NewAccountHandler(service AccountService, l *zap.Logger) AccountHandler {
	return &accountHandler{
		logger:  l,
		service: service,
	}
}

type createSchoolRequest struct {
	NPSN     string `json:"npsn"     validate:"required,numeric,len=8"`
	Name     string `json:"name"     validate:"required,min=3,max=128"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

type studentRequest struct {
	StudentNumber string `json:"student_number" validate:"required,numeric,min=4,max=16"`
	Name          string `json:"name"           validate:"required,min=2,max=128"`
	Class         string `json:"class"          validate:"required,max=8"`
	Grade         int    `json:"grade"          validate:"required,min=1,max=12"`
	Password      string `json:"password"       validate:"required,min=8,maxbytes=72"`
}

type registerStudentRequest struct {
	SchoolNPSN string `json:"school_npsn" validate:"required,numeric,len=8"`
	studentRequest
}

type createdResponse struct {
	ID string `json:"id"`
}

func (req studentRequest) input() StudentInput {
	return StudentInput{
		StudentNumber: req.StudentNumber,
		Name:          req.Name,
		Class:         req.Class,
		Grade:         req.Grade,
		Password:      req.Password,
	}
}

func (a *accountHandler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req createSchoolRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	id, err := a.service.CreateSchool(ctx, gate.ClaimsFromContext(ctx), req.NPSN, req.Name, req.Password)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (a *accountHandler) ListSchools(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	schools, err := a.service.ListSchools(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, schools)
}

func (a *accountHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req studentRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	id, err := a.service.CreateStudent(ctx, gate.ClaimsFromContext(ctx), req.input())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (a *accountHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	students, err := a.service.ListStudents(ctx, gate.ClaimsFromContext(ctx))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, students)
}

func (a *accountHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req registerStudentRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	id, err := a.service.RegisterStudent(ctx, req.SchoolNPSN, req.input())
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (a *accountHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicateNPSN), errors.Is(err, ErrDuplicateStudentNumber), errors.Is(err, ErrDuplicateUsername):
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: err.Error(),
		})
	case errors.Is(err, ErrUnknownSchool):
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: "validation failed",
			Details: []httpx.FieldError{{Field: "Password", Rule: "maxbytes", Param: "72"}},
		})
	case errors.Is(err, ErrNotPermitted):
		httpx.WriteError(w, http.StatusForbidden, httpx.Forbidden(err.Error()))
	default:
		a.logger.Error("internal server error", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.Internal())
	}
}
