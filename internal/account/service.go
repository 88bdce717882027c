package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type StudentInput struct {
	StudentNumber string
	Name          string
	Class         string
	Grade         int
	Password      string
}

type AccountService interface {
	CreateGovernment(ctx context.Context, dto GovernmentDTO) (uuid.UUID, error)
	CreateSchool(ctx context.Context, caller *token.Claims, npsn, name, password string) (uuid.UUID, error)
	ListSchools(ctx context.Context, caller *token.Claims) ([]School, error)
	CreateStudent(ctx context.Context, caller *token.Claims, in StudentInput) (uuid.UUID, error)
	ListStudents(ctx context.Context, caller *token.Claims) ([]Student, error)
	RegisterStudent(ctx context.Context, npsn string, in StudentInput) (uuid.UUID, error)
}

type accountService struct {
	governments GovernmentRepo
	schools     SchoolRepo
	students    StudentRepo
	logger      *zap.Logger
}

func NewAccountService(governments GovernmentRepo, schools SchoolRepo, students StudentRepo, logger *zap.Logger) AccountService {
	return &accountService{
		governments: governments,
		schools:     schools,
		students:    students,
		logger:      logger,
	}
}

func (a *accountService) CreateGovernment(ctx context.Context, dto GovernmentDTO) (uuid.UUID, error) {
	hashed, err := a.hash(dto.Password)
	if err != nil {
		return uuid.Nil, err
	}
	dto.Password = hashed
	return a.governments.Create(ctx, &dto)
}

func (a *accountService) CreateSchool(ctx context.Context, caller *token.Claims, npsn, name, password string) (uuid.UUID, error) {
	govID, err := governmentID(caller)
	if err != nil {
		return uuid.Nil, err
	}
	hashed, err := a.hash(password)
	if err != nil {
		return uuid.Nil, err
	}
	return a.schools.Create(ctx, &SchoolDTO{
		NPSN:         npsn,
		Name:         name,
		Password:     hashed,
		GovernmentID: govID,
	})
}

func (a *accountService) ListSchools(ctx context.Context, caller *token.Claims) ([]School, error) {
	govID, err := governmentID(caller)
	if err != nil {
		return nil, err
	}
	return a.schools.ListByGovernment(ctx, govID)
}

func (a *accountService) CreateStudent(ctx context.Context, caller *token.Claims, in StudentInput) (uuid.UUID, error) {
	p, ok := caller.School()
	if !ok {
		return uuid.Nil, ErrNotPermitted
	}
	return a.createStudent(ctx, p.SchoolID, in)
}

func (a *accountService) ListStudents(ctx context.Context, caller *token.Claims) ([]Student, error) {
	p, ok := caller.School()
	if !ok {
		return nil, ErrNotPermitted
	}
	return a.students.ListBySchool(ctx, p.SchoolID)
}

// RegisterStudent is the public self-registration path; the school is looked
// up by its NPSN.
func (a *accountService) RegisterStudent(ctx context.Context, npsn string, in StudentInput) (uuid.UUID, error) {
	school, err := a.schools.GetByNPSN(ctx, npsn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return uuid.Nil, ErrUnknownSchool
		}
		return uuid.Nil, err
	}
	return a.createStudent(ctx, school.ID, in)
}

func (a *accountService) createStudent(ctx context.Context, schoolID uuid.UUID, in StudentInput) (uuid.UUID, error) {
	hashed, err := a.hash(in.Password)
	if err != nil {
		return uuid.Nil, err
	}
	return a.students.Create(ctx, &StudentDTO{
		StudentNumber: in.StudentNumber,
		Name:          in.Name,
		Class:         in.Class,
		Grade:         in.Grade,
		Password:      hashed,
		SchoolID:      schoolID,
	})
}

func (a *accountService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.logger.Error("failed to hash password", zap.Error(err))
		return "", err
	}
	return string(hashed), nil
}

func governmentID(caller *token.Claims) (uuid.UUID, error) {
	if _, ok := caller.Government(); !ok {
		return uuid.Nil, ErrNotPermitted
	}
	id, err := uuid.Parse(caller.Subject)
	if err != nil {
		return uuid.Nil, ErrNotPermitted
	}
	return id, nil
}
