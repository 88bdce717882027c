package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
	"github.com/mehmetcc/mbg/internal/session"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const signInHistoryLimit = 20

type AuthService interface {
	Login(ctx context.Context, r role.Role, identifier, password string, meta httpx.DeviceMeta) (*LoginResult, error)
	SignIns(ctx context.Context, caller *token.Claims) ([]session.SignIn, error)
}

type LoginResult struct {
	Claims *token.Claims
	Token  *token.IssueResult
}

type authService struct {
	governments  account.GovernmentRepo
	schools      account.SchoolRepo
	students     account.StudentRepo
	sessions     session.SessionRepo
	tokenService token.TokenService
	logger       *zap.Logger
	dummyHash    []byte
}

func NewAuthenticationService(
	governments account.GovernmentRepo,
	schools account.SchoolRepo,
	students account.StudentRepo,
	sessions session.SessionRepo,
	tokenService token.TokenService,
	logger *zap.Logger,
) AuthService {
	// compared against when the account does not exist, so both paths cost one bcrypt
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return &authService{
		governments:  governments,
		schools:      schools,
		students:     students,
		sessions:     sessions,
		tokenService: tokenService,
		logger:       logger,
		dummyHash:    dummy,
	}
}

func (a *authService) Login(ctx context.Context, r role.Role, identifier, password string, meta httpx.DeviceMeta) (*LoginResult, error) {
	subject, hash, payload, err := a.lookup(ctx, r, identifier)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		a.logger.Debug("password mismatch", zap.String("role", r.String()), zap.String("sub", subject.String()))
		return nil, ErrInvalidCredentials
	}

	claims := token.NewClaims(subject.String(), payload)
	issued, err := a.tokenService.Issue(ctx, claims)
	if err != nil {
		return nil, err
	}

	if _, err := a.sessions.Create(ctx, session.SignIn{
		Subject:    subject,
		Role:       r,
		DeviceID:   meta.DeviceID,
		DeviceName: meta.DeviceName,
		Platform:   meta.Platform,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		a.logger.Warn("sign-in not recorded", zap.String("sub", subject.String()), zap.Error(err))
	}

	return &LoginResult{Claims: claims, Token: issued}, nil
}

// lookup resolves the account behind identifier: a username for government,
// an NPSN for schools, a student number for students.
func (a *authService) lookup(ctx context.Context, r role.Role, identifier string) (uuid.UUID, string, token.Payload, error) {
	switch r {
	case role.Government:
		g, err := a.governments.GetByUsername(ctx, identifier)
		if err != nil {
			return uuid.Nil, "", nil, err
		}
		return g.ID, g.Password, token.GovernmentPayload{
			ProvinceID:   g.ProvinceID,
			ProvinceName: g.ProvinceName,
		}, nil
	case role.School:
		s, err := a.schools.GetByNPSN(ctx, identifier)
		if err != nil {
			return uuid.Nil, "", nil, err
		}
		return s.ID, s.Password, token.SchoolPayload{
			SchoolID:     s.ID,
			NPSN:         s.NPSN,
			Name:         s.Name,
			GovernmentID: s.GovernmentID,
		}, nil
	case role.Student:
		s, err := a.students.GetByNumber(ctx, identifier)
		if err != nil {
			return uuid.Nil, "", nil, err
		}
		return s.ID, s.Password, token.StudentPayload{
			StudentNumber: s.StudentNumber,
			Name:          s.Name,
			Class:         s.Class,
			Grade:         s.Grade,
			SchoolID:      s.SchoolID,
		}, nil
	default:
		return uuid.Nil, "", nil, ErrUnknownRole
	}
}

func (a *authService) SignIns(ctx context.Context, caller *token.Claims) ([]session.SignIn, error) {
	subject, err := uuid.Parse(caller.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return a.sessions.ListBySubject(ctx, subject, signInHistoryLimit)
}
