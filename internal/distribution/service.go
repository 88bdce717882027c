package distribution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/token"
	"go.uber.org/zap"
)

type DistributionService interface {
	Record(ctx context.Context, caller *token.Claims, servedOn time.Time, portions int, menu string) (uuid.UUID, error)
	List(ctx context.Context, caller *token.Claims) ([]Distribution, error)
	Today(ctx context.Context, caller *token.Claims) (*Distribution, error)
	Receive(ctx context.Context, caller *token.Claims, distributionID uuid.UUID) (uuid.UUID, error)
	Receipts(ctx context.Context, caller *token.Claims) ([]Receipt, error)
	SchoolSummary(ctx context.Context, caller *token.Claims, schoolID uuid.UUID) (*SchoolSummary, error)
	ProvinceSummary(ctx context.Context, caller *token.Claims) (*ProvinceSummary, error)
}

type distributionService struct {
	repo    Repo
	schools account.SchoolRepo
	logger  *zap.Logger
	now     func() time.Time
}

func NewDistributionService(repo Repo, schools account.SchoolRepo, logger *zap.Logger) DistributionService {
	return &distributionService{
		repo:    repo,
		schools: schools,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *distributionService) Record(ctx context.Context, caller *token.Claims, servedOn time.Time, portions int, menu string) (uuid.UUID, error) {
	p, ok := caller.School()
	if !ok {
		return uuid.Nil, ErrNotPermitted
	}
	if servedOn.IsZero() {
		servedOn = s.now()
	}
	return s.repo.Create(ctx, &Distribution{
		SchoolID: p.SchoolID,
		ServedOn: servedOn,
		Portions: portions,
		Menu:     menu,
	})
}

func (s *distributionService) List(ctx context.Context, caller *token.Claims) ([]Distribution, error) {
	p, ok := caller.School()
	if !ok {
		return nil, ErrNotPermitted
	}
	return s.repo.ListBySchool(ctx, p.SchoolID)
}

// Today returns the caller school's distribution for the current day, or
// ErrNotFound. Both schools and students may ask.
func (s *distributionService) Today(ctx context.Context, caller *token.Claims) (*Distribution, error) {
	schoolID, err := schoolOf(caller)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	today := dateOnly(s.now())
	for i := range list {
		if dateOnly(list[i].ServedOn).Equal(today) {
			return &list[i], nil
		}
	}
	return nil, ErrNotFound
}

// Receive records that the calling student collected a portion. The
// distribution must belong to the student's own school.
func (s *distributionService) Receive(ctx context.Context, caller *token.Claims, distributionID uuid.UUID) (uuid.UUID, error) {
	p, ok := caller.Student()
	if !ok {
		return uuid.Nil, ErrNotPermitted
	}
	studentID, err := uuid.Parse(caller.Subject)
	if err != nil {
		return uuid.Nil, ErrNotPermitted
	}

	d, err := s.repo.Get(ctx, distributionID)
	if err != nil {
		return uuid.Nil, err
	}
	if d.SchoolID != p.SchoolID {
		s.logger.Warn("receipt for foreign distribution",
			zap.String("student", caller.Subject),
			zap.String("distribution", distributionID.String()))
		return uuid.Nil, ErrForeignSchool
	}
	return s.repo.CreateReceipt(ctx, distributionID, studentID)
}

func (s *distributionService) Receipts(ctx context.Context, caller *token.Claims) ([]Receipt, error) {
	if _, ok := caller.Student(); !ok {
		return nil, ErrNotPermitted
	}
	studentID, err := uuid.Parse(caller.Subject)
	if err != nil {
		return nil, ErrNotPermitted
	}
	return s.repo.ListReceiptsByStudent(ctx, studentID)
}

// SchoolSummary is visible to the school itself and to the government that
// manages it.
func (s *distributionService) SchoolSummary(ctx context.Context, caller *token.Claims, schoolID uuid.UUID) (*SchoolSummary, error) {
	if caller == nil {
		return nil, ErrNotPermitted
	}
	if p, ok := caller.School(); ok {
		if p.SchoolID != schoolID {
			return nil, ErrForeignSchool
		}
		return s.repo.SchoolSummary(ctx, schoolID)
	}

	govID, err := governmentOf(caller)
	if err != nil {
		return nil, err
	}
	school, err := s.schools.GetByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrForeignSchool
		}
		return nil, err
	}
	if school.GovernmentID != govID {
		return nil, ErrForeignSchool
	}
	return s.repo.SchoolSummary(ctx, schoolID)
}

func (s *distributionService) ProvinceSummary(ctx context.Context, caller *token.Claims) (*ProvinceSummary, error) {
	govID, err := governmentOf(caller)
	if err != nil {
		return nil, err
	}
	p, _ := caller.Government()

	schools, err := s.repo.ProvinceSummary(ctx, govID)
	if err != nil {
		return nil, err
	}
	out := &ProvinceSummary{
		ProvinceID:   p.ProvinceID,
		ProvinceName: p.ProvinceName,
		Schools:      schools,
	}
	for _, sc := range schools {
		out.Distributions += sc.Distributions
		out.Portions += sc.Portions
		out.Receipts += sc.Receipts
	}
	return out, nil
}

func schoolOf(caller *token.Claims) (uuid.UUID, error) {
	if p, ok := caller.School(); ok {
		return p.SchoolID, nil
	}
	if p, ok := caller.Student(); ok {
		return p.SchoolID, nil
	}
	return uuid.Nil, ErrNotPermitted
}

func governmentOf(caller *token.Claims) (uuid.UUID, error) {
	if _, ok := caller.Government(); !ok {
		return uuid.Nil, ErrNotPermitted
	}
	id, err := uuid.Parse(caller.Subject)
	if err != nil {
		return uuid.Nil, ErrNotPermitted
	}
	return id, nil
}
