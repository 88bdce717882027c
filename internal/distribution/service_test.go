package distribution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Create(ctx context.Context, d *Distribution) (uuid.UUID, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepo) Get(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Distribution), args.Error(1)
}

func (m *MockRepo) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]Distribution, error) {
	args := m.Called(ctx, schoolID)
	return args.Get(0).([]Distribution), args.Error(1)
}

func (m *MockRepo) CreateReceipt(ctx context.Context, distributionID, studentID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, distributionID, studentID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepo) ListReceiptsByStudent(ctx context.Context, studentID uuid.UUID) ([]Receipt, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]Receipt), args.Error(1)
}

func (m *MockRepo) SchoolSummary(ctx context.Context, schoolID uuid.UUID) (*SchoolSummary, error) {
	args := m.Called(ctx, schoolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SchoolSummary), args.Error(1)
}

func (m *MockRepo) ProvinceSummary(ctx context.Context, governmentID uuid.UUID) ([]SchoolSummary, error) {
	args := m.Called(ctx, governmentID)
	return args.Get(0).([]SchoolSummary), args.Error(1)
}

type MockSchoolRepo struct{ mock.Mock }

func (m *MockSchoolRepo) Create(ctx context.Context, dto *account.SchoolDTO) (uuid.UUID, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockSchoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.School, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.School), args.Error(1)
}

func (m *MockSchoolRepo) GetByNPSN(ctx context.Context, npsn string) (*account.School, error) {
	args := m.Called(ctx, npsn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.School), args.Error(1)
}

func (m *MockSchoolRepo) ListByGovernment(ctx context.Context, governmentID uuid.UUID) ([]account.School, error) {
	args := m.Called(ctx, governmentID)
	return args.Get(0).([]account.School), args.Error(1)
}

type serviceFixture struct {
	repo    *MockRepo
	schools *MockSchoolRepo
	service *distributionService
	now     time.Time
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:    new(MockRepo),
		schools: new(MockSchoolRepo),
		now:     time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC),
	}
	f.service = NewDistributionService(f.repo, f.schools, zap.NewNop()).(*distributionService)
	f.service.now = func() time.Time { return f.now }
	return f
}

var (
	governmentID = uuid.New()
	schoolID     = uuid.New()
	studentID    = uuid.New()
)

func governmentCaller() *token.Claims {
	return token.NewClaims(governmentID.String(), token.GovernmentPayload{ProvinceID: "32", ProvinceName: "Jawa Barat"})
}

func schoolCaller(id uuid.UUID) *token.Claims {
	return token.NewClaims(id.String(), token.SchoolPayload{SchoolID: id, NPSN: "20100001", Name: "SDN 01", GovernmentID: governmentID})
}

func studentCaller(school uuid.UUID) *token.Claims {
	return token.NewClaims(studentID.String(), token.StudentPayload{StudentNumber: "0042", Name: "Siti", Class: "5A", Grade: 5, SchoolID: school})
}

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to today for the caller's school", func(t *testing.T) {
		f := newServiceFixture()
		id := uuid.New()
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(d *Distribution) bool {
			return d.SchoolID == schoolID && d.ServedOn.Equal(f.now) && d.Portions == 150
		})).Return(id, nil)

		got, err := f.service.Record(ctx, schoolCaller(schoolID), time.Time{}, 150, "Nasi goreng")
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("only schools record", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.Record(ctx, governmentCaller(), time.Time{}, 1, "x")
		assert.ErrorIs(t, err, ErrNotPermitted)
		f.repo.AssertNumberOfCalls(t, "Create", 0)
	})
}

func TestToday(t *testing.T) {
	f := newServiceFixture()
	today := Distribution{ID: uuid.New(), SchoolID: schoolID, ServedOn: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	f.repo.On("ListBySchool", mock.Anything, schoolID).Return([]Distribution{
		today,
		{ID: uuid.New(), SchoolID: schoolID, ServedOn: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}, nil)

	got, err := f.service.Today(context.Background(), studentCaller(schoolID))
	require.NoError(t, err)
	assert.Equal(t, today.ID, got.ID)

	f.now = f.now.Add(24 * time.Hour)
	_, err = f.service.Today(context.Background(), schoolCaller(schoolID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceive(t *testing.T) {
	ctx := context.Background()
	distID := uuid.New()

	t.Run("own school", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("Get", mock.Anything, distID).Return(&Distribution{ID: distID, SchoolID: schoolID}, nil)
		f.repo.On("CreateReceipt", mock.Anything, distID, studentID).Return(uuid.New(), nil)

		_, err := f.service.Receive(ctx, studentCaller(schoolID), distID)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("another school's distribution", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("Get", mock.Anything, distID).Return(&Distribution{ID: distID, SchoolID: uuid.New()}, nil)

		_, err := f.service.Receive(ctx, studentCaller(schoolID), distID)
		assert.ErrorIs(t, err, ErrForeignSchool)
		f.repo.AssertNumberOfCalls(t, "CreateReceipt", 0)
	})

	t.Run("unknown distribution", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("Get", mock.Anything, distID).Return(nil, ErrNotFound)

		_, err := f.service.Receive(ctx, studentCaller(schoolID), distID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("school callers cannot receive", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.Receive(ctx, schoolCaller(schoolID), distID)
		assert.ErrorIs(t, err, ErrNotPermitted)
	})
}

func TestSchoolSummaryScope(t *testing.T) {
	ctx := context.Background()
	summary := &SchoolSummary{SchoolID: schoolID, Name: "SDN 01"}

	t.Run("school sees itself", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.On("SchoolSummary", mock.Anything, schoolID).Return(summary, nil)

		got, err := f.service.SchoolSummary(ctx, schoolCaller(schoolID), schoolID)
		require.NoError(t, err)
		assert.Equal(t, summary, got)
	})

	t.Run("school cannot see a sibling", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.SchoolSummary(ctx, schoolCaller(uuid.New()), schoolID)
		assert.ErrorIs(t, err, ErrForeignSchool)
	})

	t.Run("government sees managed school", func(t *testing.T) {
		f := newServiceFixture()
		f.schools.On("GetByID", mock.Anything, schoolID).Return(&account.School{ID: schoolID, GovernmentID: governmentID}, nil)
		f.repo.On("SchoolSummary", mock.Anything, schoolID).Return(summary, nil)

		_, err := f.service.SchoolSummary(ctx, governmentCaller(), schoolID)
		require.NoError(t, err)
	})

	t.Run("government cannot see another province", func(t *testing.T) {
		f := newServiceFixture()
		f.schools.On("GetByID", mock.Anything, schoolID).Return(&account.School{ID: schoolID, GovernmentID: uuid.New()}, nil)

		_, err := f.service.SchoolSummary(ctx, governmentCaller(), schoolID)
		assert.ErrorIs(t, err, ErrForeignSchool)
		f.repo.AssertNumberOfCalls(t, "SchoolSummary", 0)
	})

	t.Run("unknown school looks foreign", func(t *testing.T) {
		f := newServiceFixture()
		f.schools.On("GetByID", mock.Anything, schoolID).Return(nil, account.ErrNotFound)

		_, err := f.service.SchoolSummary(ctx, governmentCaller(), schoolID)
		assert.ErrorIs(t, err, ErrForeignSchool)
	})

	t.Run("students are refused", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.SchoolSummary(ctx, studentCaller(schoolID), schoolID)
		assert.ErrorIs(t, err, ErrNotPermitted)
	})
}

func TestProvinceSummaryTotals(t *testing.T) {
	f := newServiceFixture()
	f.repo.On("ProvinceSummary", mock.Anything, governmentID).Return([]SchoolSummary{
		{SchoolID: uuid.New(), Name: "SDN 01", Distributions: 2, Portions: 200, Receipts: 190},
		{SchoolID: uuid.New(), Name: "SDN 02", Distributions: 1, Portions: 50, Receipts: 10},
	}, nil)

	got, err := f.service.ProvinceSummary(context.Background(), governmentCaller())
	require.NoError(t, err)
	assert.Equal(t, "Jawa Barat", got.ProvinceName)
	assert.Equal(t, 3, got.Distributions)
	assert.Equal(t, 250, got.Portions)
	assert.Equal(t, 200, got.Receipts)
	assert.Len(t, got.Schools, 2)

	_, err = f.service.ProvinceSummary(context.Background(), schoolCaller(schoolID))
	assert.ErrorIs(t, err, ErrNotPermitted)
}
