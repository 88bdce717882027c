package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/config"
	"github.com/mehmetcc/mbg/internal/httpx"
	"github.com/mehmetcc/mbg/internal/role"
	"github.com/mehmetcc/mbg/internal/session"
	"github.com/mehmetcc/mbg/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type MockGovernmentRepo struct{ mock.Mock }

func (m *MockGovernmentRepo) Create(ctx context.Context, dto *account.GovernmentDTO) (uuid.UUID, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockGovernmentRepo) GetByUsername(ctx context.Context, username string) (*account.Government, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Government), args.Error(1)
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

type MockStudentRepo struct{ mock.Mock }

func (m *MockStudentRepo) Create(ctx context.Context, dto *account.StudentDTO) (uuid.UUID, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockStudentRepo) GetByNumber(ctx context.Context, studentNumber string) (*account.Student, error) {
	args := m.Called(ctx, studentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Student), args.Error(1)
}

func (m *MockStudentRepo) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]account.Student, error) {
	args := m.Called(ctx, schoolID)
	return args.Get(0).([]account.Student), args.Error(1)
}

type MockSessionRepo struct{ mock.Mock }

func (m *MockSessionRepo) Create(ctx context.Context, s session.SignIn) (uuid.UUID, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockSessionRepo) ListBySubject(ctx context.Context, subject uuid.UUID, limit int) ([]session.SignIn, error) {
	args := m.Called(ctx, subject, limit)
	return args.Get(0).([]session.SignIn), args.Error(1)
}

type loginFixture struct {
	governments *MockGovernmentRepo
	schools     *MockSchoolRepo
	students    *MockStudentRepo
	sessions    *MockSessionRepo
	tokens      token.TokenService
	service     AuthService
}

func newLoginFixture() *loginFixture {
	f := &loginFixture{
		governments: new(MockGovernmentRepo),
		schools:     new(MockSchoolRepo),
		students:    new(MockStudentRepo),
		sessions:    new(MockSessionRepo),
		tokens: token.NewTokenService(zap.NewNop(), &config.JWTConfig{
			JWTSecret:   "auth-test-secret",
			AccessTTL:   time.Hour,
			JWTIssuer:   "mbg-test",
			JWTAudience: "mbg-test",
		}),
	}
	f.service = NewAuthenticationService(f.governments, f.schools, f.students, f.sessions, f.tokens, zap.NewNop())
	return f
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginSchool(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture()
	school := &account.School{
		ID:           uuid.New(),
		NPSN:         "20100001",
		Name:         "SDN 01",
		Password:     hashOf(t, "correct-horse"),
		GovernmentID: uuid.New(),
	}
	f.schools.On("GetByNPSN", mock.Anything, "20100001").Return(school, nil)
	f.sessions.On("Create", mock.Anything, mock.MatchedBy(func(s session.SignIn) bool {
		return s.Subject == school.ID && s.Role == role.School && s.IP == "10.1.1.1"
	})).Return(uuid.New(), nil)

	res, err := f.service.Login(ctx, role.School, "20100001", "correct-horse", httpx.DeviceMeta{IP: "10.1.1.1"})
	require.NoError(t, err)
	assert.Equal(t, school.ID.String(), res.Claims.Subject)

	verified, err := f.tokens.Verify(ctx, res.Token.AccessToken)
	require.NoError(t, err)
	p, ok := verified.School()
	require.True(t, ok)
	assert.Equal(t, school.ID, p.SchoolID)
	assert.Equal(t, school.GovernmentID, p.GovernmentID)
	assert.Equal(t, "SDN 01", p.Name)

	f.sessions.AssertExpectations(t)
}

func TestLoginStudentAndGovernmentPayloads(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture()
	f.sessions.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil)

	student := &account.Student{ID: uuid.New(), StudentNumber: "0042", Name: "Siti", Class: "5A", Grade: 5, Password: hashOf(t, "pw"), SchoolID: uuid.New()}
	f.students.On("GetByNumber", mock.Anything, "0042").Return(student, nil)

	res, err := f.service.Login(ctx, role.Student, "0042", "pw", httpx.DeviceMeta{})
	require.NoError(t, err)
	sp, ok := res.Claims.Student()
	require.True(t, ok)
	assert.Equal(t, 5, sp.Grade)
	assert.Equal(t, student.SchoolID, sp.SchoolID)

	gov := &account.Government{ID: uuid.New(), Username: "dinas.jabar", Password: hashOf(t, "pw"), ProvinceID: "32", ProvinceName: "Jawa Barat"}
	f.governments.On("GetByUsername", mock.Anything, "dinas.jabar").Return(gov, nil)

	res, err = f.service.Login(ctx, role.Government, "dinas.jabar", "pw", httpx.DeviceMeta{})
	require.NoError(t, err)
	gp, ok := res.Claims.Government()
	require.True(t, ok)
	assert.Equal(t, "Jawa Barat", gp.ProvinceName)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		f := newLoginFixture()
		f.students.On("GetByNumber", mock.Anything, "0042").Return(&account.Student{ID: uuid.New(), Password: hashOf(t, "right")}, nil)

		_, err := f.service.Login(ctx, role.Student, "0042", "wrong", httpx.DeviceMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		f.sessions.AssertNumberOfCalls(t, "Create", 0)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newLoginFixture()
		f.governments.On("GetByUsername", mock.Anything, "ghost").Return(nil, account.ErrNotFound)

		_, err := f.service.Login(ctx, role.Government, "ghost", "pw", httpx.DeviceMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository failure is not a credential error", func(t *testing.T) {
		f := newLoginFixture()
		f.schools.On("GetByNPSN", mock.Anything, "1").Return(nil, errors.New("connection reset"))

		_, err := f.service.Login(ctx, role.School, "1", "pw", httpx.DeviceMeta{})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newLoginFixture()
		_, err := f.service.Login(ctx, role.Role("admin"), "x", "pw", httpx.DeviceMeta{})
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("audit failure does not block login", func(t *testing.T) {
		f := newLoginFixture()
		f.students.On("GetByNumber", mock.Anything, "0042").Return(&account.Student{ID: uuid.New(), Grade: 1, Password: hashOf(t, "pw")}, nil)
		f.sessions.On("Create", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("disk full"))

		res, err := f.service.Login(ctx, role.Student, "0042", "pw", httpx.DeviceMeta{})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token.AccessToken)
	})
}
