package account

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchoolRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSchoolRepo(db, zap.NewNop())
	govID := uuid.New()

	t.Run("inserts trimmed values", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schools")).
			WithArgs(sqlmock.AnyArg(), "20100001", "SDN 01", "hash", govID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, err := repo.Create(context.Background(), &SchoolDTO{NPSN: " 20100001 ", Name: "SDN 01 ", Password: "hash", GovernmentID: govID})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
	})

	t.Run("duplicate npsn", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schools")).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "schools_npsn_key"})

		_, err := repo.Create(context.Background(), &SchoolDTO{NPSN: "20100001", Name: "x", Password: "h", GovernmentID: govID})
		assert.ErrorIs(t, err, ErrDuplicateNPSN)
	})

	t.Run("other postgres errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: pgerrcode.NotNullViolation, ConstraintName: "x"}
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schools")).WillReturnError(pgErr)

		_, err := repo.Create(context.Background(), &SchoolDTO{NPSN: "1", GovernmentID: govID})
		assert.True(t, errors.Is(err, pgErr))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchoolRepoLookups(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSchoolRepo(db, zap.NewNop())
	id, govID := uuid.New(), uuid.New()
	now := time.Now()
	cols := []string{"id", "npsn", "name", "password", "government_id", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM schools WHERE npsn = $1")).
		WithArgs("20100001").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id.String(), "20100001", "SDN 01", "hash", govID.String(), now))

	school, err := repo.GetByNPSN(context.Background(), "20100001")
	require.NoError(t, err)
	assert.Equal(t, id, school.ID)
	assert.Equal(t, govID, school.GovernmentID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schools WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schools WHERE government_id = $1")).
		WithArgs(govID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), "20100001", "SDN 01", "h", govID.String(), now).
			AddRow(uuid.NewString(), "20100002", "SDN 02", "h", govID.String(), now))

	schools, err := repo.ListByGovernment(context.Background(), govID)
	require.NoError(t, err)
	assert.Len(t, schools, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewStudentRepo(db, zap.NewNop())
	schoolID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs(sqlmock.AnyArg(), "0051234567", "Budi", "4B", 4, "hash", schoolID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err = repo.Create(context.Background(), &StudentDTO{
		StudentNumber: "0051234567", Name: "Budi", Class: "4b", Grade: 4, Password: "hash", SchoolID: schoolID,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "students_student_number_key"})
	_, err = repo.Create(context.Background(), &StudentDTO{StudentNumber: "0051234567", SchoolID: schoolID})
	assert.ErrorIs(t, err, ErrDuplicateStudentNumber)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "students_school_id_fkey"})
	_, err = repo.Create(context.Background(), &StudentDTO{StudentNumber: "1", SchoolID: uuid.New()})
	assert.ErrorIs(t, err, ErrUnknownSchool)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGovernmentRepoGetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewGovernmentRepo(db, zap.NewNop())
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM governments")).
		WithArgs("dinas.jabar").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "province_id", "province_name", "created_at"}).
			AddRow(id.String(), "dinas.jabar", "hash", "32", "Jawa Barat", time.Now()))

	gov, err := repo.GetByUsername(context.Background(), " Dinas.Jabar ")
	require.NoError(t, err)
	assert.Equal(t, id, gov.ID)
	assert.Equal(t, "Jawa Barat", gov.ProvinceName)

	mock.ExpectQuery(regexp.QuoteMeta("FROM governments")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
