package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/database"
	"go.uber.org/zap"
)

type StudentDTO struct {
	StudentNumber string
	Name          string
	Class         string
	Grade         int
	Password      string
	SchoolID      uuid.UUID
}

type StudentRepo interface {
	Create(ctx context.Context, dto *StudentDTO) (uuid.UUID, error)
	GetByNumber(ctx context.Context, studentNumber string) (*Student, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]Student, error)
}

type studentRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewStudentRepo(db *sql.DB, logger *zap.Logger) StudentRepo {
	return &studentRepo{
		db:     db,
		logger: logger,
	}
}

const (
	insertStudentQuery = `
						INSERT INTO students (id, student_number, name, class, grade, password, school_id)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						`
	selectStudentColumns = `SELECT id, student_number, name, class, grade, password, school_id, created_at FROM students`

	selectStudentByNumberQuery  = selectStudentColumns + ` WHERE student_number = $1`
	selectStudentsBySchoolQuery = selectStudentColumns + ` WHERE school_id = $1 ORDER BY grade, class, name`
)

func (s *studentRepo) Create(ctx context.Context, dto *StudentDTO) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, insertStudentQuery,
		id,
		strings.TrimSpace(dto.StudentNumber),
		strings.TrimSpace(dto.Name),
		strings.ToUpper(strings.TrimSpace(dto.Class)),
		dto.Grade,
		dto.Password,
		dto.SchoolID,
	)
	if err != nil {
		return uuid.Nil, database.MapConstraintError(s.logger, err, map[string]error{
			"students_student_number_key": ErrDuplicateStudentNumber,
			"students_school_id_fkey":     ErrUnknownSchool,
		})
	}

	s.logger.Debug("student created", zap.String("id", id.String()))
	return id, nil
}

func (s *studentRepo) GetByNumber(ctx context.Context, studentNumber string) (*Student, error) {
	var rec Student
	err := s.db.QueryRowContext(ctx, selectStudentByNumberQuery, strings.TrimSpace(studentNumber)).
		Scan(&rec.ID, &rec.StudentNumber, &rec.Name, &rec.Class, &rec.Grade, &rec.Password, &rec.SchoolID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load student", zap.Error(err))
		return nil, err
	}
	return &rec, nil
}

func (s *studentRepo) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx, selectStudentsBySchoolQuery, schoolID)
	if err != nil {
		s.logger.Error("failed to list students", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]Student, 0)
	for rows.Next() {
		var rec Student
		if err := rows.Scan(&rec.ID, &rec.StudentNumber, &rec.Name, &rec.Class, &rec.Grade, &rec.Password, &rec.SchoolID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
