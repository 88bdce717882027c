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

type SchoolDTO struct {
	NPSN         string
	Name         string
	Password     string
	GovernmentID uuid.UUID
}

type SchoolRepo interface {
	Create(ctx context.Context, dto *SchoolDTO) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*School, error)
	GetByNPSN(ctx context.Context, npsn string) (*School, error)
	ListByGovernment(ctx context.Context, governmentID uuid.UUID) ([]School, error)
}

type schoolRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSchoolRepo(db *sql.DB, logger *zap.Logger) SchoolRepo {
	return &schoolRepo{
		db:     db,
		logger: logger,
	}
}

const (
	insertSchoolQuery = `
						INSERT INTO schools (id, npsn, name, password, government_id)
						VALUES ($1, $2, $3, $4, $5)
						`
	selectSchoolColumns = `SELECT id, npsn, name, password, government_id, created_at FROM schools`

	selectSchoolByIDQuery          = selectSchoolColumns + ` WHERE id = $1`
	selectSchoolByNPSNQuery        = selectSchoolColumns + ` WHERE npsn = $1`
	selectSchoolsByGovernmentQuery = selectSchoolColumns + ` WHERE government_id = $1 ORDER BY name`
)

func (s *schoolRepo) Create(ctx context.Context, dto *SchoolDTO) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, insertSchoolQuery,
		id,
		strings.TrimSpace(dto.NPSN),
		strings.TrimSpace(dto.Name),
		dto.Password,
		dto.GovernmentID,
	)
	if err != nil {
		return uuid.Nil, database.MapConstraintError(s.logger, err, map[string]error{
			"schools_npsn_key": ErrDuplicateNPSN,
		})
	}

	s.logger.Debug("school created", zap.String("id", id.String()), zap.String("npsn", dto.NPSN))
	return id, nil
}

func (s *schoolRepo) GetByID(ctx context.Context, id uuid.UUID) (*School, error) {
	return s.getOne(ctx, selectSchoolByIDQuery, id)
}

func (s *schoolRepo) GetByNPSN(ctx context.Context, npsn string) (*School, error) {
	return s.getOne(ctx, selectSchoolByNPSNQuery, strings.TrimSpace(npsn))
}

func (s *schoolRepo) getOne(ctx context.Context, query string, arg any) (*School, error) {
	var rec School
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&rec.ID, &rec.NPSN, &rec.Name, &rec.Password, &rec.GovernmentID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to load school", zap.Error(err))
		return nil, err
	}
	return &rec, nil
}

func (s *schoolRepo) ListByGovernment(ctx context.Context, governmentID uuid.UUID) ([]School, error) {
	rows, err := s.db.QueryContext(ctx, selectSchoolsByGovernmentQuery, governmentID)
	if err != nil {
		s.logger.Error("failed to list schools", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]School, 0)
	for rows.Next() {
		var rec School
		if err := rows.Scan(&rec.ID, &rec.NPSN, &rec.Name, &rec.Password, &rec.GovernmentID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
