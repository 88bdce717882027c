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

type GovernmentDTO struct {
	Username     string
	Password     string
	ProvinceID   string
	ProvinceName string
}

type GovernmentRepo interface {
	Create(ctx context.Context, dto *GovernmentDTO) (uuid.UUID, error)
	GetByUsername(ctx context.Context, username string) (*Government, error)
}

type governmentRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewGovernmentRepo(db *sql.DB, logger *zap.Logger) GovernmentRepo {
	return &governmentRepo{
		db:     db,
		logger: logger,
	}
}

const (
	insertGovernmentQuery = `
						INSERT INTO governments (id, username, password, province_id, province_name)
						VALUES ($1, $2, $3, $4, $5)
						`
	selectGovernmentByUsernameQuery = `
						SELECT id, username, password, province_id, province_name, created_at
						FROM governments
						WHERE username = $1
						`
)

func (g *governmentRepo) Create(ctx context.Context, dto *GovernmentDTO) (uuid.UUID, error) {
	id := uuid.New()
	_, err := g.db.ExecContext(ctx, insertGovernmentQuery,
		id,
		strings.ToLower(strings.TrimSpace(dto.Username)),
		dto.Password,
		strings.TrimSpace(dto.ProvinceID),
		strings.TrimSpace(dto.ProvinceName),
	)
	if err != nil {
		return uuid.Nil, database.MapConstraintError(g.logger, err, map[string]error{
			"governments_username_key": ErrDuplicateUsername,
		})
	}

	g.logger.Debug("government account created", zap.String("id", id.String()))
	return id, nil
}

func (g *governmentRepo) GetByUsername(ctx context.Context, username string) (*Government, error) {
	var rec Government
	err := g.db.QueryRowContext(ctx, selectGovernmentByUsernameQuery, strings.ToLower(strings.TrimSpace(username))).
		Scan(&rec.ID, &rec.Username, &rec.Password, &rec.ProvinceID, &rec.ProvinceName, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		g.logger.Error("failed to load government account", zap.Error(err))
		return nil, err
	}
	return &rec, nil
}
