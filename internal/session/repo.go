package session

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionRepo interface {
	Create(ctx context.Context, s SignIn) (uuid.UUID, error)
	ListBySubject(ctx context.Context, subject uuid.UUID, limit int) ([]SignIn, error)
}

const (
	createSignInQuery = `
						INSERT INTO sign_ins (
						id, subject, role, device_id, device_name, platform, ip, user_agent
						) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
						`
	listSignInsQuery = `
						SELECT id, subject, role, device_id, device_name, platform, ip, user_agent, created_at
						FROM sign_ins
						WHERE subject = $1
						ORDER BY created_at DESC
						LIMIT $2
						`
)

type sessionRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSessionRepo(db *sql.DB, logger *zap.Logger) SessionRepo {
	return &sessionRepo{db: db, logger: logger}
}

func (s *sessionRepo) Create(ctx context.Context, in SignIn) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx, createSignInQuery,
		id,
		in.Subject,
		string(in.Role),
		in.DeviceID,
		in.DeviceName,
		string(in.Platform),
		in.IP,
		in.UserAgent,
	)
	if err != nil {
		s.logger.Error("failed to record sign-in", zap.Error(err))
		return uuid.Nil, err
	}
	return id, nil
}

func (s *sessionRepo) ListBySubject(ctx context.Context, subject uuid.UUID, limit int) ([]SignIn, error) {
	rows, err := s.db.QueryContext(ctx, listSignInsQuery, subject, limit)
	if err != nil {
		s.logger.Error("failed to list sign-ins", zap.String("subject", subject.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]SignIn, 0, limit)
	for rows.Next() {
		var rec SignIn
		if err := rows.Scan(&rec.ID, &rec.Subject, &rec.Role, &rec.DeviceID, &rec.DeviceName,
			&rec.Platform, &rec.IP, &rec.UserAgent, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
