package database

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// MapConstraintError turns a unique or foreign key violation on one of the given
// constraints into its sentinel error. Anything else is logged and returned
// unchanged.
func MapConstraintError(logger *zap.Logger, err error, constraints map[string]error) error {
	// context canceled/deadline
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		logger.Warn("insert canceled/timed out", zap.Error(err))
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation:
			if mapped, ok := constraints[pgErr.ConstraintName]; ok {
				logger.Debug("constraint violation",
					zap.String("code", pgErr.Code),
					zap.String("constraint", pgErr.ConstraintName))
				return mapped
			}
		}
		logger.Error("postgres error",
			zap.String("code", pgErr.Code),
			zap.String("msg", pgErr.Message),
			zap.String("detail", pgErr.Detail),
		)
		return err
	}

	logger.Error("driver/scan error", zap.Error(err))
	return err
}
