package database

import (
	"context"
	"database/sql"

	"github.com/mehmetcc/mbg/migrations"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const dialect = "postgres"

// Migrate applies the embedded schema migrations and logs the resulting
// version.
func Migrate(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{s: logger.Sugar().Named("goose")})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("schema up to date", zap.Int64("version", version))
	return nil
}

// gooseLogger routes goose output through zap. Fatalf is downgraded to an
// error so a failed migration is returned instead of exiting the process.
type gooseLogger struct{ s *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Errorf(format, v...)
}
