package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehmetcc/mbg/internal/account"
	"github.com/mehmetcc/mbg/internal/config"
	"github.com/mehmetcc/mbg/internal/database"
	"github.com/mehmetcc/mbg/internal/server"
	"go.uber.org/zap"
)

const usage = `usage:
  mbg                      run the portal
  mbg create-government    -username u -password p -province-id id -province-name name`

func main() {
	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// load config
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load database
	db, err := database.Init(ctx, cfg.DbConfig)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// run migrations
	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	if len(os.Args) > 1 {
		if err := runCommand(ctx, db, logger, os.Args[1], os.Args[2:]); err != nil {
			logger.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		}
		return
	}

	if err := serve(ctx, db, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func serve(ctx context.Context, db *sql.DB, cfg *config.Config, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort("", cfg.AppConfig.Port),
		Handler:      server.NewRouter(server.NewDependencies(db, cfg, logger)),
		ReadTimeout:  cfg.AppConfig.ReadTimeout,
		WriteTimeout: cfg.AppConfig.WriteTimeout,
		IdleTimeout:  cfg.AppConfig.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("application started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppConfig.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// runCommand handles the operator commands. Government accounts have no
// sign-up path and are only created here.
func runCommand(ctx context.Context, db *sql.DB, logger *zap.Logger, name string, args []string) error {
	switch name {
	case "create-government":
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		username := fs.String("username", "", "login name")
		password := fs.String("password", "", "initial password")
		provinceID := fs.String("province-id", "", "province code")
		provinceName := fs.String("province-name", "", "province display name")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *username == "" || *password == "" || *provinceID == "" || *provinceName == "" {
			return fmt.Errorf("missing flags\n%s", usage)
		}

		svc := account.NewAccountService(
			account.NewGovernmentRepo(db, logger),
			account.NewSchoolRepo(db, logger),
			account.NewStudentRepo(db, logger),
			logger,
		)
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		id, err := svc.CreateGovernment(cctx, account.GovernmentDTO{
			Username:     *username,
			Password:     *password,
			ProvinceID:   *provinceID,
			ProvinceName: *provinceName,
		})
		if err != nil {
			return err
		}
		logger.Info("government account created", zap.String("id", id.String()), zap.String("username", *username))
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", name, usage)
	}
}
