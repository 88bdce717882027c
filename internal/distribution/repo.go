package distribution

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mehmetcc/mbg/internal/database"
	"go.uber.org/zap"
)

type Repo interface {
	Create(ctx context.Context, d *Distribution) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*Distribution, error)
	ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]Distribution, error)
	CreateReceipt(ctx context.Context, distributionID, studentID uuid.UUID) (uuid.UUID, error)
	ListReceiptsByStudent(ctx context.Context, studentID uuid.UUID) ([]Receipt, error)
	SchoolSummary(ctx context.Context, schoolID uuid.UUID) (*SchoolSummary, error)
	ProvinceSummary(ctx context.Context, governmentID uuid.UUID) ([]SchoolSummary, error)
}

const (
	insertDistributionQuery = `
						INSERT INTO distributions (id, school_id, served_on, portions, menu)
						VALUES ($1, $2, $3, $4, $5)
						`
	selectDistributionColumns = `SELECT id, school_id, served_on, portions, menu, created_at FROM distributions`

	selectDistributionByIDQuery      = selectDistributionColumns + ` WHERE id = $1`
	selectDistributionsBySchoolQuery = selectDistributionColumns + ` WHERE school_id = $1 ORDER BY served_on DESC`

	insertReceiptQuery = `
						INSERT INTO receipts (id, distribution_id, student_id)
						VALUES ($1, $2, $3)
						`
	selectReceiptsByStudentQuery = `
						SELECT r.id, r.distribution_id, r.student_id, d.served_on, d.menu, r.received_at
						FROM receipts r
						JOIN distributions d ON d.id = r.distribution_id
						WHERE r.student_id = $1
						ORDER BY d.served_on DESC
						`

	// one row per school; receipts are pre-aggregated so portions are not
	// multiplied by the join
	summaryQuery = `
						SELECT s.id, s.name,
						COUNT(d.id), COALESCE(SUM(d.portions), 0), COALESCE(SUM(rc.n), 0)
						FROM schools s
						LEFT JOIN distributions d ON d.school_id = s.id
						LEFT JOIN (
							SELECT distribution_id, COUNT(*) AS n FROM receipts GROUP BY distribution_id
						) rc ON rc.distribution_id = d.id
						`
	schoolSummaryQuery   = summaryQuery + ` WHERE s.id = $1 GROUP BY s.id, s.name`
	provinceSummaryQuery = summaryQuery + ` WHERE s.government_id = $1 GROUP BY s.id, s.name ORDER BY s.name`
)

type repo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepo(db *sql.DB, logger *zap.Logger) Repo {
	return &repo{
		db:     db,
		logger: logger,
	}
}

func (r *repo) Create(ctx context.Context, d *Distribution) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, insertDistributionQuery,
		id,
		d.SchoolID,
		dateOnly(d.ServedOn),
		d.Portions,
		strings.TrimSpace(d.Menu),
	)
	if err != nil {
		return uuid.Nil, database.MapConstraintError(r.logger, err, map[string]error{
			"distributions_school_day_key": ErrDuplicateDistribution,
		})
	}

	r.logger.Debug("distribution recorded",
		zap.String("id", id.String()),
		zap.String("school_id", d.SchoolID.String()),
		zap.Time("served_on", d.ServedOn))
	return id, nil
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	var d Distribution
	err := r.db.QueryRowContext(ctx, selectDistributionByIDQuery, id).
		Scan(&d.ID, &d.SchoolID, &d.ServedOn, &d.Portions, &d.Menu, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to load distribution", zap.Error(err))
		return nil, err
	}
	return &d, nil
}

func (r *repo) ListBySchool(ctx context.Context, schoolID uuid.UUID) ([]Distribution, error) {
	rows, err := r.db.QueryContext(ctx, selectDistributionsBySchoolQuery, schoolID)
	if err != nil {
		r.logger.Error("failed to list distributions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]Distribution, 0)
	for rows.Next() {
		var d Distribution
		if err := rows.Scan(&d.ID, &d.SchoolID, &d.ServedOn, &d.Portions, &d.Menu, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repo) CreateReceipt(ctx context.Context, distributionID, studentID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx, insertReceiptQuery, id, distributionID, studentID)
	if err != nil {
		return uuid.Nil, database.MapConstraintError(r.logger, err, map[string]error{
			"receipts_distribution_student_key": ErrAlreadyReceived,
			"receipts_distribution_id_fkey":     ErrNotFound,
		})
	}
	return id, nil
}

func (r *repo) ListReceiptsByStudent(ctx context.Context, studentID uuid.UUID) ([]Receipt, error) {
	rows, err := r.db.QueryContext(ctx, selectReceiptsByStudentQuery, studentID)
	if err != nil {
		r.logger.Error("failed to list receipts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]Receipt, 0)
	for rows.Next() {
		var rec Receipt
		if err := rows.Scan(&rec.ID, &rec.DistributionID, &rec.StudentID, &rec.ServedOn, &rec.Menu, &rec.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repo) SchoolSummary(ctx context.Context, schoolID uuid.UUID) (*SchoolSummary, error) {
	var s SchoolSummary
	err := r.db.QueryRowContext(ctx, schoolSummaryQuery, schoolID).
		Scan(&s.SchoolID, &s.Name, &s.Distributions, &s.Portions, &s.Receipts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to summarize school", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *repo) ProvinceSummary(ctx context.Context, governmentID uuid.UUID) ([]SchoolSummary, error) {
	rows, err := r.db.QueryContext(ctx, provinceSummaryQuery, governmentID)
	if err != nil {
		r.logger.Error("failed to summarize province", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]SchoolSummary, 0)
	for rows.Next() {
		var s SchoolSummary
		if err := rows.Scan(&s.SchoolID, &s.Name, &s.Distributions, &s.Portions, &s.Receipts); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
