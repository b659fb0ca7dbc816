package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tradedocs/lcverify/internal/domain"
)

// ReportRepo keeps every report version. Reports are immutable; a new
// analysis appends a new row.
type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) SaveReport(ctx context.Context, rep *domain.DiscrepancyReport) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reports (id, set_id, recommendation, total_findings, body, generated_at)
		VALUES (?,?,?,?,?,?)`,
		rep.ID, rep.DocumentSetID, string(rep.Summary.Recommendation), rep.Summary.TotalFindings,
		string(body), formatTime(rep.GeneratedAt),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// LatestReport returns the most recent report of a set, or
// domain.ErrReportNotFound when the set was never analysed.
func (r *ReportRepo) LatestReport(ctx context.Context, setID string) (*domain.DiscrepancyReport, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		"SELECT body FROM reports WHERE set_id = ? ORDER BY generated_at DESC, rowid DESC LIMIT 1", setID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var rep domain.DiscrepancyReport
	if err := json.Unmarshal([]byte(body), &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}

func (r *ReportRepo) CountBySet(ctx context.Context, setID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE set_id = ?", setID).Scan(&n)
	return n, err
}
