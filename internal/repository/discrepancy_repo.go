package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tradedocs/lcverify/internal/domain"
)

// DiscrepancyRepo stores annotated findings per document set.
type DiscrepancyRepo struct {
	db *sql.DB
}

func NewDiscrepancyRepo(db *sql.DB) *DiscrepancyRepo {
	return &DiscrepancyRepo{db: db}
}

const discrepancyColumns = `id, set_id, document_id, kind, field, severity, description, field_values,
	ucp_reference, ucp_explanation, ucp_advice, detected_at`

// ReplaceForSet swaps the findings of a set for a new analysis run in one
// transaction. Earlier findings are never edited in place.
func (r *DiscrepancyRepo) ReplaceForSet(ctx context.Context, setID string, findings []domain.Finding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM discrepancies WHERE set_id = ?", setID); err != nil {
		return fmt.Errorf("clear set: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO discrepancies (`+discrepancyColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range findings {
		f := &findings[i]
		var docID any
		if f.DocumentID != "" {
			docID = f.DocumentID
		}
		values, err := json.Marshal(f.Values)
		if err != nil {
			return fmt.Errorf("encode values %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx,
			f.ID, setID, docID, string(f.Kind), f.Field, string(f.Severity), f.Description, string(values),
			f.Citation.Reference, f.Citation.Explanation, f.Citation.Advice, formatTime(f.DetectedAt),
		); err != nil {
			return fmt.Errorf("insert %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetDiscrepanciesBySet returns the current findings of a set, most severe
// first.
func (r *DiscrepancyRepo) GetDiscrepanciesBySet(ctx context.Context, setID string) ([]domain.Finding, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+discrepancyColumns+" FROM discrepancies WHERE set_id = ? ORDER BY "+severityOrder+", rowid", setID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFindings(rows)
}

const severityOrder = `CASE severity WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

type DiscrepancyFilter struct {
	SetID    string
	Kind     string
	Severity string
	Field    string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (r *DiscrepancyRepo) List(ctx context.Context, f DiscrepancyFilter) ([]domain.Finding, int, error) {
	where, args := buildDiscrepancyWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM discrepancies"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := "SELECT " + discrepancyColumns + " FROM discrepancies" + where +
		" ORDER BY detected_at DESC, " + severityOrder + " LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	findings, err := scanFindings(rows)
	return findings, total, err
}

type DiscrepancySummary struct {
	TotalCount int            `json:"total_count"`
	SetCount   int            `json:"set_count"`
	ByKind     map[string]int `json:"by_kind"`
	BySeverity map[string]int `json:"by_severity"`
	ByField    map[string]int `json:"by_field"`
}

func (r *DiscrepancyRepo) GetSummary(ctx context.Context) (*DiscrepancySummary, error) {
	s := &DiscrepancySummary{
		ByKind:     make(map[string]int),
		BySeverity: make(map[string]int),
		ByField:    make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT set_id) FROM discrepancies",
	).Scan(&s.TotalCount, &s.SetCount); err != nil {
		return nil, err
	}

	if err := scanGroupCount(ctx, r.db, "kind", s.ByKind); err != nil {
		return nil, err
	}
	if err := scanGroupCount(ctx, r.db, "severity", s.BySeverity); err != nil {
		return nil, err
	}
	if err := scanGroupCount(ctx, r.db, "field", s.ByField); err != nil {
		return nil, err
	}
	return s, nil
}

// --- helpers ---

func buildDiscrepancyWhere(f DiscrepancyFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.SetID != "" {
		clauses = append(clauses, "set_id = ?")
		args = append(args, f.SetID)
	}
	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, f.Severity)
	}
	if f.Field != "" {
		clauses = append(clauses, "(field = ? OR field LIKE ?)")
		args = append(args, f.Field, "%."+f.Field)
	}
	if f.From != nil {
		clauses = append(clauses, "detected_at >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, "detected_at <= ?")
		args = append(args, formatTime(*f.To))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanGroupCount(ctx context.Context, db *sql.DB, col string, m map[string]int) error {
	rows, err := db.QueryContext(ctx,
		"SELECT "+col+", COUNT(*) FROM discrepancies GROUP BY "+col,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		m[k] = v
	}
	return rows.Err()
}

func scanFindings(rows *sql.Rows) ([]domain.Finding, error) {
	findings := []domain.Finding{}
	for rows.Next() {
		var f domain.Finding
		var kind, sev, values, detectedAt string
		var docID sql.NullString

		err := rows.Scan(
			&f.ID, &f.SetID, &docID, &kind, &f.Field, &sev, &f.Description, &values,
			&f.Citation.Reference, &f.Citation.Explanation, &f.Citation.Advice, &detectedAt,
		)
		if err != nil {
			return nil, err
		}

		f.Kind = domain.DiscrepancyType(kind)
		f.Severity = domain.Severity(sev)
		f.DetectedAt = parseTime(detectedAt)
		if docID.Valid {
			f.DocumentID = docID.String
		}
		if err := json.Unmarshal([]byte(values), &f.Values); err != nil {
			return nil, fmt.Errorf("decode values of %s: %w", f.ID, err)
		}

		findings = append(findings, f)
	}
	return findings, rows.Err()
}
