package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tradedocs/lcverify/internal/domain"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// TextHash identifies a document body within a set.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

const documentColumns = `id, set_id, document_type, source_name, raw_text, status, fields, created_at, updated_at`

// Insert stores a new document. Re-submitting the same text to the same set
// returns the stored document and false instead of creating a duplicate.
func (r *DocumentRepo) Insert(ctx context.Context, d *domain.Document) (*domain.Document, bool, error) {
	hash := TextHash(d.RawText)

	existing, err := r.getBy(ctx, "set_id = ? AND text_hash = ?", d.SetID, hash)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, false, fmt.Errorf("check hash: %w", err)
	}

	fields, err := json.Marshal(d.Fields)
	if err != nil {
		return nil, false, fmt.Errorf("encode fields: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents
		(id, set_id, document_type, source_name, raw_text, text_hash, status, fields, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.SetID, string(d.Type), d.SourceName, d.RawText, hash, string(d.Status),
		string(fields), formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert document: %w", err)
	}
	return d, true, nil
}

func (r *DocumentRepo) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return r.getBy(ctx, "id = ?", id)
}

// ListBySet returns the documents of a set in submission order.
func (r *DocumentRepo) ListBySet(ctx context.Context, setID string) ([]*domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE set_id = ? ORDER BY created_at, id", setID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}

func (r *DocumentRepo) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	return r.update(ctx, "UPDATE documents SET status = ?, updated_at = ? WHERE id = ?",
		string(status), formatTime(time.Now()), id)
}

// UpdateDocumentExtractedData replaces the field map wholesale and records the
// resolved document type.
func (r *DocumentRepo) UpdateDocumentExtractedData(ctx context.Context, id string, docType domain.DocumentType, fields domain.FieldMap) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	return r.update(ctx,
		"UPDATE documents SET document_type = ?, fields = ?, status = ?, updated_at = ? WHERE id = ?",
		string(docType), string(data), string(domain.StatusExtracted), formatTime(time.Now()), id)
}

func (r *DocumentRepo) update(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepo) getBy(ctx context.Context, where string, args ...any) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE "+where, args...)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	return d, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*domain.Document, error) {
	var d domain.Document
	var docType, status, fields, createdAt, updatedAt string
	if err := s.Scan(&d.ID, &d.SetID, &docType, &d.SourceName, &d.RawText, &status, &fields, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.Type = domain.DocumentType(docType)
	d.Status = domain.DocumentStatus(status)
	if err := json.Unmarshal([]byte(fields), &d.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", d.ID, err)
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}
