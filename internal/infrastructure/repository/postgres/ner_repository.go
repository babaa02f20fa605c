package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/odner-app/odner/internal/core/domain"
)

type NERRepository struct {
	db *sql.DB
}

func NewNERRepository(db *sql.DB) *NERRepository {
	return &NERRepository{db: db}
}

func (r *NERRepository) Create(ctx context.Context, rec *domain.NERRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ner_records (id, doc_path, raw_file, dict_path, config_path, dict_json, config_json, model_json, language, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		rec.ID, rec.DocPath, rec.RawFile, rec.DictPath, rec.ConfigPath,
		rec.DictJSON, rec.ConfigJSON, rec.ModelJSON, string(rec.Language), rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ner record: %w", err)
	}
	return nil
}

func (r *NERRepository) GetByDocPath(ctx context.Context, docPath string) (*domain.NERRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, doc_path, raw_file, dict_path, config_path, dict_json, config_json, model_json, language, created_at, updated_at
FROM ner_records
WHERE doc_path = $1
`, docPath)

	rec, err := scanNERRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get ner record", fmt.Errorf("ner record not found: %s", docPath))
		}
		return nil, fmt.Errorf("get ner record: %w", err)
	}
	return rec, nil
}

// Rebind swaps the record's binding in one transaction: the dictionary
// path, the configuration path and the three JSON caches always move
// together. The row is locked for the duration so concurrent rebinds of
// the same document serialize.
func (r *NERRepository) Rebind(ctx context.Context, docPath string, b domain.Rebind) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebind tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM ner_records WHERE doc_path = $1 FOR UPDATE`, docPath).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(domain.ErrNotFound, "rebind ner record", fmt.Errorf("ner record not found: %s", docPath))
		}
		return fmt.Errorf("lock ner record row: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
UPDATE ner_records
SET dict_path = $2, config_path = $3, dict_json = $4, config_json = $5, model_json = $6, updated_at = $7
WHERE doc_path = $1
`, docPath, b.DictPath, b.ConfigPath, b.DictJSON, b.ConfigJSON, b.ModelJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rebind ner record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebind tx: %w", err)
	}
	return nil
}

func (r *NERRepository) ListByConfigPath(ctx context.Context, configPath string) ([]domain.NERRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, doc_path, raw_file, dict_path, config_path, dict_json, config_json, model_json, language, created_at, updated_at
FROM ner_records
WHERE config_path = $1
ORDER BY doc_path
`, configPath)
	if err != nil {
		return nil, fmt.Errorf("list ner records: %w", err)
	}
	defer rows.Close()

	out := make([]domain.NERRecord, 0)
	for rows.Next() {
		rec, err := scanNERRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ner record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ner records: %w", err)
	}
	return out, nil
}

func scanNERRecord(row rowScanner) (*domain.NERRecord, error) {
	var rec domain.NERRecord
	var lang string
	err := row.Scan(
		&rec.ID, &rec.DocPath, &rec.RawFile, &rec.DictPath, &rec.ConfigPath,
		&rec.DictJSON, &rec.ConfigJSON, &rec.ModelJSON, &lang, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Language = domain.Language(lang)
	return &rec, nil
}
