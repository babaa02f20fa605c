package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/odner-app/odner/internal/core/domain"
)

type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Create(ctx context.Context, cfg *domain.Configuration) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO configs (id, path, language, questions_json, model_json, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, cfg.ID, cfg.Path, string(cfg.Language), cfg.QuestionsJSON, cfg.ModelJSON, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert config: %w", err)
	}
	return nil
}

func (r *ConfigRepository) GetByPath(ctx context.Context, path string) (*domain.Configuration, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, path, language, questions_json, model_json, created_at, updated_at
FROM configs
WHERE path = $1
`, path)

	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get config by path", fmt.Errorf("config not found: %s", path))
		}
		return nil, fmt.Errorf("get config by path: %w", err)
	}
	return cfg, nil
}

// Update rewrites the question set and entity model under a row lock so
// concurrent entity additions against the same configuration serialize.
func (r *ConfigRepository) Update(ctx context.Context, cfg *domain.Configuration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin config update tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM configs WHERE path = $1 FOR UPDATE`, cfg.Path).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WrapError(domain.ErrNotFound, "update config", fmt.Errorf("config not found: %s", cfg.Path))
		}
		return fmt.Errorf("lock config row: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
UPDATE configs
SET questions_json = $2, model_json = $3, updated_at = $4
WHERE path = $1
`, cfg.Path, cfg.QuestionsJSON, cfg.ModelJSON, now)
	if err != nil {
		return fmt.Errorf("update config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit config update tx: %w", err)
	}
	cfg.UpdatedAt = now
	return nil
}

func (r *ConfigRepository) ListByLanguage(ctx context.Context, lang domain.Language) ([]domain.Configuration, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, path, language, questions_json, model_json, created_at, updated_at
FROM configs
WHERE language = $1
ORDER BY path
`, string(lang))
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Configuration, 0)
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out = append(out, *cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConfig(row rowScanner) (*domain.Configuration, error) {
	var cfg domain.Configuration
	var lang string
	err := row.Scan(&cfg.ID, &cfg.Path, &lang, &cfg.QuestionsJSON, &cfg.ModelJSON, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	cfg.Language = domain.Language(lang)

	cfg.Questions, err = domain.ParseQuestions(cfg.QuestionsJSON)
	if err != nil {
		return nil, fmt.Errorf("parse questions for %s: %w", cfg.Path, err)
	}
	cfg.Model, err = domain.ParseEntityModel(cfg.ModelJSON)
	if err != nil {
		return nil, fmt.Errorf("parse entity model for %s: %w", cfg.Path, err)
	}
	return &cfg, nil
}
