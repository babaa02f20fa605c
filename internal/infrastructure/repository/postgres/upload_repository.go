package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/odner-app/odner/internal/core/domain"
)

type UploadRepository struct {
	db *sql.DB
}

func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, up *domain.Upload) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO uploads (id, title, kind, storage_key, text_it, text_en, txt_path_it, txt_path_en, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		up.ID, up.Title, string(up.Kind), up.StorageKey,
		up.TextIT, up.TextEN, up.TxtPathIT, up.TxtPathEN, up.CreatedAt, up.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

func (r *UploadRepository) GetByID(ctx context.Context, id string) (*domain.Upload, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UploadRepository) GetByTitle(ctx context.Context, title string) (*domain.Upload, error) {
	return r.getBy(ctx, "title", title)
}

func (r *UploadRepository) getBy(ctx context.Context, column, value string) (*domain.Upload, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, kind, storage_key, text_it, text_en, txt_path_it, txt_path_en, created_at, updated_at
FROM uploads
WHERE `+column+` = $1
`, value)

	var up domain.Upload
	var kind string
	err := row.Scan(
		&up.ID, &up.Title, &kind, &up.StorageKey,
		&up.TextIT, &up.TextEN, &up.TxtPathIT, &up.TxtPathEN, &up.CreatedAt, &up.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("upload not found: %s=%s", column, value))
		}
		return nil, fmt.Errorf("get upload: %w", err)
	}
	up.Kind = domain.UploadKind(kind)
	return &up, nil
}

func (r *UploadRepository) SetText(ctx context.Context, title string, lang domain.Language, text, txtPath string) error {
	textColumn, pathColumn := "text_en", "txt_path_en"
	if lang == domain.LanguageItalian {
		textColumn, pathColumn = "text_it", "txt_path_it"
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE uploads
SET `+textColumn+` = $2, `+pathColumn+` = $3, updated_at = $4
WHERE title = $1
`, title, text, txtPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set upload text: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set upload text rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "set upload text", fmt.Errorf("upload not found: title=%s", title))
	}
	return nil
}
