package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/odner-app/odner/internal/core/domain"
)

// EditLogRepository appends text-revision entries. The log is append-only;
// there is deliberately no update or delete.
type EditLogRepository struct {
	db *sql.DB
}

func NewEditLogRepository(db *sql.DB) *EditLogRepository {
	return &EditLogRepository{db: db}
}

func (r *EditLogRepository) Append(ctx context.Context, entry *domain.EditEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO edit_log (id, doc_path, text, edited_at)
VALUES ($1,$2,$3,$4)
`, entry.ID, entry.DocPath, entry.Text, entry.EditedAt)
	if err != nil {
		return fmt.Errorf("append edit log entry: %w", err)
	}
	return nil
}
