package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/odner-app/odner/internal/core/domain"
)

func newConfigRepoWithMock(t *testing.T) (*ConfigRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ConfigRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByPathParsesCaches(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "path", "language", "questions_json", "model_json", "created_at", "updated_at"}).
		AddRow("cfg-1", "/configs/legal-en-en.json", "en", `{"PARTY":"Who are the parties?"}`, `{"PARTY":"qa-model"}`, now, now)

	mock.ExpectQuery("SELECT id, path, language, questions_json").
		WithArgs("/configs/legal-en-en.json").
		WillReturnRows(rows)

	cfg, err := repo.GetByPath(context.Background(), "/configs/legal-en-en.json")
	if err != nil {
		t.Fatalf("GetByPath() error = %v", err)
	}
	if cfg.Questions["PARTY"] != "Who are the parties?" || cfg.Model["PARTY"] != "qa-model" {
		t.Fatalf("caches not parsed: %+v", cfg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByPathReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, path, language, questions_json").
		WithArgs("/configs/missing-en.json").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByPath(context.Background(), "/configs/missing-en.json")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateLocksRowBeforeWriting(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	cfg := &domain.Configuration{
		Path:          "/configs/legal-en-en.json",
		QuestionsJSON: `{"PARTY":"Who are the parties?"}`,
		ModelJSON:     `{"PARTY":"qa-model"}`,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM configs WHERE path").
		WithArgs(cfg.Path).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cfg-1"))
	mock.ExpectExec("UPDATE configs").
		WithArgs(cfg.Path, cfg.QuestionsJSON, cfg.ModelJSON, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Update(context.Background(), cfg); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
