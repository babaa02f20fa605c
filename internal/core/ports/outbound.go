package ports

import (
	"context"
	"io"

	"github.com/odner-app/odner/internal/core/domain"
)

// ConfigRepository persists Configuration records keyed by file path.
type ConfigRepository interface {
	Create(ctx context.Context, cfg *domain.Configuration) error
	GetByPath(ctx context.Context, path string) (*domain.Configuration, error)
	// Update rewrites the questions cache and the entity model atomically,
	// locking the row for the duration of the update.
	Update(ctx context.Context, cfg *domain.Configuration) error
	ListByLanguage(ctx context.Context, lang domain.Language) ([]domain.Configuration, error)
}

// NERRepository persists NER records keyed by document text-file path.
type NERRepository interface {
	Create(ctx context.Context, rec *domain.NERRecord) error
	GetByDocPath(ctx context.Context, docPath string) (*domain.NERRecord, error)
	// Rebind is the only mutation path for a record's configuration
	// binding; the five fields move in one transaction.
	Rebind(ctx context.Context, docPath string, b domain.Rebind) error
	ListByConfigPath(ctx context.Context, configPath string) ([]domain.NERRecord, error)
}

// UploadRepository persists source-document records and their extracted text.
type UploadRepository interface {
	Create(ctx context.Context, up *domain.Upload) error
	GetByID(ctx context.Context, id string) (*domain.Upload, error)
	GetByTitle(ctx context.Context, title string) (*domain.Upload, error)
	SetText(ctx context.Context, title string, lang domain.Language, text, txtPath string) error
}

// EditLog appends text-revision audit entries. Entries are never rewritten.
type EditLog interface {
	Append(ctx context.Context, entry *domain.EditEntry) error
}

// DictStore reads and writes path-addressed JSON artifacts. Implementations
// guarantee serializability per path: concurrent writers to the same path
// never interleave partial writes.
type DictStore interface {
	Load(path string, v any) error
	Save(path string, v any) error
	String(path string) (string, error)
	Exists(path string) bool
	Remove(path string) error
	ListDir(dir string) ([]string, error)
}

// TextStore reads and writes document text files.
type TextStore interface {
	WriteText(path, text string) error
	ReadText(path string) (string, error)
}

// ObjectStorage stores original uploads.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes upload-processed events.
type MessageQueue interface {
	PublishUploadIngested(ctx context.Context, uploadID string) error
	SubscribeUploadIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// EntityTagger is the built-in NER collaborator.
type EntityTagger interface {
	Tag(ctx context.Context, text string, lang domain.Language) (domain.EntityDict, error)
}

// AnswerExtractor is the QA collaborator: answers one question with a
// named model over a context.
type AnswerExtractor interface {
	ExtractAnswer(ctx context.Context, question, model, contextText string) (domain.Answer, error)
}

// Translator converts extracted text between the supported languages.
type Translator interface {
	Translate(ctx context.Context, text string, from, to domain.Language) (string, error)
}

// TextExtractor extracts plain text from an uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, kind domain.UploadKind, data []byte) (string, error)
}

// SentenceSplitter segments text for per-sentence QA.
type SentenceSplitter interface {
	Split(text string) []string
}
