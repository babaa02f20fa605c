package ports

import (
	"context"
	"io"

	"github.com/odner-app/odner/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, kind domain.UploadKind, filename string, lang domain.Language, body io.Reader) (*domain.Upload, error)
}

// UploadProcessor is the inbound contract for asynchronous pre-materialization
// of base dictionaries.
type UploadProcessor interface {
	ProcessByID(ctx context.Context, uploadID string) error
}

// Reconciler drives every workflow that decides which dictionary file
// represents a document under a configuration.
type Reconciler interface {
	Load(ctx context.Context, docPath string, lang domain.Language, text, rawKey string) (*domain.NERRecord, error)
	Switch(ctx context.Context, docPath, configPath, contextText string) (*domain.NERRecord, error)
	SaveQuestion(ctx context.Context, in domain.SaveQuestionInput) (*domain.NERRecord, error)
	EditText(ctx context.Context, docPath, uploadTitle string, lang domain.Language, newText string) (*domain.EditEntry, error)
}

// ConfigCatalog lists and seeds configurations and cascades entity deletion.
type ConfigCatalog interface {
	ListOrSeed(ctx context.Context, lang domain.Language) ([]string, error)
	DeleteEntities(ctx context.Context, configPath string, labels []string) error
}

// QuestionAnswering is the interactive QA contract.
type QuestionAnswering interface {
	Ask(ctx context.Context, question, model, contextText string) (*domain.QAResult, error)
}
