package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
)

// IngestUploadUseCase receives a source document, keeps the original in
// object storage, extracts its text and hands the upload id to the queue
// so the worker can pre-materialize the base dictionary.
type IngestUploadUseCase struct {
	uploads    ports.UploadRepository
	storage    ports.ObjectStorage
	texts      ports.TextStore
	extractor  ports.TextExtractor
	translator ports.Translator
	queue      ports.MessageQueue

	textDir          string
	translateEnabled bool
}

func NewIngestUploadUseCase(
	uploads ports.UploadRepository,
	storage ports.ObjectStorage,
	texts ports.TextStore,
	extractor ports.TextExtractor,
	translator ports.Translator,
	queue ports.MessageQueue,
	textDir string,
	translateEnabled bool,
) *IngestUploadUseCase {
	return &IngestUploadUseCase{
		uploads:          uploads,
		storage:          storage,
		texts:            texts,
		extractor:        extractor,
		translator:       translator,
		queue:            queue,
		textDir:          textDir,
		translateEnabled: translateEnabled,
	}
}

func (uc *IngestUploadUseCase) Upload(ctx context.Context, kind domain.UploadKind, filename string, lang domain.Language, body io.Reader) (*domain.Upload, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("empty upload body"))
	}

	title := uploadTitle(filename)
	if existing, err := uc.uploads.GetByTitle(ctx, title); err == nil {
		return nil, domain.WrapError(domain.ErrAlreadyExists, "upload",
			fmt.Errorf("upload exists: %s (id=%s)", title, existing.ID))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, kind, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("document has no extractable text"))
	}

	now := time.Now().UTC()
	up := &domain.Upload{
		ID:         id,
		Title:      title,
		Kind:       kind,
		StorageKey: storageKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.setText(up, lang, text); err != nil {
		return nil, err
	}

	// Italian uploads also get an English rendition so both text files
	// exist from the start.
	if lang == domain.LanguageItalian && uc.translateEnabled && uc.translator != nil {
		translated, err := uc.translator.Translate(ctx, text, domain.LanguageItalian, domain.LanguageEnglish)
		if err != nil {
			return nil, fmt.Errorf("translate upload: %w", err)
		}
		if err := uc.setText(up, domain.LanguageEnglish, translated); err != nil {
			return nil, err
		}
	}

	if err := uc.uploads.Create(ctx, up); err != nil {
		return nil, fmt.Errorf("create upload record: %w", err)
	}
	if err := uc.queue.PublishUploadIngested(ctx, up.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return up, nil
}

func (uc *IngestUploadUseCase) setText(up *domain.Upload, lang domain.Language, text string) error {
	txtPath, err := domain.NormalizePath(filepath.Join(uc.textDir, domain.TextFileName(up.Title, lang)))
	if err != nil {
		return err
	}
	if err := uc.texts.WriteText(txtPath, text); err != nil {
		return err
	}
	up.SetText(lang, text, txtPath)
	return nil
}

// uploadTitle doubles as the document stem in every derived file name,
// so it must survive sanitization unchanged from upload to upload.
func uploadTitle(filename string) string {
	base := sanitizeFilename(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '_':
			return r
		default:
			// '-' separates the stem, config and language segments of
			// every derived file name, so it cannot appear inside a stem.
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
