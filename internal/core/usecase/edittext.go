package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odner-app/odner/internal/core/domain"
)

// EditText replaces a document's extracted text and invalidates every
// entity artifact derived from the old text: the base dictionary is
// re-tagged, the bound configuration's dictionary is re-materialized and
// the document's other cached dictionaries are dropped. Artifacts of
// other documents are untouched. Every edit is recorded in the edit log.
func (s *ReconcileService) EditText(ctx context.Context, docPath, uploadTitle string, lang domain.Language, newText string) (*domain.EditEntry, error) {
	docPath, err := domain.NormalizePath(docPath)
	if err != nil {
		return nil, err
	}

	if err := s.texts.WriteText(docPath, newText); err != nil {
		return nil, err
	}
	if err := s.uploads.SetText(ctx, uploadTitle, lang, newText, docPath); err != nil {
		return nil, err
	}

	entities, err := s.tagger.Tag(ctx, newText, lang)
	if err != nil {
		return nil, fmt.Errorf("re-tag document: %w", err)
	}

	stem := domain.DocStem(docPath)
	basePath := domain.BaseDictPath(s.cacheDir, stem, lang)
	if err := s.dicts.Save(basePath, entities); err != nil {
		return nil, fmt.Errorf("write base dictionary: %w", err)
	}

	currentDictPath := basePath
	if rec, err := s.nerRepo.GetByDocPath(ctx, docPath); err == nil {
		currentDictPath, err = s.rematerialize(ctx, rec, entities, newText)
		if err != nil {
			return nil, err
		}
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.dropStaleDicts(stem, lang, currentDictPath, basePath); err != nil {
		return nil, err
	}

	entry := &domain.EditEntry{
		ID:       uuid.NewString(),
		DocPath:  docPath,
		Text:     newText,
		EditedAt: time.Now().UTC(),
	}
	if err := s.editLog.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// rematerialize rebuilds the dictionary of the bound configuration from
// the fresh tagger output plus QA over the new text, and rebinds the
// record to it.
func (s *ReconcileService) rematerialize(ctx context.Context, rec *domain.NERRecord, entities domain.EntityDict, newText string) (string, error) {
	cfg, err := s.configRepo.GetByPath(ctx, rec.ConfigPath)
	if err != nil {
		return "", err
	}

	stem := domain.DocStem(rec.DocPath)
	if cfg.IsBase() {
		basePath := domain.BaseDictPath(s.cacheDir, stem, rec.Language)
		if _, err := s.bind(ctx, rec, cfg, basePath, entities); err != nil {
			return "", err
		}
		return basePath, nil
	}

	dict, _, err := s.backfill(ctx, entities.Clone(), cfg, rec.DocPath, newText)
	if err != nil {
		return "", err
	}

	target := domain.DictPath(s.cacheDir, stem, cfg.Name(), cfg.Language)
	if err := s.dicts.Save(target, dict); err != nil {
		return "", fmt.Errorf("write dictionary: %w", err)
	}
	if _, err := s.bind(ctx, rec, cfg, target, dict); err != nil {
		return "", err
	}
	return target, nil
}

// dropStaleDicts removes the document's cached dictionaries for the
// edited language, except the one just re-materialized and the base one.
func (s *ReconcileService) dropStaleDicts(stem string, lang domain.Language, keepDict, keepBase string) error {
	files, err := s.dicts.ListDir(s.cacheDir)
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}
	for _, file := range files {
		if !domain.BelongsToDoc(file, stem) {
			continue
		}
		if fileLang, ok := domain.LanguageFromPath(file); !ok || fileLang != lang {
			continue
		}
		if file == keepDict || file == keepBase {
			continue
		}
		if err := s.dicts.Remove(file); err != nil {
			return err
		}
	}
	return nil
}
