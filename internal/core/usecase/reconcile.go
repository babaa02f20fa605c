package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
)

// ReconcileService keeps three representations of a document's entities
// consistent: the per-document dictionary files in the cache directory,
// the NER record row that points at the current one, and the bound
// configuration. Every workflow that can change which dictionary file
// represents a document goes through this service.
type ReconcileService struct {
	nerRepo    ports.NERRepository
	configRepo ports.ConfigRepository
	configs    *ConfigService
	dicts      ports.DictStore
	texts      ports.TextStore
	tagger     ports.EntityTagger
	qa         ports.AnswerExtractor
	editLog    ports.EditLog
	uploads    ports.UploadRepository

	cacheDir string
}

func NewReconcileService(
	nerRepo ports.NERRepository,
	configRepo ports.ConfigRepository,
	configs *ConfigService,
	dicts ports.DictStore,
	texts ports.TextStore,
	tagger ports.EntityTagger,
	qa ports.AnswerExtractor,
	editLog ports.EditLog,
	uploads ports.UploadRepository,
	cacheDir string,
) *ReconcileService {
	return &ReconcileService{
		nerRepo:    nerRepo,
		configRepo: configRepo,
		configs:    configs,
		dicts:      dicts,
		texts:      texts,
		tagger:     tagger,
		qa:         qa,
		editLog:    editLog,
		uploads:    uploads,
		cacheDir:   cacheDir,
	}
}

// Load returns the document's NER record, creating it on first sight: the
// text runs through the tagger, the result becomes the base dictionary
// and the record binds to the language's base configuration. For a record
// already bound to a custom configuration, labels the configuration has
// gained since the dictionary was materialized are backfilled.
func (s *ReconcileService) Load(ctx context.Context, docPath string, lang domain.Language, text, rawKey string) (*domain.NERRecord, error) {
	docPath, err := domain.NormalizePath(docPath)
	if err != nil {
		return nil, err
	}

	rec, err := s.nerRepo.GetByDocPath(ctx, docPath)
	if err == nil {
		return s.refresh(ctx, rec, text)
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, err
	}

	entities, err := s.tagger.Tag(ctx, text, lang)
	if err != nil {
		return nil, fmt.Errorf("tag document: %w", err)
	}

	stem := domain.DocStem(docPath)
	basePath := domain.BaseDictPath(s.cacheDir, stem, lang)
	if err := s.dicts.Save(basePath, entities); err != nil {
		return nil, fmt.Errorf("write base dictionary: %w", err)
	}

	baseCfg, err := s.configs.EnsureBase(ctx, lang)
	if err != nil {
		return nil, err
	}

	dictJSON, err := domain.CanonicalJSON(entities)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec = &domain.NERRecord{
		ID:         uuid.NewString(),
		DocPath:    docPath,
		RawFile:    rawKey,
		DictPath:   basePath,
		ConfigPath: baseCfg.Path,
		DictJSON:   dictJSON,
		ConfigJSON: baseCfg.QuestionsJSON,
		ModelJSON:  baseCfg.ModelJSON,
		Language:   lang,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.nerRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create ner record: %w", err)
	}
	return rec, nil
}

// refresh backfills labels the bound configuration has that the current
// dictionary lacks. Bound to base there is nothing to backfill; the file
// on disk stays authoritative.
func (s *ReconcileService) refresh(ctx context.Context, rec *domain.NERRecord, text string) (*domain.NERRecord, error) {
	cfg, err := s.configRepo.GetByPath(ctx, rec.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.IsBase() {
		return rec, nil
	}

	var dict domain.EntityDict
	if s.dicts.Exists(rec.DictPath) {
		if err := s.dicts.Load(rec.DictPath, &dict); err != nil {
			return nil, err
		}
	} else {
		dict, err = s.seedFromBase(rec.DocPath, rec.Language)
		if err != nil {
			return nil, err
		}
	}

	dict, changed, err := s.backfill(ctx, dict, cfg, rec.DocPath, text)
	if err != nil {
		return nil, err
	}
	if !changed {
		return rec, nil
	}

	return s.bind(ctx, rec, cfg, rec.DictPath, dict)
}

// Switch rebinds the document to another configuration. An existing
// dictionary for the (document, configuration) pair is authoritative and
// is adopted as-is; otherwise one is materialized from the base
// dictionary plus QA backfill. All answers are computed before anything
// is written, so a mid-flight QA failure leaves no partial state.
func (s *ReconcileService) Switch(ctx context.Context, docPath, configPath, contextText string) (*domain.NERRecord, error) {
	docPath, err := domain.NormalizePath(docPath)
	if err != nil {
		return nil, err
	}
	configPath, err = domain.NormalizePath(configPath)
	if err != nil {
		return nil, err
	}

	rec, err := s.nerRepo.GetByDocPath(ctx, docPath)
	if err != nil {
		return nil, err
	}
	if rec.ConfigPath == configPath {
		return rec, nil
	}

	cfg, err := s.configRepo.GetByPath(ctx, configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Language != rec.Language {
		return nil, domain.WrapError(domain.ErrLanguageMismatch, "switch config",
			fmt.Errorf("document is %s, config is %s", rec.Language, cfg.Language))
	}

	stem := domain.DocStem(rec.DocPath)
	target := domain.DictPath(s.cacheDir, stem, cfg.Name(), cfg.Language)

	if s.dicts.Exists(target) {
		dictJSON, err := s.dicts.String(target)
		if err != nil {
			return nil, err
		}
		return s.bindRaw(ctx, rec, cfg, target, dictJSON)
	}

	dict, err := s.seedFromBase(rec.DocPath, rec.Language)
	if err != nil {
		return nil, err
	}
	dict, _, err = s.backfill(ctx, dict, cfg, rec.DocPath, contextText)
	if err != nil {
		return nil, err
	}

	if err := s.dicts.Save(target, dict); err != nil {
		return nil, fmt.Errorf("write dictionary: %w", err)
	}
	return s.bind(ctx, rec, cfg, target, dict)
}

// backfill answers every label the configuration extracts by QA that the
// dictionary does not yet hold. Answers are collected first and applied
// only after the whole pass succeeded.
func (s *ReconcileService) backfill(ctx context.Context, dict domain.EntityDict, cfg *domain.Configuration, docPath, text string) (domain.EntityDict, bool, error) {
	answers := map[string]string{}
	for _, label := range cfg.Model.SortedLabels() {
		method := cfg.Model[label]
		if method == domain.SpacyMethod {
			continue
		}
		if _, ok := dict[label]; ok {
			continue
		}
		answer, err := s.qa.ExtractAnswer(ctx, cfg.Questions[label], method, text)
		if err != nil {
			return nil, false, &domain.ReconciliationError{
				DocPath:    docPath,
				ConfigPath: cfg.Path,
				Label:      label,
				Err:        err,
			}
		}
		answers[label] = answer.Text
	}
	if len(answers) == 0 {
		return dict, false, nil
	}

	out := dict.Clone()
	for label, answer := range answers {
		out[label] = []string{answer}
	}
	return out, true, nil
}

// seedFromBase copies the document's base dictionary. A document without
// one was never loaded; nothing can be materialized for it.
func (s *ReconcileService) seedFromBase(docPath string, lang domain.Language) (domain.EntityDict, error) {
	basePath := domain.BaseDictPath(s.cacheDir, domain.DocStem(docPath), lang)
	var dict domain.EntityDict
	if err := s.dicts.Load(basePath, &dict); err != nil {
		return nil, fmt.Errorf("seed from base dictionary: %w", err)
	}
	return dict.Clone(), nil
}

func (s *ReconcileService) bind(ctx context.Context, rec *domain.NERRecord, cfg *domain.Configuration, dictPath string, dict domain.EntityDict) (*domain.NERRecord, error) {
	dictJSON, err := domain.CanonicalJSON(dict)
	if err != nil {
		return nil, err
	}
	return s.bindRaw(ctx, rec, cfg, dictPath, dictJSON)
}

func (s *ReconcileService) bindRaw(ctx context.Context, rec *domain.NERRecord, cfg *domain.Configuration, dictPath, dictJSON string) (*domain.NERRecord, error) {
	binding := domain.Rebind{
		DictPath:   dictPath,
		ConfigPath: cfg.Path,
		DictJSON:   dictJSON,
		ConfigJSON: cfg.QuestionsJSON,
		ModelJSON:  cfg.ModelJSON,
	}
	if err := s.nerRepo.Rebind(ctx, rec.DocPath, binding); err != nil {
		return nil, err
	}

	rec.DictPath = binding.DictPath
	rec.ConfigPath = binding.ConfigPath
	rec.DictJSON = binding.DictJSON
	rec.ConfigJSON = binding.ConfigJSON
	rec.ModelJSON = binding.ModelJSON
	rec.UpdatedAt = time.Now().UTC()
	return rec, nil
}
