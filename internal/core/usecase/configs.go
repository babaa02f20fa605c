package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
)

// ConfigService owns the configuration catalog: discovery of question
// files on disk, seeding of their database records, creation of derived
// configurations and entity deletion with its cascade.
type ConfigService struct {
	repo    ports.ConfigRepository
	nerRepo ports.NERRepository
	dicts   ports.DictStore

	configDir string
	cacheDir  string

	// defaultQAModel is assigned to labels of operator-provisioned
	// question files that have no database record yet and are not part
	// of the language's base label set.
	defaultQAModel string
}

func NewConfigService(
	repo ports.ConfigRepository,
	nerRepo ports.NERRepository,
	dicts ports.DictStore,
	configDir, cacheDir, defaultQAModel string,
) *ConfigService {
	return &ConfigService{
		repo:           repo,
		nerRepo:        nerRepo,
		dicts:          dicts,
		configDir:      configDir,
		cacheDir:       cacheDir,
		defaultQAModel: defaultQAModel,
	}
}

// ListOrSeed returns the paths of every configuration available for the
// language. Question files present on disk without a database record get
// one seeded, so operator-provisioned configurations become usable
// without a manual registration step.
func (s *ConfigService) ListOrSeed(ctx context.Context, lang domain.Language) ([]string, error) {
	files, err := s.dicts.ListDir(s.configDir)
	if err != nil {
		return nil, fmt.Errorf("list config dir: %w", err)
	}

	out := make([]string, 0, len(files))
	for _, file := range files {
		fileLang, ok := domain.LanguageFromPath(file)
		if !ok || fileLang != lang {
			continue
		}
		// A '-' inside a config name would make derived dictionary file
		// names ambiguous; such files are ignored rather than seeded.
		if err := domain.ValidateConfigName(domain.ConfigNameFromPath(file)); err != nil {
			continue
		}
		path, err := domain.NormalizePath(file)
		if err != nil {
			return nil, err
		}

		if _, err := s.repo.GetByPath(ctx, path); err != nil {
			if !domain.IsKind(err, domain.ErrNotFound) {
				return nil, err
			}
			if _, err := s.seedFromFile(ctx, path, lang); err != nil {
				return nil, err
			}
		}
		out = append(out, path)
	}
	return out, nil
}

// EnsureBase returns the language's base configuration, seeding its
// record from the base questions file on first use. A missing base
// questions file is a deployment error.
func (s *ConfigService) EnsureBase(ctx context.Context, lang domain.Language) (*domain.Configuration, error) {
	path, err := domain.NormalizePath(filepath.Join(s.configDir, domain.ConfigFileName("base", lang)))
	if err != nil {
		return nil, err
	}

	cfg, err := s.repo.GetByPath(ctx, path)
	if err == nil {
		return cfg, nil
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.seedFromFile(ctx, path, lang)
}

func (s *ConfigService) seedFromFile(ctx context.Context, path string, lang domain.Language) (*domain.Configuration, error) {
	var questions domain.Questions
	if err := s.dicts.Load(path, &questions); err != nil {
		return nil, fmt.Errorf("load questions file: %w", err)
	}

	var model domain.EntityModel
	if domain.IsBaseConfigPath(path) {
		model = domain.SeedBaseModel(questions)
	} else {
		model = s.modelForDiscovered(ctx, questions, lang)
	}

	now := time.Now().UTC()
	cfg := &domain.Configuration{
		ID:        uuid.NewString(),
		Path:      path,
		Language:  lang,
		Questions: questions,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := cfg.RefreshCaches(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("seed config record: %w", err)
	}
	return cfg, nil
}

// modelForDiscovered assigns methods to a question file that was placed
// on disk by hand: labels the base configuration also knows stay with the
// tagger, the rest run through the default QA model.
func (s *ConfigService) modelForDiscovered(ctx context.Context, questions domain.Questions, lang domain.Language) domain.EntityModel {
	baseLabels := domain.Questions{}
	if base, err := s.EnsureBase(ctx, lang); err == nil {
		baseLabels = base.Questions
	}

	model := domain.EntityModel{}
	for label := range questions {
		if _, ok := baseLabels[label]; ok {
			model[label] = domain.SpacyMethod
		} else {
			model[label] = s.defaultQAModel
		}
	}
	return model
}

// Create materializes a brand-new configuration: its questions file on
// disk and its database record.
func (s *ConfigService) Create(ctx context.Context, name string, lang domain.Language, questions domain.Questions, model domain.EntityModel) (*domain.Configuration, error) {
	if err := domain.ValidateConfigName(name); err != nil {
		return nil, err
	}

	path, err := domain.NormalizePath(filepath.Join(s.configDir, domain.ConfigFileName(name, lang)))
	if err != nil {
		return nil, err
	}
	if domain.IsBaseConfigPath(path) {
		return nil, domain.WrapError(domain.ErrImmutableConfig, "create config", fmt.Errorf("cannot shadow base config: %s", path))
	}
	if s.dicts.Exists(path) {
		return nil, domain.WrapError(domain.ErrAlreadyExists, "create config", fmt.Errorf("config file exists: %s", path))
	}
	if _, err := s.repo.GetByPath(ctx, path); err == nil {
		return nil, domain.WrapError(domain.ErrAlreadyExists, "create config", fmt.Errorf("config record exists: %s", path))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	cfg := &domain.Configuration{
		ID:        uuid.NewString(),
		Path:      path,
		Language:  lang,
		Questions: questions.Clone(),
		Model:     model.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := cfg.RefreshCaches(); err != nil {
		return nil, err
	}
	if err := s.dicts.Save(path, cfg.Questions); err != nil {
		return nil, fmt.Errorf("write questions file: %w", err)
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, fmt.Errorf("create config record: %w", err)
	}
	return cfg, nil
}
