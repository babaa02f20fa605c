package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/odner-app/odner/internal/core/domain"
)

// SaveQuestion adds one QA-extracted entity to a configuration and
// materializes its answer into the document's dictionary. The target is
// either an existing custom configuration or a freshly derived one; base
// configurations never change.
func (s *ReconcileService) SaveQuestion(ctx context.Context, in domain.SaveQuestionInput) (*domain.NERRecord, error) {
	if in.Label == "" || in.Question == "" || in.Model == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save question",
			errors.New("label, question and model are all required"))
	}
	if in.Model == domain.SpacyMethod {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save question",
			errors.New("custom entities must name a QA model"))
	}

	docPath, err := domain.NormalizePath(in.DocPath)
	if err != nil {
		return nil, err
	}
	rec, err := s.nerRepo.GetByDocPath(ctx, docPath)
	if err != nil {
		return nil, err
	}
	if rec.Language != in.Language {
		return nil, domain.WrapError(domain.ErrLanguageMismatch, "save question",
			fmt.Errorf("document is %s, request is %s", rec.Language, in.Language))
	}

	var cfg *domain.Configuration
	if in.CreateNew {
		cfg, err = s.deriveConfig(ctx, rec, in)
	} else {
		cfg, err = s.extendConfig(ctx, in)
	}
	if err != nil {
		return nil, err
	}

	stem := domain.DocStem(rec.DocPath)
	target := domain.DictPath(s.cacheDir, stem, cfg.Name(), cfg.Language)

	var dict domain.EntityDict
	if s.dicts.Exists(target) {
		if err := s.dicts.Load(target, &dict); err != nil {
			return nil, err
		}
		dict = dict.Clone()
	} else {
		dict, err = s.seedFromBase(rec.DocPath, rec.Language)
		if err != nil {
			return nil, err
		}
	}
	// The interactive session already extracted the answer; it seeds the
	// dictionary directly instead of re-running QA.
	dict[in.Label] = []string{in.Answer}

	if err := s.dicts.Save(target, dict); err != nil {
		return nil, fmt.Errorf("write dictionary: %w", err)
	}
	return s.bind(ctx, rec, cfg, target, dict)
}

// deriveConfig builds the new configuration for CreateNew requests, seeded
// from the base question set or from the document's currently bound one.
func (s *ReconcileService) deriveConfig(ctx context.Context, rec *domain.NERRecord, in domain.SaveQuestionInput) (*domain.Configuration, error) {
	var (
		questions domain.Questions
		model     domain.EntityModel
	)
	if in.DeriveFromBase {
		base, err := s.configs.EnsureBase(ctx, in.Language)
		if err != nil {
			return nil, err
		}
		questions = base.Questions.Clone()
		model = base.Model.Clone()
	} else {
		bound, err := s.configRepo.GetByPath(ctx, rec.ConfigPath)
		if err != nil {
			return nil, err
		}
		questions = bound.Questions.Clone()
		model = bound.Model.Clone()
	}

	if _, ok := model[in.Label]; ok {
		return nil, domain.WrapError(domain.ErrDuplicateEntity, "save question",
			fmt.Errorf("label already present: %s", in.Label))
	}
	questions[in.Label] = in.Question
	model[in.Label] = in.Model

	return s.configs.Create(ctx, in.NewConfigName, in.Language, questions, model)
}

// extendConfig adds the label to an existing custom configuration.
func (s *ReconcileService) extendConfig(ctx context.Context, in domain.SaveQuestionInput) (*domain.Configuration, error) {
	configPath, err := domain.NormalizePath(in.TargetConfigPath)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configRepo.GetByPath(ctx, configPath)
	if err != nil {
		return nil, err
	}
	if cfg.IsBase() {
		return nil, domain.WrapError(domain.ErrImmutableConfig, "save question",
			fmt.Errorf("base config cannot be extended: %s", cfg.Path))
	}
	if cfg.Language != in.Language {
		return nil, domain.WrapError(domain.ErrLanguageMismatch, "save question",
			fmt.Errorf("config is %s, request is %s", cfg.Language, in.Language))
	}
	if _, ok := cfg.Model[in.Label]; ok {
		return nil, domain.WrapError(domain.ErrDuplicateEntity, "save question",
			fmt.Errorf("label already present: %s", in.Label))
	}

	cfg.Questions[in.Label] = in.Question
	cfg.Model[in.Label] = in.Model
	if err := cfg.RefreshCaches(); err != nil {
		return nil, err
	}
	if err := s.dicts.Save(cfg.Path, cfg.Questions); err != nil {
		return nil, fmt.Errorf("write questions file: %w", err)
	}
	if err := s.configRepo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
