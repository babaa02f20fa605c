package usecase

import (
	"context"
	"fmt"

	"github.com/odner-app/odner/internal/core/domain"
)

// DeleteEntities removes labels from a custom configuration and cascades
// the removal through every artifact derived from it: the questions file,
// the configuration record, the dictionary cache of every document ever
// materialized under this configuration, and the caches of records
// currently bound to it. Deleting a label that is already gone is a
// no-op, so the operation is safe to retry.
func (s *ConfigService) DeleteEntities(ctx context.Context, configPath string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	configPath, err := domain.NormalizePath(configPath)
	if err != nil {
		return err
	}
	cfg, err := s.repo.GetByPath(ctx, configPath)
	if err != nil {
		return err
	}
	if cfg.IsBase() {
		return domain.WrapError(domain.ErrImmutableConfig, "delete entities",
			fmt.Errorf("base config is immutable: %s", cfg.Path))
	}

	for _, label := range labels {
		delete(cfg.Questions, label)
	}
	cfg.Model = cfg.Model.Remove(labels...)
	if err := cfg.RefreshCaches(); err != nil {
		return err
	}
	if err := s.dicts.Save(cfg.Path, cfg.Questions); err != nil {
		return fmt.Errorf("write questions file: %w", err)
	}
	if err := s.repo.Update(ctx, cfg); err != nil {
		return err
	}

	// Scrub every dictionary ever materialized under this configuration,
	// regardless of which document it belongs to.
	if err := s.scrubDicts(cfg, labels); err != nil {
		return err
	}

	// Records currently bound to this configuration also carry the
	// removed labels in their string caches.
	records, err := s.nerRepo.ListByConfigPath(ctx, cfg.Path)
	if err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		dictJSON, err := s.dicts.String(rec.DictPath)
		if err != nil {
			if domain.IsKind(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		binding := domain.Rebind{
			DictPath:   rec.DictPath,
			ConfigPath: cfg.Path,
			DictJSON:   dictJSON,
			ConfigJSON: cfg.QuestionsJSON,
			ModelJSON:  cfg.ModelJSON,
		}
		if err := s.nerRepo.Rebind(ctx, rec.DocPath, binding); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConfigService) scrubDicts(cfg *domain.Configuration, labels []string) error {
	files, err := s.dicts.ListDir(s.cacheDir)
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}
	for _, file := range files {
		if !domain.EncodesConfig(file, cfg.Name(), cfg.Language) {
			continue
		}
		var dict domain.EntityDict
		if err := s.dicts.Load(file, &dict); err != nil {
			return err
		}
		changed := false
		for _, label := range labels {
			if _, ok := dict[label]; ok {
				delete(dict, label)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := s.dicts.Save(file, dict); err != nil {
			return err
		}
	}
	return nil
}
