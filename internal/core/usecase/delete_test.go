package usecase

import (
	"context"
	"testing"

	"github.com/odner-app/odner/internal/core/domain"
)

func TestDeleteEntitiesCascades(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t, "legal", map[string]string{"PARTY": "Who are the parties?"})

	// Two documents materialized under the same configuration; only one
	// of them is currently bound to it.
	f.load(t, "/texts/doc-en.txt")
	if _, err := f.svc.Switch(context.Background(), "/texts/doc-en.txt", cfg.Path, "Silvia of Acme signed."); err != nil {
		t.Fatalf("switch: %v", err)
	}
	stale := domain.EntityDict{"PERSON": {"Marco"}, "PARTY": {"Beta SRL"}}
	if err := f.dicts.Save("/cache/other-legal-en.json", stale); err != nil {
		t.Fatalf("seed stale dict: %v", err)
	}

	if err := f.configs.DeleteEntities(context.Background(), cfg.Path, []string{"PARTY"}); err != nil {
		t.Fatalf("DeleteEntities() error = %v", err)
	}

	got, err := f.configRepo.GetByPath(context.Background(), cfg.Path)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if _, ok := got.Questions["PARTY"]; ok {
		t.Fatalf("label still in questions: %v", got.Questions)
	}
	if _, ok := got.Model["PARTY"]; ok {
		t.Fatalf("label still in model: %v", got.Model)
	}

	var bound domain.EntityDict
	if err := f.dicts.Load("/cache/doc-legal-en.json", &bound); err != nil {
		t.Fatalf("load bound dict: %v", err)
	}
	if _, ok := bound["PARTY"]; ok {
		t.Fatalf("label still in bound dictionary: %v", bound)
	}

	var unbound domain.EntityDict
	if err := f.dicts.Load("/cache/other-legal-en.json", &unbound); err != nil {
		t.Fatalf("load unbound dict: %v", err)
	}
	if _, ok := unbound["PARTY"]; ok {
		t.Fatalf("label still in unbound document's dictionary: %v", unbound)
	}
	if unbound["PERSON"][0] != "Marco" {
		t.Fatalf("other labels must survive: %v", unbound)
	}

	rec, err := f.nerRepo.GetByDocPath(context.Background(), "/texts/doc-en.txt")
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	dict, err := domain.ParseEntityDict(rec.DictJSON)
	if err != nil {
		t.Fatalf("parse dict cache: %v", err)
	}
	if _, ok := dict["PARTY"]; ok {
		t.Fatalf("record dict cache still holds label: %v", dict)
	}
	model, err := rec.Model()
	if err != nil {
		t.Fatalf("parse model cache: %v", err)
	}
	if _, ok := model["PARTY"]; ok {
		t.Fatalf("record model cache still holds label: %v", model)
	}
}

func TestDeleteEntitiesIsIdempotent(t *testing.T) {
	f := newFixture(t)
	cfg := f.addConfig(t, "legal", map[string]string{"PARTY": "Who are the parties?"})

	if err := f.configs.DeleteEntities(context.Background(), cfg.Path, []string{"PARTY"}); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := f.configs.DeleteEntities(context.Background(), cfg.Path, []string{"PARTY"}); err != nil {
		t.Fatalf("repeated delete must be a no-op, got %v", err)
	}
	if err := f.configs.DeleteEntities(context.Background(), cfg.Path, []string{"NEVER_EXISTED"}); err != nil {
		t.Fatalf("deleting an absent label must be a no-op, got %v", err)
	}
}

func TestDeleteEntitiesRejectsBaseConfig(t *testing.T) {
	f := newFixture(t)
	if _, err := f.configs.EnsureBase(context.Background(), domain.LanguageEnglish); err != nil {
		t.Fatalf("ensure base: %v", err)
	}

	err := f.configs.DeleteEntities(context.Background(), "/configs/base-en.json", []string{"PERSON"})
	if !domain.IsKind(err, domain.ErrImmutableConfig) {
		t.Fatalf("expected ErrImmutableConfig, got %v", err)
	}
}

func TestDeleteEntitiesLeavesOtherConfigsAlone(t *testing.T) {
	f := newFixture(t)
	legal := f.addConfig(t, "legal", map[string]string{"PARTY": "Who are the parties?"})
	f.addConfig(t, "finance", map[string]string{"PARTY": "Which party pays?"})

	otherDict := domain.EntityDict{"PARTY": {"Gamma SPA"}}
	if err := f.dicts.Save("/cache/doc-finance-en.json", otherDict); err != nil {
		t.Fatalf("seed dict: %v", err)
	}

	if err := f.configs.DeleteEntities(context.Background(), legal.Path, []string{"PARTY"}); err != nil {
		t.Fatalf("DeleteEntities() error = %v", err)
	}

	var survived domain.EntityDict
	if err := f.dicts.Load("/cache/doc-finance-en.json", &survived); err != nil {
		t.Fatalf("load dict: %v", err)
	}
	if survived["PARTY"][0] != "Gamma SPA" {
		t.Fatalf("other config's dictionaries must be untouched: %v", survived)
	}
}

func TestDeleteEntitiesSkipsUnparseableCacheFiles(t *testing.T) {
	f := newFixture(t)
	legal := f.addConfig(t, "legal", map[string]string{"PARTY": "Who are the parties?"})

	// A legacy hyphenated file name ends with "-legal-en.json" but does
	// not decompose into (stem, config, lang); it matches no config.
	foreign := domain.EntityDict{"PARTY": {"Delta GMBH"}}
	if err := f.dicts.Save("/cache/doc-extra-legal-en.json", foreign); err != nil {
		t.Fatalf("seed dict: %v", err)
	}

	if err := f.configs.DeleteEntities(context.Background(), legal.Path, []string{"PARTY"}); err != nil {
		t.Fatalf("DeleteEntities() error = %v", err)
	}

	var survived domain.EntityDict
	if err := f.dicts.Load("/cache/doc-extra-legal-en.json", &survived); err != nil {
		t.Fatalf("load dict: %v", err)
	}
	if survived["PARTY"][0] != "Delta GMBH" {
		t.Fatalf("file outside the naming scheme was scrubbed: %v", survived)
	}
}
