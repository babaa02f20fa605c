package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/odner-app/odner/internal/core/domain"
)

type fakeDictStore struct {
	mu    sync.Mutex
	files map[string]string
}

func newFakeDictStore() *fakeDictStore {
	return &fakeDictStore{files: map[string]string{}}
}

func (f *fakeDictStore) Load(path string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.files[filepath.Clean(path)]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "load json", fmt.Errorf("no file: %s", path))
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return domain.WrapError(domain.ErrCorruptArtifact, "load json", err)
	}
	return nil
}

func (f *fakeDictStore) Save(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[filepath.Clean(path)] = string(raw)
	return nil
}

func (f *fakeDictStore) String(path string) (string, error) {
	var v any
	if err := f.Load(path, &v); err != nil {
		return "", err
	}
	return domain.CanonicalJSON(v)
}

func (f *fakeDictStore) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[filepath.Clean(path)]
	return ok
}

func (f *fakeDictStore) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, filepath.Clean(path))
	return nil
}

func (f *fakeDictStore) ListDir(dir string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dir = filepath.Clean(dir)
	out := make([]string, 0)
	for path := range f.files {
		if filepath.Dir(path) == dir {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[string]domain.Configuration
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: map[string]domain.Configuration{}}
}

func (f *fakeConfigRepo) Create(_ context.Context, cfg *domain.Configuration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.configs[cfg.Path]; ok {
		return domain.WrapError(domain.ErrAlreadyExists, "create config", fmt.Errorf("duplicate: %s", cfg.Path))
	}
	f.configs[cfg.Path] = *cfg
	return nil
}

func (f *fakeConfigRepo) GetByPath(_ context.Context, path string) (*domain.Configuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[path]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get config", fmt.Errorf("no config: %s", path))
	}
	out := cfg
	out.Questions = cfg.Questions.Clone()
	out.Model = cfg.Model.Clone()
	return &out, nil
}

func (f *fakeConfigRepo) Update(_ context.Context, cfg *domain.Configuration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.configs[cfg.Path]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update config", fmt.Errorf("no config: %s", cfg.Path))
	}
	stored := *cfg
	stored.UpdatedAt = time.Now().UTC()
	f.configs[cfg.Path] = stored
	return nil
}

func (f *fakeConfigRepo) ListByLanguage(_ context.Context, lang domain.Language) ([]domain.Configuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Configuration, 0)
	for _, cfg := range f.configs {
		if cfg.Language == lang {
			out = append(out, cfg)
		}
	}
	return out, nil
}

type fakeNERRepo struct {
	mu      sync.Mutex
	records map[string]domain.NERRecord
	rebinds int
}

func newFakeNERRepo() *fakeNERRepo {
	return &fakeNERRepo{records: map[string]domain.NERRecord{}}
}

func (f *fakeNERRepo) Create(_ context.Context, rec *domain.NERRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[rec.DocPath]; ok {
		return domain.WrapError(domain.ErrAlreadyExists, "create ner record", fmt.Errorf("duplicate: %s", rec.DocPath))
	}
	f.records[rec.DocPath] = *rec
	return nil
}

func (f *fakeNERRepo) GetByDocPath(_ context.Context, docPath string) (*domain.NERRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[docPath]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get ner record", fmt.Errorf("no record: %s", docPath))
	}
	out := rec
	return &out, nil
}

func (f *fakeNERRepo) Rebind(_ context.Context, docPath string, b domain.Rebind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[docPath]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "rebind ner record", fmt.Errorf("no record: %s", docPath))
	}
	rec.DictPath = b.DictPath
	rec.ConfigPath = b.ConfigPath
	rec.DictJSON = b.DictJSON
	rec.ConfigJSON = b.ConfigJSON
	rec.ModelJSON = b.ModelJSON
	rec.UpdatedAt = time.Now().UTC()
	f.records[docPath] = rec
	f.rebinds++
	return nil
}

func (f *fakeNERRepo) ListByConfigPath(_ context.Context, configPath string) ([]domain.NERRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.NERRecord, 0)
	for _, rec := range f.records {
		if rec.ConfigPath == configPath {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocPath < out[j].DocPath })
	return out, nil
}

type fakeTagger struct {
	entities domain.EntityDict
	calls    int
}

func (f *fakeTagger) Tag(context.Context, string, domain.Language) (domain.EntityDict, error) {
	f.calls++
	return f.entities.Clone(), nil
}

type fakeQA struct {
	mu      sync.Mutex
	answers map[string]domain.Answer
	failOn  string
	asked   []string
}

func (f *fakeQA) ExtractAnswer(_ context.Context, question, model, contextText string) (domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, question)
	if f.failOn != "" && question == f.failOn {
		return domain.Answer{}, fmt.Errorf("qa pipeline failed for %q", question)
	}
	if answer, ok := f.answers[question]; ok {
		return answer, nil
	}
	return domain.Answer{Text: "answer to " + question, Score: 0.9}, nil
}

type fakeTextStore struct {
	mu    sync.Mutex
	texts map[string]string
}

func newFakeTextStore() *fakeTextStore {
	return &fakeTextStore{texts: map[string]string{}}
}

func (f *fakeTextStore) WriteText(path, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[path] = text
	return nil
}

func (f *fakeTextStore) ReadText(path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.texts[path]
	if !ok {
		return "", domain.WrapError(domain.ErrNotFound, "read text file", fmt.Errorf("no text: %s", path))
	}
	return text, nil
}

type fakeUploadRepo struct {
	mu      sync.Mutex
	uploads map[string]domain.Upload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: map[string]domain.Upload{}}
}

func (f *fakeUploadRepo) Create(_ context.Context, up *domain.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[up.ID] = *up
	return nil
}

func (f *fakeUploadRepo) GetByID(_ context.Context, id string) (*domain.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.uploads[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("no upload: %s", id))
	}
	out := up
	return &out, nil
}

func (f *fakeUploadRepo) GetByTitle(_ context.Context, title string) (*domain.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, up := range f.uploads {
		if up.Title == title {
			out := up
			return &out, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get upload", fmt.Errorf("no upload: %s", title))
}

func (f *fakeUploadRepo) SetText(_ context.Context, title string, lang domain.Language, text, txtPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, up := range f.uploads {
		if up.Title == title {
			up.SetText(lang, text, txtPath)
			f.uploads[id] = up
			return nil
		}
	}
	return domain.WrapError(domain.ErrNotFound, "set upload text", fmt.Errorf("no upload: %s", title))
}

type fakeEditLog struct {
	mu      sync.Mutex
	entries []domain.EditEntry
}

func (f *fakeEditLog) Append(_ context.Context, entry *domain.EditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = io.Copy(io.Discard, data)
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeQueue struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeQueue) PublishUploadIngested(_ context.Context, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, uploadID)
	return nil
}

func (f *fakeQueue) SubscribeUploadIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeTranslator struct {
	prefix string
}

func (f *fakeTranslator) Translate(_ context.Context, text string, _, _ domain.Language) (string, error) {
	return f.prefix + text, nil
}

type fakeSplitter struct{}

func (fakeSplitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}
