package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/odner-app/odner/internal/core/domain"
)

type stubIngestor struct {
	up  *domain.Upload
	err error

	gotKind     domain.UploadKind
	gotFilename string
	gotLang     domain.Language
}

func (s *stubIngestor) Upload(_ context.Context, kind domain.UploadKind, filename string, lang domain.Language, body io.Reader) (*domain.Upload, error) {
	s.gotKind = kind
	s.gotFilename = filename
	s.gotLang = lang
	_, _ = io.ReadAll(body)
	if s.err != nil {
		return nil, s.err
	}
	return s.up, nil
}

type stubReconciler struct {
	rec   *domain.NERRecord
	entry *domain.EditEntry
	err   error

	loadCalls   int
	switchCalls int
}

func (s *stubReconciler) Load(context.Context, string, domain.Language, string, string) (*domain.NERRecord, error) {
	s.loadCalls++
	return s.rec, s.err
}

func (s *stubReconciler) Switch(context.Context, string, string, string) (*domain.NERRecord, error) {
	s.switchCalls++
	return s.rec, s.err
}

func (s *stubReconciler) SaveQuestion(context.Context, domain.SaveQuestionInput) (*domain.NERRecord, error) {
	return s.rec, s.err
}

func (s *stubReconciler) EditText(context.Context, string, string, domain.Language, string) (*domain.EditEntry, error) {
	return s.entry, s.err
}

type stubCatalog struct {
	paths   []string
	err     error
	deleted []string
}

func (s *stubCatalog) ListOrSeed(context.Context, domain.Language) ([]string, error) {
	return s.paths, s.err
}

func (s *stubCatalog) DeleteEntities(_ context.Context, _ string, labels []string) error {
	s.deleted = append(s.deleted, labels...)
	return s.err
}

type stubQA struct {
	result *domain.QAResult
	err    error
	asked  int
}

func (s *stubQA) Ask(context.Context, string, string, string) (*domain.QAResult, error) {
	s.asked++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubUploads struct {
	byTitle map[string]*domain.Upload
}

func (s *stubUploads) Create(context.Context, *domain.Upload) error { return nil }

func (s *stubUploads) GetByID(context.Context, string) (*domain.Upload, error) {
	return nil, domain.ErrNotFound
}

func (s *stubUploads) GetByTitle(_ context.Context, title string) (*domain.Upload, error) {
	up, ok := s.byTitle[title]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get upload", domain.ErrNotFound)
	}
	return up, nil
}

func (s *stubUploads) SetText(context.Context, string, domain.Language, string, string) error {
	return nil
}

type fixture struct {
	ingest     *stubIngestor
	reconciler *stubReconciler
	catalog    *stubCatalog
	qa         *stubQA
	uploads    *stubUploads
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ingest:     &stubIngestor{},
		reconciler: &stubReconciler{},
		catalog:    &stubCatalog{},
		qa:         &stubQA{},
		uploads:    &stubUploads{byTitle: map[string]*domain.Upload{}},
	}
	f.handler = NewRouter(f.ingest, f.reconciler, f.catalog, f.qa, f.uploads, 100, 100).Handler()
	return f
}

func (f *fixture) addUpload(title string) *domain.Upload {
	up := &domain.Upload{
		ID:         "u-1",
		Title:      title,
		Kind:       domain.UploadPDF,
		StorageKey: "key-1",
		TextEN:     "Silvia of Acme signed.",
		TxtPathEN:  "/texts/" + title + "-en.txt",
	}
	f.uploads.byTitle[title] = up
	return up
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadDocumentAccepted(t *testing.T) {
	f := newFixture(t)
	f.ingest.up = &domain.Upload{ID: "u-9", Title: "contract", Kind: domain.UploadPDF}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "contract.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 payload"))
	_ = mw.WriteField("lang", "en")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if f.ingest.gotKind != domain.UploadPDF {
		t.Fatalf("kind = %q", f.ingest.gotKind)
	}
	if f.ingest.gotFilename != "contract.pdf" {
		t.Fatalf("filename = %q", f.ingest.gotFilename)
	}
	if f.ingest.gotLang != domain.LanguageEnglish {
		t.Fatalf("lang = %q", f.ingest.gotLang)
	}
}

func TestUploadDocumentRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/uploads/csv", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoadEntitiesReturnsRecord(t *testing.T) {
	f := newFixture(t)
	f.addUpload("contract")
	f.reconciler.rec = &domain.NERRecord{
		DocPath:    "/texts/contract-en.txt",
		DictPath:   "/cache/contract-base-en.json",
		ConfigPath: "/configs/base-en.json",
		DictJSON:   `{"PERSON":["Silvia"]}`,
		ModelJSON:  `{"PERSON":"Spacy"}`,
		Language:   domain.LanguageEnglish,
	}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/ner/load", map[string]string{
		"title": "contract", "lang": "en",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		DictPath string              `json:"dict_path"`
		Entities map[string][]string `json:"entities"`
		Model    map[string]string   `json:"model"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.DictPath != "/cache/contract-base-en.json" {
		t.Fatalf("dict_path = %q", got.DictPath)
	}
	if len(got.Entities["PERSON"]) != 1 || got.Entities["PERSON"][0] != "Silvia" {
		t.Fatalf("entities = %v", got.Entities)
	}
	if got.Model["PERSON"] != domain.SpacyMethod {
		t.Fatalf("model = %v", got.Model)
	}
}

func TestLoadEntitiesUnknownTitleIs404(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/ner/load", map[string]string{
		"title": "ghost", "lang": "en",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if f.reconciler.loadCalls != 0 {
		t.Fatalf("reconciler called for unknown title")
	}
}

func TestLoadEntitiesMissingRenditionIs404(t *testing.T) {
	f := newFixture(t)
	up := f.addUpload("contract")
	up.TextIT = ""
	up.TxtPathIT = ""

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/ner/load", map[string]string{
		"title": "contract", "lang": "it",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSwitchConfigMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"language mismatch", domain.WrapError(domain.ErrLanguageMismatch, "switch", domain.ErrLanguageMismatch), http.StatusUnprocessableEntity},
		{"reconciliation", &domain.ReconciliationError{DocPath: "d", ConfigPath: "c", Label: "PARTY", Err: io.ErrUnexpectedEOF}, http.StatusBadGateway},
		{"temporary", domain.WrapError(domain.ErrTemporary, "switch", io.ErrUnexpectedEOF), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.addUpload("contract")
			f.reconciler.err = tc.err

			rec := doJSON(t, f.handler, http.MethodPost, "/v1/ner/switch", map[string]string{
				"title": "contract", "lang": "en", "config_path": "/configs/legal-en.json",
			})
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestSwitchConfigRequiresConfigPath(t *testing.T) {
	f := newFixture(t)
	f.addUpload("contract")

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/ner/switch", map[string]string{
		"title": "contract", "lang": "en",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if f.reconciler.switchCalls != 0 {
		t.Fatalf("reconciler called without config_path")
	}
}

func TestListConfigsReturnsNames(t *testing.T) {
	f := newFixture(t)
	f.catalog.paths = []string{"/configs/base-en.json", "/configs/legal-en.json"}

	rec := doJSON(t, f.handler, http.MethodGet, "/v1/configs?lang=en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Names) != 2 || got.Names[0] != "base" || got.Names[1] != "legal" {
		t.Fatalf("names = %v", got.Names)
	}
}

func TestDeleteEntitiesConflictOnBase(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = domain.WrapError(domain.ErrImmutableConfig, "delete entities", domain.ErrImmutableConfig)

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/configs/entities/delete", map[string]any{
		"config_path": "/configs/base-en.json",
		"labels":      []string{"PERSON"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestAskAnswersWithInlineContext(t *testing.T) {
	f := newFixture(t)
	f.qa.result = &domain.QAResult{Answer: "Acme", Score: 0.93}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/qa", map[string]string{
		"question": "Who signed?",
		"model":    "qa-model",
		"context":  "Silvia of Acme signed.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got domain.QAResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Answer != "Acme" {
		t.Fatalf("answer = %q", got.Answer)
	}
}

func TestAskFallsBackToStoredDocumentText(t *testing.T) {
	f := newFixture(t)
	f.addUpload("contract")
	f.qa.result = &domain.QAResult{Answer: "Silvia"}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/qa", map[string]string{
		"question": "Who signed?",
		"model":    "qa-model",
		"title":    "contract",
		"lang":     "en",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if f.qa.asked != 1 {
		t.Fatalf("asked = %d", f.qa.asked)
	}
}

func TestAskRateLimited(t *testing.T) {
	f := &fixture{
		ingest:     &stubIngestor{},
		reconciler: &stubReconciler{},
		catalog:    &stubCatalog{},
		qa:         &stubQA{result: &domain.QAResult{Answer: "x"}},
		uploads:    &stubUploads{byTitle: map[string]*domain.Upload{}},
	}
	f.handler = NewRouter(f.ingest, f.reconciler, f.catalog, f.qa, f.uploads, 1, 1).Handler()

	body := map[string]string{"question": "q", "model": "m", "context": "c"}
	first := doJSON(t, f.handler, http.MethodPost, "/v1/qa", body)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	second := doJSON(t, f.handler, http.MethodPost, "/v1/qa", body)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
	if f.qa.asked != 1 {
		t.Fatalf("asked = %d, want 1", f.qa.asked)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("request id = %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	rec := doJSON(t, f.handler, http.MethodGet, "/v1/ner/load", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestEditDocumentText(t *testing.T) {
	f := newFixture(t)
	f.addUpload("contract")
	f.reconciler.entry = &domain.EditEntry{ID: "e-1", DocPath: "/texts/contract-en.txt"}

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/documents/text", map[string]string{
		"title": "contract", "lang": "en", "text": "Revised text.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		EditID  string `json:"edit_id"`
		DocPath string `json:"doc_path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.EditID != "e-1" || got.DocPath != "/texts/contract-en.txt" {
		t.Fatalf("got %+v", got)
	}
}

func TestEditDocumentTextRejectsEmptyText(t *testing.T) {
	f := newFixture(t)
	f.addUpload("contract")

	rec := doJSON(t, f.handler, http.MethodPost, "/v1/documents/text", map[string]string{
		"title": "contract", "lang": "en", "text": "   ",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetDocumentText(t *testing.T) {
	f := newFixture(t)
	f.addUpload("contract")

	rec := doJSON(t, f.handler, http.MethodGet, "/v1/documents/text?title=contract&lang=en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Silvia of Acme signed.") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
