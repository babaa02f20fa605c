package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/core/ports"
)

type Router struct {
	ingest     ports.DocumentIngestor
	reconciler ports.Reconciler
	configs    ports.ConfigCatalog
	qa         ports.QuestionAnswering
	uploads    ports.UploadRepository

	qaLimiter *rate.Limiter
}

func NewRouter(
	ingest ports.DocumentIngestor,
	reconciler ports.Reconciler,
	configs ports.ConfigCatalog,
	qa ports.QuestionAnswering,
	uploads ports.UploadRepository,
	qaRPS float64,
	qaBurst int,
) *Router {
	if qaRPS <= 0 {
		qaRPS = 1
	}
	if qaBurst <= 0 {
		qaBurst = 1
	}
	return &Router{
		ingest:     ingest,
		reconciler: reconciler,
		configs:    configs,
		qa:         qa,
		uploads:    uploads,
		qaLimiter:  rate.NewLimiter(rate.Limit(qaRPS), qaBurst),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/uploads/", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/text", rt.documentText)
	mux.HandleFunc("/v1/ner/load", rt.loadEntities)
	mux.HandleFunc("/v1/ner/switch", rt.switchConfig)
	mux.HandleFunc("/v1/ner/filter", rt.filterEntities)
	mux.HandleFunc("/v1/configs", rt.listConfigs)
	mux.HandleFunc("/v1/configs/question", rt.saveQuestion)
	mux.HandleFunc("/v1/configs/entities/delete", rt.deleteEntities)
	mux.Handle("/v1/qa", rateLimitMiddleware(rt.qaLimiter, http.HandlerFunc(rt.ask)))
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveDoc turns an upload title plus language into the document
// identity every dictionary operation is keyed by.
func (rt *Router) resolveDoc(r *http.Request, title string, lang domain.Language) (*domain.Upload, string, string, error) {
	up, err := rt.uploads.GetByTitle(r.Context(), title)
	if err != nil {
		return nil, "", "", err
	}
	docPath := up.TxtPath(lang)
	text := up.Text(lang)
	if docPath == "" || text == "" {
		return nil, "", "", domain.WrapError(domain.ErrNotFound, "resolve document",
			errNoRendition{title: title, lang: lang})
	}
	return up, docPath, text, nil
}

type errNoRendition struct {
	title string
	lang  domain.Language
}

func (e errNoRendition) Error() string {
	return "upload " + e.title + " has no " + string(e.lang) + " text"
}

func parseLang(raw string) (domain.Language, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.LanguageItalian, nil
	}
	return domain.ParseLanguage(raw)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return false
	}
	return true
}
