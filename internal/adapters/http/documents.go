package httpadapter

import (
	"net/http"
	"strings"

	"github.com/odner-app/odner/internal/core/domain"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	kind, err := domain.ParseUploadKind(strings.TrimPrefix(r.URL.Path, "/v1/uploads/"))
	if err != nil {
		writeError(w, err)
		return
	}
	lang, err := parseLang(r.FormValue("lang"))
	if err != nil {
		writeError(w, err)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	up, err := rt.ingest.Upload(r.Context(), kind, fileHeader.Filename, lang, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, uploadResponse(up))
}

func (rt *Router) documentText(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.getDocumentText(w, r)
	case http.MethodPost:
		rt.editDocumentText(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) getDocumentText(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	lang, err := parseLang(r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}

	up, docPath, text, err := rt.resolveDoc(r, title, lang)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":    up.Title,
		"language": lang,
		"path":     docPath,
		"text":     text,
	})
}

func (rt *Router) editDocumentText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Lang  string `json:"lang"`
		Text  string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and text are required"})
		return
	}
	lang, err := parseLang(req.Lang)
	if err != nil {
		writeError(w, err)
		return
	}

	_, docPath, _, err := rt.resolveDoc(r, req.Title, lang)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := rt.reconciler.EditText(r.Context(), docPath, req.Title, lang, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"edit_id":   entry.ID,
		"doc_path":  entry.DocPath,
		"edited_at": entry.EditedAt,
	})
}

func uploadResponse(up *domain.Upload) map[string]any {
	return map[string]any{
		"id":          up.ID,
		"title":       up.Title,
		"kind":        up.Kind,
		"storage_key": up.StorageKey,
		"txt_path_it": up.TxtPathIT,
		"txt_path_en": up.TxtPathEN,
		"created_at":  up.CreatedAt,
	}
}
