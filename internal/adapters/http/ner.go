package httpadapter

import (
	"net/http"

	"github.com/odner-app/odner/internal/core/domain"
)

type docRequest struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
}

func (rt *Router) loadEntities(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req docRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lang, err := parseLang(req.Lang)
	if err != nil {
		writeError(w, err)
		return
	}

	up, docPath, text, err := rt.resolveDoc(r, req.Title, lang)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := rt.reconciler.Load(r.Context(), docPath, lang, text, up.StorageKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRecord(w, rec)
}

func (rt *Router) switchConfig(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		docRequest
		ConfigPath string `json:"config_path"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ConfigPath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "config_path is required"})
		return
	}
	lang, err := parseLang(req.Lang)
	if err != nil {
		writeError(w, err)
		return
	}

	_, docPath, text, err := rt.resolveDoc(r, req.Title, lang)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := rt.reconciler.Switch(r.Context(), docPath, req.ConfigPath, text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRecord(w, rec)
}

func (rt *Router) filterEntities(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		docRequest
		Labels []string `json:"labels"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	lang, err := parseLang(req.Lang)
	if err != nil {
		writeError(w, err)
		return
	}

	up, docPath, text, err := rt.resolveDoc(r, req.Title, lang)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, err := rt.reconciler.Load(r.Context(), docPath, lang, text, up.StorageKey)
	if err != nil {
		writeError(w, err)
		return
	}
	dict, err := rec.Dict()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doc_path": rec.DocPath,
		"labels":   req.Labels,
		"html":     HighlightEntities(text, dict, req.Labels),
	})
}

func writeRecord(w http.ResponseWriter, rec *domain.NERRecord) {
	dict, err := rec.Dict()
	if err != nil {
		writeError(w, err)
		return
	}
	model, err := rec.Model()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doc_path":    rec.DocPath,
		"dict_path":   rec.DictPath,
		"config_path": rec.ConfigPath,
		"language":    rec.Language,
		"entities":    dict,
		"model":       model,
		"updated_at":  rec.UpdatedAt,
	})
}
