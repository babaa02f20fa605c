package httpadapter

import (
	"net/http"
	"strings"

	"github.com/odner-app/odner/internal/core/domain"
)

func (rt *Router) listConfigs(w http.ResponseWriter, r *http.Request) {
	rawLang := r.URL.Query().Get("lang")
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req struct {
			Lang string `json:"lang"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		rawLang = req.Lang
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	lang, err := parseLang(rawLang)
	if err != nil {
		writeError(w, err)
		return
	}

	paths, err := rt.configs.ListOrSeed(r.Context(), lang)
	if err != nil {
		writeError(w, err)
		return
	}

	names := make([]string, 0, len(paths))
	for _, path := range paths {
		names = append(names, domain.ConfigNameFromPath(path))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"language": lang,
		"paths":    paths,
		"names":    names,
	})
}

func (rt *Router) saveQuestion(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		docRequest
		Label            string `json:"label"`
		Question         string `json:"question"`
		Model            string `json:"model"`
		Answer           string `json:"answer"`
		TargetConfigPath string `json:"target_config_path"`
		CreateNew        bool   `json:"create_new"`
		NewConfigName    string `json:"new_config_name"`
		DeriveFromBase   bool   `json:"derive_from_base"`
	}
	if !decodeJSON(w, r, &req) {
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

	rec, err := rt.reconciler.SaveQuestion(r.Context(), domain.SaveQuestionInput{
		DocPath:          docPath,
		Language:         lang,
		Label:            strings.TrimSpace(req.Label),
		Question:         strings.TrimSpace(req.Question),
		Model:            strings.TrimSpace(req.Model),
		Answer:           req.Answer,
		TargetConfigPath: req.TargetConfigPath,
		CreateNew:        req.CreateNew,
		NewConfigName:    strings.TrimSpace(req.NewConfigName),
		DeriveFromBase:   req.DeriveFromBase,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeRecord(w, rec)
}

func (rt *Router) deleteEntities(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		ConfigPath string   `json:"config_path"`
		Labels     []string `json:"labels"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ConfigPath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "config_path is required"})
		return
	}

	if err := rt.configs.DeleteEntities(r.Context(), req.ConfigPath, req.Labels); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"config_path": req.ConfigPath,
		"deleted":     req.Labels,
	})
}
