package httpadapter

import (
	"net/http"
	"strings"
)

// ask answers an ad-hoc question over either an inline context or the
// stored text of an uploaded document.
func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req struct {
		Question string `json:"question"`
		Model    string `json:"model"`
		Context  string `json:"context"`
		Title    string `json:"title"`
		Lang     string `json:"lang"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	contextText := req.Context
	if strings.TrimSpace(contextText) == "" {
		if req.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "context or title is required"})
			return
		}
		lang, err := parseLang(req.Lang)
		if err != nil {
			writeError(w, err)
			return
		}
		_, _, text, err := rt.resolveDoc(r, req.Title, lang)
		if err != nil {
			writeError(w, err)
			return
		}
		contextText = text
	}

	result, err := rt.qa.Ask(r.Context(), req.Question, req.Model, contextText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
