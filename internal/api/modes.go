package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

func (s *Server) listModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, research.Modes())
}

// getMode is strict: unlike query submission, an unknown mode is a 404
// rather than a fallback to balanced.
func (s *Server) getMode(w http.ResponseWriter, r *http.Request) {
	mode := research.Mode(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "mode"))))
	if !mode.Valid() {
		http.Error(w, "unknown mode", http.StatusNotFound)
		return
	}
	writeJSON(w, research.Info(mode))
}
