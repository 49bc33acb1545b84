package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
)

type historyRecord struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	Query     string         `json:"query"`
	Mode      string         `json:"mode"`
	Breadth   int            `json:"breadth"`
	Depth     int            `json:"depth"`
	Answers   []store.Answer `json:"answers"`
	Result    string         `json:"result"`
	CreatedAt string         `json:"created_at"`
}

func toHistoryRecord(record store.ResearchRecord) historyRecord {
	answers := record.Answers
	if answers == nil {
		answers = []store.Answer{}
	}
	return historyRecord{
		ID:        record.ID,
		SessionID: record.SessionID,
		Query:     record.Query,
		Mode:      record.Mode,
		Breadth:   record.Breadth,
		Depth:     record.Depth,
		Answers:   answers,
		Result:    record.Result,
		CreatedAt: record.CreatedAt,
	}
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.HistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	records, err := s.store.ListRecords(r.Context(), limit)
	if err != nil {
		s.logger.Error("list history", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]historyRecord, 0, len(records))
	for _, record := range records {
		out = append(out, toHistoryRecord(record))
	}
	writeJSON(w, out)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	record, err := s.store.GetRecord(r.Context(), recordID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, toHistoryRecord(*record))
}

func (s *Server) deleteHistory(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "id")
	if err := s.store.DeleteRecord(r.Context(), recordID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
