package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/events"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/session"
)

type submitQueryRequest struct {
	Query   string `json:"query"`
	Mode    string `json:"mode"`
	Breadth *int   `json:"breadth"`
	Depth   *int   `json:"depth"`
}

type submitAnswersRequest struct {
	Answers []string `json:"answers"`
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.session.Snapshot())
}

// submitQuery blocks until the follow-up negotiation (and, when no
// clarification is needed, the research call) finishes. A remote failure is
// reported in the snapshot outcome.
func (s *Server) submitQuery(w http.ResponseWriter, r *http.Request) {
	var body submitQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req := research.NewRequest(body.Query, research.ParseMode(body.Mode))
	if body.Breadth != nil {
		req.Breadth = *body.Breadth
	}
	if body.Depth != nil {
		req.Depth = *body.Depth
	}

	snap, err := s.session.Submit(r.Context(), req)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) submitAnswers(w http.ResponseWriter, r *http.Request) {
	var body submitAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	snap, err := s.session.SubmitAnswers(r.Context(), body.Answers)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.session.Reset()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, snap)
}

func writeSessionError(w http.ResponseWriter, err error) {
	var transition *session.TransitionError
	if errors.Is(err, session.ErrBusy) || errors.As(err, &transition) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// streamEvents sends the current snapshot, then every transition event for
// the session until the client goes away.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	eventsChan := s.broker.Subscribe(ctx, s.session.ID())
	sendSnapshot(w, s.session.Snapshot())
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-eventsChan:
			if !ok {
				return
			}
			sendSSE(w, event)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-ctx.Done():
			s.logger.Debug("event stream closed", zap.String("session_id", s.session.ID()))
			return
		}
	}
}

func sendSnapshot(w http.ResponseWriter, snap session.Snapshot) {
	payload, _ := json.Marshal(snap)
	fmt.Fprint(w, "event: snapshot\n")
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func sendSSE(w http.ResponseWriter, event events.SessionEvent) {
	payload, _ := json.Marshal(event)
	fmt.Fprintf(w, "id: %s:%d\n", event.SessionID, event.Seq)
	fmt.Fprint(w, "event: session_event\n")
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
