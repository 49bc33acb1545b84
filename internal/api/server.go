package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/config"
	"github.com/Vamsibolem10/Mini-Researcher/internal/events"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/session"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
)

type Server struct {
	session Session
	store   store.Store
	broker  Broker
	remote  Prober
	cfg     config.Config
	logger  *zap.Logger
}

// Session is the orchestrator surface the API drives.
type Session interface {
	ID() string
	Snapshot() session.Snapshot
	Submit(ctx context.Context, req research.Request) (session.Snapshot, error)
	SubmitAnswers(ctx context.Context, answers []string) (session.Snapshot, error)
	Reset() (session.Snapshot, error)
}

type Broker interface {
	Subscribe(ctx context.Context, sessionID string) <-chan events.SessionEvent
}

// Prober checks that the remote research service is reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

func NewServer(sess Session, store store.Store, broker Broker, remote Prober, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		session: sess,
		store:   store,
		broker:  broker,
		remote:  remote,
		cfg:     cfg,
		logger:  logger.Named("api"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(quietRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/modes", s.listModes)
	r.Get("/modes/{mode}", s.getMode)
	r.Get("/session", s.getSession)
	r.Post("/session/query", s.submitQuery)
	r.Post("/session/answers", s.submitAnswers)
	r.Post("/session/reset", s.resetSession)
	r.Get("/session/events", s.streamEvents)
	r.Get("/history", s.listHistory)
	r.Get("/history/{id}", s.getHistory)
	r.Delete("/history/{id}", s.deleteHistory)
	r.Get("/health", s.health)
	r.Get("/ready", s.ready)

	return r
}

func quietRequestLogger(next http.Handler) http.Handler {
	logged := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSuppressRequestLog(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		logged.ServeHTTP(w, r)
	})
}

func shouldSuppressRequestLog(method string, path string) bool {
	cleanPath := strings.TrimSpace(path)
	if method == http.MethodGet && strings.HasSuffix(cleanPath, "/events") {
		return true
	}
	if method == http.MethodGet && (cleanPath == "/session" || cleanPath == "/health") {
		return true
	}
	return method == http.MethodOptions
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type subsystemStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status     string                     `json:"status"`
	Subsystems map[string]subsystemStatus `json:"subsystems"`
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	subsystems := map[string]subsystemStatus{}
	overall := http.StatusOK

	if s.store == nil {
		subsystems["store"] = subsystemStatus{Status: "skipped"}
	} else if _, err := s.store.ListRecords(ctx, 1); err != nil {
		subsystems["store"] = subsystemStatus{Status: "error", Error: err.Error()}
		overall = http.StatusServiceUnavailable
	} else {
		subsystems["store"] = subsystemStatus{Status: "ok"}
	}

	if s.remote == nil {
		subsystems["research_service"] = subsystemStatus{Status: "skipped"}
	} else if err := s.remote.Probe(ctx); err != nil {
		subsystems["research_service"] = subsystemStatus{Status: "error", Error: err.Error()}
		overall = http.StatusServiceUnavailable
	} else {
		subsystems["research_service"] = subsystemStatus{Status: "ok"}
	}

	status := "ok"
	if overall != http.StatusOK {
		status = "degraded"
	}
	writeJSONStatus(w, readinessResponse{Status: status, Subsystems: subsystems}, overall)
}

func writeJSON(w http.ResponseWriter, value any) {
	writeJSONStatus(w, value, http.StatusOK)
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Last-Event-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	s.logger.Info("listening", zap.String("addr", addr))
	return server.ListenAndServe()
}
