// Package server implements a local stand-in for the Walnut and Voyager
// verification APIs, used for end-to-end testing of contraverify.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pendergraft/contraverify/internal/config"
	"github.com/pendergraft/contraverify/internal/observability/metrics"
	"github.com/pendergraft/contraverify/internal/verification"
)

// AcceptedMessage is the body returned for an accepted submission
const AcceptedMessage = "Verification submitted successfully"

// networkSlugs are the path segments the stub serves, as used by the hosted APIs
var networkSlugs = map[string]bool{
	"sn_main":    true,
	"sn_sepolia": true,
}

// Submission is one verification request the stub accepted
type Submission struct {
	RequestID       string    `json:"requestId"`
	Network         string    `json:"network"`
	ClassName       string    `json:"className"`
	ContractAddress *string   `json:"contractAddress"`
	ClassHash       *string   `json:"classHash"`
	Files           []string  `json:"files"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

// submissionLog keeps submissions in arrival order
type submissionLog struct {
	mu      sync.RWMutex
	entries []Submission
}

func (l *submissionLog) add(s Submission) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *submissionLog) count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *submissionLog) list() []Submission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Submission, len(l.entries))
	copy(out, l.entries)
	return out
}

// Server is the stub verifier HTTP server
type Server struct {
	cfg         *config.Config
	logger      *slog.Logger
	router      *chi.Mux
	submissions *submissionLog
}

// New creates a new server
func New(cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		router:      chi.NewRouter(),
		submissions: &submissionLog{},
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Submissions returns every accepted submission in arrival order
func (s *Server) Submissions() []Submission {
	return s.submissions.list()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(accessLog(s.logger, s.cfg.Server.RejectMessage != "", s.submissions.count))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(MaxBodySize(int64(s.cfg.Server.MaxBodyMB) * 1024 * 1024))
}

func (s *Server) setupRoutes() {
	// Health checks
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/{network}/verify", s.handleVerify)
		r.Get("/submissions", s.handleListSubmissions)
	})
}

// handleVerify mirrors the hosted APIs: 200 with a plain-text message on
// acceptance, any other status with the reason as the body.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	network := chi.URLParam(r, "network")
	if !networkSlugs[network] {
		metrics.StubSubmission(network, "unknown_network")
		writeText(w, http.StatusNotFound, "Unknown network: "+network)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.StubSubmission(network, "unreadable")
		writeText(w, http.StatusRequestEntityTooLarge, "Request body could not be read: "+err.Error())
		return
	}

	if err := verification.ValidatePayloadJSON(body); err != nil {
		metrics.StubSubmission(network, "invalid")
		writeText(w, http.StatusBadRequest, "Invalid verification request: "+err.Error())
		return
	}

	var payload verification.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.StubSubmission(network, "invalid")
		writeText(w, http.StatusBadRequest, "Invalid verification request: "+err.Error())
		return
	}

	if s.cfg.Server.RejectMessage != "" {
		metrics.StubSubmission(network, "rejected")
		writeText(w, http.StatusBadRequest, s.cfg.Server.RejectMessage)
		return
	}

	files := make([]string, 0, len(payload.SourceCode))
	for path := range payload.SourceCode {
		files = append(files, path)
	}

	s.submissions.add(Submission{
		RequestID:       middleware.GetReqID(r.Context()),
		Network:         network,
		ClassName:       payload.ClassName,
		ContractAddress: payload.ContractAddress,
		ClassHash:       payload.ClassHash,
		Files:           files,
		ReceivedAt:      time.Now().UTC(),
	})
	metrics.StubSubmission(network, "accepted")
	s.logger.Info("submission accepted", "network", network, "class_name", payload.ClassName, "files", len(files))

	writeText(w, http.StatusOK, AcceptedMessage)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"submissions": s.submissions.list()})
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, message)
}
