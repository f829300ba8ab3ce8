package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/relevance-engine/backend/internal/scoring"
	"github.com/relevance-engine/backend/internal/textproc"
)

// Server exposes the scoring entrypoint over HTTP. The scorer it wraps
// owns the read-only vocabulary and background model, so one Server can
// handle concurrent requests without locking.
type Server struct {
	Scorer *scoring.Scorer
	Logger *logrus.Entry
	Router *http.ServeMux

	normalizer *textproc.Normalizer
}

func NewServer(scorer *scoring.Scorer, logger *logrus.Entry) *Server {
	s := &Server{
		Scorer:     scorer,
		Logger:     logger,
		Router:     http.NewServeMux(),
		normalizer: textproc.NewNormalizer(logger),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc("/api/v1/score", s.handleScore)
	s.Router.HandleFunc("/api/v1/healthz", s.handleHealthz)
}

func (s *Server) Start(addr string) error {
	s.Logger.Infof("Starting API Server on %s", addr)
	return http.ListenAndServe(addr, s.Router)
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
	Phase string `json:"phase,omitempty"`
}

type ScoreResponse struct {
	Value float64 `json:"value"`
}

// Handlers

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	cleaned := s.normalizer.Clean(req.Text)
	score, err := s.Scorer.Score(cleaned)
	if err != nil {
		s.Logger.Errorf("Scoring failed: %v", err)
		resp := ErrorResponse{Error: err.Error()}
		var scoreErr *scoring.Error
		if errors.As(err, &scoreErr) {
			resp.Phase = string(scoreErr.Phase)
		}
		jsonResponse(w, http.StatusInternalServerError, resp)
		return
	}

	s.Logger.Infof("Similarity score: %f", score)
	jsonResponse(w, http.StatusOK, ScoreResponse{Value: score})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
