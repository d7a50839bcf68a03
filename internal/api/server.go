package api

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pbaille/foldgrade/internal/domain"
	"github.com/pbaille/foldgrade/internal/export"
	"github.com/pbaille/foldgrade/internal/grading"
	"github.com/pbaille/foldgrade/internal/history"
	"github.com/rs/zerolog"
)

// Server handles HTTP requests from the grading frontend
type Server struct {
	log    *history.Log
	addr   string
	logger zerolog.Logger
}

// New creates a new API server
func New(log *history.Log, addr string, logger zerolog.Logger) *Server {
	return &Server{log: log, addr: addr, logger: logger}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.addr).Msg("starting server")
	return http.ListenAndServe(s.addr, s.handler())
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	// History
	mux.HandleFunc("GET /history", s.getHistory)
	mux.HandleFunc("DELETE /history", s.clearHistory)

	// Gradings
	mux.HandleFunc("POST /gradings", s.recordGrading)

	// Export
	mux.HandleFunc("GET /export", s.exportCSV)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RecordRequest is the request body for recording a grading. The
// frontend either sends the computed result directly, or the raw
// per-towel selections for the server to run through the grading rules.
type RecordRequest struct {
	Grade          domain.Grade      `json:"grade,omitempty"`
	Difficulty     domain.Difficulty `json:"difficulty,omitempty"`
	GradeTags      []string          `json:"grade_tags,omitempty"`
	DifficultyTags []string          `json:"difficulty_tags,omitempty"`

	GradeSelections      [][]string `json:"grade_selections,omitempty"`
	DifficultySelections [][]string `json:"difficulty_selections,omitempty"`

	// InvalidCombination marks an episode whose towel count and time
	// bucket don't line up; those are automatic C grades.
	InvalidCombination bool `json:"invalid_combination,omitempty"`
}

// RecordResponse is the response for recording a grading
type RecordResponse struct {
	Grade      domain.Grade      `json:"grade"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Entries    domain.History    `json:"entries"`
}

func (s *Server) recordGrading(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		grade          domain.Grade
		difficulty     domain.Difficulty
		gradeTags      []string
		difficultyTags []string
	)

	switch {
	case req.InvalidCombination:
		grade = domain.GradeC
		difficulty = domain.DifficultyEasy

	case req.Grade != "":
		if !req.Grade.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown grade %q", req.Grade))
			return
		}
		grade = req.Grade
		difficulty = req.Difficulty
		gradeTags = req.GradeTags
		difficultyTags = req.DifficultyTags

	default:
		grade = grading.ComputeGrade(req.GradeSelections)
		difficulty = grading.ComputeDifficulty(req.DifficultySelections)
		gradeTags = grading.UniqueTags(req.GradeSelections)
		difficultyTags = grading.UniqueTags(req.DifficultySelections)
	}

	// C-grade episodes skip difficulty assessment.
	if grade == domain.GradeC {
		difficulty = domain.DifficultyEasy
		difficultyTags = nil
	}
	if !difficulty.Valid() {
		difficulty = domain.DifficultyEasy
	}

	entries := s.log.Record(grade, difficulty, gradeTags, difficultyTags)

	writeJSON(w, http.StatusCreated, RecordResponse{
		Grade:      grade,
		Difficulty: difficulty,
		Entries:    entries,
	})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":        s.log.Entries(),
		"firstEntryTime": s.log.FirstEntryTime(),
	})
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	dateKey := r.URL.Query().Get("date")
	if dateKey == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'date' is required (YYYY-MM-DD or 'all')")
		return
	}

	entries := export.FilterByDate(s.log.Entries(), dateKey)
	csvText := export.ToCSV(entries, dateKey == export.AllDates, time.Now())

	filename := fmt.Sprintf("foldgrade-%s.csv", dateKey)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, csvText)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	dateKey := r.URL.Query().Get("date")
	if dateKey == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'date' is required (YYYY-MM-DD or 'all')")
		return
	}

	var remaining domain.History
	if dateKey == export.AllDates {
		remaining = s.log.ClearAll()
	} else {
		remaining = s.log.ClearByDate(dateKey)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":        remaining,
		"firstEntryTime": s.log.FirstEntryTime(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
