package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/plainfin/internal/config"
	"github.com/dgallion1/plainfin/internal/llm"
	"github.com/dgallion1/plainfin/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for plainfin.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	llm      *llm.Client
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. client may be nil, in
// which case LLM stats are reported unavailable.
func NewServer(p *pipeline.Pipeline, client *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		pipeline: p,
		llm:      client,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.PlainfinAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.PlainfinAPIKey, s.log))
		}

		r.Post("/filings", s.handleUpload)
		r.Route("/filings/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetFiling)
			r.Delete("/", s.handleDeleteFiling)
			r.Post("/summary", s.handleSummarize)
			r.Post("/metrics", s.handleKeyMetrics)
			r.Post("/questions", s.handleAsk)
			r.Get("/report.md", s.handleReportMarkdown)
			r.Get("/report.pdf", s.handleReportPDF)
			r.Get("/report.html", s.handleReportHTML)
		})

		r.Post("/jargon", s.handleJargon)
		r.Post("/questions", s.handleTutor)
		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
