package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobscraper/internal/config"
	"github.com/JakeFAU/jobscraper/internal/listing"
	"github.com/JakeFAU/jobscraper/internal/metrics"
	"github.com/JakeFAU/jobscraper/internal/scrape"
)

// Scraper runs one keyword search.
type Scraper interface {
	Scrape(ctx context.Context, keyword string, maxResults int) ([]listing.Record, error)
}

// Info is the capability report served by /info.
type Info struct {
	ChromeAvailable       bool     `json:"chrome_available"`
	Environment           string   `json:"environment"`
	Strategies            []string `json:"strategies"`
	CredentialsConfigured bool     `json:"credentials_configured"`
	Version               string   `json:"version"`
}

// Server wires HTTP handlers to the scraper.
type Server struct {
	router   chi.Router
	scraper  Scraper
	cfg      config.Config
	info     Info
	logger   *zap.Logger
	validate *validator.Validate
}

// NewServer constructs a Server with middleware and routes.
func NewServer(scraper Scraper, cfg config.Config, info Info, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if info.Strategies == nil {
		info.Strategies = []string{}
	}
	s := &Server{
		scraper:  scraper,
		cfg:      cfg,
		info:     info,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	}))
	r.Use(metrics.Middleware)

	r.Get("/", s.root)
	r.Get("/health", s.health)
	r.Get("/info", s.infoHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(cfg.RequestTimeout()))
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Get("/scrape", s.scrape)
		r.Get("/scrape/", s.scrape)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Job Scraper API",
		"endpoints": map[string]string{
			"/scrape":  "GET ?keyword=<term>&max_jobs=<n> scrape job listings for a keyword",
			"/health":  "GET liveness check",
			"/info":    "GET runtime capabilities",
			"/metrics": "GET Prometheus metrics",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "API is running"})
}

func (s *Server) infoHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

type scrapeQuery struct {
	Keyword string `validate:"required"`
	MaxJobs int    `validate:"gte=1"`
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	q, msg := s.parseScrapeQuery(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if q.MaxJobs > s.cfg.Scrape.MaxResultsLimit && s.cfg.Scrape.MaxResultsLimit > 0 {
		q.MaxJobs = s.cfg.Scrape.MaxResultsLimit
	}

	logger := s.logger.With(zap.String("request_id", RequestID(r.Context())))
	records, err := s.scraper.Scrape(r.Context(), q.Keyword, q.MaxJobs)
	switch {
	case errors.Is(err, scrape.ErrEmptyKeyword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error("scrape failed", zap.String("keyword", q.Keyword), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scraping failed")
		return
	}
	if records == nil {
		records = []listing.Record{}
	}
	logger.Info("scrape served", zap.String("keyword", q.Keyword), zap.Int("count", len(records)))
	writeJSON(w, http.StatusOK, records)
}

// parseScrapeQuery returns the decoded query or a client-facing error message.
func (s *Server) parseScrapeQuery(r *http.Request) (scrapeQuery, string) {
	values := r.URL.Query()
	q := scrapeQuery{
		Keyword: strings.TrimSpace(values.Get("keyword")),
		MaxJobs: s.cfg.Scrape.DefaultMaxResults,
	}
	if raw := strings.TrimSpace(values.Get("max_jobs")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, "max_jobs must be a positive integer"
		}
		q.MaxJobs = n
	}
	if err := s.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Keyword":
				return q, "keyword must not be empty"
			case "MaxJobs":
				return q, "max_jobs must be a positive integer"
			}
		}
		return q, "invalid query"
	}
	return q, ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestTimeoutMessage is the body sent when a handler exceeds its budget.
const requestTimeoutMessage = `{"error":"request timed out"}`

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, requestTimeoutMessage)
	}
}
