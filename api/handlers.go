package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DeafMist/pakgpt-news/backend/internal/config"
	"github.com/DeafMist/pakgpt-news/backend/internal/logger"
	"github.com/DeafMist/pakgpt-news/backend/internal/metrics"
	"github.com/DeafMist/pakgpt-news/backend/internal/models"
	"github.com/DeafMist/pakgpt-news/backend/internal/news"
	"github.com/DeafMist/pakgpt-news/backend/internal/processing"
	"github.com/DeafMist/pakgpt-news/backend/internal/store"
	"github.com/DeafMist/pakgpt-news/backend/internal/validator"
)

const maxBodyBytes = 1 << 20

type server struct {
	log     *slog.Logger
	cfg     *config.API
	db      store.Backend
	metrics  *metrics.Metrics
	validate *validator.Validator

	ingestor *news.Ingestor
	feed     *news.FeedAssembler
	digest   *news.DigestComposer
}

func newServer(log *slog.Logger, cfg *config.API, db store.Backend, m *metrics.Metrics) *server {
	return &server{
		log:      log,
		cfg:      cfg,
		db:       db,
		metrics:  m,
		validate: validator.New(),
		ingestor: news.NewIngestor(db),
		feed:     news.NewFeedAssembler(db),
		digest:   news.NewDigestComposer(db),
	}
}

func (s *server) routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/test", s.handleTest)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Post("/feed", s.handleFeed)
		r.Post("/audio", s.handleAudio)
		r.Get("/digest", s.handleDigest)
	})
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "PakGPT News Engine backend running"})
}

type diagnostics struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

func (s *server) handleTest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	resp := diagnostics{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if err := s.db.Ping(ctx); err != nil {
		resp.Database = "❌ Error: " + processing.Truncate(err.Error(), 50)
	} else {
		resp.Database = "✅ Available"
		resp.ConnectionStatus = "Connected"
		names, err := s.db.Collections(ctx)
		if err != nil {
			resp.Database = "⚠️  Connected but Error: " + processing.Truncate(err.Error(), 50)
		} else {
			if len(names) > 10 {
				names = names[:10]
			}
			resp.Collections = names
			resp.Database = "✅ Connected & Working"
		}
	}

	resp.DatabaseURL = setMarker(s.cfg.DatabaseURLSet)
	resp.DatabaseName = setMarker(s.cfg.DatabaseNameSet)
	writeJSON(w, http.StatusOK, resp)
}

func setMarker(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

type ingestPayload struct {
	Sources  []string `json:"sources"`
	Language string   `json:"language" validate:"omitempty,oneof=en ur"`
}

func (s *server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var payload ingestPayload
	if err := decodeJSON(r, &payload, "language"); err != nil {
		writeValidation(w, err)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		writeValidation(w, err)
		return
	}
	lang, err := models.ParseLanguage(payload.Language)
	if err != nil {
		writeValidation(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.ingestor.Ingest(ctx, news.IngestRequest{Sources: payload.Sources, Language: lang})
	s.metrics.IngestedDocuments.WithLabelValues(string(lang), "api").Add(float64(result.Inserted))
	if err != nil {
		s.log.Error("ingest aborted",
			slog.Any("err", err),
			slog.Int("inserted_before_failure", result.Inserted),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type feedPayload struct {
	City      *string  `json:"city"`
	Interests []string `json:"interests"`
	Urgency   string   `json:"urgency" validate:"omitempty,oneof=breaking important full"`
	Language  string   `json:"language" validate:"omitempty,oneof=en ur"`
}

func (s *server) handleFeed(w http.ResponseWriter, r *http.Request) {
	var payload feedPayload
	if err := decodeJSON(r, &payload, "urgency", "language"); err != nil {
		writeValidation(w, err)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		writeValidation(w, err)
		return
	}
	urgency, err := models.ParseUrgency(payload.Urgency)
	if err != nil {
		writeValidation(w, err)
		return
	}
	lang, err := models.ParseLanguage(payload.Language)
	if err != nil {
		writeValidation(w, err)
		return
	}

	req := news.FeedRequest{Interests: payload.Interests, Urgency: urgency, Language: lang}
	if payload.City != nil {
		req.City = *payload.City
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	feed, err := s.feed.Feed(ctx, req)
	if err != nil {
		s.log.Error("feed query failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, feed)
}

type audioPayload struct {
	Text     *string `json:"text" validate:"required"`
	Language string  `json:"language" validate:"omitempty,oneof=en ur"`
}

func (s *server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var payload audioPayload
	if err := decodeJSON(r, &payload, "language"); err != nil {
		writeValidation(w, err)
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		writeValidation(w, err)
		return
	}
	lang, err := models.ParseLanguage(payload.Language)
	if err != nil {
		writeValidation(w, err)
		return
	}

	clip := news.Audio(*payload.Text, lang)
	s.log.Debug("audio placeholder", slog.Int("text_chars", len([]rune(clip.Text))))
	writeJSON(w, http.StatusOK, clip)
}

type digestQuery struct {
	Language string `json:"language" validate:"omitempty,oneof=en ur"`
	Limit    int    `json:"limit" validate:"min=1,max=20"`
}

func (s *server) handleDigest(w http.ResponseWriter, r *http.Request) {
	query := digestQuery{Language: r.URL.Query().Get("language")}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeValidation(w, err)
		return
	}
	query.Limit = limit
	if err := s.validate.Struct(query); err != nil {
		writeValidation(w, err)
		return
	}
	lang, err := models.ParseLanguage(query.Language)
	if err != nil {
		writeValidation(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	digest := s.digest.Digest(ctx, lang, limit)
	if digest.Fallback {
		s.metrics.DigestFallbacks.WithLabelValues(string(lang)).Inc()
		s.log.Info("digest served from fallback items", slog.String("language", string(lang)))
	}

	writeJSON(w, http.StatusOK, digest)
}

func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return news.DefaultDigestLimit, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Field: "limit", Message: "must be an integer"}
	}
	return value, nil
}

// decodeJSON reads a single JSON object body. An empty body decodes as {} so
// every field takes its default. Fields named in nonNull may be omitted but
// not sent as an explicit null.
func decodeJSON(r *http.Request, v any, nonNull ...string) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &models.ValidationError{Field: "body", Message: err.Error()}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Message: err.Error()}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return &models.ValidationError{Field: "body", Message: "unexpected data after JSON object"}
	}

	if len(nonNull) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return &models.ValidationError{Field: "body", Message: err.Error()}
	}
	for _, name := range nonNull {
		if raw, ok := fields[name]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return &models.ValidationError{Field: name, Message: "must not be null"}
		}
	}
	return nil
}

func writeValidation(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
