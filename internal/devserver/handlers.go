package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/verte-zerg/passintel/internal/generator"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/scoring"
	"github.com/verte-zerg/passintel/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxRequestBytes = 64 << 10

	healthMessage = "PassIntel API is running"
)

type detailBody struct {
	Detail string `json:"detail"`
}

type analyzeRequest struct {
	Password *string `json:"password"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Health{Status: "ok", Message: healthMessage})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil || req.Password == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "request body must be a JSON object with a password field")
		return
	}
	password := *req.Password
	if password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "password must not be empty")
		return
	}

	assessment := scoring.Assess(password, s.breaches)
	suggestion, err := s.generator.Generate(generator.DefaultLength)
	if err != nil {
		s.logger.Error("failed to generate suggestion", slog.String("error", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "failed to generate a suggested password")
		return
	}

	_, err = s.store.InsertAnalysis(r.Context(), store.Analysis{
		PasswordHash: store.HashPassword(password),
		Strength:     assessment.Strength,
		Score:        assessment.Score,
		Entropy:      assessment.Entropy,
		Breached:     assessment.Breached,
	})
	if err != nil {
		s.logger.Error("failed to record analysis", slog.String("error", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "failed to record analysis")
		return
	}
	s.metrics.RecordAnalysis(assessment.Strength, assessment.Breached)
	s.logger.Info("analysis recorded",
		slog.String("strength", string(assessment.Strength)),
		slog.Int("score", assessment.Score),
		slog.Bool("breached", assessment.Breached),
	)

	writeJSON(w, http.StatusOK, model.AnalysisResult{
		Strength:          assessment.Strength,
		Score:             assessment.Score,
		Entropy:           assessment.Entropy,
		Breached:          assessment.Breached,
		Reasons:           assessment.Reasons,
		SuggestedPassword: suggestion,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	page, err := s.store.ListAnalyses(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to list analyses", slog.String("error", err.Error()))
		writeDetail(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseHistoryQuery(r *http.Request) (model.HistoryQuery, error) {
	values := r.URL.Query()
	q := model.HistoryQuery{Page: 1, PageSize: defaultPageSize, SortBy: model.SortByDate}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, errors.New("page must be an integer greater than or equal to 1")
		}
		q.Page = n
	}
	if raw := values.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			return q, errors.New("page_size must be an integer between 1 and 100")
		}
		q.PageSize = n
	}
	if raw := values.Get("sort_by"); raw != "" {
		key := model.SortKey(strings.TrimSpace(raw))
		switch key {
		case model.SortByDate, model.SortByStrength, model.SortByScore:
			q.SortBy = key
		default:
			return q, errors.New("sort_by must be one of date, strength, score")
		}
	}
	if _, ok := store.PageOffset(q.Page, q.PageSize); !ok {
		return q, errors.New("page is too large for the requested page_size")
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Best-effort write; the status line is already sent.
		_ = err
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailBody{Detail: detail})
}
