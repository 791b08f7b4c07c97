package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/ports"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/usecase"
	"github.com/mehranbolhasani/weekeepediabot/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	resolver  ports.TopicResolver
	lookups   ports.LookupReader
	formatter *usecase.Formatter
	chunker   ports.Chunker
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	resolver ports.TopicResolver,
	lookups ports.LookupReader,
	formatter *usecase.Formatter,
	chunker ports.Chunker,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		resolver:  resolver,
		lookups:   lookups,
		formatter: formatter,
		chunker:   chunker,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/resolve", rt.resolve)
	mux.HandleFunc("/v1/lookups/recent", rt.recentLookups)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		return requestIDMiddleware(accessLogMiddleware(rt.metrics.Middleware(serviceName, mux)))
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type resolveRequest struct {
	Query string `json:"query"`
	// Mode selects auto-resolution ("auto", default) or the
	// explicit-choice flow ("choices").
	Mode string `json:"mode"`
}

type resolveResponse struct {
	domain.Outcome
	Message       string   `json:"message,omitempty"`
	MessageChunks []string `json:"message_chunks,omitempty"`
}

func (rt *Router) resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	start := time.Now()
	var outcome domain.Outcome
	switch req.Mode {
	case "", "auto":
		outcome = rt.resolver.Resolve(r.Context(), req.Query)
	case "choices":
		outcome = rt.resolver.ResolveChoices(r.Context(), req.Query)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be auto or choices"})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordResolution(serviceName, string(outcome.Status), time.Since(start))
	}

	response := resolveResponse{Outcome: outcome}
	if outcome.Status == domain.StatusResolved && rt.formatter != nil {
		response.Message = rt.formatter.Format(outcome.Article)
		if rt.chunker != nil {
			response.MessageChunks = rt.chunker.Split(response.Message)
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) recentLookups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1-100"})
			return
		}
		limit = parsed
	}

	events, err := rt.lookups.ListRecent(r.Context(), limit)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if events == nil {
		events = []domain.LookupEvent{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lookups": events})
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPageNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
