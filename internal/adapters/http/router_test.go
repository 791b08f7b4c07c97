package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/usecase"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/chunking"
)

type resolverStub struct {
	resolve domain.Outcome
	choices domain.Outcome
}

func (s *resolverStub) Resolve(context.Context, string) domain.Outcome {
	return s.resolve
}

func (s *resolverStub) ResolveChoices(context.Context, string) domain.Outcome {
	return s.choices
}

type lookupReaderStub struct {
	events    []domain.LookupEvent
	err       error
	lastLimit int
}

func (s *lookupReaderStub) ListRecent(_ context.Context, limit int) ([]domain.LookupEvent, error) {
	s.lastLimit = limit
	return s.events, s.err
}

func newTestHandler(resolver *resolverStub, lookups *lookupReaderStub) http.Handler {
	router := NewRouter(resolver, lookups, usecase.NewFormatter(800), chunking.NewSplitter(4000), nil)
	return router.Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&resolverStub{}, &lookupReaderStub{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestResolveReturnsFormattedMessage(t *testing.T) {
	article := &domain.Article{
		Title:   "Pink Floyd",
		Extract: "Pink Floyd are an English rock band.",
		URL:     "https://en.wikipedia.org/wiki/Pink_Floyd",
	}
	resolver := &resolverStub{resolve: domain.Resolved("pink floyd", article)}
	handler := newTestHandler(resolver, &lookupReaderStub{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", strings.NewReader(`{"query":"pink floyd"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var response struct {
		Status        string   `json:"status"`
		Message       string   `json:"message"`
		MessageChunks []string `json:"message_chunks"`
		Article       *domain.Article
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "resolved" {
		t.Fatalf("status field = %q", response.Status)
	}
	if !strings.Contains(response.Message, "Pink Floyd") {
		t.Fatalf("formatted message missing title: %q", response.Message)
	}
	if len(response.MessageChunks) != 1 {
		t.Fatalf("expected single chunk, got %#v", response.MessageChunks)
	}
}

func TestResolveChoicesMode(t *testing.T) {
	resolver := &resolverStub{choices: domain.Ambiguous("queen", []string{"Queen (band)", "Queen"})}
	handler := newTestHandler(resolver, &lookupReaderStub{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", strings.NewReader(`{"query":"queen","mode":"choices"}`))
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var response struct {
		Status  string   `json:"status"`
		Options []string `json:"options"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != "ambiguous" || len(response.Options) != 2 {
		t.Fatalf("unexpected response: %+v", response)
	}
	if response.Message != "" {
		t.Fatalf("ambiguous outcome must not carry a formatted message: %q", response.Message)
	}
}

func TestResolveValidation(t *testing.T) {
	handler := newTestHandler(&resolverStub{}, &lookupReaderStub{})

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty query", http.MethodPost, `{"query":"   "}`, http.StatusBadRequest},
		{"unknown mode", http.MethodPost, `{"query":"x","mode":"fuzzy"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/v1/resolve", strings.NewReader(tt.body))
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRecentLookupsReturnsEvents(t *testing.T) {
	lookups := &lookupReaderStub{events: []domain.LookupEvent{
		{ID: "1", Query: "queen", Status: domain.StatusResolved, Title: "Queen (band)", At: time.Now().UTC()},
		{ID: "2", Query: "zzz", Status: domain.StatusNotFound, At: time.Now().UTC()},
	}}
	handler := newTestHandler(&resolverStub{}, lookups)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/lookups/recent?limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if lookups.lastLimit != 5 {
		t.Fatalf("limit not forwarded, got %d", lookups.lastLimit)
	}
	var response struct {
		Lookups []domain.LookupEvent `json:"lookups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Lookups) != 2 || response.Lookups[0].Query != "queen" {
		t.Fatalf("unexpected lookups: %#v", response.Lookups)
	}
}

func TestRecentLookupsRejectsBadLimit(t *testing.T) {
	handler := newTestHandler(&resolverStub{}, &lookupReaderStub{})
	for _, raw := range []string{"0", "-3", "101", "abc"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/lookups/recent?limit="+raw, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestRecentLookupsMapsTemporaryFailuresTo503(t *testing.T) {
	lookups := &lookupReaderStub{err: domain.WrapError(domain.ErrTemporary, "list lookups", errors.New("db down"))}
	handler := newTestHandler(&resolverStub{}, lookups)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/lookups/recent", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
