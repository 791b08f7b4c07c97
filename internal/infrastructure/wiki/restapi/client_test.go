package restapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

func TestSearchReturnsTitlesInOrder(t *testing.T) {
	var capturedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page/search" {
			http.NotFound(w, r)
			return
		}
		capturedQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`{"pages":[{"title":"Queen (band)"},{"title":"Queen"},{"title":"Queen (album)"}]}`))
	}))
	defer server.Close()

	client := New(server.URL)
	titles, err := client.Search(context.Background(), "queen", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if capturedQuery != "queen" {
		t.Fatalf("query parameter = %q, want %q", capturedQuery, "queen")
	}
	want := []string{"Queen (band)", "Queen", "Queen (album)"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %#v, want %#v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestFetchBuildsArticleFromSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/page/summary/") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"title": "Pink Floyd",
			"type": "standard",
			"extract": "Pink Floyd are an English rock band.",
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Pink_Floyd"}},
			"thumbnail": {"source": "https://upload.wikimedia.org/pf.jpg"}
		}`))
	}))
	defer server.Close()

	client := New(server.URL)
	article, err := client.Fetch(context.Background(), "Pink Floyd")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if article.Title != "Pink Floyd" || article.URL != "https://en.wikipedia.org/wiki/Pink_Floyd" {
		t.Fatalf("unexpected article: %+v", article)
	}
	if article.ImageURL != "https://upload.wikimedia.org/pf.jpg" {
		t.Fatalf("thumbnail not mapped: %+v", article)
	}
}

func TestFetchMapsMissingPageToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"not_found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Fetch(context.Background(), "Nonexistent Page")
	if !domain.IsKind(err, domain.ErrPageNotFound) {
		t.Fatalf("expected page-not-found, got %v", err)
	}
}

func TestFetchSignalsDisambiguation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Mercury","type":"disambiguation","extract":"Mercury may refer to:"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Fetch(context.Background(), "Mercury")
	var disambig *domain.DisambiguationError
	if !errors.As(err, &disambig) {
		t.Fatalf("expected disambiguation error, got %v", err)
	}
	if disambig.Title != "Mercury" {
		t.Fatalf("disambiguation title = %q, want %q", disambig.Title, "Mercury")
	}
}

func TestFetchIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Fetch(context.Background(), "Anything")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "backend overloaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary classification for 503, got %v", err)
	}
}

func TestFetchEscapesTitleInPath(t *testing.T) {
	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"title":"AC/DC","type":"standard","extract":"x","content_urls":{"desktop":{"page":"u"}}}`))
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.Fetch(context.Background(), "AC/DC"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(capturedPath, "AC%2FDC") {
		t.Fatalf("title not escaped in path: %q", capturedPath)
	}
}
