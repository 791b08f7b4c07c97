package actionapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
)

func TestSearchParsesOpensearchPositionalAnswer(t *testing.T) {
	var capturedSearch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "opensearch" {
			http.NotFound(w, r)
			return
		}
		capturedSearch = r.URL.Query().Get("search")
		_, _ = w.Write([]byte(`["nirvana",["Nirvana","Nirvana (band)","Nirvana in Fire"],["","",""],["u1","u2","u3"]]`))
	}))
	defer server.Close()

	client := New(server.URL)
	titles, err := client.Search(context.Background(), "nirvana", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if capturedSearch != "nirvana" {
		t.Fatalf("search parameter = %q, want %q", capturedSearch, "nirvana")
	}
	want := []string{"Nirvana", "Nirvana (band)", "Nirvana in Fire"}
	if len(titles) != len(want) {
		t.Fatalf("titles = %#v, want %#v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestSearchRejectsMalformedOpensearchAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["lonely"]`))
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.Search(context.Background(), "anything", 10); err == nil {
		t.Fatal("expected error for truncated opensearch answer")
	}
}

func TestFetchBuildsArticleFromQueryAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("redirects") != "1" {
			t.Errorf("redirects parameter missing")
		}
		_, _ = w.Write([]byte(`{"query":{"pages":{"12345":{
			"pageid": 12345,
			"title": "Pink Floyd",
			"extract": "Pink Floyd are an English rock band.",
			"fullurl": "https://en.wikipedia.org/wiki/Pink_Floyd",
			"thumbnail": {"source": "https://upload.wikimedia.org/pf.jpg"}
		}}}}`))
	}))
	defer server.Close()

	client := New(server.URL)
	article, err := client.Fetch(context.Background(), "Pink Floyd")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if article.Title != "Pink Floyd" || article.Extract == "" {
		t.Fatalf("unexpected article: %+v", article)
	}
	if article.URL != "https://en.wikipedia.org/wiki/Pink_Floyd" || article.ImageURL != "https://upload.wikimedia.org/pf.jpg" {
		t.Fatalf("url fields not mapped: %+v", article)
	}
}

func TestFetchMapsMissingPageToNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"title":"No Such Page","missing":""}}}}`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Fetch(context.Background(), "No Such Page")
	if !domain.IsKind(err, domain.ErrPageNotFound) {
		t.Fatalf("expected page-not-found, got %v", err)
	}
}

func TestFetchListsDisambiguationOptionsInSourceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Query().Get("prop"), "extracts"):
			_, _ = w.Write([]byte(`{"query":{"pages":{"777":{
				"pageid": 777,
				"title": "Mercury",
				"pageprops": {"disambiguation": ""}
			}}}}`))
		case r.URL.Query().Get("prop") == "links":
			_, _ = w.Write([]byte(`{"query":{"pages":{"777":{
				"pageid": 777,
				"title": "Mercury",
				"links": [
					{"title": "Mercury (planet)"},
					{"title": "Mercury (element)"},
					{"title": "Mercury (mythology)"}
				]
			}}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Fetch(context.Background(), "Mercury")
	disambig, ok := domain.AsDisambiguation(err)
	if !ok {
		t.Fatalf("expected disambiguation error, got %v", err)
	}
	want := []string{"Mercury (planet)", "Mercury (element)", "Mercury (mythology)"}
	if len(disambig.Options) != len(want) {
		t.Fatalf("options = %#v, want %#v", disambig.Options, want)
	}
	for i := range want {
		if disambig.Options[i] != want[i] {
			t.Fatalf("options[%d] = %q, want %q", i, disambig.Options[i], want[i])
		}
	}
}

func TestFetchWrapsServerFailuresAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database locked", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Fetch(context.Background(), "Anything")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary classification, got %v", err)
	}
	var disambig *domain.DisambiguationError
	if errors.As(err, &disambig) {
		t.Fatalf("transport failure misread as disambiguation: %v", err)
	}
}
