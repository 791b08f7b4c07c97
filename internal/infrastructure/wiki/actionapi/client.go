// Package actionapi is the secondary content backend: the classic MediaWiki
// Action API (/w/api.php). It is the library-style fallback behind the REST
// backend and is not guaranteed to return the same candidate set.
package actionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/resilience"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/wiki"
)

const disambiguationOptionsLimit = 50

type Client struct {
	endpoint   string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: wiki.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search uses the opensearch action. Its answer is positional JSON:
// [query, titles, descriptions, urls].
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")

	var raw []json.RawMessage
	if err := c.getJSON(ctx, params, &raw, "opensearch"); err != nil {
		return nil, wiki.WrapTemporaryIfNeeded("actionapi search", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("actionapi search: malformed opensearch response")
	}

	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("actionapi search: parse titles: %w", err)
	}
	return titles, nil
}

type queryResponse struct {
	Query struct {
		Pages map[string]actionPage `json:"pages"`
	} `json:"query"`
}

type actionPage struct {
	PageID    int               `json:"pageid"`
	Title     string            `json:"title"`
	Missing   *string           `json:"missing"`
	Extract   string            `json:"extract"`
	FullURL   string            `json:"fullurl"`
	PageProps map[string]string `json:"pageprops"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	Links []struct {
		Title string `json:"title"`
	} `json:"links"`
}

// Fetch loads the page matching title, following redirects as the
// best-effort part of the contract. A disambiguation page surfaces as a
// *domain.DisambiguationError carrying the linked page titles in source
// order.
func (c *Client) Fetch(ctx context.Context, title string) (*domain.Article, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("redirects", "1")
	params.Set("titles", title)
	params.Set("prop", "extracts|info|pageprops|pageimages")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("inprop", "url")
	params.Set("piprop", "thumbnail")
	params.Set("pithumbsize", "400")

	var response queryResponse
	if err := c.getJSON(ctx, params, &response, "query"); err != nil {
		return nil, wiki.WrapTemporaryIfNeeded("actionapi query", err)
	}

	page, ok := firstPage(response)
	if !ok {
		return nil, domain.WrapError(domain.ErrPageNotFound, "actionapi query", fmt.Errorf("no page %q", title))
	}

	if _, disambiguation := page.PageProps["disambiguation"]; disambiguation {
		options, err := c.disambiguationOptions(ctx, page.Title)
		if err != nil {
			return nil, err
		}
		return nil, &domain.DisambiguationError{Title: page.Title, Options: options}
	}

	return &domain.Article{
		Title:    page.Title,
		Extract:  page.Extract,
		URL:      page.FullURL,
		ImageURL: page.Thumbnail.Source,
	}, nil
}

// disambiguationOptions lists the main-namespace links of a disambiguation
// page, which are the pages the ambiguous title can stand for.
func (c *Client) disambiguationOptions(ctx context.Context, title string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("titles", title)
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", strconv.Itoa(disambiguationOptionsLimit))

	var response queryResponse
	if err := c.getJSON(ctx, params, &response, "links"); err != nil {
		return nil, wiki.WrapTemporaryIfNeeded("actionapi links", err)
	}

	page, ok := firstPage(response)
	if !ok {
		return nil, nil
	}
	options := make([]string, 0, len(page.Links))
	for _, link := range page.Links {
		options = append(options, link.Title)
	}
	return options, nil
}

func firstPage(response queryResponse) (actionPage, bool) {
	for _, page := range response.Query.Pages {
		if page.Missing == nil && page.PageID > 0 {
			return page, true
		}
	}
	return actionPage{}, false
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any, operation string) error {
	endpoint := c.endpoint + "?" + params.Encode()
	call := func(callCtx context.Context) error {
		return wiki.GetJSON(callCtx, c.httpClient, endpoint, out, operation)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, "actionapi."+operation, call, wiki.ClassifyError)
	}
	return call(ctx)
}
