// Package restapi is the primary content backend: the Wikipedia REST v1 API.
package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/resilience"
	"github.com/mehranbolhasani/weekeepediabot/internal/infrastructure/wiki"
)

type Client struct {
	baseURL    string
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

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: wiki.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Pages []struct {
		Title string `json:"title"`
	} `json:"pages"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/page/search?" + params.Encode()

	var response searchResponse
	if err := c.getJSON(ctx, endpoint, &response, "search"); err != nil {
		return nil, wiki.WrapTemporaryIfNeeded("restapi search", err)
	}

	titles := make([]string, 0, len(response.Pages))
	for _, page := range response.Pages {
		titles = append(titles, page.Title)
	}
	return titles, nil
}

type summaryResponse struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

func (c *Client) Fetch(ctx context.Context, title string) (*domain.Article, error) {
	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(title)

	var response summaryResponse
	if err := c.getJSON(ctx, endpoint, &response, "summary"); err != nil {
		var statusErr *wiki.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, domain.WrapError(domain.ErrPageNotFound, "restapi summary", fmt.Errorf("no page %q", title))
		}
		return nil, wiki.WrapTemporaryIfNeeded("restapi summary", err)
	}

	if response.Type == "disambiguation" {
		// The summary endpoint does not list the options; the resolver
		// moves on to the secondary backend for those.
		return nil, &domain.DisambiguationError{Title: response.Title}
	}
	if strings.TrimSpace(response.Title) == "" {
		return nil, domain.WrapError(domain.ErrPageNotFound, "restapi summary", fmt.Errorf("empty summary for %q", title))
	}

	return &domain.Article{
		Title:    response.Title,
		Extract:  response.Extract,
		URL:      response.ContentURLs.Desktop.Page,
		ImageURL: response.Thumbnail.Source,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any, operation string) error {
	call := func(callCtx context.Context) error {
		return wiki.GetJSON(callCtx, c.httpClient, endpoint, out, operation)
	}
	if c.executor != nil {
		return c.executor.Execute(ctx, "restapi."+operation, call, wiki.ClassifyError)
	}
	return call(ctx)
}
