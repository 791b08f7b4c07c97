// Package wiki holds the transport plumbing shared by the two Wikipedia
// backend adapters.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultTimeout = 10 * time.Second

// HTTPStatusError is a non-2xx answer from a Wikipedia endpoint.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "wiki status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("wiki %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("wiki %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// GetJSON performs a GET against url and decodes the JSON answer into out.
func GetJSON(ctx context.Context, client *http.Client, url string, out any, operation string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("wiki %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
