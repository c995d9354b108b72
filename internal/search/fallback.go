package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Responder turns arbitrary text into a solution-shaped answer when the
// taxonomy has nothing good enough.
type Responder interface {
	Respond(ctx context.Context, query string) (string, error)
}

// ErrNoResponder is returned when no fallback endpoint is configured.
var ErrNoResponder = errors.New("fallback responder not configured")

type httpResponder struct {
	url    string
	client *http.Client
}

// NewHTTPResponder posts queries to the configured endpoint. Calls are
// bounded by both the client timeout and the caller's context.
func NewHTTPResponder(url string, timeout time.Duration) Responder {
	return &httpResponder{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type fallbackRequest struct {
	Query string `json:"query"`
}

type fallbackResponse struct {
	Response string `json:"response"`
}

func (r *httpResponder) Respond(ctx context.Context, query string) (string, error) {
	if r.url == "" {
		return "", ErrNoResponder
	}

	body, err := json.Marshal(fallbackRequest{Query: query})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fallback responder status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var parsed fallbackResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Response == "" {
		return "", errors.New("fallback responder returned empty response")
	}
	return parsed.Response, nil
}
