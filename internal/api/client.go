// Package api is the HTTP client for the catalog backend. Every failure is
// normalized into the apperr taxonomy so callers never inspect raw responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/pustak/internal/apperr"
	"github.com/lehigh-university-libraries/pustak/internal/config"
)

// maxErrorBody caps how much of a failed response is kept for the error message
const maxErrorBody = 64 * 1024

// Client talks to the catalog REST API
type Client struct {
	BaseURL       string
	TrailingSlash bool
	UploadPath    string
	httpClient    *http.Client
	logger        *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. with an httptest server's.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new catalog API client
func New(cfg config.API, opts ...Option) *Client {
	c := &Client{
		BaseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		TrailingSlash: cfg.TrailingSlash,
		UploadPath:    cfg.UploadPath,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: slog.Default(),
	}
	if c.UploadPath == "" {
		c.UploadPath = "/upload"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(path string, query url.Values) string {
	if c.TrailingSlash && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &apperr.FetchError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return &apperr.FetchError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, op, out)
}

func (c *Client) send(req *http.Request, op string, out any) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("API request", "op", op, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := errorMessage(raw)
		c.logger.Debug("API request failed", "op", op, "request_id", requestID, "status", resp.StatusCode, "message", msg)
		return &apperr.FetchError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperr.FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts the server's message from {"error": ...} or
// {"detail": ...}, falling back to the trimmed body text.
func errorMessage(raw []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	return strings.TrimSpace(string(raw))
}

// notFound converts a 404 into a NotFoundError for single-entity reads.
func notFound(err error, resource string, id int64) error {
	var fe *apperr.FetchError
	if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
		return &apperr.NotFoundError{Resource: resource, ID: id}
	}
	return err
}

// authFailure converts a 4xx into an AuthError carrying the server's message,
// or fallback when the server sent none.
func authFailure(err error, fallback string) error {
	var fe *apperr.FetchError
	if !errors.As(err, &fe) || fe.Status < 400 || fe.Status > 499 {
		return err
	}
	msg := fe.Message
	if msg == "" {
		msg = fallback
	}
	return &apperr.AuthError{Status: fe.Status, Message: msg}
}
