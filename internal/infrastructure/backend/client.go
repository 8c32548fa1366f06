// Package backend is the REST client for the authoritative inventory backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inventra/internal/core/apperror"
	appctx "inventra/internal/core/context"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/domain/documents"
	"inventra/internal/domain/linking"
	"inventra/pkg/logger"
	"inventra/pkg/wire"
)

var tracer = otel.Tracer("inventra/backend")

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Compile-time interface checks.
var (
	_ corenumerator.Source = (*Client)(nil)
	_ documents.Creator    = (*Client)(nil)
	_ linking.SourceLister = (*Client)(nil)
)

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Token is sent as a bearer token when the request carries no session authorization
	Token string
}

// Client talks to the backend. It never retries.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// New creates a new backend client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  base,
		http:  &http.Client{Timeout: timeout},
		token: cfg.Token,
	}, nil
}

// FetchNext asks GET /{resource}/next for the next code.
// A 404 or an empty body means the sequence does not exist yet and yields "".
func (c *Client) FetchNext(ctx context.Context, cfg corenumerator.Config) (string, error) {
	op := "GET /" + cfg.Resource + "/next"
	status, body, err := c.do(ctx, op, http.MethodGet, c.endpoint(cfg.Resource, "next"), nil)
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		logger.Debug(ctx, "no sequence yet", "document_type", cfg.Type)
		return "", nil
	}
	if err := checkStatus(op, status, body); err != nil {
		return "", err
	}
	return wire.String(wire.Parse(body), wire.NextCode), nil
}

// CreateDocument posts the payload to POST /{resource} and returns the echoed identifier.
func (c *Client) CreateDocument(ctx context.Context, cfg corenumerator.Config, payload documents.Payload) (string, error) {
	op := "POST /" + cfg.Resource
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", cfg.Type, err)
	}
	status, body, err := c.do(ctx, op, http.MethodPost, c.endpoint(cfg.Resource), raw)
	if err != nil {
		return "", err
	}
	if err := checkStatus(op, status, body); err != nil {
		return "", err
	}
	return wire.String(wire.Parse(body), wire.CreatedID), nil
}

// ListSourceDocuments reads GET /{resource} with center/customer hints.
func (c *Client) ListSourceDocuments(ctx context.Context, cfg corenumerator.Config, hint linking.Criteria) ([]gjson.Result, error) {
	op := "GET /" + cfg.Resource
	u := c.endpoint(cfg.Resource)
	q := u.Query()
	setIf(q, "center_id", hint.CenterID)
	setIf(q, "customer_id", hint.CustomerID)
	setIf(q, "customer", hint.CustomerName)
	u.RawQuery = q.Encode()

	status, body, err := c.do(ctx, op, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(op, status, body); err != nil {
		return nil, err
	}
	return wire.Array(wire.Parse(body), wire.List), nil
}

func setIf(q url.Values, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
}

// Ping checks that the backend answers at all. Any HTTP status counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, "GET /", http.MethodGet, c.endpoint(), nil)
	return err
}

func (c *Client) endpoint(parts ...string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(parts, "/")
	return &u
}

// do performs one request inside a span. Only network failures are returned as errors.
func (c *Client) do(ctx context.Context, op, method string, u *url.URL, body []byte) (int, []byte, error) {
	ctx, span := tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", u.String()),
		))
	defer span.End()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, apperror.NewTransport(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range appctx.OutboundHeaders(ctx) {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	if auth := appctx.GetAuthorization(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	} else if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		logger.Warn(ctx, "backend call failed", "operation", op, "error", err, "duration", time.Since(start))
		return 0, nil, apperror.NewTransport(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return 0, nil, apperror.NewTransport(op, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		span.SetStatus(codes.Error, resp.Status)
	}
	logger.Debug(ctx, "backend call", "operation", op, "status", resp.StatusCode, "duration", time.Since(start))
	return resp.StatusCode, data, nil
}

// checkStatus turns a non-2xx status into an error carrying the backend message.
// 409 means the backend already holds a document with that code; anything
// else is a transport error.
func checkStatus(op string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := wire.String(wire.Parse(body), wire.Paths{"message", "error", "error.message", "detail"})

	var err *apperror.AppError
	if status == http.StatusConflict {
		err = apperror.NewConflict("backend rejected the document code").
			WithDetail("operation", op)
	} else {
		err = apperror.NewTransport(op, fmt.Errorf("unexpected status %d", status))
	}
	err.WithDetail("status", status)
	if msg != "" {
		err.WithDetail("backendMessage", msg)
	}
	return err
}
