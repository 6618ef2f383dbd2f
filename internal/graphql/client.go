package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/blogadmin/internal/apierror"
)

// RequestIDHeader carries a per-call id so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config holds configuration for a Client.
type Config struct {
	// Endpoint is the absolute URL of the GraphQL endpoint.
	Endpoint string
	Timeout  time.Duration
	// HTTP overrides the transport. Defaults to an *http.Client with Timeout.
	HTTP   Doer
	Logger *slog.Logger
}

// Client posts GraphQL requests to a single endpoint.
type Client struct {
	endpoint string
	http     Doer
	logger   *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	doer := cfg.HTTP
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		endpoint: cfg.Endpoint,
		http:     doer,
		logger:   logger,
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Do sends req and decodes the envelope. header is merged into the outgoing
// request (typically the Authorization header from login).
//
// A non-2xx status or an undecodable body is returned as an *apierror.Error.
// Envelope-level GraphQL errors are not inspected here; see Envelope.Err.
func (c *Client) Do(ctx context.Context, req Request, header http.Header) (*Envelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apierror.Transport(0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Transport(resp.StatusCode, "reading response", err)
	}

	c.logger.Debug("graphql request",
		"request_id", requestID,
		"operation", operationName(req.Query),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// graphene answers some query errors with a 400 and a normal envelope.
		var env Envelope
		if json.Unmarshal(respBody, &env) == nil && len(env.Errors) > 0 {
			e, _ := apierror.As(env.Err())
			e.Status = resp.StatusCode
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				e.Kind = apierror.KindAuth
			}
			return nil, e
		}
		return nil, apierror.FromResponse(resp.StatusCode, respBody)
	}

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, apierror.Transport(resp.StatusCode, "decoding response", err)
	}
	return &env, nil
}

// operationName returns a short label for logs: the first selected field
// of the document, e.g. "allTags" or "createTag".
func operationName(query string) string {
	q := strings.TrimSpace(query)
	q = strings.TrimPrefix(q, "mutation")
	q = strings.TrimPrefix(q, "query")
	if i := strings.Index(q, "{"); i >= 0 {
		q = q[i+1:]
	}
	q = strings.TrimSpace(q)
	end := strings.IndexAny(q, "({ \n\t")
	if end < 0 {
		return q
	}
	return q[:end]
}
