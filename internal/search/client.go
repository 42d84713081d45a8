// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search sends a company search to the scraping backend and streams
// the NDJSON response back one record at a time.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/pdiddy/internscout/internal/httputil"
	"github.com/pdiddy/internscout/internal/stream"
	"github.com/pdiddy/internscout/pkg/types"
)

// ErrNoBody is returned when a successful response has no body at all
// (204 No Content, 205 Reset Content). An empty 200 body is a valid stream
// with zero records.
var ErrNoBody = errors.New("search backend returned no response body")

// TransportError reports a non-success HTTP status from the backend.
type TransportError struct {
	StatusCode int
	Status     string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("search backend returned HTTP %d", e.StatusCode)
}

// Client talks to the scraping backend.
type Client struct {
	HTTP   *http.Client
	Config types.SearchConfig

	// UserAgent is sent on every request when set.
	UserAgent string

	// APIKey is sent as a bearer token when set.
	APIKey string
}

// NewClient returns a Client whose transport bounds connection setup and
// response headers by httpCfg.Timeout but leaves the streamed body without
// a deadline.
func NewClient(cfg types.SearchConfig, httpCfg types.HTTPConfig, apiKey string) *Client {
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout

	return &Client{
		HTTP:      &http.Client{Transport: transport},
		Config:    cfg,
		UserAgent: httpCfg.UserAgent,
		APIKey:    apiKey,
	}
}

// NewRequestBody builds the JSON body for q.
func NewRequestBody(q types.SearchQuery, cfg types.SearchConfig) types.SearchRequest {
	intents := cfg.Intents
	if len(intents) == 0 {
		intents = types.DefaultIntents
	}
	return types.SearchRequest{
		City:    q.City,
		Domains: q.Domains(cfg.DefaultDomains),
		Intents: intents,
	}
}

// Search POSTs q to the backend and passes each streamed record to emit in
// the order its line completes. A non-success status yields a
// *TransportError and a null-body status yields ErrNoBody; in both cases
// emit is never called.
func (c *Client) Search(ctx context.Context, q types.SearchQuery, emit stream.EmitFunc) (stream.Stats, error) {
	log := zerolog.Ctx(ctx)

	payload, err := json.Marshal(NewRequestBody(q, c.Config))
	if err != nil {
		return stream.Stats{}, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return stream.Stats{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	log.Debug().Str("endpoint", c.Config.Endpoint).RawJSON("body", payload).Msg("sending search request")
	resp, err := httputil.DoWithRetry(ctx, client, req, c.Config.MaxRetries)
	if err != nil {
		return stream.Stats{}, fmt.Errorf("search backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return stream.Stats{}, &TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if resp.Body == nil || hasNullBody(resp.StatusCode) {
		return stream.Stats{}, ErrNoBody
	}

	body := decodeBody(ctx, resp)
	stats, err := stream.Consume(ctx, body, emit, stream.Options{FlushTrailing: c.Config.FlushTrailing})
	if err != nil {
		return stats, fmt.Errorf("reading search results: %w", err)
	}
	log.Debug().Int("records", stats.Records).Int("malformed", stats.Malformed).
		Bool("trailing_dropped", stats.TrailingDropped).Msg("search stream finished")
	return stats, nil
}

// decodeBody wraps the response body in a streaming decoder for a non-UTF-8
// charset named in Content-Type. The decoder keeps partial multi-byte
// sequences between reads.
func decodeBody(ctx context.Context, resp *http.Response) io.Reader {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Body
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return resp.Body
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Str("charset", charset).Msg("unknown response charset, reading as UTF-8")
		return resp.Body
	}
	return transform.NewReader(resp.Body, enc.NewDecoder())
}

// hasNullBody reports the success statuses that never carry a body.
func hasNullBody(status int) bool {
	return status == http.StatusNoContent || status == http.StatusResetContent
}
