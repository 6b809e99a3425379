package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/platinummonkey/gaslink/pkg/contextkeys"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10
	tracerName     = "github.com/platinummonkey/gaslink/pkg/client"
)

// Client talks to the platform REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	anonClient *http.Client
	tokens     oauth2.TokenSource
	timeout    time.Duration
	logger     *logrus.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped
// with tracing and, when a token source is set, bearer authentication.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource attaches "Authorization: Bearer" to every request
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithBearerToken authenticates with a fixed token
func WithBearerToken(token string) Option {
	return WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

// WithTimeout bounds each request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records upstream call metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the platform API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}

	base := http.DefaultTransport
	if c.httpClient != nil && c.httpClient.Transport != nil {
		base = c.httpClient.Transport
	}
	traced := otelhttp.NewTransport(base)
	var transport http.RoundTripper = traced
	if c.tokens != nil {
		transport = &oauth2.Transport{Source: c.tokens, Base: traced}
	}

	hc := &http.Client{Transport: transport, Timeout: c.timeout}
	anon := &http.Client{Transport: traced, Timeout: c.timeout}
	if c.httpClient != nil {
		hc.CheckRedirect = c.httpClient.CheckRedirect
		hc.Jar = c.httpClient.Jar
		anon.CheckRedirect = c.httpClient.CheckRedirect
	}
	c.httpClient = hc
	c.anonClient = anon
	return c
}

// BaseURL returns the API root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one platform request. route is the path template used for
// metric and span names; id fills its {id} placeholder.
type call struct {
	method string
	route  string
	id     string
	query  url.Values
	body   interface{}

	// anonymous requests never carry the bearer token
	anonymous bool
}

func (c call) path() string {
	if c.id == "" {
		return c.route
	}
	return strings.Replace(c.route, "{id}", url.PathEscape(c.id), 1)
}

// envelope is the platform response wrapper. Payloads arrive under different
// keys depending on the endpoint, so the raw fields are kept.
type envelope struct {
	Success    *bool       `json:"success"`
	Message    string      `json:"message"`
	Pagination *Pagination `json:"pagination"`
	fields     map[string]json.RawMessage
}

func (e *envelope) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &e.fields); err != nil {
		return err
	}
	type plain envelope
	return json.Unmarshal(b, (*plain)(e))
}

// decode unmarshals the first present key into out
func (e *envelope) decode(out interface{}, keys ...string) error {
	for _, key := range keys {
		raw, ok := e.fields[key]
		if !ok || bytes.Equal(raw, []byte("null")) {
			continue
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding %q: %w", key, err)
		}
		return nil
	}
	return nil
}

func (c *Client) do(ctx context.Context, req call) (*envelope, error) {
	ctx, span := c.tracer.Start(ctx, req.method+" "+req.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("http.route", req.route),
		))
	defer span.End()

	env, status, err := c.roundTrip(ctx, req)
	if status > 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return env, err
}

func (c *Client) roundTrip(ctx context.Context, req call) (*envelope, int, error) {
	path := req.path()
	fail := func(kind Kind, status int, message string, err error) (*envelope, int, error) {
		c.metrics.ObserveUpstreamError(req.route, kind.String())
		return nil, status, &Error{Kind: kind, Method: req.method, Path: path, Status: status, Message: message, Err: err}
	}

	u := c.baseURL + path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, 0, fmt.Errorf("encoding %s %s request: %w", req.method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, 0, fmt.Errorf("building %s %s request: %w", req.method, path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if requestID := contextkeys.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	start := time.Now()
	hc := c.httpClient
	if req.anonymous {
		hc = c.anonClient
	}
	resp, err := hc.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": req.method,
			"path":   path,
		}).Debug("Platform request failed")
		return fail(KindNetwork, 0, "", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveUpstream(req.method, req.route, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fail(KindNetwork, resp.StatusCode, "", err)
	}

	env := &envelope{}
	decodeErr := json.Unmarshal(raw, env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ""
		if decodeErr == nil {
			message = env.Message
		}
		c.logger.WithFields(logrus.Fields{
			"method": req.method,
			"path":   path,
			"status": resp.StatusCode,
			"body":   truncate(raw, maxErrorBody),
		}).Debug("Platform returned error status")
		return fail(KindAPI, resp.StatusCode, message, nil)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return &envelope{}, resp.StatusCode, nil
	}
	if decodeErr != nil {
		return fail(KindAPI, resp.StatusCode, "", fmt.Errorf("decoding response: %w", decodeErr))
	}
	if env.Success != nil && !*env.Success {
		return fail(KindAPI, resp.StatusCode, env.Message, nil)
	}
	return env, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

// get performs a request and decodes the payload found under keys into out
func (c *Client) get(ctx context.Context, req call, out interface{}, keys ...string) error {
	env, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := env.decode(out, keys...); err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path(), err)
	}
	return nil
}

// list performs a list request and returns the page found under keys
func list[T any](ctx context.Context, c *Client, route string, opts ListOptions, keys ...string) (*Page[T], error) {
	req := call{method: http.MethodGet, route: route, query: opts.Values()}
	env, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: []T{}}
	if err := env.decode(&page.Items, keys...); err != nil {
		return nil, fmt.Errorf("GET %s: %w", route, err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		page.Pagination = Pagination{Page: 1, Limit: len(page.Items), Total: len(page.Items), TotalPages: 1}
	}
	return page, nil
}

// IsCanceled reports whether err came from a canceled context, which is how
// superseded Sequencer requests end
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
