package httpexec

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/yonah/apidisco/internal/domain"
	"github.com/yonah/apidisco/internal/usecase"
)

const (
	instrumentationName = "github.com/yonah/apidisco/internal/adapter/outbound/httpexec"
	defaultUserAgent    = "apidisco-go-client/0.1.0"
)

// verbs the executor can dispatch. Anything else is an
// UnsupportedVerbError before any network activity.
var supportedVerbs = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
}

// bodyVerbs are the verbs that carry a request body.
var bodyVerbs = map[string]struct{}{
	http.MethodPost:  {},
	http.MethodPut:   {},
	http.MethodPatch: {},
}

// Executor implements usecase.RequestExecutor using standard net/http.
// It is synchronous and blocking; deadlines and cancellation belong to
// the injected client and the caller's context.
type Executor struct {
	client    *http.Client
	logger    *slog.Logger
	limiter   *rate.Limiter
	userAgent string
	tracer    trace.Tracer
	requests  metric.Int64Counter
}

// Option configures an Executor.
type Option func(*Executor)

// WithUserAgent overrides the client-identification header value.
func WithUserAgent(ua string) Option {
	return func(e *Executor) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithRateLimit caps outgoing calls at rps requests per second. Zero or
// negative rps leaves the executor unlimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(e *Executor) {
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// New creates a new HTTP Executor.
func New(client *http.Client, logger *slog.Logger, opts ...Option) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client:    client,
		logger:    logger.With("component", "http_executor"),
		userAgent: defaultUserAgent,
		tracer:    otel.Tracer(instrumentationName),
	}
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"apidisco.requests",
		metric.WithDescription("Number of executed API requests."))
	if err != nil {
		e.logger.Warn("Failed to create request counter, metrics disabled", slog.Any("error", err))
	} else {
		e.requests = counter
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute issues the call described by spec. The returned stream is the
// raw response body, including structured server error bodies: a
// non-2xx response is not an error here, the caller decodes it. Only a
// fatal transport failure (no response at all) returns an error.
func (e *Executor) Execute(ctx context.Context, spec *domain.RequestSpec, auth usecase.Authenticator) (io.ReadCloser, error) {
	verb := spec.Method.HTTPMethod
	log := e.logger.With(slog.String("http_method", verb), slog.String("url", spec.URL))

	if _, ok := supportedVerbs[verb]; !ok {
		log.Error("Unsupported HTTP method on request spec")
		return nil, &domain.UnsupportedVerbError{Verb: verb}
	}

	ctx, span := e.tracer.Start(ctx, "apidisco.execute",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", verb),
			attribute.String("url.full", spec.URL),
		))
	defer span.End()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	body, compressed, err := e.requestBody(spec, verb)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, verb, spec.URL, body)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", spec.Alt.ContentType())
	req.Header.Set("User-Agent", e.userAgent)
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}
	// Response decompression rides on the transport: by not forcing an
	// Accept-Encoding header, net/http negotiates gzip and transparently
	// decodes the body.

	if auth != nil {
		auth.ApplyToRequest(req)
	}

	log.Debug("Executing HTTP request")
	resp, err := e.client.Do(req)
	if err != nil {
		span.RecordError(err)
		log.Error("HTTP request failed with no response", slog.Any("error", err))
		return nil, fmt.Errorf("transport failure: %w", err)
	}
	e.count(ctx, verb, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn("Server returned error status, handing body back to caller",
			slog.Int("status_code", resp.StatusCode))
		// The authenticator gets first chance to react, e.g. to discard
		// an expired token before the caller retries.
		if handler, ok := auth.(usecase.ErrorHandlingAuthenticator); ok && handler.CanHandleErrorResponse(resp.StatusCode) {
			handler.HandleErrorResponse(resp, req)
		}
	}

	return resp.Body, nil
}

// requestBody prepares the outgoing body for verbs that carry one,
// gzip-wrapping it when the service has compression enabled.
func (e *Executor) requestBody(spec *domain.RequestSpec, verb string) (io.Reader, bool, error) {
	if _, ok := bodyVerbs[verb]; !ok || spec.Body == "" {
		return nil, false, nil
	}
	if !spec.Service.GZipEnabled {
		return strings.NewReader(spec.Body), false, nil
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(spec.Body)); err != nil {
		return nil, false, fmt.Errorf("failed to compress request body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to compress request body: %w", err)
	}
	return &buf, true, nil
}

func (e *Executor) count(ctx context.Context, verb string, statusCode int) {
	if e.requests == nil {
		return
	}
	e.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.request.method", verb),
		attribute.Int("http.response.status_code", statusCode),
	))
}
