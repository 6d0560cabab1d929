package httpexec_test

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonah/apidisco/internal/adapter/outbound/httpexec"
	"github.com/yonah/apidisco/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(t *testing.T, handler http.Handler, opts ...httpexec.Option) (*httpexec.Executor, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return httpexec.New(server.Client(), discardLogger(), opts...), server
}

func specFor(server *httptest.Server, verb, path string, gzipEnabled bool) *domain.RequestSpec {
	return &domain.RequestSpec{
		Service: &domain.Service{Name: "svc", BaseURI: server.URL, GZipEnabled: gzipEnabled},
		Method:  &domain.Method{Name: "op", HTTPMethod: verb, RestPath: path},
		Alt:     domain.RepresentationJSON,
		URL:     server.URL + path + "?alt=json",
	}
}

func readAndClose(t *testing.T, stream io.ReadCloser) string {
	t.Helper()
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	return string(data)
}

func TestExecutor_SuccessReturnsBodyStream(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("alt"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "apidisco")
		w.Write([]byte(`{"ok": true}`))
	}))

	stream, err := exec.Execute(context.Background(), specFor(server, "GET", "/items", false), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, readAndClose(t, stream))
}

func TestExecutor_ServerErrorBodyIsAStreamNotAnError(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403}}`))
	}))

	stream, err := exec.Execute(context.Background(), specFor(server, "GET", "/denied", false), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"error": {"code": 403}}`, readAndClose(t, stream))
}

func TestExecutor_UnsupportedVerb(t *testing.T) {
	called := false
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := exec.Execute(context.Background(), specFor(server, "BREW", "/teapot", false), nil)
	var verbErr *domain.UnsupportedVerbError
	require.ErrorAs(t, err, &verbErr)
	assert.Equal(t, "BREW", verbErr.Verb)
	assert.False(t, called, "no network call may happen for an unsupported verb")
}

func TestExecutor_TransportFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	exec := httpexec.New(&http.Client{}, discardLogger())
	spec := &domain.RequestSpec{
		Service: &domain.Service{Name: "svc"},
		Method:  &domain.Method{HTTPMethod: "GET"},
		Alt:     domain.RepresentationJSON,
		URL:     server.URL + "/gone?alt=json",
	}
	_, err := exec.Execute(context.Background(), spec, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport failure")
}

func TestExecutor_GzipCompressedBody(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		zr, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Equal(t, `{"summary": "hi"}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))

	spec := specFor(server, "POST", "/items", true)
	spec.Body = `{"summary": "hi"}`
	stream, err := exec.Execute(context.Background(), spec, nil)
	require.NoError(t, err)
	stream.Close()
}

func TestExecutor_PlainBodyWhenGzipDisabled(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Encoding"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
	}))

	spec := specFor(server, "PUT", "/items", false)
	spec.Body = "payload"
	stream, err := exec.Execute(context.Background(), spec, nil)
	require.NoError(t, err)
	stream.Close()
}

// headerAuth applies a static header and records error-handling calls.
type headerAuth struct {
	handledStatus int
}

func (a *headerAuth) ApplyToRequest(req *http.Request) {
	req.Header.Set("Authorization", "Bearer xyz")
}

func (a *headerAuth) CanHandleErrorResponse(statusCode int) bool {
	return statusCode == http.StatusUnauthorized
}

func (a *headerAuth) HandleErrorResponse(resp *http.Response, req *http.Request) {
	a.handledStatus = resp.StatusCode
}

func TestExecutor_AuthenticatorIsApplied(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer xyz", r.Header.Get("Authorization"))
	}))

	stream, err := exec.Execute(context.Background(), specFor(server, "GET", "/secure", false), &headerAuth{})
	require.NoError(t, err)
	stream.Close()
}

func TestExecutor_AuthenticatorErrorHookGetsFirstChance(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "expired"}`))
	}))

	auth := &headerAuth{}
	stream, err := exec.Execute(context.Background(), specFor(server, "GET", "/secure", false), auth)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, auth.handledStatus)
	assert.Equal(t, `{"error": "expired"}`, readAndClose(t, stream))
}

func TestExecutor_CustomUserAgent(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "my-app/2.0", r.Header.Get("User-Agent"))
	}), httpexec.WithUserAgent("my-app/2.0"))

	stream, err := exec.Execute(context.Background(), specFor(server, "GET", "/", false), nil)
	require.NoError(t, err)
	stream.Close()
}

func TestExecutor_RateLimiterHonorsContext(t *testing.T) {
	exec, server := newTestExecutor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		httpexec.WithRateLimit(0.001, 1))

	ctx, cancel := context.WithCancel(context.Background())

	// First call consumes the burst token.
	stream, err := exec.Execute(ctx, specFor(server, "GET", "/a", false), nil)
	require.NoError(t, err)
	stream.Close()

	// Second call would wait ~1000s; cancel instead.
	cancel()
	_, err = exec.Execute(ctx, specFor(server, "GET", "/b", false), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
