package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/yonah/apidisco/internal/domain"
	"github.com/yonah/apidisco/internal/jsontext"
)

// Standard errors returned by use cases and adapters.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrMethodNotFound  = errors.New("method not found")
	// ErrValidation signals a fail-closed parameter validation failure:
	// the request was short-circuited and no network call was made.
	ErrValidation = errors.New("request validation failed")
)

// SourceConfig describes one discovery document source with optional
// request headers and the protocol version the document speaks.
type SourceConfig struct {
	URL     string
	Headers map[string]string
	Version domain.DiscoveryVersion
}

// DocumentFetcher loads a raw discovery document from a source and runs
// it through the JSON pipeline, returning the generic value tree.
type DocumentFetcher interface {
	Fetch(ctx context.Context, source string) (*jsontext.Value, error)
	FetchWithConfig(ctx context.Context, cfg SourceConfig) (*jsontext.Value, error)
}

// BuilderParams carries caller-controlled options for model
// construction.
type BuilderParams struct {
	GZipEnabled bool
	// BaseURI overrides the document's own base path when set.
	BaseURI string
}

// ServiceBuilder interprets a parsed document tree, per discovery
// version, into an immutable service model.
type ServiceBuilder interface {
	Build(doc *jsontext.Value, version domain.DiscoveryVersion, params BuilderParams) (*domain.Service, error)
}

// ServiceRepository stores built service models keyed by their source.
// Implementations must be safe for concurrent use; the stored models
// themselves are read-only.
type ServiceRepository interface {
	Save(ctx context.Context, source string, svc *domain.Service) error
	Find(ctx context.Context, source string) (*domain.Service, error)
	List(ctx context.Context) ([]*domain.Service, error)
}

// RequestExecutor issues a resolved request spec over the wire. The
// returned stream is the raw response body; server-side error bodies
// come back as an ordinary stream, not an error. Only a transport
// failure with no response at all returns an error.
type RequestExecutor interface {
	Execute(ctx context.Context, spec *domain.RequestSpec, auth Authenticator) (io.ReadCloser, error)
}

// Authenticator is the credential collaborator contract. The core
// never implements a concrete authentication protocol; it only gives
// the authenticator the outgoing request to decorate.
type Authenticator interface {
	ApplyToRequest(req *http.Request)
}

// ErrorHandlingAuthenticator is optionally implemented by
// authenticators that want first chance to react to structured server
// error responses (for example to refresh an expired token) before the
// body is handed back to the caller.
type ErrorHandlingAuthenticator interface {
	Authenticator
	CanHandleErrorResponse(statusCode int) bool
	HandleErrorResponse(resp *http.Response, req *http.Request)
}

// Serializer translates request and response bodies for schema-aware
// callers. Consumed only; the core never implements it.
type Serializer interface {
	ObjectToText(obj any) (string, error)
	TextToObject(r io.Reader, out any) error
}
