package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/yonah/apidisco/internal/domain"
)

// CallInput describes one method invocation against a synced service.
type CallInput struct {
	// Source identifies the service in the repository.
	Source string
	// MethodID is the dotted method id, e.g. "events.list".
	MethodID string
	// Values are the caller-supplied parameter values, string-coerced.
	// An absent key means the parameter was not supplied; an empty
	// string is an explicit empty value and never falls back to the
	// parameter default.
	Values        map[string]string
	DeveloperKey  string
	Body          string
	Alt           domain.Representation
	Authenticator Authenticator
}

// CallMethodUseCase resolves a method on a synced service, validates
// the supplied parameters, builds the request spec, and executes it.
type CallMethodUseCase struct {
	repository ServiceRepository
	executor   RequestExecutor
	logger     *slog.Logger
}

// NewCallMethodUseCase creates a new CallMethodUseCase.
func NewCallMethodUseCase(repository ServiceRepository, executor RequestExecutor, logger *slog.Logger) *CallMethodUseCase {
	return &CallMethodUseCase{
		repository: repository,
		executor:   executor,
		logger:     logger.With("usecase", "CallMethod"),
	}
}

// Execute runs one call. Validation is fail-closed: when it fails, the
// executor is never reached and ErrValidation comes back. The returned
// stream is the response body; the caller owns closing it.
func (uc *CallMethodUseCase) Execute(ctx context.Context, in CallInput) (io.ReadCloser, error) {
	log := uc.logger.With(slog.String("source", in.Source), slog.String("method_id", in.MethodID))
	log.Info("Executing method call")

	svc, err := uc.repository.Find(ctx, in.Source)
	if err != nil {
		log.Warn("Service not found in repository", slog.Any("error", err))
		return nil, fmt.Errorf("service for %s: %w", in.Source, err)
	}

	method, ok := svc.MethodByID(in.MethodID)
	if !ok {
		log.Warn("Method not found on service")
		return nil, fmt.Errorf("method %s on service %s: %w", in.MethodID, svc.Name, ErrMethodNotFound)
	}

	if !domain.ValidateParams(method, in.Values) {
		log.Warn("Parameter validation failed, no request issued")
		return nil, ErrValidation
	}

	u, err := domain.BuildURL(svc.BaseURI, method, in.Values, in.DeveloperKey, in.Alt)
	if err != nil {
		log.Error("Failed to build request URL", slog.Any("error", err))
		return nil, fmt.Errorf("failed to build URL for %s: %w", in.MethodID, err)
	}

	alt := in.Alt
	if alt == "" {
		alt = domain.RepresentationJSON
	}
	spec := &domain.RequestSpec{
		Service:      svc,
		Method:       method,
		Values:       in.Values,
		DeveloperKey: in.DeveloperKey,
		Body:         in.Body,
		Alt:          alt,
		URL:          u,
	}

	log.Debug("Issuing request", slog.String("url", u), slog.String("http_method", method.HTTPMethod))
	stream, err := uc.executor.Execute(ctx, spec, in.Authenticator)
	if err != nil {
		log.Error("Request execution failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to execute %s: %w", in.MethodID, err)
	}

	log.Info("Method call issued")
	return stream, nil
}
