package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yonah/apidisco/internal/domain"
)

// SyncServiceUseCase orchestrates fetching a discovery document,
// building the service model, and storing it in the repository.
type SyncServiceUseCase struct {
	fetcher    DocumentFetcher
	builder    ServiceBuilder
	repository ServiceRepository
	logger     *slog.Logger
}

// NewSyncServiceUseCase creates a new SyncServiceUseCase.
func NewSyncServiceUseCase(
	fetcher DocumentFetcher,
	builder ServiceBuilder,
	repository ServiceRepository,
	logger *slog.Logger,
) *SyncServiceUseCase {
	return &SyncServiceUseCase{
		fetcher:    fetcher,
		builder:    builder,
		repository: repository,
		logger:     logger.With("usecase", "SyncService"),
	}
}

// Execute fetches the source, builds the model for the configured
// discovery version, saves it, and returns it.
func (uc *SyncServiceUseCase) Execute(ctx context.Context, cfg SourceConfig, params BuilderParams) (*domain.Service, error) {
	log := uc.logger.With(slog.String("source", cfg.URL), slog.String("discovery_version", cfg.Version.String()))
	log.Info("Starting discovery sync")

	doc, err := uc.fetcher.FetchWithConfig(ctx, cfg)
	if err != nil {
		log.Error("Failed to fetch discovery document", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch discovery document from %s: %w", cfg.URL, err)
	}

	svc, err := uc.builder.Build(doc, cfg.Version, params)
	if err != nil {
		log.Error("Failed to build service model", slog.Any("error", err))
		return nil, fmt.Errorf("failed to build service model from %s: %w", cfg.URL, err)
	}

	if err := uc.repository.Save(ctx, cfg.URL, svc); err != nil {
		log.Error("Failed to save service model", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save service model for %s: %w", cfg.URL, err)
	}

	log.Info("Synced discovery document",
		slog.String("service", svc.Name),
		slog.String("service_version", svc.Version),
		slog.Int("method_count", len(svc.MethodIDs())))
	return svc, nil
}

// SyncAll syncs every configured source. Failures are collected so one
// broken source does not keep the remaining services from loading.
func (uc *SyncServiceUseCase) SyncAll(ctx context.Context, sources []SourceConfig, params BuilderParams) error {
	var errs []error
	for _, cfg := range sources {
		if _, err := uc.Execute(ctx, cfg, params); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
