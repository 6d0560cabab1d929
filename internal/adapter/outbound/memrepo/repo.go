package memrepo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/yonah/apidisco/internal/domain"
	"github.com/yonah/apidisco/internal/usecase"
)

// InMemoryServiceRepository provides an in-memory implementation of the
// ServiceRepository. The stored models are immutable, so the lock only
// guards the map itself.
// NOTE: not persistent; synced services are lost on restart.
type InMemoryServiceRepository struct {
	mu       sync.RWMutex
	services map[string]*domain.Service
	logger   *slog.Logger
}

// NewInMemoryServiceRepository creates a new in-memory repository.
func NewInMemoryServiceRepository(logger *slog.Logger) *InMemoryServiceRepository {
	return &InMemoryServiceRepository{
		services: make(map[string]*domain.Service),
		logger:   logger.With("component", "mem_repo"),
	}
}

// Save stores svc under its source, replacing any previous model built
// from the same source.
func (r *InMemoryServiceRepository) Save(ctx context.Context, source string, svc *domain.Service) error {
	if source == "" {
		return fmt.Errorf("save failed: empty source")
	}
	if svc == nil {
		return fmt.Errorf("save failed: nil service for source %s", source)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[source] = svc
	r.logger.Info("Saved service model",
		slog.String("source", source),
		slog.String("service", svc.Name),
		slog.Int("total_services", len(r.services)))
	return nil
}

// Find retrieves the service model built from source.
func (r *InMemoryServiceRepository) Find(ctx context.Context, source string) (*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[source]
	if !ok {
		r.logger.Warn("Service not found", slog.String("source", source))
		return nil, usecase.ErrServiceNotFound
	}
	return svc, nil
}

// List returns all stored service models, ordered by source for
// deterministic listings.
func (r *InMemoryServiceRepository) List(ctx context.Context) ([]*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]string, 0, len(r.services))
	for source := range r.services {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	list := make([]*domain.Service, 0, len(sources))
	for _, source := range sources {
		list = append(list, r.services[source])
	}
	r.logger.Debug("Listed services from repository", slog.Int("count", len(list)))
	return list, nil
}
