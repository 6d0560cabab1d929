package memrepo_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yonah/apidisco/internal/adapter/outbound/memrepo"
	"github.com/yonah/apidisco/internal/domain"
	"github.com/yonah/apidisco/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInMemoryServiceRepository_SaveAndFind(t *testing.T) {
	repo := memrepo.NewInMemoryServiceRepository(discardLogger())
	ctx := context.Background()

	svc := &domain.Service{Name: "calendar", Version: "v2"}
	require.NoError(t, repo.Save(ctx, "https://example.com/calendar.json", svc))

	found, err := repo.Find(ctx, "https://example.com/calendar.json")
	require.NoError(t, err)
	assert.Same(t, svc, found)
}

func TestInMemoryServiceRepository_SaveReplaces(t *testing.T) {
	repo := memrepo.NewInMemoryServiceRepository(discardLogger())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "src", &domain.Service{Name: "calendar", Version: "v1"}))
	require.NoError(t, repo.Save(ctx, "src", &domain.Service{Name: "calendar", Version: "v2"}))

	found, err := repo.Find(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "v2", found.Version)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInMemoryServiceRepository_SaveRejectsBadInput(t *testing.T) {
	repo := memrepo.NewInMemoryServiceRepository(discardLogger())
	ctx := context.Background()

	assert.Error(t, repo.Save(ctx, "", &domain.Service{Name: "x"}))
	assert.Error(t, repo.Save(ctx, "src", nil))
}

func TestInMemoryServiceRepository_FindUnknownSource(t *testing.T) {
	repo := memrepo.NewInMemoryServiceRepository(discardLogger())

	_, err := repo.Find(context.Background(), "https://example.com/unknown.json")
	require.ErrorIs(t, err, usecase.ErrServiceNotFound)
}

func TestInMemoryServiceRepository_ListIsSortedBySource(t *testing.T) {
	repo := memrepo.NewInMemoryServiceRepository(discardLogger())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "b", &domain.Service{Name: "beta"}))
	require.NoError(t, repo.Save(ctx, "a", &domain.Service{Name: "alpha"}))
	require.NoError(t, repo.Save(ctx, "c", &domain.Service{Name: "gamma"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "beta", list[1].Name)
	assert.Equal(t, "gamma", list[2].Name)
}
