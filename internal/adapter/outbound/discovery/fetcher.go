package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/yonah/apidisco/internal/jsontext"
	"github.com/yonah/apidisco/internal/usecase"
)

// Fetcher implements usecase.DocumentFetcher. It loads a discovery
// document from an HTTP(S) URL or a local file path and parses it with
// the lenient JSON pipeline.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a new discovery document Fetcher.
func NewFetcher(client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		httpClient: client,
		logger:     logger.With("component", "discovery_fetcher"),
	}
}

// Fetch loads a discovery document from a URL or local file path.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*jsontext.Value, error) {
	return f.FetchWithConfig(ctx, usecase.SourceConfig{URL: source})
}

// FetchWithConfig is Fetch with per-source request headers applied.
func (f *Fetcher) FetchWithConfig(ctx context.Context, cfg usecase.SourceConfig) (*jsontext.Value, error) {
	log := f.logger.With(slog.String("source", cfg.URL))
	log.Info("Fetching discovery document")

	var raw []byte
	u, parseErr := url.ParseRequestURI(cfg.URL)
	if parseErr == nil && (u.Scheme == "http" || u.Scheme == "https") {
		log.Debug("Fetching from URL")
		body, err := f.fetchURL(ctx, cfg)
		if err != nil {
			return nil, err
		}
		raw = body
	} else {
		log.Debug("Assuming local file path")
		body, err := os.ReadFile(cfg.URL)
		if err != nil {
			log.Error("Failed to read discovery document from file", slog.Any("error", err))
			return nil, fmt.Errorf("failed to read discovery document from file %s: %w", cfg.URL, err)
		}
		raw = body
	}

	doc, err := jsontext.Parse(bytes.NewReader(raw))
	if err != nil {
		log.Error("Failed to parse discovery document", slog.Any("error", err))
		return nil, fmt.Errorf("failed to parse discovery document from %s: %w", cfg.URL, err)
	}

	log.Info("Fetched and parsed discovery document", slog.Int("size_bytes", len(raw)))
	return doc, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, cfg usecase.SourceConfig) ([]byte, error) {
	log := f.logger.With(slog.String("source", cfg.URL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create request for %s: %w", cfg.URL, err)
	}
	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Error("Failed to fetch discovery document", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch discovery document from %s: %w", cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("Received non-OK status code", slog.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("failed to fetch discovery document from %s: status %s", cfg.URL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", slog.Any("error", err))
		return nil, fmt.Errorf("failed to read response body from %s: %w", cfg.URL, err)
	}
	return body, nil
}
