package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var ErrNoSession = errors.New("no session cookie configured")

const userAgent = "crosswarped.com/aoc (input fetcher)"

// Fetcher downloads puzzle inputs, serving repeats from a Cache and spacing
// out requests to the site.
type Fetcher struct {
	baseURL string
	session string
	client  *http.Client
	cache   *Cache
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFetcher builds a Fetcher from cfg. cache may be nil, in which case every
// call goes to the network.
func NewFetcher(cfg Config, cache *Cache, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		session: cfg.Session,
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		logger:  logger.Named("fetch"),
	}
}

// Input returns the raw input text of one day's puzzle.
func (f *Fetcher) Input(ctx context.Context, year, day int) ([]byte, error) {
	if f.cache != nil {
		input, ok, err := f.cache.Get(year, day)
		if err != nil {
			return nil, err
		}
		if ok {
			f.logger.Debug("Cache hit", zap.Int("year", year), zap.Int("day", day))
			return input, nil
		}
	}

	input, err := f.download(ctx, year, day)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(year, day, input); err != nil {
			return nil, err
		}
	}
	return input, nil
}

func (f *Fetcher) download(ctx context.Context, year, day int) ([]byte, error) {
	if f.session == "" {
		return nil, ErrNoSession
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("limiter.Wait: %w", err)
	}

	url := fmt.Sprintf("%s/%d/day/%d/input", f.baseURL, year, day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: f.session})
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s: %s", url, resp.Status, bytes.TrimSpace(body))
	}

	f.logger.Info("Fetched puzzle input",
		zap.Int("year", year),
		zap.Int("day", day),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	return body, nil
}

// Close releases idle connections held by the fetcher's client.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}
