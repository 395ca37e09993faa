// Package advisory provides the cached, retrying client for the remote
// natural-language advisory service. Advisory text is layered on top of the
// computed numbers, never a replacement for them.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/epivet/epivet-go/internal/errors"
	"github.com/epivet/epivet-go/internal/logging"
)

// Package-level logger specific to the advisory service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "advisory.log")
	serviceLevelVar.Set(slog.LevelInfo)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "advisory", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize advisory file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("advisory", serviceLevelVar)
		closeLogger = func() error { return nil }
	}
}

// ErrUnavailable is returned when the remote service could not be reached
// within the retry budget. Callers may re-prompt later.
var ErrUnavailable = errors.NewStd("advisory service unavailable")

const maxRetries = 3

// Client is the cached, retrying advisory service client.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache

	// backoffUnit scales the exponential retry delay; tests shorten it.
	backoffUnit time.Duration

	// Metrics
	metrics struct {
		apiCalls      int64
		cacheHits     int64
		cacheMisses   int64
		apiErrors     int64
		totalDuration time.Duration
		mu            sync.RWMutex
	}
}

// NewClient creates a new advisory client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.Newf("advisory API key is required").
			Category(errors.CategoryConfiguration).
			Component("advisory").
			Build()
	}

	defaults := DefaultConfig()
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaults.MaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// Advisory answers for a given parameter snapshot never go stale,
		// so entries live for the whole process.
		cache:       cache.New(cache.NoExpiration, 0),
		backoffUnit: time.Second,
	}

	logger.Info("advisory client initialized",
		"endpoint", config.Endpoint,
		"model", config.Model,
		"timeout", config.Timeout,
		"api_key_configured", config.APIKey != "")

	return client, nil
}

// Close releases the service log file.
func (c *Client) Close() {
	logger.Info("closing advisory client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing advisory logger: %v", err)
		}
	}
}

// GetAdvisory returns the advisory text for the query under the given
// parameter snapshot. Identical (query, snapshot) pairs are answered from
// the cache without a network call. Only successful responses are cached;
// exhausted retries yield ErrUnavailable.
func (c *Client) GetAdvisory(ctx context.Context, query string, snapshot Snapshot) (string, error) {
	key := snapshot.cacheKey(query)

	if cached, found := c.cache.Get(key); found {
		if text, ok := cached.(string); ok {
			c.metrics.mu.Lock()
			c.metrics.cacheHits++
			c.metrics.mu.Unlock()

			logger.Debug("advisory cache hit", "query_len", len(query))
			return text, nil
		}
	}

	c.metrics.mu.Lock()
	c.metrics.cacheMisses++
	c.metrics.mu.Unlock()

	text, err := c.requestWithRetry(ctx, query, snapshot)
	if err != nil {
		return "", err
	}

	c.cache.Set(key, text, cache.NoExpiration)
	return text, nil
}

// requestWithRetry issues the remote request with exponential backoff.
// Attempt n sleeps 2^n backoff units after failing. A malformed response
// shape is not retried; cancellation is honored at each retry boundary.
func (c *Client) requestWithRetry(ctx context.Context, query string, snapshot Snapshot) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		text, err := c.doRequest(ctx, query, snapshot)
		if err == nil {
			return text, nil
		}

		if errors.IsCategory(err, errors.CategoryResponseParsing) {
			// The service answered but with an unusable shape; retrying
			// will not change that.
			return "", err
		}

		lastErr = err

		if ctx.Err() != nil {
			return "", errors.Newf("advisory request cancelled: %w", ctx.Err()).
				Category(errors.CategoryCancellation).
				Component("advisory").
				Build()
		}

		if attempt < maxRetries {
			delay := (1 << attempt) * c.backoffUnit
			logger.Warn("advisory request failed, retrying",
				"attempt", attempt,
				"max_retries", maxRetries,
				"delay", delay,
				"error", err.Error())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", errors.Newf("advisory request cancelled: %w", ctx.Err()).
					Category(errors.CategoryCancellation).
					Component("advisory").
					Build()
			}
		}
	}

	logger.Error("advisory retries exhausted", "error", lastErr)
	return "", errors.Newf("%w: %w", ErrUnavailable, lastErr).
		Category(errors.CategoryNetwork).
		Context("retries", maxRetries).
		Component("advisory").
		Build()
}

// doRequest performs one remote chat completion request.
func (c *Client) doRequest(ctx context.Context, query string, snapshot Snapshot) (string, error) {
	start := time.Now()

	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	c.metrics.mu.Unlock()

	payload := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: snapshot.prompt(query)},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Newf("failed to encode advisory request: %w", err).
			Category(errors.CategoryGeneric).
			Component("advisory").
			Build()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Newf("failed to create advisory request: %w", err).
			Category(errors.CategoryNetwork).
			Component("advisory").
			Build()
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countError()
		logger.Error("advisory request failed", "error", err)
		return "", errors.Newf("advisory request failed: %w", err).
			Category(errors.CategoryNetwork).
			Component("advisory").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countError()
		return "", errors.Newf("failed to read advisory response: %w", err).
			Category(errors.CategoryNetwork).
			Context("status_code", resp.StatusCode).
			Component("advisory").
			Build()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.countError()
		logger.Warn("advisory service error response",
			"status_code", resp.StatusCode,
			"response_size", len(respBody))
		return "", errors.Newf("advisory service returned status %d", resp.StatusCode).
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Component("advisory").
			Build()
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.countError()
		return "", errors.Newf("failed to parse advisory response: %w", err).
			Category(errors.CategoryResponseParsing).
			Context("response_size", len(respBody)).
			Component("advisory").
			Build()
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		c.countError()
		return "", errors.Newf("advisory response has no content").
			Category(errors.CategoryResponseParsing).
			Component("advisory").
			Build()
	}

	duration := time.Since(start)
	c.metrics.mu.Lock()
	c.metrics.totalDuration += duration
	c.metrics.mu.Unlock()

	logger.Info("advisory request successful",
		"duration_ms", duration.Milliseconds(),
		"response_size", len(respBody))

	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) countError() {
	c.metrics.mu.Lock()
	c.metrics.apiErrors++
	c.metrics.mu.Unlock()
}

// HTTPClient exposes the underlying HTTP client so tests can install a
// mock transport.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// ClearCache clears all cached advisories.
func (c *Client) ClearCache() {
	c.cache.Flush()
	logger.Info("advisory cache cleared")
}

// CacheCount returns the number of cached advisories.
func (c *Client) CacheCount() int {
	return c.cache.ItemCount()
}

// GetMetrics returns current client metrics
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()

	metrics := Metrics{
		APICalls:      c.metrics.apiCalls,
		CacheHits:     c.metrics.cacheHits,
		CacheMisses:   c.metrics.cacheMisses,
		APIErrors:     c.metrics.apiErrors,
		TotalDuration: c.metrics.totalDuration,
	}
	if metrics.APICalls > 0 {
		metrics.AvgDuration = time.Duration(int64(metrics.TotalDuration) / metrics.APICalls)
	}
	return metrics
}
