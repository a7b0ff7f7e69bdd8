// pkg/api/api.go
package api

import (
	"context"
	"net/http"

	"github.com/clipsense/clipsense/internal/classifier"
	"github.com/clipsense/clipsense/internal/config"
	"github.com/clipsense/clipsense/internal/detector"
	"github.com/clipsense/clipsense/internal/rules"
	"github.com/clipsense/clipsense/pkg/types"
)

// Re-export types from internal packages for the public API
type EngineConfig = config.EngineConfig
type CacheConfig = config.CacheConfig
type ExtractionConfig = config.ExtractionConfig
type BatchConfig = config.BatchConfig
type LearningConfig = config.LearningConfig
type PlatformRule = rules.PlatformRule
type ClassifierRule = classifier.Rule

// DefaultConfig returns the engine defaults.
func DefaultConfig() *EngineConfig {
	return config.Default()
}

// LoadConfig loads an engine configuration from a YAML file.
func LoadConfig(path string) (*EngineConfig, error) {
	return config.LoadFromFile(path)
}

// Client provides a high-level interface to the detection engine.
type Client struct {
	engine *detector.Engine
}

// NewClient creates a detection client. A nil config uses defaults.
func NewClient(cfg *EngineConfig, opts ...detector.EngineOption) (*Client, error) {
	engine, err := detector.NewEngine(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{engine: engine}, nil
}

// Detect runs detection for one URL. It never returns an error; degraded
// results carry their failure in the Error field.
func (c *Client) Detect(ctx context.Context, url string) *types.DetectionResult {
	return c.engine.Detect(ctx, url)
}

// DetectBatch runs detection for many URLs in bounded concurrency
// windows, preserving input order.
func (c *Client) DetectBatch(ctx context.Context, urls []string) []*types.DetectionResult {
	return c.engine.DetectBatch(ctx, urls)
}

// CacheStats returns current cache counters.
func (c *Client) CacheStats() types.CacheStats {
	return c.engine.GetCacheStats()
}

// ClearCache drops all cached results.
func (c *Client) ClearCache() {
	c.engine.ClearCache()
}

// EvictCacheLRU evicts up to n least-recently-used cache entries under
// memory pressure.
func (c *Client) EvictCacheLRU(n int) int {
	return c.engine.EvictCacheLRU(n)
}

// UpdatePreferences applies the non-nil preference fields.
func (c *Client) UpdatePreferences(prefs types.Preferences) error {
	return c.engine.UpdatePreferences(prefs)
}

// RegisterRule adds a platform rule at runtime.
func (c *Client) RegisterRule(rule PlatformRule) error {
	return c.engine.RegisterRule(rule)
}

// RegisterClassifierRule adds a classification rule at runtime.
func (c *Client) RegisterClassifierRule(rule ClassifierRule) error {
	return c.engine.RegisterClassifierRule(rule)
}

// RecordSatisfaction feeds a satisfaction score in [0,1] back into the
// decision history.
func (c *Client) RecordSatisfaction(contentType types.ContentType, satisfaction float64) {
	c.engine.RecordSatisfaction(contentType, satisfaction)
}

// MetricsHandler exposes the Prometheus endpoint for this client.
func (c *Client) MetricsHandler() http.Handler {
	return c.engine.MetricsHandler()
}

// Close releases engine resources.
func (c *Client) Close() error {
	return c.engine.Close()
}
