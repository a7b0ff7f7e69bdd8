// internal/metadata/extractor.go
package metadata

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clipsense/clipsense/internal/monitoring"
	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/types"
)

// errStepSkipped marks a chain step that is not configured for the platform,
// as opposed to one that was tried and failed.
var errStepSkipped = errors.New("extraction step not configured for platform")

// Strategy is one step in the confidence-ordered fallback chain. Each step
// declares its own confidence ceiling; the chain tries steps in declining
// confidence order until one succeeds.
type Strategy interface {
	Name() types.MetadataSource
	Confidence() float64
	Extract(ctx context.Context, target *Target) (*types.PlatformMetadata, error)
}

// Extractor runs the per-platform fallback chain. Extract never returns an
// error: total failure yields a minimal URL-derived record with the failure
// noted in the provenance bag.
type Extractor struct {
	fetcher  *Fetcher
	logger   utils.Logger
	metrics  *monitoring.MetricsManager
	chain    []Strategy
	fallback Strategy

	mu          sync.RWMutex
	stepTimeout time.Duration
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*extractorConfig)

type extractorConfig struct {
	timeout    time.Duration
	apiClients map[types.Platform]APIClient
	logger     utils.Logger
	metrics    *monitoring.MetricsManager
}

// WithStepTimeout bounds each network-touching chain step.
func WithStepTimeout(timeout time.Duration) ExtractorOption {
	return func(c *extractorConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithAPIClient registers a dedicated platform API client, used in place of
// the public oEmbed endpoint for that platform.
func WithAPIClient(platform types.Platform, client APIClient) ExtractorOption {
	return func(c *extractorConfig) {
		c.apiClients[platform] = client
	}
}

// WithLogger sets the extractor logger.
func WithLogger(logger utils.Logger) ExtractorOption {
	return func(c *extractorConfig) {
		c.logger = logger
	}
}

// WithMetrics records per-step durations and outcomes on the given
// manager.
func WithMetrics(metrics *monitoring.MetricsManager) ExtractorOption {
	return func(c *extractorConfig) {
		c.metrics = metrics
	}
}

// NewExtractor creates an extractor with the standard fallback chain:
// platform API, JSON-LD, meta tags, then the URL-derived fallback.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	cfg := &extractorConfig{
		timeout:    DefaultFetchTimeout,
		apiClients: make(map[types.Platform]APIClient),
		logger:     utils.NewLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	fetcher := NewFetcher(cfg.timeout)

	return &Extractor{
		fetcher:     fetcher,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
		stepTimeout: cfg.timeout,
		chain: []Strategy{
			newPlatformAPIStrategy(fetcher, cfg.apiClients),
			&jsonLDStrategy{},
			&metaTagsStrategy{},
		},
		fallback: newURLFallbackStrategy(),
	}
}

// SetStepTimeout overrides the per-step timeout; used when preferences
// change at runtime.
func (e *Extractor) SetStepTimeout(timeout time.Duration) {
	if timeout > 0 {
		e.mu.Lock()
		e.stepTimeout = timeout
		e.mu.Unlock()
	}
}

// Extract walks the fallback chain for the URL. The returned metadata always
// records which step succeeded and that step's confidence; warnings describe
// every step that failed along the way.
func (e *Extractor) Extract(ctx context.Context, rawURL string, platform types.Platform, platformID string) (*types.PlatformMetadata, []string) {
	target := NewTarget(rawURL, platform, platformID, e.fetcher)
	var warnings []string

	for _, step := range e.chain {
		meta, err := e.runStep(ctx, step, target)
		if err != nil {
			if errors.Is(err, errStepSkipped) {
				continue
			}
			warning := fmt.Sprintf("%s: %v", step.Name(), err)
			warnings = append(warnings, warning)
			e.logger.WithFields(map[string]interface{}{
				"url":  rawURL,
				"step": string(step.Name()),
			}).Debugf("extraction step failed: %v", err)
			continue
		}

		e.finalize(meta, target, warnings)
		return meta, warnings
	}

	// Terminal fallback cannot fail
	started := time.Now()
	meta, _ := e.fallback.Extract(ctx, target)
	if e.metrics != nil {
		e.metrics.RecordExtractionStep(string(e.fallback.Name()), time.Since(started), true)
	}
	e.finalize(meta, target, warnings)
	return meta, warnings
}

// runStep executes one chain step under a cancellable timeout so a single
// slow source cannot stall a whole batch.
func (e *Extractor) runStep(ctx context.Context, step Strategy, target *Target) (*types.PlatformMetadata, error) {
	e.mu.RLock()
	timeout := e.stepTimeout
	e.mu.RUnlock()

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	meta, err := step.Extract(stepCtx, target)

	// Steps not configured for the platform were never tried; they are
	// not observations.
	if e.metrics != nil && !errors.Is(err, errStepSkipped) {
		e.metrics.RecordExtractionStep(string(step.Name()), time.Since(started), err == nil)
	}

	if err != nil {
		if stepCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("timed out after %s", time.Since(started).Round(time.Millisecond))
		}
		return nil, err
	}
	return meta, nil
}

// finalize stamps provenance shared by every outcome.
func (e *Extractor) finalize(meta *types.PlatformMetadata, target *Target, warnings []string) {
	if meta.Raw == nil {
		meta.Raw = map[string]interface{}{}
	}
	meta.Raw["extracted_at"] = time.Now().UTC().Format(time.RFC3339)
	if meta.PlatformID == "" {
		meta.PlatformID = target.PlatformID
	}
	if len(warnings) > 0 {
		meta.Raw["failed_steps"] = append([]string(nil), warnings...)
	}
}
