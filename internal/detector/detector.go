// internal/detector/detector.go
package detector

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/clipsense/clipsense/internal/cache"
	"github.com/clipsense/clipsense/internal/classifier"
	"github.com/clipsense/clipsense/internal/config"
	clipErrors "github.com/clipsense/clipsense/internal/errors"
	"github.com/clipsense/clipsense/internal/metadata"
	"github.com/clipsense/clipsense/internal/monitoring"
	"github.com/clipsense/clipsense/internal/rules"
	"github.com/clipsense/clipsense/internal/strategy"
	"github.com/clipsense/clipsense/internal/urlnorm"
	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/types"
)

// degradedConfidence is reported when detection falls back after an
// internal failure.
const degradedConfidence = 0.1

// Engine composes the detection pipeline: normalize, cache lookup, rule
// match, metadata extraction, classification, strategy decision.
type Engine struct {
	normalizer *urlnorm.Normalizer
	cache      *cache.Store
	matcher    *rules.Matcher
	extractor  *metadata.Extractor
	classifier *classifier.Classifier
	decider    *strategy.Decider
	metrics    *monitoring.MetricsManager
	logger     utils.Logger

	mu          sync.RWMutex
	cacheTTL    time.Duration
	batchWindow int

	historyStore strategy.HistoryStore
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger     utils.Logger
	metrics    *monitoring.MetricsManager
	apiClients map[types.Platform]metadata.APIClient
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger utils.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics attaches a metrics manager.
func WithMetrics(metrics *monitoring.MetricsManager) EngineOption {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithPlatformAPI registers a platform API client used by the highest-
// confidence extraction step.
func WithPlatformAPI(platform types.Platform, client metadata.APIClient) EngineOption {
	return func(o *engineOptions) {
		if o.apiClients == nil {
			o.apiClients = make(map[types.Platform]metadata.APIClient)
		}
		o.apiClients[platform] = client
	}
}

// NewEngine builds a detection engine from configuration. A nil config
// uses defaults.
func NewEngine(cfg *config.EngineConfig, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = utils.NewLoggerWithLevel(utils.ParseLogLevel(cfg.LogLevel))
	}
	metrics := options.metrics
	if metrics == nil {
		metrics = monitoring.NewMetricsManager(monitoring.MetricsConfig{})
	}

	extractorOpts := []metadata.ExtractorOption{
		metadata.WithStepTimeout(cfg.Extraction.StepTimeout),
		metadata.WithLogger(logger),
		metadata.WithMetrics(metrics),
	}
	for platform, client := range options.apiClients {
		extractorOpts = append(extractorOpts, metadata.WithAPIClient(platform, client))
	}

	matcher := rules.NewMatcher()
	if cfg.Rules.File != "" {
		loaded, skipped, err := rules.LoadFile(cfg.Rules.File, logger)
		if err != nil {
			return nil, clipErrors.Wrap(clipErrors.CategoryConfig, "load rules", err)
		}
		if skipped > 0 {
			logger.Warnf("skipped %d malformed rule entries in %s", skipped, cfg.Rules.File)
		}
		for _, rule := range loaded {
			if err := matcher.Register(rule); err != nil {
				logger.Warnf("skipping rule for %s: %v", rule.Platform, err)
			}
		}
	}

	deciderOpts := []strategy.DeciderOption{
		strategy.WithLearning(cfg.Learning.Enabled),
		strategy.WithDeciderLogger(logger),
	}
	var historyStore strategy.HistoryStore
	if cfg.Learning.Enabled && cfg.Learning.HistoryPath != "" {
		store, err := strategy.NewSQLiteHistoryStore(cfg.Learning.HistoryPath)
		if err != nil {
			logger.Warnf("history store unavailable, learning is memory-only: %v", err)
		} else {
			historyStore = store
			deciderOpts = append(deciderOpts, strategy.WithHistoryStore(store))
		}
	}

	return &Engine{
		normalizer: urlnorm.NewNormalizer(),
		cache: cache.NewStore(
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithMaxSize(cfg.Cache.MaxSize),
			cache.WithSweepInterval(cfg.Cache.SweepInterval),
		),
		matcher:      matcher,
		extractor:    metadata.NewExtractor(extractorOpts...),
		classifier:   classifier.NewClassifier(),
		decider:      strategy.NewDecider(deciderOpts...),
		metrics:      metrics,
		logger:       logger,
		cacheTTL:     cfg.Cache.TTL,
		batchWindow:  cfg.Batch.WindowSize,
		historyStore: historyStore,
	}, nil
}

// Detect runs the full pipeline for one URL. It never returns an error:
// internal failures degrade to a generic result with Error populated.
func (e *Engine) Detect(ctx context.Context, rawURL string) (result *types.DetectionResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("detection panic for %q: %v", rawURL, r)
			e.metrics.RecordDetectionError(string(clipErrors.CategoryLogic))
			result = e.degradedResult(rawURL, fmt.Sprintf("internal error: %v", r))
		}
	}()

	normalized := e.normalizer.Normalize(rawURL)

	if cached, ok := e.cache.Get(normalized); ok {
		e.metrics.RecordCacheHit()
		cached.FromCache = true
		return cached
	}
	e.metrics.RecordCacheMiss()

	match := e.matcher.Match(normalized)

	// Extraction runs only for recognized platforms; generic URLs are
	// classified from their shape alone.
	var meta *types.PlatformMetadata
	var warnings []string
	if match.Platform != types.PlatformGeneric {
		meta, warnings = e.extractor.Extract(ctx, normalized, match.Platform, match.ExtractedID)
	}

	contentType, classConfidence := e.classifier.Classify(match.Platform, normalized, meta)

	confidence := classConfidence
	if match.Confidence > confidence {
		confidence = match.Confidence
	}

	decision := e.decider.DecideDetailed(contentType, decisionContext(meta))
	e.metrics.RecordStrategy(string(decision.Strategy))

	result = &types.DetectionResult{
		URL:                rawURL,
		NormalizedURL:      normalized,
		Platform:           match.Platform,
		ContentType:        contentType,
		Confidence:         confidence,
		MatchedPattern:     match.MatchedPattern,
		Metadata:           meta,
		ProcessingStrategy: decision.Strategy,
		Warnings:           warnings,
		DetectedAt:         time.Now(),
	}

	e.mu.RLock()
	ttl := e.cacheTTL
	e.mu.RUnlock()
	e.cache.SetWithTTL(normalized, result, ttl)
	e.metrics.UpdateCacheSize(e.cache.Stats().Size)
	e.metrics.RecordDetection(string(match.Platform), string(contentType), time.Since(start))

	return result
}

// DetectBatch detects every URL in fixed-size concurrency windows. A full
// window completes before the next starts, and results preserve input
// order regardless of completion order.
func (e *Engine) DetectBatch(ctx context.Context, urls []string) []*types.DetectionResult {
	e.metrics.RecordBatch(len(urls))

	e.mu.RLock()
	window := e.batchWindow
	e.mu.RUnlock()
	if window < 1 {
		window = 1
	}

	results := make([]*types.DetectionResult, len(urls))
	for offset := 0; offset < len(urls); offset += window {
		end := offset + window
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := offset; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = e.Detect(ctx, urls[idx])
			}(i)
		}
		wg.Wait()
	}

	return results
}

// RegisterRule adds a platform rule to the matcher at runtime.
func (e *Engine) RegisterRule(rule rules.PlatformRule) error {
	return e.matcher.Register(rule)
}

// RegisterClassifierRule adds a platform classification rule at runtime.
func (e *Engine) RegisterClassifierRule(rule classifier.Rule) error {
	return e.classifier.Register(rule)
}

// UpdatePreferences applies the non-nil fields of prefs to the engine.
func (e *Engine) UpdatePreferences(prefs types.Preferences) error {
	for contentType, strategyName := range prefs.DefaultStrategies {
		if err := e.decider.SetDefault(contentType, strategyName); err != nil {
			return clipErrors.Wrap(clipErrors.CategoryConfig, "update preferences", err)
		}
	}
	if prefs.LearningEnabled != nil {
		e.decider.SetLearning(*prefs.LearningEnabled)
	}
	if prefs.CacheTTL != nil {
		if *prefs.CacheTTL <= 0 {
			return clipErrors.New(clipErrors.CategoryConfig, "update preferences", "cache TTL must be positive")
		}
		e.mu.Lock()
		e.cacheTTL = *prefs.CacheTTL
		e.mu.Unlock()
	}
	if prefs.BatchWindowSize != nil {
		if *prefs.BatchWindowSize < 1 {
			return clipErrors.New(clipErrors.CategoryConfig, "update preferences", "batch window must be at least 1")
		}
		e.mu.Lock()
		e.batchWindow = *prefs.BatchWindowSize
		e.mu.Unlock()
	}
	if prefs.ExtractionTimeout != nil {
		if *prefs.ExtractionTimeout <= 0 {
			return clipErrors.New(clipErrors.CategoryConfig, "update preferences", "extraction timeout must be positive")
		}
		e.extractor.SetStepTimeout(*prefs.ExtractionTimeout)
	}
	return nil
}

// RecordSatisfaction feeds a user satisfaction score back into the
// decision history.
func (e *Engine) RecordSatisfaction(contentType types.ContentType, satisfaction float64) {
	e.decider.RecordSatisfaction(contentType, satisfaction)
}

// GetCacheStats returns current cache counters.
func (e *Engine) GetCacheStats() types.CacheStats {
	return e.cache.Stats()
}

// ClearCache drops all cached results and resets cache counters.
func (e *Engine) ClearCache() {
	e.cache.Clear()
	e.metrics.UpdateCacheSize(0)
}

// EvictCacheLRU evicts up to n least-recently-used cache entries and
// reports how many were removed.
func (e *Engine) EvictCacheLRU(n int) int {
	evicted := e.cache.EvictLRU(n)
	e.metrics.UpdateCacheSize(e.cache.Stats().Size)
	return evicted
}

// MetricsHandler exposes the Prometheus endpoint for this engine.
func (e *Engine) MetricsHandler() http.Handler {
	return e.metrics.MetricsHandler()
}

// Close releases the cache sweeper and, when configured, the history
// store.
func (e *Engine) Close() error {
	e.cache.Close()
	if e.historyStore != nil {
		return e.historyStore.Close()
	}
	return nil
}

// degradedResult is the uniform fail-safe shape for any internal failure.
func (e *Engine) degradedResult(rawURL, errMsg string) *types.DetectionResult {
	return &types.DetectionResult{
		URL:                rawURL,
		NormalizedURL:      rawURL,
		Platform:           types.PlatformGeneric,
		ContentType:        types.ContentTypeGeneric,
		Confidence:         degradedConfidence,
		ProcessingStrategy: types.StrategyBookmark,
		Error:              errMsg,
		DetectedAt:         time.Now(),
	}
}

// decisionContext projects extracted metadata into the signals the
// strategy decider evaluates.
func decisionContext(meta *types.PlatformMetadata) *types.DecisionContext {
	if meta == nil {
		return nil
	}
	ctx := &types.DecisionContext{}
	if meta.Duration != nil {
		d := *meta.Duration
		ctx.DurationSeconds = &d
	}
	if meta.WordCount != nil {
		w := *meta.WordCount
		ctx.WordCount = &w
	}
	return ctx
}
