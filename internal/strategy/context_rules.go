// internal/strategy/context_rules.go
package strategy

import (
	"github.com/clipsense/clipsense/pkg/types"
)

// Context rule thresholds
const (
	ShortVideoSeconds    = 60
	LongArticleWords     = 10000
	LowStorageFraction   = 0.1
	DeepQueueDepth       = 50
	OversizedPayloadBytes = 10 << 20
)

// ContextRule overrides the default strategy when its predicate matches.
// Matches returns a match-quality score used only for ordering: the single
// highest-quality match wins, and ties break by registration order.
type ContextRule struct {
	Name     string
	Strategy types.ProcessingStrategy
	Matches  func(contentType types.ContentType, ctx *types.DecisionContext) (quality float64, matched bool)
}

// defaultContextRules returns the built-in context rules in their binding
// declaration order. Quality constants are hand-tuned: resource-pressure
// rules outrank content-shape rules.
func defaultContextRules() []ContextRule {
	return []ContextRule{
		{
			Name:     "low-storage",
			Strategy: types.StrategyBookmark,
			Matches: func(contentType types.ContentType, ctx *types.DecisionContext) (float64, bool) {
				if ctx == nil || ctx.AvailableStorage == nil {
					return 0, false
				}
				if *ctx.AvailableStorage < LowStorageFraction {
					return 0.95, true
				}
				return 0, false
			},
		},
		{
			Name:     "deep-queue",
			Strategy: types.StrategyBookmark,
			Matches: func(contentType types.ContentType, ctx *types.DecisionContext) (float64, bool) {
				if ctx == nil || ctx.QueueDepth == nil {
					return 0, false
				}
				if *ctx.QueueDepth > DeepQueueDepth {
					return 0.9, true
				}
				return 0, false
			},
		},
		{
			Name:     "oversized-payload",
			Strategy: types.StrategyBookmark,
			Matches: func(contentType types.ContentType, ctx *types.DecisionContext) (float64, bool) {
				if ctx == nil || ctx.PayloadSizeBytes == nil {
					return 0, false
				}
				if *ctx.PayloadSizeBytes > OversizedPayloadBytes {
					return 0.85, true
				}
				return 0, false
			},
		},
		{
			Name:     "short-video",
			Strategy: types.StrategyClip,
			Matches: func(contentType types.ContentType, ctx *types.DecisionContext) (float64, bool) {
				if contentType != types.ContentTypeVideo || ctx == nil || ctx.DurationSeconds == nil {
					return 0, false
				}
				if *ctx.DurationSeconds < ShortVideoSeconds {
					return 0.8, true
				}
				return 0, false
			},
		},
		{
			Name:     "long-article",
			Strategy: types.StrategyWatchLater,
			Matches: func(contentType types.ContentType, ctx *types.DecisionContext) (float64, bool) {
				if contentType != types.ContentTypeArticle || ctx == nil || ctx.WordCount == nil {
					return 0, false
				}
				if *ctx.WordCount > LongArticleWords {
					return 0.8, true
				}
				return 0, false
			},
		},
	}
}
