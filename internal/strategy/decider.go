// internal/strategy/decider.go
package strategy

import (
	"fmt"
	"sync"

	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/types"
)

// Decision confidence constants
const (
	defaultTableConfidence = 0.7
	contextRuleConfidence  = 0.85
)

// DefaultStrategies maps each content type to its static default handling.
func DefaultStrategies() map[types.ContentType]types.ProcessingStrategy {
	return map[types.ContentType]types.ProcessingStrategy{
		types.ContentTypeArticle:       types.StrategyClip,
		types.ContentTypeVideo:         types.StrategyWatchLater,
		types.ContentTypePost:          types.StrategyBookmark,
		types.ContentTypeRepository:    types.StrategyBookmark,
		types.ContentTypeDocumentation: types.StrategyClip,
		types.ContentTypeDiscussion:    types.StrategyBookmark,
		types.ContentTypeGallery:       types.StrategyBookmark,
		types.ContentTypeGeneric:       types.StrategyBookmark,
	}
}

// Decider maps a content type and optional context to a processing strategy.
// Context rules override the default table; the learned history vote is only
// ever surfaced as an alternative suggestion.
type Decider struct {
	mu       sync.RWMutex
	defaults map[types.ContentType]types.ProcessingStrategy
	rules    []ContextRule

	learning bool
	history  *HistoryRing
	store    HistoryStore
	logger   utils.Logger
}

// DeciderOption configures a Decider.
type DeciderOption func(*Decider)

// WithLearning enables the decision history and its weighted vote.
func WithLearning(enabled bool) DeciderOption {
	return func(d *Decider) {
		d.learning = enabled
	}
}

// WithHistoryStore attaches a persistent store behind the in-memory ring.
func WithHistoryStore(store HistoryStore) DeciderOption {
	return func(d *Decider) {
		d.store = store
	}
}

// WithDeciderLogger sets the decider logger.
func WithDeciderLogger(logger utils.Logger) DeciderOption {
	return func(d *Decider) {
		d.logger = logger
	}
}

// NewDecider creates a decider with the default strategy table and the
// built-in context rules.
func NewDecider(opts ...DeciderOption) *Decider {
	d := &Decider{
		defaults: DefaultStrategies(),
		rules:    defaultContextRules(),
		history:  NewHistoryRing(DefaultHistoryCapacity),
		logger:   utils.NewLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.store != nil {
		entries, err := d.store.Load(DefaultHistoryCapacity)
		if err != nil {
			d.logger.Warnf("history store load failed, continuing memory-only: %v", err)
		} else {
			for _, entry := range entries {
				d.history.Append(entry)
			}
		}
	}

	return d
}

// SetDefault overrides the default strategy for a content type.
func (d *Decider) SetDefault(contentType types.ContentType, strategy types.ProcessingStrategy) error {
	if !contentType.IsValid() {
		return fmt.Errorf("invalid content type %q", contentType)
	}
	if !strategy.IsValid() {
		return fmt.Errorf("invalid strategy %q", strategy)
	}

	d.mu.Lock()
	d.defaults[contentType] = strategy
	d.mu.Unlock()
	return nil
}

// SetLearning toggles the decision history at runtime.
func (d *Decider) SetLearning(enabled bool) {
	d.mu.Lock()
	d.learning = enabled
	d.mu.Unlock()
}

// RegisterRule appends a context rule. Later rules lose ties against earlier
// ones, so registration order is a deliberate part of the contract.
func (d *Decider) RegisterRule(rule ContextRule) error {
	if rule.Name == "" {
		return fmt.Errorf("context rule needs a name")
	}
	if rule.Matches == nil {
		return fmt.Errorf("context rule %q needs a predicate", rule.Name)
	}
	if !rule.Strategy.IsValid() {
		return fmt.Errorf("context rule %q has invalid strategy %q", rule.Name, rule.Strategy)
	}

	d.mu.Lock()
	d.rules = append(d.rules, rule)
	d.mu.Unlock()
	return nil
}

// Decide returns the strategy for a content type under the given context.
func (d *Decider) Decide(contentType types.ContentType, ctx *types.DecisionContext) types.ProcessingStrategy {
	return d.DecideDetailed(contentType, ctx).Strategy
}

// DecideDetailed returns the strategy along with confidence, reasoning and,
// when learning is enabled, the history-vote alternative. The highest
// match-quality context rule overrides the default; ties break by
// registration order. Match-quality scores are hand-tuned ordering weights,
// not probabilities.
func (d *Decider) DecideDetailed(contentType types.ContentType, ctx *types.DecisionContext) types.Decision {
	d.mu.RLock()
	defaultStrategy, ok := d.defaults[contentType]
	rules := d.rules
	learning := d.learning
	d.mu.RUnlock()

	if !ok {
		defaultStrategy = types.StrategyBookmark
	}

	decision := types.Decision{
		Strategy:   defaultStrategy,
		Confidence: defaultTableConfidence,
		Reasoning:  fmt.Sprintf("default strategy for %s", contentType),
	}

	var best *ContextRule
	var bestQuality float64
	for i := range rules {
		rule := &rules[i]
		quality, matched := rule.Matches(contentType, ctx)
		if !matched {
			continue
		}
		// Strictly greater keeps the earliest rule on ties
		if best == nil || quality > bestQuality {
			best = rule
			bestQuality = quality
		}
	}

	if best != nil {
		decision.Strategy = best.Strategy
		decision.Confidence = contextRuleConfidence
		decision.Reasoning = fmt.Sprintf("context rule %q overrode the %s default", best.Name, contentType)
	}

	if learning {
		if suggestion, share, ok := d.history.WeightedVote(contentType); ok && suggestion != decision.Strategy {
			decision.Alternative = &suggestion
			decision.AlternativeShare = share
		}
		d.record(contentType, decision.Strategy)
	}

	return decision
}

// RecordSatisfaction attaches a satisfaction score in [0,1] to the most
// recent decision for a content type, boosting its weight in future votes.
func (d *Decider) RecordSatisfaction(contentType types.ContentType, satisfaction float64) {
	if satisfaction < 0 || satisfaction > 1 {
		return
	}
	d.history.AttachSatisfaction(contentType, satisfaction)
}

// HistoryLen reports how many decisions the ring currently holds.
func (d *Decider) HistoryLen() int {
	return d.history.Len()
}

// record appends a decision to the ring and, when configured, to the
// persistent store. Store failures never fail the decision.
func (d *Decider) record(contentType types.ContentType, strategy types.ProcessingStrategy) {
	entry := d.history.Record(contentType, strategy)
	if d.store != nil {
		if err := d.store.Append(entry); err != nil {
			d.logger.Warnf("history store append failed: %v", err)
		}
	}
}
