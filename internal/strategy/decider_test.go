// internal/strategy/decider_test.go
package strategy

import (
	"testing"

	"github.com/clipsense/clipsense/pkg/types"
)

func intPtr(v int) *int          { return &v }
func int64Ptr(v int64) *int64    { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestDecideDefaults(t *testing.T) {
	d := NewDecider()

	tests := []struct {
		contentType types.ContentType
		expected    types.ProcessingStrategy
	}{
		{types.ContentTypeArticle, types.StrategyClip},
		{types.ContentTypeVideo, types.StrategyWatchLater},
		{types.ContentTypePost, types.StrategyBookmark},
		{types.ContentTypeRepository, types.StrategyBookmark},
		{types.ContentTypeDocumentation, types.StrategyClip},
		{types.ContentTypeDiscussion, types.StrategyBookmark},
		{types.ContentTypeGallery, types.StrategyBookmark},
		{types.ContentTypeGeneric, types.StrategyBookmark},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType), func(t *testing.T) {
			if got := d.Decide(tt.contentType, nil); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDecideUnknownContentType(t *testing.T) {
	d := NewDecider()

	if got := d.Decide(types.ContentType("hologram"), nil); got != types.StrategyBookmark {
		t.Errorf("unknown content type should fall back to bookmark, got %s", got)
	}
}

func TestDecideShortVideoOverride(t *testing.T) {
	d := NewDecider()

	ctx := &types.DecisionContext{DurationSeconds: intPtr(45)}
	decision := d.DecideDetailed(types.ContentTypeVideo, ctx)
	if decision.Strategy != types.StrategyClip {
		t.Errorf("short video should be clipped, got %s", decision.Strategy)
	}
	if decision.Confidence != contextRuleConfidence {
		t.Errorf("expected context rule confidence, got %f", decision.Confidence)
	}

	// At or over the threshold the default holds
	ctx.DurationSeconds = intPtr(60)
	if got := d.Decide(types.ContentTypeVideo, ctx); got != types.StrategyWatchLater {
		t.Errorf("60s video should keep the default, got %s", got)
	}
}

func TestDecideLongArticleOverride(t *testing.T) {
	d := NewDecider()

	ctx := &types.DecisionContext{WordCount: intPtr(15000)}
	if got := d.Decide(types.ContentTypeArticle, ctx); got != types.StrategyWatchLater {
		t.Errorf("long article should be deferred, got %s", got)
	}
}

func TestDecideResourcePressureOutranksContentShape(t *testing.T) {
	d := NewDecider()

	// Both low-storage (0.95) and short-video (0.8) match; the
	// higher-quality rule must win
	ctx := &types.DecisionContext{
		DurationSeconds:  intPtr(30),
		AvailableStorage: floatPtr(0.05),
	}
	decision := d.DecideDetailed(types.ContentTypeVideo, ctx)
	if decision.Strategy != types.StrategyBookmark {
		t.Errorf("low storage should outrank short video, got %s", decision.Strategy)
	}
}

func TestDecideQueueAndPayloadRules(t *testing.T) {
	d := NewDecider()

	ctx := &types.DecisionContext{QueueDepth: intPtr(51)}
	if got := d.Decide(types.ContentTypeArticle, ctx); got != types.StrategyBookmark {
		t.Errorf("deep queue should bookmark, got %s", got)
	}

	ctx = &types.DecisionContext{PayloadSizeBytes: int64Ptr(11 << 20)}
	if got := d.Decide(types.ContentTypeArticle, ctx); got != types.StrategyBookmark {
		t.Errorf("oversized payload should bookmark, got %s", got)
	}
}

func TestDecideTieBreaksByRegistrationOrder(t *testing.T) {
	d := NewDecider()

	// Two custom rules with identical quality; the earlier one must win
	first := ContextRule{
		Name:     "first",
		Strategy: types.StrategyClip,
		Matches: func(types.ContentType, *types.DecisionContext) (float64, bool) {
			return 0.99, true
		},
	}
	second := ContextRule{
		Name:     "second",
		Strategy: types.StrategyWatchLater,
		Matches: func(types.ContentType, *types.DecisionContext) (float64, bool) {
			return 0.99, true
		},
	}
	if err := d.RegisterRule(first); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := d.RegisterRule(second); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if got := d.Decide(types.ContentTypeGeneric, nil); got != types.StrategyClip {
		t.Errorf("earlier rule should win ties, got %s", got)
	}
}

func TestRegisterRuleValidation(t *testing.T) {
	d := NewDecider()

	if err := d.RegisterRule(ContextRule{}); err == nil {
		t.Error("unnamed rule should be rejected")
	}
	if err := d.RegisterRule(ContextRule{Name: "x", Strategy: types.StrategyClip}); err == nil {
		t.Error("rule without predicate should be rejected")
	}
	if err := d.RegisterRule(ContextRule{
		Name:     "x",
		Strategy: "teleport",
		Matches:  func(types.ContentType, *types.DecisionContext) (float64, bool) { return 0, false },
	}); err == nil {
		t.Error("invalid strategy should be rejected")
	}
}

func TestSetDefault(t *testing.T) {
	d := NewDecider()

	if err := d.SetDefault(types.ContentTypeVideo, types.StrategyClip); err != nil {
		t.Fatalf("set default failed: %v", err)
	}
	if got := d.Decide(types.ContentTypeVideo, nil); got != types.StrategyClip {
		t.Errorf("overridden default should apply, got %s", got)
	}

	if err := d.SetDefault("hologram", types.StrategyClip); err == nil {
		t.Error("invalid content type should be rejected")
	}
	if err := d.SetDefault(types.ContentTypeVideo, "teleport"); err == nil {
		t.Error("invalid strategy should be rejected")
	}
}

func TestDecideLearningAlternative(t *testing.T) {
	d := NewDecider(WithLearning(true))

	// Build up history where the user consistently bookmarks videos
	for i := 0; i < 10; i++ {
		d.history.Record(types.ContentTypeVideo, types.StrategyBookmark)
	}

	decision := d.DecideDetailed(types.ContentTypeVideo, nil)
	if decision.Strategy != types.StrategyWatchLater {
		t.Errorf("history must never override the primary strategy, got %s", decision.Strategy)
	}
	if decision.Alternative == nil {
		t.Fatal("expected a history-vote alternative")
	}
	if *decision.Alternative != types.StrategyBookmark {
		t.Errorf("expected bookmark alternative, got %s", *decision.Alternative)
	}
	if decision.AlternativeShare <= 0.5 {
		t.Errorf("unanimous history should dominate the vote, got share %f", decision.AlternativeShare)
	}
}

func TestDecideLearningNoAlternativeWhenAgreeing(t *testing.T) {
	d := NewDecider(WithLearning(true))

	for i := 0; i < 5; i++ {
		d.history.Record(types.ContentTypeVideo, types.StrategyWatchLater)
	}

	decision := d.DecideDetailed(types.ContentTypeVideo, nil)
	if decision.Alternative != nil {
		t.Errorf("agreeing vote should not surface an alternative, got %s", *decision.Alternative)
	}
}

func TestDecideRecordsHistoryOnlyWhenLearning(t *testing.T) {
	d := NewDecider()
	d.Decide(types.ContentTypeVideo, nil)
	if d.HistoryLen() != 0 {
		t.Errorf("learning disabled should not record, got %d entries", d.HistoryLen())
	}

	d.SetLearning(true)
	d.Decide(types.ContentTypeVideo, nil)
	if d.HistoryLen() != 1 {
		t.Errorf("learning enabled should record, got %d entries", d.HistoryLen())
	}
}

func TestRecordSatisfactionBounds(t *testing.T) {
	d := NewDecider(WithLearning(true))
	d.Decide(types.ContentTypeVideo, nil)

	// Out-of-range scores are dropped silently
	d.RecordSatisfaction(types.ContentTypeVideo, 1.5)
	d.RecordSatisfaction(types.ContentTypeVideo, -0.1)
	d.RecordSatisfaction(types.ContentTypeVideo, 0.9)

	_, _, ok := d.history.WeightedVote(types.ContentTypeVideo)
	if !ok {
		t.Fatal("expected a vote after recording")
	}
}
