// internal/classifier/classifier.go
package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/clipsense/clipsense/pkg/types"
)

// DefaultThreshold is the minimum confidence a platform rule needs to win
// before cross-platform heuristics are consulted.
const DefaultThreshold = 0.6

// Rule is one platform-specific classification rule. A rule fires when its
// URL pattern matches or one of its keywords appears in the title or
// description.
type Rule struct {
	Platform   types.Platform
	URLPattern *regexp.Regexp
	Keywords   []string
	Result     types.ContentType
	Confidence float64
	Priority   int
}

// Classifier assigns a content type from platform rules and cross-platform
// heuristics. Classification itself is stateless and side-effect-free; rule
// registration is serialized behind the write lock.
type Classifier struct {
	mu        sync.RWMutex
	rules     map[types.Platform][]Rule
	threshold float64
}

// NewClassifier creates a classifier seeded with the built-in rule tables.
func NewClassifier() *Classifier {
	c := &Classifier{
		rules:     make(map[types.Platform][]Rule),
		threshold: DefaultThreshold,
	}
	for _, rule := range defaultRules() {
		c.rules[rule.Platform] = append(c.rules[rule.Platform], rule)
	}
	return c
}

// Register adds a classification rule at runtime.
func (c *Classifier) Register(rule Rule) error {
	if rule.Platform == "" {
		return fmt.Errorf("rule platform cannot be empty")
	}
	if rule.URLPattern == nil && len(rule.Keywords) == 0 {
		return fmt.Errorf("rule needs a URL pattern or keywords")
	}
	if !rule.Result.IsValid() {
		return fmt.Errorf("invalid content type %q", rule.Result)
	}
	if rule.Confidence <= 0 || rule.Confidence > 1 {
		return fmt.Errorf("confidence must be in (0,1], got %f", rule.Confidence)
	}

	c.mu.Lock()
	c.rules[rule.Platform] = append(c.rules[rule.Platform], rule)
	c.mu.Unlock()
	return nil
}

// SetThreshold overrides the platform-rule confidence threshold.
func (c *Classifier) SetThreshold(threshold float64) {
	if threshold <= 0 || threshold > 1 {
		return
	}
	c.mu.Lock()
	c.threshold = threshold
	c.mu.Unlock()
}

// Classify determines the content type for a URL. Platform rules are
// consulted first: the highest-confidence matching rule above the threshold
// wins. Otherwise the fixed-order cross-platform heuristics run; the first
// one to fire wins. When nothing fires the type is generic.
func (c *Classifier) Classify(platform types.Platform, url string, meta *types.PlatformMetadata) (types.ContentType, float64) {
	c.mu.RLock()
	rules := c.rules[platform]
	threshold := c.threshold
	c.mu.RUnlock()

	var best *Rule
	for i := range rules {
		rule := &rules[i]
		if !ruleMatches(rule, url, meta) {
			continue
		}
		if best == nil || rule.Confidence > best.Confidence ||
			(rule.Confidence == best.Confidence && rule.Priority > best.Priority) {
			best = rule
		}
	}
	if best != nil && best.Confidence >= threshold {
		return best.Result, best.Confidence
	}

	if result, confidence, ok := applyHeuristics(url, meta); ok {
		return result, confidence
	}

	return types.ContentTypeGeneric, genericConfidence
}

// ruleMatches tests one rule against the URL and metadata text.
func ruleMatches(rule *Rule, url string, meta *types.PlatformMetadata) bool {
	if rule.URLPattern != nil && rule.URLPattern.MatchString(url) {
		return true
	}
	if len(rule.Keywords) == 0 || meta == nil {
		return false
	}

	haystack := strings.ToLower(meta.Title + " " + meta.Description)
	for _, keyword := range rule.Keywords {
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
