// internal/rules/matcher.go
package rules

import (
	"fmt"
	"sort"
	"sync"

	"github.com/clipsense/clipsense/pkg/types"
)

// Matcher holds the active rule set, kept sorted by descending priority.
// Reads take a shared lock; registration takes the write lock so a new rule
// is never observed out of priority order.
type Matcher struct {
	mu    sync.RWMutex
	rules []PlatformRule
}

// NewMatcher creates a matcher seeded with the built-in rule set.
func NewMatcher() *Matcher {
	m := &Matcher{}
	for _, rule := range DefaultRules() {
		m.rules = append(m.rules, rule)
	}
	m.sortLocked()
	return m
}

// NewEmptyMatcher creates a matcher with no rules; every URL matches generic.
func NewEmptyMatcher() *Matcher {
	return &Matcher{}
}

// Register adds a rule to the active set, re-establishing the priority sort.
func (m *Matcher) Register(rule PlatformRule) error {
	if rule.Platform == "" {
		return fmt.Errorf("rule platform cannot be empty")
	}
	if len(rule.Patterns) == 0 {
		return fmt.Errorf("rule for %s has no patterns", rule.Platform)
	}
	if rule.Confidence <= 0 || rule.Confidence > 1 {
		rule.Confidence = DefaultRuleConfidence
	}
	if rule.ContentType == "" {
		rule.ContentType = types.ContentTypeGeneric
	}

	m.mu.Lock()
	m.rules = append(m.rules, rule)
	m.sortLocked()
	m.mu.Unlock()

	return nil
}

// Match tests the URL against the rule set in descending priority order. The
// first enabled rule whose pattern matches wins; there is no cross-rule
// scoring, keeping the outcome deterministic and explainable.
func (m *Matcher) Match(normalizedURL string) types.MatchResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rule := range m.rules {
		if !rule.Enabled {
			continue
		}
		for _, pattern := range rule.Patterns {
			if pattern.MatchString(normalizedURL) {
				return types.MatchResult{
					Platform:       rule.Platform,
					ContentType:    rule.ContentType,
					Confidence:     rule.Confidence,
					MatchedPattern: pattern.String(),
					ExtractedID:    ExtractID(rule.Platform, normalizedURL),
				}
			}
		}
	}

	return types.MatchResult{
		Platform:    types.PlatformGeneric,
		ContentType: types.ContentTypeGeneric,
		Confidence:  GenericConfidence,
	}
}

// Rules returns a snapshot of the active rule set in priority order.
func (m *Matcher) Rules() []PlatformRule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]PlatformRule, len(m.rules))
	copy(snapshot, m.rules)
	return snapshot
}

// Len returns the number of registered rules.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// sortLocked re-establishes the descending priority invariant. Registration
// order is preserved among equal priorities. Caller must hold m.mu.
func (m *Matcher) sortLocked() {
	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].Priority > m.rules[j].Priority
	})
}
