// internal/rules/loader_test.go
package rules

import (
	"testing"

	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/types"
)

func TestLoadBytesValidRules(t *testing.T) {
	data := []byte(`
rules:
  - platform: youtube
    patterns:
      - '^https?://(www\.)?youtube\.com/'
    content_type: video
    priority: 100
    confidence: 0.95
    description: YouTube
  - platform: hackernews
    patterns:
      - '^https?://news\.ycombinator\.com/item'
    content_type: discussion
    priority: 60
`)

	loaded, skipped, err := LoadBytes(data, utils.NewLogger())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if skipped != 0 {
		t.Errorf("expected no skipped entries, got %d", skipped)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(loaded))
	}

	if loaded[0].Platform != types.PlatformYouTube {
		t.Errorf("expected youtube, got %s", loaded[0].Platform)
	}
	if loaded[1].Confidence != DefaultRuleConfidence {
		t.Errorf("missing confidence should default to %f, got %f", DefaultRuleConfidence, loaded[1].Confidence)
	}
	if !loaded[1].Enabled {
		t.Error("enabled should default to true")
	}
}

func TestLoadBytesSkipsMalformedEntries(t *testing.T) {
	data := []byte(`
rules:
  - platform: ""
    patterns: ['^https://ok']
  - platform: broken
    patterns: ['[invalid(regex']
  - platform: badtype
    patterns: ['^https://ok']
    content_type: hologram
  - platform: valid
    patterns: ['^https?://valid\.example\.com/']
    content_type: article
    priority: 10
`)

	loaded, skipped, err := LoadBytes(data, utils.NewLogger())
	if err != nil {
		t.Fatalf("malformed entries must not abort the load: %v", err)
	}
	if skipped != 3 {
		t.Errorf("expected 3 skipped entries, got %d", skipped)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 valid rule, got %d", len(loaded))
	}
	if loaded[0].Platform != types.Platform("valid") {
		t.Errorf("expected the valid rule to survive, got %s", loaded[0].Platform)
	}
}

func TestLoadBytesInvalidYAML(t *testing.T) {
	if _, _, err := LoadBytes([]byte("rules: [not closed"), utils.NewLogger()); err == nil {
		t.Error("unparseable YAML should return an error")
	}
}

func TestLoadedRulesRegister(t *testing.T) {
	data := []byte(`
rules:
  - platform: hackernews
    patterns: ['^https?://news\.ycombinator\.com/item']
    content_type: discussion
    priority: 200
`)

	loaded, _, err := LoadBytes(data, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	m := NewMatcher()
	for _, rule := range loaded {
		if err := m.Register(rule); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	result := m.Match("https://news.ycombinator.com/item?id=123")
	if result.Platform != types.Platform("hackernews") {
		t.Errorf("expected hackernews, got %s", result.Platform)
	}
}
