// internal/rules/loader.go
package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/types"
)

// RuleFile is the declarative rule document loaded at startup or on demand.
type RuleFile struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one declarative platform rule. Malformed entries are skipped
// individually with a warning; they never abort the whole load.
type RuleEntry struct {
	Platform    string   `yaml:"platform"`
	Patterns    []string `yaml:"patterns"`
	ContentType string   `yaml:"content_type"`
	Priority    int      `yaml:"priority"`
	Confidence  float64  `yaml:"confidence"`
	Enabled     *bool    `yaml:"enabled"`
	Description string   `yaml:"description"`
}

// LoadFile parses a YAML rule file and returns the valid rules plus the
// number of entries skipped.
func LoadFile(path string, logger utils.Logger) ([]PlatformRule, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rule file: %w", err)
	}
	return LoadBytes(data, logger)
}

// LoadBytes parses YAML rule data and returns the valid rules plus the number
// of entries skipped.
func LoadBytes(data []byte, logger utils.Logger) ([]PlatformRule, int, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, 0, fmt.Errorf("failed to parse rule file: %w", err)
	}

	var loaded []PlatformRule
	skipped := 0

	for i, entry := range file.Rules {
		rule, err := buildRule(entry)
		if err != nil {
			skipped++
			if logger != nil {
				logger.Warnf("skipping rule entry %d (%s): %v", i, entry.Platform, err)
			}
			continue
		}
		loaded = append(loaded, rule)
	}

	return loaded, skipped, nil
}

// buildRule validates and compiles a declarative entry into a PlatformRule.
func buildRule(entry RuleEntry) (PlatformRule, error) {
	if entry.Platform == "" {
		return PlatformRule{}, fmt.Errorf("platform is required")
	}
	if len(entry.Patterns) == 0 {
		return PlatformRule{}, fmt.Errorf("at least one pattern is required")
	}

	patterns := make([]*regexp.Regexp, 0, len(entry.Patterns))
	for _, raw := range entry.Patterns {
		compiled, err := regexp.Compile(raw)
		if err != nil {
			return PlatformRule{}, fmt.Errorf("invalid pattern %q: %w", raw, err)
		}
		patterns = append(patterns, compiled)
	}

	contentType := types.ContentType(entry.ContentType)
	if entry.ContentType == "" {
		contentType = types.ContentTypeGeneric
	} else if !contentType.IsValid() {
		return PlatformRule{}, fmt.Errorf("invalid content type %q", entry.ContentType)
	}

	confidence := entry.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultRuleConfidence
	}

	enabled := true
	if entry.Enabled != nil {
		enabled = *entry.Enabled
	}

	return PlatformRule{
		Platform:    types.Platform(entry.Platform),
		Patterns:    patterns,
		ContentType: contentType,
		Priority:    entry.Priority,
		Confidence:  confidence,
		Enabled:     enabled,
		Description: entry.Description,
	}, nil
}
