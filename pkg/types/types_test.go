// pkg/types/types_test.go
package types

import (
	"testing"
	"time"
)

func TestPlatformIsValid(t *testing.T) {
	for _, p := range ValidPlatforms() {
		if !p.IsValid() {
			t.Errorf("platform %q should be valid", p)
		}
	}

	if Platform("myspace").IsValid() {
		t.Error("unknown platform should not be valid")
	}
}

func TestContentTypeIsValid(t *testing.T) {
	for _, ct := range ValidContentTypes() {
		if !ct.IsValid() {
			t.Errorf("content type %q should be valid", ct)
		}
	}

	if ContentType("podcast").IsValid() {
		t.Error("unknown content type should not be valid")
	}
}

func TestStrategyIsValid(t *testing.T) {
	for _, s := range ValidStrategies() {
		if !s.IsValid() {
			t.Errorf("strategy %q should be valid", s)
		}
	}

	if ProcessingStrategy("print").IsValid() {
		t.Error("unknown strategy should not be valid")
	}
}

func TestDetectionResultClone(t *testing.T) {
	duration := 212
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	original := &DetectionResult{
		URL:         "https://www.youtube.com/watch?v=abc",
		Platform:    PlatformYouTube,
		ContentType: ContentTypeVideo,
		Confidence:  0.95,
		Warnings:    []string{"api skipped"},
		Metadata: &PlatformMetadata{
			Title:       "Some Video",
			Duration:    &duration,
			PublishedAt: &published,
			Tags:        []string{"music"},
			Raw:         map[string]interface{}{"source_step": "json-ld"},
		},
	}

	clone := original.Clone()

	clone.Warnings[0] = "mutated"
	*clone.Metadata.Duration = 999
	clone.Metadata.Tags[0] = "mutated"
	clone.Metadata.Raw["source_step"] = "mutated"

	if original.Warnings[0] != "api skipped" {
		t.Error("clone shares warnings slice with original")
	}
	if *original.Metadata.Duration != 212 {
		t.Error("clone shares duration pointer with original")
	}
	if original.Metadata.Tags[0] != "music" {
		t.Error("clone shares tags slice with original")
	}
	if original.Metadata.Raw["source_step"] != "json-ld" {
		t.Error("clone shares raw map with original")
	}
}

func TestCloneNil(t *testing.T) {
	var r *DetectionResult
	if r.Clone() != nil {
		t.Error("cloning nil result should return nil")
	}

	var m *PlatformMetadata
	if m.Clone() != nil {
		t.Error("cloning nil metadata should return nil")
	}
}
