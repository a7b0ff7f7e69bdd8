// pkg/types/types.go
package types

import (
	"time"
)

// Platform represents the content source a URL belongs to
type Platform string

const (
	PlatformYouTube       Platform = "youtube"
	PlatformVimeo         Platform = "vimeo"
	PlatformTwitter       Platform = "twitter"
	PlatformReddit        Platform = "reddit"
	PlatformGitHub        Platform = "github"
	PlatformMedium        Platform = "medium"
	PlatformStackOverflow Platform = "stackoverflow"
	PlatformInstagram     Platform = "instagram"
	PlatformTikTok        Platform = "tiktok"
	PlatformDevTo         Platform = "devto"
	PlatformGeneric       Platform = "generic"
)

// ValidPlatforms returns all valid platform values
func ValidPlatforms() []Platform {
	return []Platform{
		PlatformYouTube, PlatformVimeo, PlatformTwitter, PlatformReddit,
		PlatformGitHub, PlatformMedium, PlatformStackOverflow,
		PlatformInstagram, PlatformTikTok, PlatformDevTo, PlatformGeneric,
	}
}

// IsValid checks if the platform is a known value
func (p Platform) IsValid() bool {
	for _, valid := range ValidPlatforms() {
		if p == valid {
			return true
		}
	}
	return false
}

// ContentType represents the kind of content a URL points to
type ContentType string

const (
	ContentTypeArticle       ContentType = "article"
	ContentTypeVideo         ContentType = "video"
	ContentTypePost          ContentType = "post"
	ContentTypeRepository    ContentType = "repository"
	ContentTypeDocumentation ContentType = "documentation"
	ContentTypeDiscussion    ContentType = "discussion"
	ContentTypeGallery       ContentType = "gallery"
	ContentTypeGeneric       ContentType = "generic"
)

// ValidContentTypes returns all valid content type values
func ValidContentTypes() []ContentType {
	return []ContentType{
		ContentTypeArticle, ContentTypeVideo, ContentTypePost,
		ContentTypeRepository, ContentTypeDocumentation,
		ContentTypeDiscussion, ContentTypeGallery, ContentTypeGeneric,
	}
}

// IsValid checks if the content type is a known value
func (ct ContentType) IsValid() bool {
	for _, valid := range ValidContentTypes() {
		if ct == valid {
			return true
		}
	}
	return false
}

// ProcessingStrategy represents the recommended downstream handling for content
type ProcessingStrategy string

const (
	StrategyClip       ProcessingStrategy = "clip"
	StrategyWatchLater ProcessingStrategy = "watch-later"
	StrategyBookmark   ProcessingStrategy = "bookmark"
	StrategyIgnore     ProcessingStrategy = "ignore"
)

// ValidStrategies returns all valid processing strategy values
func ValidStrategies() []ProcessingStrategy {
	return []ProcessingStrategy{
		StrategyClip, StrategyWatchLater, StrategyBookmark, StrategyIgnore,
	}
}

// IsValid checks if the strategy is a known value
func (s ProcessingStrategy) IsValid() bool {
	for _, valid := range ValidStrategies() {
		if s == valid {
			return true
		}
	}
	return false
}

// MetadataSource identifies which extraction step produced a metadata record
type MetadataSource string

const (
	SourcePlatformAPI MetadataSource = "platform-api"
	SourceJSONLD      MetadataSource = "json-ld"
	SourceMetaTags    MetadataSource = "meta-tags"
	SourceURLFallback MetadataSource = "url-fallback"
)

// PlatformMetadata holds metadata extracted for a URL. All fields are optional;
// pointer fields distinguish "absent" from a zero value (duration 0 is not the
// same as unknown duration).
type PlatformMetadata struct {
	PlatformID   string     `json:"platform_id,omitempty"`
	Title        string     `json:"title,omitempty"`
	Description  string     `json:"description,omitempty"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	Duration     *int       `json:"duration,omitempty"` // seconds
	Author       string     `json:"author,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	ViewCount    *int64     `json:"view_count,omitempty"`
	LikeCount    *int64     `json:"like_count,omitempty"`
	CommentCount *int64     `json:"comment_count,omitempty"`
	WordCount    *int       `json:"word_count,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Language     string     `json:"language,omitempty"`
	IsLive       bool       `json:"is_live,omitempty"`
	IsPremium    bool       `json:"is_premium,omitempty"`

	// Provenance
	Source     MetadataSource         `json:"source"`
	Confidence float64                `json:"confidence"`
	Raw        map[string]interface{} `json:"raw,omitempty"`
}

// Clone returns a deep copy of the metadata record
func (m *PlatformMetadata) Clone() *PlatformMetadata {
	if m == nil {
		return nil
	}
	clone := *m
	if m.Duration != nil {
		d := *m.Duration
		clone.Duration = &d
	}
	if m.PublishedAt != nil {
		t := *m.PublishedAt
		clone.PublishedAt = &t
	}
	if m.ViewCount != nil {
		v := *m.ViewCount
		clone.ViewCount = &v
	}
	if m.LikeCount != nil {
		v := *m.LikeCount
		clone.LikeCount = &v
	}
	if m.CommentCount != nil {
		v := *m.CommentCount
		clone.CommentCount = &v
	}
	if m.WordCount != nil {
		w := *m.WordCount
		clone.WordCount = &w
	}
	if m.Tags != nil {
		clone.Tags = make([]string, len(m.Tags))
		copy(clone.Tags, m.Tags)
	}
	if m.Raw != nil {
		clone.Raw = make(map[string]interface{}, len(m.Raw))
		for k, v := range m.Raw {
			clone.Raw[k] = v
		}
	}
	return &clone
}

// DetectionResult is the outcome of detecting a single URL. It is a value
// type: callers receive copies and may mutate them freely.
type DetectionResult struct {
	URL                string             `json:"url"`
	NormalizedURL      string             `json:"normalized_url"`
	Platform           Platform           `json:"platform"`
	ContentType        ContentType        `json:"content_type"`
	Confidence         float64            `json:"confidence"`
	MatchedPattern     string             `json:"matched_pattern,omitempty"`
	Metadata           *PlatformMetadata  `json:"metadata,omitempty"`
	ProcessingStrategy ProcessingStrategy `json:"processing_strategy,omitempty"`
	Error              string             `json:"error,omitempty"`
	Warnings           []string           `json:"warnings,omitempty"`
	DetectedAt         time.Time          `json:"detected_at"`
	FromCache          bool               `json:"from_cache,omitempty"`
}

// Clone returns a deep copy of the result so cached state cannot be corrupted
// by caller mutation
func (r *DetectionResult) Clone() *DetectionResult {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Metadata = r.Metadata.Clone()
	if r.Warnings != nil {
		clone.Warnings = make([]string, len(r.Warnings))
		copy(clone.Warnings, r.Warnings)
	}
	return &clone
}

// MatchResult is the outcome of matching a normalized URL against the rule set
type MatchResult struct {
	Platform       Platform    `json:"platform"`
	ContentType    ContentType `json:"content_type"`
	Confidence     float64     `json:"confidence"`
	MatchedPattern string      `json:"matched_pattern,omitempty"`
	ExtractedID    string      `json:"extracted_id,omitempty"`
}

// Decision is the detailed outcome of a strategy decision
type Decision struct {
	Strategy    ProcessingStrategy  `json:"strategy"`
	Confidence  float64             `json:"confidence"`
	Reasoning   string              `json:"reasoning"`
	Alternative *ProcessingStrategy `json:"alternative,omitempty"`
	// AlternativeShare is the vote share backing the learned alternative
	AlternativeShare float64 `json:"alternative_share,omitempty"`
}

// DecisionContext carries the situational signals context rules evaluate
type DecisionContext struct {
	DurationSeconds   *int     `json:"duration_seconds,omitempty"`
	WordCount         *int     `json:"word_count,omitempty"`
	PayloadSizeBytes  *int64   `json:"payload_size_bytes,omitempty"`
	QueueDepth        *int     `json:"queue_depth,omitempty"`
	AvailableStorage  *float64 `json:"available_storage,omitempty"` // fraction in [0,1]
	UserRequestedType string   `json:"user_requested_type,omitempty"`
}

// CacheStats reports cache store counters. Hits and misses are monotonic and
// reset only by Clear.
type CacheStats struct {
	Size           int     `json:"size"`
	MaxSize        int     `json:"max_size"`
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	HitRate        float64 `json:"hit_rate"`
	Evictions      int64   `json:"evictions"`
	MemoryEstimate int64   `json:"memory_estimate"`
}

// Preferences are the caller-tunable knobs of the detection engine
type Preferences struct {
	DefaultStrategies map[ContentType]ProcessingStrategy `json:"default_strategies,omitempty" yaml:"default_strategies,omitempty"`
	LearningEnabled   *bool                              `json:"learning_enabled,omitempty" yaml:"learning_enabled,omitempty"`
	CacheTTL          *time.Duration                     `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`
	BatchWindowSize   *int                               `json:"batch_window_size,omitempty" yaml:"batch_window_size,omitempty"`
	ExtractionTimeout *time.Duration                     `json:"extraction_timeout,omitempty" yaml:"extraction_timeout,omitempty"`
}
