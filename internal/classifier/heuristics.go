// internal/classifier/heuristics.go
package classifier

import (
	"regexp"
	"strings"

	"github.com/clipsense/clipsense/internal/pipeline"
	"github.com/clipsense/clipsense/pkg/types"
)

// Heuristic confidence constants
const (
	durationConfidence  = 0.85
	wordCountConfidence = 0.75
	keywordConfidence   = 0.7
	pathConfidence      = 0.65
	genericConfidence   = 0.3

	// articleWordThreshold is the word count above which content reads as
	// an article.
	articleWordThreshold = 300
)

// heuristic is one cross-platform check. Heuristics run in declaration
// order; the first to fire wins.
type heuristic struct {
	name  string
	apply func(url string, meta *types.PlatformMetadata) (types.ContentType, float64, bool)
}

// keywordGroups map title/description keywords to content types, checked in
// order.
var keywordGroups = []struct {
	keywords []string
	result   types.ContentType
}{
	{[]string{"blog", "article", "post"}, types.ContentTypeArticle},
	{[]string{"repo", "repository", "source code", "code"}, types.ContentTypeRepository},
	{[]string{"documentation", "docs", "reference manual"}, types.ContentTypeDocumentation},
	{[]string{"discussion", "question", "forum", "thread"}, types.ContentTypeDiscussion},
	{[]string{"gallery", "photo", "album", "images"}, types.ContentTypeGallery},
}

// pathPatterns map URL path shapes to content types, checked in order.
var pathPatterns = []struct {
	pattern *regexp.Regexp
	result  types.ContentType
}{
	{regexp.MustCompile(`/(watch|video|videos|v)/`), types.ContentTypeVideo},
	{regexp.MustCompile(`/(post|posts|blog|article|articles|story|stories)/`), types.ContentTypeArticle},
	{regexp.MustCompile(`/(docs|documentation|manual|guide)/`), types.ContentTypeDocumentation},
	{regexp.MustCompile(`/(gallery|galleries|photos|album)/`), types.ContentTypeGallery},
	{regexp.MustCompile(`/(forum|discussion|questions|thread)/`), types.ContentTypeDiscussion},
}

// crossPlatformHeuristics is the fixed evaluation order: media signals
// first, then text volume, then keywords, then URL shape.
var crossPlatformHeuristics = []heuristic{
	{
		name: "duration",
		apply: func(url string, meta *types.PlatformMetadata) (types.ContentType, float64, bool) {
			if meta != nil && meta.Duration != nil {
				return types.ContentTypeVideo, durationConfidence, true
			}
			return "", 0, false
		},
	},
	{
		name: "word-count",
		apply: func(url string, meta *types.PlatformMetadata) (types.ContentType, float64, bool) {
			if meta == nil {
				return "", 0, false
			}
			words := 0
			if meta.WordCount != nil {
				words = *meta.WordCount
			} else {
				words = pipeline.CountWords(meta.Description)
			}
			if words >= articleWordThreshold {
				return types.ContentTypeArticle, wordCountConfidence, true
			}
			return "", 0, false
		},
	},
	{
		name: "keywords",
		apply: func(url string, meta *types.PlatformMetadata) (types.ContentType, float64, bool) {
			if meta == nil {
				return "", 0, false
			}
			haystack := strings.ToLower(meta.Title + " " + meta.Description)
			if strings.TrimSpace(haystack) == "" {
				return "", 0, false
			}
			for _, group := range keywordGroups {
				for _, keyword := range group.keywords {
					if strings.Contains(haystack, keyword) {
						return group.result, keywordConfidence, true
					}
				}
			}
			return "", 0, false
		},
	},
	{
		name: "url-path",
		apply: func(url string, meta *types.PlatformMetadata) (types.ContentType, float64, bool) {
			lower := strings.ToLower(url)
			for _, entry := range pathPatterns {
				if entry.pattern.MatchString(lower) {
					return entry.result, pathConfidence, true
				}
			}
			return "", 0, false
		},
	},
}

// applyHeuristics runs the cross-platform checks in order.
func applyHeuristics(url string, meta *types.PlatformMetadata) (types.ContentType, float64, bool) {
	for _, h := range crossPlatformHeuristics {
		if result, confidence, ok := h.apply(url, meta); ok {
			return result, confidence, ok
		}
	}
	return "", 0, false
}
