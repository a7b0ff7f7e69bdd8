// internal/rules/rules.go
package rules

import (
	"regexp"

	"github.com/clipsense/clipsense/pkg/types"
)

// Confidence constants for rule matching
const (
	// DefaultRuleConfidence applies when a rule does not declare its own.
	DefaultRuleConfidence = 0.9

	// GenericConfidence is reported when no rule matches.
	GenericConfidence = 0.1
)

// PlatformRule associates URL patterns with a platform. Rules are immutable
// once registered; the matcher owns the active set.
type PlatformRule struct {
	Platform    types.Platform
	Patterns    []*regexp.Regexp
	ContentType types.ContentType
	Priority    int
	Confidence  float64
	Enabled     bool
	Description string
}

// idPatterns extract the platform-local identifier from a matched URL. The
// first capture group of the first matching pattern wins. Extraction is
// best-effort: a failed extraction only omits the ID.
var idPatterns = map[types.Platform][]*regexp.Regexp{
	types.PlatformYouTube: {
		regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{6,})`),
		regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
		regexp.MustCompile(`/(?:shorts|embed|live)/([A-Za-z0-9_-]{6,})`),
	},
	types.PlatformVimeo: {
		regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`),
	},
	types.PlatformTwitter: {
		regexp.MustCompile(`/status(?:es)?/(\d+)`),
	},
	types.PlatformReddit: {
		regexp.MustCompile(`/comments/([a-z0-9]+)`),
	},
	types.PlatformGitHub: {
		regexp.MustCompile(`github\.com/([^/]+/[^/?#]+)`),
	},
	types.PlatformMedium: {
		regexp.MustCompile(`-([a-f0-9]{8,})$`),
	},
	types.PlatformStackOverflow: {
		regexp.MustCompile(`/questions/(\d+)`),
	},
	types.PlatformInstagram: {
		regexp.MustCompile(`/(?:p|reel|tv)/([A-Za-z0-9_-]+)`),
	},
	types.PlatformTikTok: {
		regexp.MustCompile(`/video/(\d+)`),
	},
	types.PlatformDevTo: {
		regexp.MustCompile(`dev\.to/([^/]+/[^/?#]+)`),
	},
}

// ExtractID pulls the platform-local identifier out of a URL, returning an
// empty string when no pattern applies.
func ExtractID(platform types.Platform, url string) string {
	for _, pattern := range idPatterns[platform] {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// DefaultRules returns the built-in platform rule set. Registering additional
// rules, not editing this table, is how new platforms are added.
func DefaultRules() []PlatformRule {
	return []PlatformRule{
		{
			Platform: types.PlatformYouTube,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.|m\.)?youtube\.com/(watch|shorts|embed|live|playlist)`),
				regexp.MustCompile(`^https?://youtu\.be/`),
			},
			ContentType: types.ContentTypeVideo,
			Priority:    100,
			Confidence:  0.95,
			Enabled:     true,
			Description: "YouTube videos, shorts and playlists",
		},
		{
			Platform: types.PlatformVimeo,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.)?vimeo\.com/`),
			},
			ContentType: types.ContentTypeVideo,
			Priority:    90,
			Confidence:  0.95,
			Enabled:     true,
			Description: "Vimeo videos",
		},
		{
			Platform: types.PlatformTwitter,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.|mobile\.)?(twitter\.com|x\.com)/`),
			},
			ContentType: types.ContentTypePost,
			Priority:    90,
			Confidence:  0.95,
			Enabled:     true,
			Description: "Twitter/X posts",
		},
		{
			Platform: types.PlatformReddit,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.|old\.|new\.)?reddit\.com/`),
				regexp.MustCompile(`^https?://redd\.it/`),
			},
			ContentType: types.ContentTypeDiscussion,
			Priority:    85,
			Confidence:  0.95,
			Enabled:     true,
			Description: "Reddit threads",
		},
		{
			Platform: types.PlatformGitHub,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.)?github\.com/[^/]+/[^/]+`),
				regexp.MustCompile(`^https?://gist\.github\.com/`),
			},
			ContentType: types.ContentTypeRepository,
			Priority:    85,
			Confidence:  0.95,
			Enabled:     true,
			Description: "GitHub repositories and gists",
		},
		{
			Platform: types.PlatformMedium,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.)?medium\.com/`),
				regexp.MustCompile(`^https?://[a-z0-9-]+\.medium\.com/`),
			},
			ContentType: types.ContentTypeArticle,
			Priority:    80,
			Confidence:  0.9,
			Enabled:     true,
			Description: "Medium articles",
		},
		{
			Platform: types.PlatformStackOverflow,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.)?stackoverflow\.com/questions/`),
				regexp.MustCompile(`^https?://[a-z]+\.stackexchange\.com/questions/`),
			},
			ContentType: types.ContentTypeDiscussion,
			Priority:    80,
			Confidence:  0.95,
			Enabled:     true,
			Description: "Stack Overflow / Stack Exchange questions",
		},
		{
			Platform: types.PlatformInstagram,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.)?instagram\.com/`),
			},
			ContentType: types.ContentTypeGallery,
			Priority:    75,
			Confidence:  0.9,
			Enabled:     true,
			Description: "Instagram posts and reels",
		},
		{
			Platform: types.PlatformTikTok,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.|vm\.)?tiktok\.com/`),
			},
			ContentType: types.ContentTypeVideo,
			Priority:    75,
			Confidence:  0.9,
			Enabled:     true,
			Description: "TikTok videos",
		},
		{
			Platform: types.PlatformDevTo,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`^https?://(www\.)?dev\.to/[^/]+/`),
			},
			ContentType: types.ContentTypeArticle,
			Priority:    70,
			Confidence:  0.9,
			Enabled:     true,
			Description: "dev.to articles",
		},
	}
}
