// internal/classifier/platform_rules.go
package classifier

import (
	"regexp"

	"github.com/clipsense/clipsense/pkg/types"
)

// defaultRules returns the built-in platform classification tables. Each
// rule carries its own confidence; the highest-confidence match above the
// classifier threshold wins.
func defaultRules() []Rule {
	return []Rule{
		// YouTube
		{
			Platform:   types.PlatformYouTube,
			URLPattern: regexp.MustCompile(`/(watch|shorts|embed|live)`),
			Result:     types.ContentTypeVideo,
			Confidence: 0.95,
			Priority:   10,
		},
		{
			Platform:   types.PlatformYouTube,
			URLPattern: regexp.MustCompile(`/playlist`),
			Result:     types.ContentTypeVideo,
			Confidence: 0.8,
			Priority:   5,
		},

		// Vimeo
		{
			Platform:   types.PlatformVimeo,
			URLPattern: regexp.MustCompile(`vimeo\.com/(video/)?\d+`),
			Result:     types.ContentTypeVideo,
			Confidence: 0.95,
			Priority:   10,
		},

		// Twitter/X
		{
			Platform:   types.PlatformTwitter,
			URLPattern: regexp.MustCompile(`/status(es)?/\d+`),
			Result:     types.ContentTypePost,
			Confidence: 0.95,
			Priority:   10,
		},

		// Reddit
		{
			Platform:   types.PlatformReddit,
			URLPattern: regexp.MustCompile(`/comments/`),
			Result:     types.ContentTypeDiscussion,
			Confidence: 0.95,
			Priority:   10,
		},
		{
			Platform:   types.PlatformReddit,
			URLPattern: regexp.MustCompile(`/gallery/`),
			Result:     types.ContentTypeGallery,
			Confidence: 0.9,
			Priority:   8,
		},

		// GitHub
		{
			Platform:   types.PlatformGitHub,
			URLPattern: regexp.MustCompile(`/(wiki|blob/[^/]+/docs?/|tree/[^/]+/docs?/)`),
			Result:     types.ContentTypeDocumentation,
			Confidence: 0.85,
			Priority:   10,
		},
		{
			Platform:   types.PlatformGitHub,
			URLPattern: regexp.MustCompile(`/(issues|discussions|pull)/`),
			Result:     types.ContentTypeDiscussion,
			Confidence: 0.9,
			Priority:   8,
		},
		{
			Platform:   types.PlatformGitHub,
			URLPattern: regexp.MustCompile(`github\.com/[^/]+/[^/?#]+`),
			Result:     types.ContentTypeRepository,
			Confidence: 0.85,
			Priority:   5,
		},

		// Medium
		{
			Platform:   types.PlatformMedium,
			URLPattern: regexp.MustCompile(`medium\.com/`),
			Result:     types.ContentTypeArticle,
			Confidence: 0.9,
			Priority:   5,
		},

		// Stack Overflow
		{
			Platform:   types.PlatformStackOverflow,
			URLPattern: regexp.MustCompile(`/questions/\d+`),
			Result:     types.ContentTypeDiscussion,
			Confidence: 0.95,
			Priority:   10,
		},

		// Instagram
		{
			Platform:   types.PlatformInstagram,
			URLPattern: regexp.MustCompile(`/(reel|tv)/`),
			Result:     types.ContentTypeVideo,
			Confidence: 0.9,
			Priority:   10,
		},
		{
			Platform:   types.PlatformInstagram,
			URLPattern: regexp.MustCompile(`/p/`),
			Result:     types.ContentTypeGallery,
			Confidence: 0.85,
			Priority:   5,
		},

		// TikTok
		{
			Platform:   types.PlatformTikTok,
			URLPattern: regexp.MustCompile(`tiktok\.com/`),
			Result:     types.ContentTypeVideo,
			Confidence: 0.9,
			Priority:   5,
		},

		// dev.to
		{
			Platform:   types.PlatformDevTo,
			URLPattern: regexp.MustCompile(`dev\.to/[^/]+/`),
			Result:     types.ContentTypeArticle,
			Confidence: 0.9,
			Priority:   5,
		},
	}
}
