// internal/metadata/fallback.go
package metadata

import (
	"context"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/clipsense/clipsense/internal/pipeline"
	"github.com/clipsense/clipsense/pkg/types"
)

// urlFallbackStrategy derives a title from the URL path. It is the terminal
// step of every chain and never fails, so extraction always produces a
// minimal record.
type urlFallbackStrategy struct {
	titleCaser cases.Caser
}

func newURLFallbackStrategy() *urlFallbackStrategy {
	return &urlFallbackStrategy{
		titleCaser: cases.Title(language.English),
	}
}

func (s *urlFallbackStrategy) Name() types.MetadataSource { return types.SourceURLFallback }
func (s *urlFallbackStrategy) Confidence() float64        { return 0.3 }

func (s *urlFallbackStrategy) Extract(ctx context.Context, target *Target) (*types.PlatformMetadata, error) {
	return &types.PlatformMetadata{
		PlatformID: target.PlatformID,
		Title:      s.titleFromURL(target.URL),
		Source:     s.Name(),
		Confidence: s.Confidence(),
		Raw:        map[string]interface{}{},
	}, nil
}

// titleFromURL turns the last meaningful path segment into a readable title,
// falling back to the host when the path is empty.
func (s *urlFallbackStrategy) titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return pipeline.Truncate(strings.TrimSpace(raw), pipeline.MaxTitleLength)
	}

	segment := lastPathSegment(u.Path)
	if segment == "" {
		return u.Host
	}

	// Drop a file extension, de-slugify and title-case
	segment = strings.TrimSuffix(segment, path.Ext(segment))
	segment = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(segment)
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return u.Host
	}

	return pipeline.SanitizeTitle(s.titleCaser.String(segment))
}

// lastPathSegment returns the final non-empty path segment.
func lastPathSegment(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}
