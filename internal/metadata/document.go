// internal/metadata/document.go
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/clipsense/clipsense/internal/pipeline"
	"github.com/clipsense/clipsense/pkg/types"
)

// jsonLDStrategy extracts metadata from embedded JSON-LD structured data.
type jsonLDStrategy struct{}

func (s *jsonLDStrategy) Name() types.MetadataSource { return types.SourceJSONLD }
func (s *jsonLDStrategy) Confidence() float64        { return 0.85 }

func (s *jsonLDStrategy) Extract(ctx context.Context, target *Target) (*types.PlatformMetadata, error) {
	doc, err := target.Document(ctx)
	if err != nil {
		return nil, err
	}

	var node map[string]interface{}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		candidate := findRelevantNode(sel.Text())
		if candidate != nil {
			node = candidate
			return false
		}
		return true
	})

	if node == nil {
		return nil, fmt.Errorf("no usable JSON-LD node found")
	}

	meta := &types.PlatformMetadata{
		Source:     s.Name(),
		Confidence: s.Confidence(),
		Raw:        map[string]interface{}{"jsonld_type": node["@type"]},
	}

	meta.Title = pipeline.SanitizeTitle(stringField(node, "headline", "name"))
	meta.Description = pipeline.SanitizeDescription(stringField(node, "description"))
	meta.Thumbnail = thumbnailField(node)
	meta.Author = authorField(node)

	if raw := stringField(node, "duration"); raw != "" {
		if seconds, ok := parseISO8601Duration(raw); ok {
			meta.Duration = &seconds
		}
	}
	if raw := stringField(node, "datePublished", "uploadDate"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			meta.PublishedAt = &t
		}
	}
	if wc, ok := intField(node, "wordCount"); ok {
		meta.WordCount = &wc
	}
	if lang := stringField(node, "inLanguage"); lang != "" {
		meta.Language = lang
	}
	if kw := stringField(node, "keywords"); kw != "" {
		meta.Tags = splitKeywords(kw)
	}

	if meta.Title == "" && meta.Description == "" {
		return nil, fmt.Errorf("JSON-LD node carried no usable fields")
	}

	return meta, nil
}

// relevantTypes are the JSON-LD @type values the extractor understands.
var relevantTypes = map[string]bool{
	"Article": true, "NewsArticle": true, "BlogPosting": true,
	"TechArticle": true, "VideoObject": true, "SocialMediaPosting": true,
	"DiscussionForumPosting": true, "ImageGallery": true, "WebPage": true,
	"SoftwareSourceCode": true,
}

// findRelevantNode parses one script block and returns the first node with a
// recognized @type, descending into arrays and @graph containers.
func findRelevantNode(raw string) map[string]interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil
	}
	return searchNode(parsed, 0)
}

func searchNode(v interface{}, depth int) map[string]interface{} {
	if depth > 3 {
		return nil
	}

	switch node := v.(type) {
	case map[string]interface{}:
		if t, _ := node["@type"].(string); relevantTypes[t] {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			return searchNode(graph, depth+1)
		}
	case []interface{}:
		for _, item := range node {
			if found := searchNode(item, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

// metaTagsStrategy extracts metadata from OpenGraph, Twitter card and plain
// meta tags.
type metaTagsStrategy struct{}

func (s *metaTagsStrategy) Name() types.MetadataSource { return types.SourceMetaTags }
func (s *metaTagsStrategy) Confidence() float64        { return 0.65 }

func (s *metaTagsStrategy) Extract(ctx context.Context, target *Target) (*types.PlatformMetadata, error) {
	doc, err := target.Document(ctx)
	if err != nil {
		return nil, err
	}

	meta := &types.PlatformMetadata{
		Source:     s.Name(),
		Confidence: s.Confidence(),
		Raw:        map[string]interface{}{},
	}

	meta.Title = pipeline.SanitizeTitle(firstMetaContent(doc,
		`meta[property="og:title"]`, `meta[name="twitter:title"]`))
	if meta.Title == "" {
		meta.Title = pipeline.SanitizeTitle(doc.Find("title").First().Text())
	}

	meta.Description = pipeline.SanitizeDescription(firstMetaContent(doc,
		`meta[property="og:description"]`, `meta[name="twitter:description"]`, `meta[name="description"]`))
	meta.Thumbnail = firstMetaContent(doc,
		`meta[property="og:image"]`, `meta[name="twitter:image"]`)
	meta.Author = pipeline.SanitizeTitle(firstMetaContent(doc,
		`meta[name="author"]`, `meta[property="article:author"]`))

	if raw := firstMetaContent(doc, `meta[property="og:video:duration"]`, `meta[property="video:duration"]`); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil {
			meta.Duration = &seconds
		}
	}
	if raw := firstMetaContent(doc, `meta[property="article:published_time"]`); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			meta.PublishedAt = &t
		}
	}
	if lang := firstMetaContent(doc, `meta[property="og:locale"]`); lang != "" {
		meta.Language = lang
	} else if lang, ok := doc.Find("html").First().Attr("lang"); ok {
		meta.Language = lang
	}
	if ogType := firstMetaContent(doc, `meta[property="og:type"]`); ogType != "" {
		meta.Raw["og_type"] = ogType
	}
	if kw := firstMetaContent(doc, `meta[name="keywords"]`); kw != "" {
		meta.Tags = splitKeywords(kw)
	}

	if meta.Title == "" && meta.Description == "" {
		return nil, fmt.Errorf("page carried no usable meta tags")
	}

	return meta, nil
}

// firstMetaContent returns the first non-empty content attribute among the
// given selectors.
func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// Shared field helpers for loosely-typed JSON payloads

func stringField(node map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := node[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func intField(node map[string]interface{}, key string) (int, bool) {
	switch v := node[key].(type) {
	case float64:
		return int(v), true
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, true
		}
	}
	return 0, false
}

func thumbnailField(node map[string]interface{}) string {
	switch v := node["image"].(type) {
	case string:
		return v
	case map[string]interface{}:
		return stringField(v, "url")
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
			if m, ok := v[0].(map[string]interface{}); ok {
				return stringField(m, "url")
			}
		}
	}
	return stringField(node, "thumbnailUrl")
}

func authorField(node map[string]interface{}) string {
	switch v := node["author"].(type) {
	case string:
		return pipeline.SanitizeTitle(v)
	case map[string]interface{}:
		return pipeline.SanitizeTitle(stringField(v, "name"))
	case []interface{}:
		if len(v) > 0 {
			if m, ok := v[0].(map[string]interface{}); ok {
				return pipeline.SanitizeTitle(stringField(m, "name"))
			}
		}
	}
	return ""
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

var iso8601DurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// parseISO8601Duration converts a schema.org duration like PT4M13S to
// seconds.
func parseISO8601Duration(raw string) (int, bool) {
	m := iso8601DurationPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}

	days, _ := strconv.Atoi(zeroIfEmpty(m[1]))
	hours, _ := strconv.Atoi(zeroIfEmpty(m[2]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(m[3]))
	seconds, _ := strconv.ParseFloat(zeroIfEmpty(m[4]), 64)

	total := days*86400 + hours*3600 + minutes*60 + int(seconds)
	if total == 0 && m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
		return 0, false
	}
	return total, true
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
