// internal/metadata/api.go
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/clipsense/clipsense/internal/pipeline"
	"github.com/clipsense/clipsense/pkg/types"
)

// API step rate limiting defaults: outbound structured-API calls share one
// limiter so bulk detection cannot hammer provider endpoints.
const (
	DefaultAPIRate  = rate.Limit(5)
	DefaultAPIBurst = 5
)

// APIClient is the narrow read-only boundary to a platform's native API.
// Implementations fetch a platform-native record by platform-local ID.
type APIClient interface {
	FetchByID(ctx context.Context, id string) (map[string]interface{}, error)
}

// oembedEndpoints maps platforms to their public oEmbed endpoints, used when
// no dedicated APIClient is registered. Absence of an endpoint is not an
// error; the chain simply skips this step.
var oembedEndpoints = map[types.Platform]string{
	types.PlatformYouTube: "https://www.youtube.com/oembed",
	types.PlatformVimeo:   "https://vimeo.com/api/oembed.json",
	types.PlatformTikTok:  "https://www.tiktok.com/oembed",
	types.PlatformTwitter: "https://publish.twitter.com/oembed",
}

// platformAPIStrategy is the highest-confidence extraction step: a dedicated
// APIClient when one is registered for the platform, otherwise the platform's
// public oEmbed endpoint.
type platformAPIStrategy struct {
	fetcher   *Fetcher
	clients   map[types.Platform]APIClient
	endpoints map[types.Platform]string
	limiter   *rate.Limiter
}

func newPlatformAPIStrategy(fetcher *Fetcher, clients map[types.Platform]APIClient) *platformAPIStrategy {
	return &platformAPIStrategy{
		fetcher:   fetcher,
		clients:   clients,
		endpoints: oembedEndpoints,
		limiter:   rate.NewLimiter(DefaultAPIRate, DefaultAPIBurst),
	}
}

func (s *platformAPIStrategy) Name() types.MetadataSource { return types.SourcePlatformAPI }
func (s *platformAPIStrategy) Confidence() float64        { return 0.95 }

func (s *platformAPIStrategy) Extract(ctx context.Context, target *Target) (*types.PlatformMetadata, error) {
	client, hasClient := s.clients[target.Platform]
	endpoint, hasEndpoint := s.endpoints[target.Platform]

	if !hasClient && !hasEndpoint {
		return nil, errStepSkipped
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	if hasClient {
		if target.PlatformID == "" {
			return nil, fmt.Errorf("no platform ID available for API lookup")
		}
		record, err := client.FetchByID(ctx, target.PlatformID)
		if err != nil {
			return nil, fmt.Errorf("platform API call failed: %w", err)
		}
		return s.buildMetadata(target, record)
	}

	record, err := s.fetchOEmbed(ctx, endpoint, target.URL)
	if err != nil {
		return nil, err
	}
	return s.buildMetadata(target, record)
}

// fetchOEmbed calls a public oEmbed endpoint for the target URL.
func (s *platformAPIStrategy) fetchOEmbed(ctx context.Context, endpoint, targetURL string) (map[string]interface{}, error) {
	query := url.Values{}
	query.Set("url", targetURL)
	query.Set("format", "json")

	body, err := s.fetcher.Get(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("oEmbed request failed: %w", err)
	}

	var record map[string]interface{}
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("unexpected oEmbed payload: %w", err)
	}
	return record, nil
}

// buildMetadata maps a loosely-typed API record into a metadata value.
func (s *platformAPIStrategy) buildMetadata(target *Target, record map[string]interface{}) (*types.PlatformMetadata, error) {
	meta := &types.PlatformMetadata{
		PlatformID: target.PlatformID,
		Source:     s.Name(),
		Confidence: s.Confidence(),
		Raw:        map[string]interface{}{},
	}

	meta.Title = pipeline.SanitizeTitle(stringField(record, "title", "name"))
	meta.Description = pipeline.SanitizeDescription(stringField(record, "description"))
	meta.Author = pipeline.SanitizeTitle(stringField(record, "author_name", "author"))
	meta.Thumbnail = stringField(record, "thumbnail_url", "thumbnail")

	if d, ok := intField(record, "duration"); ok {
		meta.Duration = &d
	}
	if v, ok := int64Field(record, "view_count"); ok {
		meta.ViewCount = &v
	}
	if v, ok := int64Field(record, "like_count"); ok {
		meta.LikeCount = &v
	}
	if v, ok := int64Field(record, "comment_count"); ok {
		meta.CommentCount = &v
	}
	if live, ok := record["is_live"].(bool); ok {
		meta.IsLive = live
	}
	if provider := stringField(record, "provider_name"); provider != "" {
		meta.Raw["provider"] = provider
	}

	if meta.Title == "" {
		return nil, fmt.Errorf("API record carried no title")
	}

	return meta, nil
}

func int64Field(node map[string]interface{}, key string) (int64, bool) {
	if v, ok := node[key].(float64); ok {
		return int64(v), true
	}
	return 0, false
}
