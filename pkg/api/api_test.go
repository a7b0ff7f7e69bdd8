// pkg/api/api_test.go
package api

import (
	"context"
	"testing"
	"time"

	"github.com/clipsense/clipsense/pkg/types"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Extraction.StepTimeout = 200 * time.Millisecond
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientDetect(t *testing.T) {
	client := newTestClient(t)

	result := client.Detect(context.Background(), "https://github.com/golang/go")
	if result.Platform != types.PlatformGitHub {
		t.Errorf("expected github, got %s", result.Platform)
	}
	if result.ContentType != types.ContentTypeRepository {
		t.Errorf("expected repository, got %s", result.ContentType)
	}
	if result.ProcessingStrategy != types.StrategyBookmark {
		t.Errorf("expected bookmark, got %s", result.ProcessingStrategy)
	}
}

func TestClientDetectBatch(t *testing.T) {
	client := newTestClient(t)

	urls := []string{
		"https://unknown-blog.example.com/post/a",
		"https://unknown-blog.example.com/post/b",
	}
	results := client.DetectBatch(context.Background(), urls)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, result := range results {
		if result.URL != urls[i] {
			t.Errorf("result %d out of order", i)
		}
	}
}

func TestClientCacheLifecycle(t *testing.T) {
	client := newTestClient(t)

	client.Detect(context.Background(), "https://unknown-blog.example.com/post/a")
	if client.CacheStats().Size != 1 {
		t.Errorf("expected 1 cached entry, got %d", client.CacheStats().Size)
	}

	client.ClearCache()
	if client.CacheStats().Size != 0 {
		t.Error("clear should empty the cache")
	}
}

func TestClientUpdatePreferences(t *testing.T) {
	client := newTestClient(t)

	err := client.UpdatePreferences(types.Preferences{
		DefaultStrategies: map[types.ContentType]types.ProcessingStrategy{
			types.ContentTypeRepository: types.StrategyClip,
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	result := client.Detect(context.Background(), "https://github.com/golang/tools")
	if result.ProcessingStrategy != types.StrategyClip {
		t.Errorf("preference should apply, got %s", result.ProcessingStrategy)
	}
}
