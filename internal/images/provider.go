package images

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Provider looks up an image URL for a search query.
type Provider interface {
	Search(ctx context.Context, query string) (string, error)
}

// resultCache is the slice of the redis cache the client needs.
type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// SearchClient resolves car images through the RapidAPI image search.
// Results are cached so repeated lookups for the same car don't burn
// API quota.
type SearchClient struct {
	apiKey     string
	host       string
	baseURL    string
	httpClient *http.Client
	cache      resultCache
}

func NewSearchClient(apiKey, host string, cache resultCache) *SearchClient {
	return &SearchClient{
		apiKey:  apiKey,
		host:    host,
		baseURL: fmt.Sprintf("https://%s/imagesearch", host),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache,
	}
}

type searchResponse struct {
	Items []struct {
		OriginalImageURL string `json:"originalImageUrl"`
	} `json:"items"`
}

// Search returns the first image hit for the query.
func (c *SearchClient) Search(ctx context.Context, query string) (string, error) {
	cacheKey := "image:" + query

	if c.cache != nil {
		var cached string
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			log.Printf("📦 Cache HIT: image %q", query)
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	q := req.URL.Query()
	q.Set("q", query)
	q.Set("gl", "us")
	q.Set("lr", "lang_en")
	q.Set("num", "1")
	q.Set("start", "0")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call image search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image search returned status %d", resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(data.Items) == 0 {
		return "", fmt.Errorf("no image results for %q", query)
	}

	imageURL := data.Items[0].OriginalImageURL

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, imageURL); err != nil {
			log.Printf("⚠️ Failed to cache image result: %v", err)
		}
	}

	return imageURL, nil
}
