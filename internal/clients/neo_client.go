package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StatusError — не-2xx ответ NeoWs. Fetch-цикл при нём останавливается
// без ретраев, уже собранные записи сохраняются.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("NEO feed returned status %d: %s", e.StatusCode, e.Body)
}

type NEOClient interface {
	FetchFeed(ctx context.Context, startDate, endDate string) (map[string]interface{}, error)
}

type neoClient struct {
	apiKey  string
	feedURL string
	client  *http.Client
}

type NEOConfig struct {
	APIKey  string
	FeedURL string
}

func NewNEOClient(config NEOConfig) NEOClient {
	return &neoClient{
		apiKey:  config.APIKey,
		feedURL: config.FeedURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
	}
}

// FetchFeed запрашивает сближения за окно [startDate, endDate] включительно.
// Даты в формате YYYY-MM-DD.
func (c *neoClient) FetchFeed(ctx context.Context, startDate, endDate string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("start_date", startDate)
	params.Add("end_date", endDate)
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}

	reqURL := c.feedURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "NEO-Tracker/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	return data, nil
}
