package mawaqit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mawaqitics/internal/config"
)

// confDataPattern extracts the embedded configuration object from the
// mosque page's inline script.
var confDataPattern = regexp.MustCompile(`(?s)var\s+confData\s*=\s*(\{.*?\});`)

// Client fetches mosque pages and extracts their confData. Results are
// memoized per mosque for the lifetime of the client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retries    int
	retryDelay time.Duration
	headless   bool

	mu   sync.Mutex
	memo map[string]*ConfData
}

// NewClient builds a client from the Mawaqit configuration section.
func NewClient(cfg config.MawaqitConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		retries:    cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		headless:   cfg.HeadlessFallback,
	}
}

// ClearMemo drops all memoized confData.
func (c *Client) ClearMemo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memo = nil
}

// FetchConfData retrieves and parses confData for one mosque, retrying
// transient failures. A 404 is terminal and returns NotFoundError without
// retrying.
func (c *Client) FetchConfData(ctx context.Context, mosqueID string) (*ConfData, error) {
	c.mu.Lock()
	if cached, ok := c.memo[mosqueID]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s/%s", c.baseURL, mosqueID)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			log.Warn().Str("mosque", mosqueID).Int("attempt", attempt).Err(lastErr).Msg("retrying mawaqit fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		conf, err := c.fetchOnce(ctx, url, mosqueID)
		if err == nil {
			c.mu.Lock()
			if c.memo == nil {
				c.memo = make(map[string]*ConfData)
			}
			c.memo[mosqueID] = conf
			c.mu.Unlock()
			return conf, nil
		}

		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetching mawaqit data for %s: %w", mosqueID, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url, mosqueID string) (*ConfData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{MosqueID: mosqueID}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	conf, err := extractConfData(body, mosqueID)
	if err != nil && c.headless {
		log.Info().Str("mosque", mosqueID).Msg("static page had no confData, trying headless fetch")
		rendered, berr := c.fetchRendered(ctx, url)
		if berr != nil {
			log.Warn().Err(berr).Str("mosque", mosqueID).Msg("headless fetch failed")
			return nil, err
		}
		return extractConfData(rendered, mosqueID)
	}
	return conf, err
}

// extractConfData pulls the confData JSON object out of raw page HTML.
func extractConfData(page []byte, mosqueID string) (*ConfData, error) {
	m := confDataPattern.FindSubmatch(page)
	if m == nil {
		return nil, &UpstreamDataError{MosqueID: mosqueID, Reason: "no confData script in page"}
	}

	var conf ConfData
	if err := json.Unmarshal(m[1], &conf); err != nil {
		return nil, &UpstreamDataError{MosqueID: mosqueID, Reason: fmt.Sprintf("confData is not valid JSON: %v", err)}
	}
	return &conf, nil
}
