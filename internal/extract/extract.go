// Package extract acquires raw article data from a remote source. Two
// strategies exist: a deterministic HTML parser and an LLM-guided one. Both
// are invoked by the acquisition worker, which wraps them in retry handling.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mara/pkg/blackboard"
)

// Extractor fetches the source and returns the articles found there.
type Extractor interface {
	Extract(ctx context.Context, sourceURL string) (*blackboard.RawData, error)
}

const (
	userAgent    = "Mozilla/5.0 (compatible; mara/1.0)"
	maxBodyBytes = 2 << 20 // 2MB
)

// fetch retrieves the page body, honoring ctx for the whole round trip.
func fetch(ctx context.Context, client *http.Client, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, sourceURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func defaultClient() *http.Client {
	// Per-call deadlines come from the caller's context; this is a safety
	// net for clients used outside retry handling.
	return &http.Client{Timeout: 2 * time.Minute}
}
