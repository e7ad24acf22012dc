package taxsync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// =============================================================================
// FETCHER - bounded-timeout HTTP with charset normalization
// =============================================================================

// DefaultFetchTimeout bounds each source attempt. There is no retry within
// a source; the ranked fallback chain is the only retry mechanism.
const DefaultFetchTimeout = 30 * time.Second

const maxBodyBytes = 8 << 20 // 8 MiB, official pages are far smaller

// Fetcher performs the blocking GETs for the source chain. Requests run
// sequentially by design so fallback ordering stays deterministic.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// GetText fetches a URL and returns its body as UTF-8 text. Legacy
// ISO-8859-1 responses (still common on official portals) are decoded
// before token extraction.
func (f *Fetcher) GetText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html, text/plain, application/pdf")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("GET %s: read body: %w", url, err)
	}

	if isLatin1(resp.Header.Get("Content-Type")) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
		if err == nil {
			body = decoded
		}
	}
	return string(body), nil
}

func isLatin1(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "iso-8859-1") || strings.Contains(ct, "latin-1") || strings.Contains(ct, "latin1")
}
