package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/diamonddraft/diamond-draft/internal/store"
)

type Client struct {
	HTTP         *http.Client
	Store        *store.JSONStore
	BaseURL      string
	UserAgent    string
	PrettyWrite  bool
	UseCache     bool
	DisableWrite bool
}

// NewClient returns a client for the static data host at baseURL that
// caches documents in st. st may be nil to disable caching.
func NewClient(st *store.JSONStore, baseURL string) *Client {
	return &Client{
		HTTP:        &http.Client{Timeout: 20 * time.Second},
		Store:       st,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		UserAgent:   "diamond-draft/1.0",
		PrettyWrite: true,
		UseCache:    true,
	}
}

// FetchRaw downloads urlPath (like "/players.json") and writes it to relPath.
// Returns raw bytes (from cache or network).
func (c *Client) FetchRaw(ctx context.Context, urlPath string, relPath string, force bool) ([]byte, error) {
	if !force && c.UseCache && c.Store != nil && c.Store.Exists(relPath) {
		return c.Store.ReadRaw(relPath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+urlPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s failed: %d body=%s", urlPath, resp.StatusCode, string(body))
	}

	if !c.DisableWrite && c.Store != nil {
		if err := c.Store.WriteRaw(relPath, body, c.PrettyWrite); err != nil {
			return nil, err
		}
	}
	return body, nil
}
