// Package catalog loads the playable tracks of a server folder from its
// HTTP directory listing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"melody/internal/httputil"
)

// ErrCatalogUnavailable is returned when the listing could not be fetched.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Loader fetches folder listings from a base URL.
type Loader struct {
	base       string // e.g., "http://127.0.0.1:3000"
	client     *retryablehttp.Client
	extensions []string
}

// NewLoader creates a Loader. Extensions are matched case-insensitively;
// an empty list means ".mp3" only.
func NewLoader(base string, client *retryablehttp.Client, extensions []string) *Loader {
	if len(extensions) == 0 {
		extensions = []string{".mp3"}
	}
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = strings.ToLower(e)
	}
	return &Loader{
		base:       base,
		client:     client,
		extensions: exts,
	}
}

// Base returns the listing server base URL.
func (l *Loader) Base() string { return l.base }

// TrackURL returns the media source for a track in folder.
func (l *Loader) TrackURL(folder, track string) string {
	return httputil.TrackURL(l.base, folder, track)
}

// Load returns the playable track identifiers of folder in listing order.
// Any fetch failure is logged and returned wrapped in ErrCatalogUnavailable;
// callers treat it as an empty catalog.
func (l *Loader) Load(ctx context.Context, folder string) ([]string, error) {
	if err := httputil.ValidateFolder(folder); err != nil {
		return nil, fmt.Errorf("invalid folder: %w", err)
	}

	listingURL := httputil.FolderURL(l.base, folder)
	doc, err := l.fetchDocument(ctx, listingURL)
	if err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, folder, err)
		log.Printf("catalog: %v", err)
		return nil, err
	}

	u, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("parsing listing URL: %w", err)
	}

	return parseListing(doc, u, l.extensions), nil
}

// fetchDocument fetches a URL and parses it into a goquery Document.
func (l *Loader) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := httputil.Get(ctx, l.client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}
