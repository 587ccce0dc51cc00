// Package listing finds vehicle detail pages on a dealer's inventory page.
package listing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/lotscraper/engine/dealer"
	"github.com/WessleyAI/lotscraper/pkg/fn"
)

// DetailKeywords mark an anchor href as a likely vehicle detail page.
var DetailKeywords = []string{"vdp", "vehicle", "detail", "used-", "new-"}

// Fetcher is the HTTP session the crawler reads pages through.
type Fetcher interface {
	Get(ctx context.Context, url string, timeout time.Duration) fn.Result[[]byte]
}

// Config controls crawler behavior.
type Config struct {
	// MaxLinks caps the links returned per dealer (0 = unlimited).
	MaxLinks int
	// Timeout applies to the inventory page fetch.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Crawler reads one inventory page per dealer. It never follows pagination.
type Crawler struct {
	cfg     Config
	fetcher Fetcher
}

// NewCrawler creates a Crawler with the given config.
func NewCrawler(f Fetcher, cfg Config) *Crawler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Crawler{cfg: cfg, fetcher: f}
}

// Links returns the canonical detail-page URLs found on the dealer's inventory
// page. Fetch and parse failures are logged and yield no links.
func (c *Crawler) Links(ctx context.Context, d dealer.Descriptor) []string {
	inventoryURL := d.InventoryURL()
	body, err := c.fetcher.Get(ctx, inventoryURL, c.cfg.Timeout).Unwrap()
	if err != nil {
		c.cfg.Logger.Warn("inventory fetch failed", "dealer", d.Name, "url", inventoryURL, "err", err)
		return nil
	}

	links, err := ExtractLinks(inventoryURL, body, c.cfg.MaxLinks)
	if err != nil {
		c.cfg.Logger.Warn("inventory parse failed", "dealer", d.Name, "url", inventoryURL, "err", err)
		return nil
	}
	return links
}

// ExtractLinks scans every anchor on the page and keeps hrefs containing one of
// DetailKeywords. Each is resolved against pageURL and cut at the first '?',
// which is what collapses "/vdp/1?x=1" and "/vdp/1?y=2" into one link.
// First-seen order is kept; max <= 0 means no cap.
func ExtractLinks(pageURL string, html []byte, max int) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !isDetailHref(href) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if i := strings.IndexByte(abs, '?'); i >= 0 {
			abs = abs[:i]
		}
		links = append(links, abs)
	})

	return fn.Take(fn.Unique(links), max), nil
}

func isDetailHref(href string) bool {
	lower := strings.ToLower(href)
	for _, kw := range DetailKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
