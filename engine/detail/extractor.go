// Package detail pulls photos out of a single vehicle detail page.
package detail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WessleyAI/lotscraper/engine/dealer"
	"github.com/WessleyAI/lotscraper/engine/vehicle"
	"github.com/WessleyAI/lotscraper/pkg/cache"
	"github.com/WessleyAI/lotscraper/pkg/fn"
)

var (
	// ErrNoData means the detail page itself could not be fetched.
	ErrNoData = errors.New("detail page unavailable")
	// ErrNoImages means no candidate image survived download and size filtering.
	ErrNoImages = errors.New("no substantial images")
)

// Fetcher is the HTTP session pages and images are read through.
type Fetcher interface {
	Get(ctx context.Context, url string, timeout time.Duration) fn.Result[[]byte]
}

// Config controls extractor behavior.
type Config struct {
	PageTimeout  time.Duration
	ImageTimeout time.Duration
	// MinImageBytes is the size an image must exceed to count as a real photo.
	MinImageBytes int
	// MaxImages caps the candidate URLs downloaded per page.
	MaxImages int
	// MaxFallbackImages caps images taken from the generic <img> scan.
	MaxFallbackImages int
	// Cache, when set, holds accepted image bytes by URL for the run.
	Cache  *cache.Bytes
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PageTimeout <= 0 {
		c.PageTimeout = 10 * time.Second
	}
	if c.ImageTimeout <= 0 {
		c.ImageTimeout = 8 * time.Second
	}
	if c.MinImageBytes <= 0 {
		c.MinImageBytes = 50_000
	}
	if c.MaxImages <= 0 {
		c.MaxImages = 8
	}
	if c.MaxFallbackImages <= 0 {
		c.MaxFallbackImages = 3
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Page is a detail page with at least one downloaded photo.
type Page struct {
	URL    string
	HTML   string
	Title  string
	Images []vehicle.Image
}

// Stats counts what happened to a page's image candidates.
type Stats struct {
	Candidates int
	Downloaded int
	Undersized int
	Failed     int
	CacheHits  int
}

// Extractor fetches detail pages and their photos, one request at a time.
type Extractor struct {
	cfg     Config
	fetcher Fetcher
}

// NewExtractor creates an Extractor with the given config.
func NewExtractor(f Fetcher, cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, fetcher: f}
}

// Extract fetches pageURL and downloads its photos. It returns ErrNoData when
// the page cannot be fetched and ErrNoImages when every candidate image failed
// or was too small. A failing image never aborts the rest.
func (e *Extractor) Extract(ctx context.Context, pageURL string, d dealer.Descriptor) (*Page, Stats, error) {
	var st Stats

	body, err := e.fetcher.Get(ctx, pageURL, e.cfg.PageTimeout).Unwrap()
	if err != nil {
		return nil, st, fmt.Errorf("%w: %s: %v", ErrNoData, pageURL, err)
	}
	html := string(body)

	candidates := CandidateImages(html, e.cfg.MaxImages, e.cfg.MaxFallbackImages)
	st.Candidates = len(candidates)

	var images []vehicle.Image
	for _, raw := range candidates {
		if ctx.Err() != nil {
			return nil, st, ctx.Err()
		}
		imgURL := ResolveImageURL(raw, d)
		data, hit, err := e.image(ctx, imgURL)
		if err != nil {
			st.Failed++
			e.cfg.Logger.Debug("image fetch failed", "url", imgURL, "page", pageURL, "err", err)
			continue
		}
		if hit {
			st.CacheHits++
		}
		if len(data) <= e.cfg.MinImageBytes {
			st.Undersized++
			continue
		}
		st.Downloaded++
		images = append(images, vehicle.EncodeJPEG(data))
	}

	if len(images) == 0 {
		return nil, st, fmt.Errorf("%w: %s", ErrNoImages, pageURL)
	}

	return &Page{
		URL:    pageURL,
		HTML:   html,
		Title:  pageTitle(body),
		Images: images,
	}, st, nil
}

func (e *Extractor) image(ctx context.Context, imgURL string) ([]byte, bool, error) {
	if e.cfg.Cache != nil {
		if data, ok := e.cfg.Cache.Get(imgURL); ok {
			return data, true, nil
		}
	}
	data, err := e.fetcher.Get(ctx, imgURL, e.cfg.ImageTimeout).Unwrap()
	if err != nil {
		return nil, false, err
	}
	if e.cfg.Cache != nil && len(data) > e.cfg.MinImageBytes {
		e.cfg.Cache.Set(imgURL, data)
	}
	return data, false, nil
}

func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
