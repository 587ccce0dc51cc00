package detail

import (
	"regexp"
	"strings"

	"github.com/WessleyAI/lotscraper/engine/dealer"
	"github.com/WessleyAI/lotscraper/pkg/fn"
)

var (
	// dealerCarSearchRe matches photos on the DealerCarSearch media CDN.
	dealerCarSearchRe = regexp.MustCompile(`https://imagescdn\.dealercarsearch\.com/Media/[^"'>\s]+`)
	// automotiveCDNRe matches image files hosted under the big listing networks.
	automotiveCDNRe = regexp.MustCompile(`(?i)https://[^"'>\s]*\.(?:autodealio|autotrader|cars|carsforsale|cargurus)\.com/[^"'>\s]*\.(?:jpg|jpeg|png|webp)`)
	imgSrcRe        = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
)

// Keywords for the <img> fallback. A src must contain a high-resolution hint
// and none of the skip words. "ad" is a bare substring match, so it also drops
// srcs like "/uploads/..."; that is accepted.
var (
	HighResKeywords = []string{"1024", "800x", "large", "detail", "vehicle"}
	SkipKeywords    = []string{"logo", "icon", "banner", "ad"}
)

// CandidateImages returns the photo URLs worth downloading from a detail page,
// deduplicated in first-seen order and capped at maxImages. The <img> fallback
// only runs when neither CDN pattern matched and contributes at most maxFallback.
func CandidateImages(html string, maxImages, maxFallback int) []string {
	urls := dealerCarSearchRe.FindAllString(html, -1)
	urls = append(urls, automotiveCDNRe.FindAllString(html, -1)...)

	if len(urls) == 0 {
		var srcs []string
		for _, m := range imgSrcRe.FindAllStringSubmatch(html, -1) {
			srcs = append(srcs, m[1])
		}
		urls = fn.Take(fn.Filter(srcs, isHighRes), maxFallback)
	}

	return fn.Take(fn.Unique(urls), maxImages)
}

func isHighRes(src string) bool {
	lower := strings.ToLower(src)
	return containsAny(lower, HighResKeywords) && !containsAny(lower, SkipKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ResolveImageURL completes protocol-relative and root-relative image URLs.
// Anything else is returned unchanged.
func ResolveImageURL(raw string, d dealer.Descriptor) string {
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return d.URL + raw
	default:
		return raw
	}
}
