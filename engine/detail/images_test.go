package detail

import (
	"fmt"
	"strings"
	"testing"

	"github.com/WessleyAI/lotscraper/engine/dealer"
)

func TestCandidateImagesCDNPatterns(t *testing.T) {
	html := `
<img src="https://imagescdn.dealercarsearch.com/Media/1/2/a.jpg">
<div data-full='https://imagescdn.dealercarsearch.com/Media/1/2/a.jpg'></div>
<img src="https://pics.CarGurus.com/images/abc.JPG">
<img src="https://static.autotrader.com/x/logo.svg">
<img src="/images/vehicle-large-1.jpg">`

	got := CandidateImages(html, 8, 3)
	want := []string{
		"https://imagescdn.dealercarsearch.com/Media/1/2/a.jpg",
		"https://pics.CarGurus.com/images/abc.JPG",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCandidateImagesFallbackFilter(t *testing.T) {
	html := `
<img src="/img/logo-large.png">
<img src="/img/site-icon-1024.png">
<img src="/photos/vehicle-1.jpg">
<img alt="x" src="/photos/1024/2.jpg">
<img src="/photos/thumb.jpg">
<img src="/photos/800x600/3.jpg">
<img src="/photos/large/4.jpg">
<img src="/photos/DETAIL/5.jpg">`

	got := CandidateImages(html, 8, 3)
	want := []string{"/photos/vehicle-1.jpg", "/photos/1024/2.jpg", "/photos/800x600/3.jpg"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCandidateImagesSkipsFallbackWhenCDNFound(t *testing.T) {
	html := `<img src="/photos/vehicle-1.jpg">
<a href="https://imagescdn.dealercarsearch.com/Media/9.jpg">`
	got := CandidateImages(html, 8, 3)
	if len(got) != 1 || !strings.Contains(got[0], "dealercarsearch") {
		t.Fatalf("expected only the CDN image, got %v", got)
	}
}

func TestCandidateImagesCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, `<img src="https://imagescdn.dealercarsearch.com/Media/%d.jpg">`, i)
	}
	got := CandidateImages(b.String(), 8, 3)
	if len(got) != 8 {
		t.Fatalf("expected 8 candidates, got %d", len(got))
	}
	if got[0] != "https://imagescdn.dealercarsearch.com/Media/0.jpg" {
		t.Fatalf("expected document order, got %q first", got[0])
	}
}

func TestCandidateImagesNone(t *testing.T) {
	if got := CandidateImages(`<p>no pictures</p>`, 8, 3); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
}

func TestResolveImageURL(t *testing.T) {
	d := dealer.Descriptor{Name: "D", URL: "https://dealer.example"}
	cases := map[string]string{
		"//cdn.example/a.jpg":       "https://cdn.example/a.jpg",
		"/photos/a.jpg":             "https://dealer.example/photos/a.jpg",
		"https://cdn.example/b.jpg": "https://cdn.example/b.jpg",
		"photos/relative-as-is.jpg": "photos/relative-as-is.jpg",
	}
	for in, want := range cases {
		if got := ResolveImageURL(in, d); got != want {
			t.Fatalf("ResolveImageURL(%q) = %q, want %q", in, got, want)
		}
	}
}
