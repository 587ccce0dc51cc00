package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounterLabels(t *testing.T) {
	r := New()
	ok := r.Counter("pages_total", "Pages.", "result", "ok")
	ok.Inc()
	ok.Add(2)
	r.Counter("pages_total", "", "result", "failed").Inc()

	if r.Counter("pages_total", "", "result", "ok") != ok {
		t.Fatal("expected the same counter for the same labels")
	}
	if ok.Value() != 3 {
		t.Fatalf("expected 3, got %d", ok.Value())
	}

	out := r.Render()
	for _, want := range []string{
		"# HELP pages_total Pages.\n",
		"# TYPE pages_total counter\n",
		`pages_total{result="failed"} 1`,
		`pages_total{result="ok"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Count(out, "# TYPE pages_total") != 1 {
		t.Fatalf("family rendered more than once:\n%s", out)
	}
}

func TestHistogram(t *testing.T) {
	r := New()
	h := r.Histogram("dur_seconds", "", []float64{10, 1, 5})
	for _, v := range []float64{0.5, 3, 7, 100} {
		h.Observe(v)
	}
	if h.Count() != 4 {
		t.Fatalf("expected 4 observations, got %d", h.Count())
	}

	out := r.Render()
	for _, want := range []string{
		`dur_seconds_bucket{le="1"} 1`,
		`dur_seconds_bucket{le="5"} 2`,
		`dur_seconds_bucket{le="10"} 3`,
		`dur_seconds_bucket{le="+Inf"} 4`,
		"dur_seconds_sum 110.5",
		"dur_seconds_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestScrapeMetrics(t *testing.T) {
	s := NewScrape(New())
	s.Dealer(ResultOK)
	s.Dealer(ResultFailed)
	s.DetailPage(ResultEmpty)
	s.VehiclesSaved.Add(2)

	out := s.Registry().Render()
	for _, want := range []string{
		`lotscraper_dealers_total{result="ok"} 1`,
		`lotscraper_dealers_total{result="failed"} 1`,
		`lotscraper_detail_pages_total{result="empty"} 1`,
		"lotscraper_vehicles_saved_total 2",
		"# TYPE lotscraper_dealer_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("hits_total", "").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "hits_total 1") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
