package metrics

// Result label values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
	ResultEmpty  = "empty"
)

// Scrape holds the metrics a scrape run reports.
type Scrape struct {
	reg *Registry

	ImagesDownloaded *Counter
	ImagesRejected   *Counter
	VehiclesSaved    *Counter
	VehicleDupes     *Counter
	DealerDuration   *Histogram
}

// NewScrape registers the scrape metrics on reg.
func NewScrape(reg *Registry) *Scrape {
	return &Scrape{
		reg:              reg,
		ImagesDownloaded: reg.Counter("lotscraper_images_downloaded_total", "Images kept after size filtering."),
		ImagesRejected:   reg.Counter("lotscraper_images_rejected_total", "Images that failed to download or were too small."),
		VehiclesSaved:    reg.Counter("lotscraper_vehicles_saved_total", "Vehicle records inserted."),
		VehicleDupes:     reg.Counter("lotscraper_vehicles_duplicate_total", "Vehicle records skipped because the source URL was already stored."),
		DealerDuration:   reg.Histogram("lotscraper_dealer_duration_seconds", "Wall time spent per dealer.", nil),
	}
}

// Dealer counts one finished dealer by result.
func (s *Scrape) Dealer(result string) {
	s.reg.Counter("lotscraper_dealers_total", "Dealers processed.", "result", result).Inc()
}

// DetailPage counts one detail page by result.
func (s *Scrape) DetailPage(result string) {
	s.reg.Counter("lotscraper_detail_pages_total", "Detail pages processed.", "result", result).Inc()
}

// Registry returns the underlying registry.
func (s *Scrape) Registry() *Registry { return s.reg }
