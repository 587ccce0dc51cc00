// Package run drives a scrape across every configured dealer.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/lotscraper/engine/dealer"
	"github.com/WessleyAI/lotscraper/engine/detail"
	"github.com/WessleyAI/lotscraper/engine/infer"
	"github.com/WessleyAI/lotscraper/engine/persist"
	"github.com/WessleyAI/lotscraper/engine/vehicle"
	"github.com/WessleyAI/lotscraper/pkg/fn"
	"github.com/WessleyAI/lotscraper/pkg/metrics"
)

// Crawler lists a dealer's detail pages.
type Crawler interface {
	Links(ctx context.Context, d dealer.Descriptor) []string
}

// Extractor reads one detail page and its photos.
type Extractor interface {
	Extract(ctx context.Context, url string, d dealer.Descriptor) (*detail.Page, detail.Stats, error)
}

// Inferencer derives vehicle fields from a page.
type Inferencer interface {
	Infer(p *detail.Page, d dealer.Descriptor) infer.Result
}

// Saver persists a dealer's records.
type Saver interface {
	Save(ctx context.Context, records []vehicle.Record) persist.Result
}

// Counter reports how many records the store holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Config controls a run.
type Config struct {
	Dealers []dealer.Descriptor
	// DetailDelay is the pause after each detail page, measured from the
	// end of its fetch and image downloads.
	DetailDelay time.Duration
	// Out receives the human-readable progress lines. Default: io.Discard.
	Out     io.Writer
	Logger  *slog.Logger
	Metrics *metrics.Scrape
	Now     func() time.Time
}

// Orchestrator runs dealers one after another.
type Orchestrator struct {
	cfg       Config
	crawler   Crawler
	extractor Extractor
	inferer   Inferencer
	saver     Saver
	counter   Counter
}

// New wires an Orchestrator. counter may be nil.
func New(c Crawler, e Extractor, i Inferencer, s Saver, counter Counter, cfg Config) *Orchestrator {
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewScrape(metrics.New())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Orchestrator{
		cfg:       cfg,
		crawler:   c,
		extractor: e,
		inferer:   i,
		saver:     s,
		counter:   counter,
	}
}

// DealerSummary is the outcome for one dealer.
type DealerSummary struct {
	Name      string
	Links     int
	Processed int
	Result    persist.Result
	Err       error
}

// Summary is the outcome of a whole run.
type Summary struct {
	Dealers []DealerSummary
	// Processed counts records built from detail pages, saved or not.
	Processed int
	Result    persist.Result
	// StoreTotal is the collection size after the run, or -1 if unknown.
	StoreTotal int64
}

// Run scrapes every dealer in order. A failing or panicking dealer is logged
// and skipped; Run itself never fails.
func (o *Orchestrator) Run(ctx context.Context) Summary {
	out := o.cfg.Out
	sum := Summary{StoreTotal: -1}

	fmt.Fprintf(out, "scraping %d dealers\n", len(o.cfg.Dealers))

	for _, d := range o.cfg.Dealers {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(out, "\n%s (%s)\n", d.Name, d.InventoryURL())

		start := time.Now()
		stage := fn.TracedStage[dealer.Descriptor, DealerSummary]("scrape.dealer", o.scrapeDealer,
			attribute.String("dealer.name", d.Name),
			attribute.String("dealer.url", d.URL),
		)
		ds, err := stage(ctx, d).Unwrap()
		o.cfg.Metrics.DealerDuration.Since(start)

		if err != nil {
			ds.Name = d.Name
			ds.Err = err
			o.cfg.Metrics.Dealer(metrics.ResultFailed)
			o.cfg.Logger.Error("dealer failed", "dealer", d.Name, "err", err)
			fmt.Fprintf(out, "%s failed: %v\n", d.Name, err)
		} else {
			if ds.Links == 0 {
				o.cfg.Metrics.Dealer(metrics.ResultEmpty)
			} else {
				o.cfg.Metrics.Dealer(metrics.ResultOK)
			}
			fmt.Fprintf(out, "%s: %d vehicles saved (%d duplicate, %d rejected, %d failed)\n",
				d.Name, ds.Result.Saved, ds.Result.Duplicates, ds.Result.Rejected, ds.Result.Failed)
		}

		sum.Dealers = append(sum.Dealers, ds)
		sum.Processed += ds.Processed
		sum.Result.Add(ds.Result)
	}

	fmt.Fprintf(out, "\ntotal vehicles processed: %d\n", sum.Processed)
	fmt.Fprintf(out, "total vehicles saved: %d\n", sum.Result.Saved)

	if o.counter != nil {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		n, err := o.counter.Count(cctx)
		cancel()
		if err != nil {
			o.cfg.Logger.Warn("count vehicles", "err", err)
		} else {
			sum.StoreTotal = n
			fmt.Fprintf(out, "total vehicles in database: %d\n", n)
		}
	}
	return sum
}

func (o *Orchestrator) scrapeDealer(ctx context.Context, d dealer.Descriptor) (res fn.Result[DealerSummary]) {
	defer func() {
		if r := recover(); r != nil {
			res = fn.Err[DealerSummary](fmt.Errorf("panic: %v", r))
		}
	}()

	ds := DealerSummary{Name: d.Name}
	links := o.crawler.Links(ctx, d)
	ds.Links = len(links)
	fmt.Fprintf(o.cfg.Out, "  found %d vehicle pages\n", len(links))

	var records []vehicle.Record
	for i, link := range links {
		rec, ok := o.scrapeVehicle(ctx, link, d)
		if err := pause(ctx, o.cfg.DetailDelay); err != nil {
			return fn.Err[DealerSummary](err)
		}
		if !ok {
			continue
		}
		records = append(records, rec)
		fmt.Fprintf(o.cfg.Out, "  vehicle %d: %s - %d photos\n", i+1, rec.Title(), len(rec.Images))
	}
	ds.Processed = len(records)

	if len(records) > 0 {
		ds.Result = o.saver.Save(ctx, records)
		o.cfg.Metrics.VehiclesSaved.Add(int64(ds.Result.Saved))
		o.cfg.Metrics.VehicleDupes.Add(int64(ds.Result.Duplicates))
	}
	return fn.Ok(ds)
}

func (o *Orchestrator) scrapeVehicle(ctx context.Context, link string, d dealer.Descriptor) (vehicle.Record, bool) {
	m := o.cfg.Metrics
	page, st, err := o.extractor.Extract(ctx, link, d)
	m.ImagesDownloaded.Add(int64(st.Downloaded))
	m.ImagesRejected.Add(int64(st.Undersized + st.Failed))

	switch {
	case errors.Is(err, detail.ErrNoImages):
		m.DetailPage(metrics.ResultEmpty)
		o.cfg.Logger.Info("no usable photos", "dealer", d.Name, "url", link)
		return vehicle.Record{}, false
	case err != nil:
		m.DetailPage(metrics.ResultFailed)
		o.cfg.Logger.Warn("detail page failed", "dealer", d.Name, "url", link, "err", err)
		return vehicle.Record{}, false
	}
	m.DetailPage(metrics.ResultOK)

	r := o.inferer.Infer(page, d)
	return r.Record(page.Images, o.cfg.Now()), true
}

// pause blocks for d, or until ctx is done. The limiter starts with its only
// token spent, so Wait returns a full interval from now.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	lim := rate.NewLimiter(rate.Every(d), 1)
	lim.Allow()
	return lim.Wait(ctx)
}
