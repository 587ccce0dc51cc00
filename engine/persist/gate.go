// Package persist decides which vehicle records reach the store.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/WessleyAI/lotscraper/engine/vehicle"
)

// ErrNoSubstantialImages marks a record whose photos are missing or too small.
var ErrNoSubstantialImages = errors.New("record has no substantial images")

// Store is the vehicle collection.
type Store interface {
	ExistsBySourceURL(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, rec *vehicle.Record) error
}

// Notifier is told about every inserted record.
type Notifier interface {
	Publish(ctx context.Context, ev vehicle.Saved) error
}

// Config controls the gate.
type Config struct {
	// MinImageBytes is the decoded size every image must exceed.
	MinImageBytes int
	// Notifier is optional.
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// Result counts the outcome of one Save call.
type Result struct {
	Saved      int
	Duplicates int
	Rejected   int
	Failed     int
}

// Add accumulates o into r.
func (r *Result) Add(o Result) {
	r.Saved += o.Saved
	r.Duplicates += o.Duplicates
	r.Rejected += o.Rejected
	r.Failed += o.Failed
}

// Gate filters records by image quality and source URL before inserting them.
type Gate struct {
	store Store
	cfg   Config
}

// NewGate creates a Gate writing to store.
func NewGate(store Store, cfg Config) *Gate {
	if cfg.MinImageBytes <= 0 {
		cfg.MinImageBytes = 50_000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Gate{store: store, cfg: cfg}
}

// Check returns ErrNoSubstantialImages unless rec has at least one image and
// every image is larger than the threshold.
func (g *Gate) Check(rec *vehicle.Record) error {
	if len(rec.Images) == 0 {
		return fmt.Errorf("%w: %s: no images", ErrNoSubstantialImages, rec.SourceURL)
	}
	for i, img := range rec.Images {
		if n := img.ByteLen(); n <= g.cfg.MinImageBytes {
			return fmt.Errorf("%w: %s: image %d is %d bytes", ErrNoSubstantialImages, rec.SourceURL, i, n)
		}
	}
	return nil
}

// Save inserts each acceptable record whose source URL is not stored yet.
// Records are handled in order and a store error only affects its own record.
func (g *Gate) Save(ctx context.Context, records []vehicle.Record) Result {
	var res Result
	log := g.cfg.Logger

	for i := range records {
		rec := &records[i]

		if err := g.Check(rec); err != nil {
			res.Rejected++
			log.Info("vehicle rejected", "url", rec.SourceURL, "err", err)
			continue
		}

		exists, err := g.store.ExistsBySourceURL(ctx, rec.SourceURL)
		if err != nil {
			res.Failed++
			log.Warn("duplicate check failed", "url", rec.SourceURL, "err", err)
			continue
		}
		if exists {
			res.Duplicates++
			log.Debug("vehicle already stored", "url", rec.SourceURL)
			continue
		}

		if err := g.store.Insert(ctx, rec); err != nil {
			res.Failed++
			log.Warn("vehicle insert failed", "url", rec.SourceURL, "err", err)
			continue
		}
		res.Saved++

		if g.cfg.Notifier != nil {
			if err := g.cfg.Notifier.Publish(ctx, rec.SavedEvent(g.cfg.Now().UTC())); err != nil {
				log.Warn("saved event not published", "url", rec.SourceURL, "err", err)
			}
		}
	}
	return res
}
