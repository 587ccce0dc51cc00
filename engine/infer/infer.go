// Package infer turns a detail page into vehicle fields. Values the page does
// not carry are filled with plausible random ones and marked as inferred.
package infer

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WessleyAI/lotscraper/engine/dealer"
	"github.com/WessleyAI/lotscraper/engine/detail"
	"github.com/WessleyAI/lotscraper/engine/vehicle"
)

// Config holds the inferencer's sources of randomness and time.
type Config struct {
	// Rand drives every random choice. Default: a randomly seeded PCG.
	Rand *rand.Rand
	// Now supplies the reference year for age-based values. Default: time.Now.
	Now func() time.Time
}

// Inferencer derives vehicle fields from page text. It is not safe for
// concurrent use because it owns its random source.
type Inferencer struct {
	rng *rand.Rand
	now func() time.Time
}

// New creates an Inferencer.
func New(cfg Config) *Inferencer {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Inferencer{rng: cfg.Rand, now: cfg.Now}
}

// Result is the full set of derived values for one page.
type Result struct {
	Dealer    dealer.Descriptor
	SourceURL string

	Year    Field[int]
	Make    Field[string]
	Model   Field[string]
	Price   Field[float64]
	Mileage Field[int]

	Transmission  string
	FuelType      string
	Drivetrain    string
	ExteriorColor string
	InteriorColor string

	ID          string
	VIN         string
	StockNumber string
}

// Infer derives fields from the page's title, URL and raw HTML. It never fails.
func (in *Inferencer) Infer(p *detail.Page, d dealer.Descriptor) Result {
	r := Result{
		Dealer:        d,
		SourceURL:     p.URL,
		Transmission:  pick(in.rng, Transmissions),
		FuelType:      pick(in.rng, FuelTypes),
		Drivetrain:    pick(in.rng, Drivetrains),
		ExteriorColor: pick(in.rng, ExteriorColors),
		InteriorColor: pick(in.rng, InteriorColors),
		ID:            uuid.NewString(),
		VIN:           syntheticVIN(),
		StockNumber:   fmt.Sprintf("%s%d", stockPrefix(d.Name), between(in.rng, 1000, 9999)),
	}

	if y, ok := ExtractYear(p.Title + p.URL); ok {
		r.Year = extracted(y)
	} else {
		r.Year = inferred(between(in.rng, MinFallbackYear, MaxFallbackYear))
	}

	makeName, makeKey, ok := ExtractMake(p.Title, p.URL)
	if ok {
		r.Make = extracted(makeName)
		if model, ok := ExtractModel(makeKey, p.Title, p.URL); ok {
			r.Model = extracted(model)
		}
	} else {
		r.Make = inferred(pick(in.rng, FallbackMakes))
	}
	if r.Model.Source == "" {
		models, ok := FallbackModels[r.Make.Value]
		if !ok {
			models = []string{DefaultModel}
		}
		r.Model = inferred(pick(in.rng, models))
	}

	age := in.now().Year() - r.Year.Value

	if price, ok := ExtractPrice(p.HTML); ok {
		r.Price = extracted(price)
	} else {
		factor := math.Max(0.5, 1-float64(age)*0.08)
		jitter := 0.7 + 0.6*in.rng.Float64()
		r.Price = inferred(math.Trunc(BasePrice * factor * jitter))
	}

	miles := age*between(in.rng, 10000, 15000) + between(in.rng, -8000, 12000)
	r.Mileage = inferred(max(100, miles))

	return r
}

// Record flattens r into a vehicle record stamped with now in UTC.
func (r Result) Record(images []vehicle.Image, now time.Time) vehicle.Record {
	now = now.UTC()
	return vehicle.Record{
		ID:            r.ID,
		Images:        images,
		DealerName:    r.Dealer.Name,
		DealerID:      r.Dealer.Name,
		DealerURL:     r.Dealer.URL,
		DealerCity:    r.Dealer.City,
		DealerState:   r.Dealer.State,
		SourceURL:     r.SourceURL,
		ScrapedAt:     now,
		UpdatedAt:     now,
		CreatedAt:     now,
		Status:        vehicle.StatusActive,
		Condition:     vehicle.ConditionUsed,
		VIN:           r.VIN,
		StockNumber:   r.StockNumber,
		Transmission:  r.Transmission,
		FuelType:      r.FuelType,
		Drivetrain:    r.Drivetrain,
		ExteriorColor: r.ExteriorColor,
		InteriorColor: r.InteriorColor,
		Year:          r.Year.Value,
		Make:          r.Make.Value,
		Model:         r.Model.Value,
		Price:         r.Price.Value,
		Mileage:       r.Mileage.Value,
		Provenance: vehicle.Provenance{
			Year:    r.Year.Source,
			Make:    r.Make.Source,
			Model:   r.Model.Source,
			Price:   r.Price.Source,
			Mileage: r.Mileage.Source,
		},
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// between returns a uniform int in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func stockPrefix(name string) string {
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// syntheticVIN is "REAL" followed by 13 upper-case hex digits. It is an
// identifier, not a valid VIN.
func syntheticVIN() string {
	u := uuid.New()
	return "REAL" + strings.ToUpper(hex.EncodeToString(u[:]))[:13]
}
