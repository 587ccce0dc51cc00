package infer

import (
	"regexp"
)

// Makes is checked in order; the first one found in the title or URL wins.
var Makes = []string{
	"acura", "audi", "bmw", "buick", "cadillac", "chevrolet", "chrysler",
	"dodge", "ford", "gmc", "honda", "hyundai", "infiniti", "jeep",
	"kia", "lexus", "lincoln", "mazda", "mercedes", "mitsubishi",
	"nissan", "ram", "subaru", "toyota", "volkswagen", "volvo",
}

// FallbackMakes is drawn from when no make appears on the page.
var FallbackMakes = []string{"Ford", "Toyota", "Honda", "Chevrolet", "Nissan"}

// FallbackModels lists the models drawn from when no model is extracted.
// Makes missing from this table fall back to DefaultModel.
var FallbackModels = map[string][]string{
	"Ford":      {"F-150", "Explorer", "Escape", "Edge", "Mustang"},
	"Toyota":    {"Camry", "Corolla", "RAV4", "Highlander", "Prius"},
	"Honda":     {"Accord", "Civic", "CR-V", "Pilot", "Fit"},
	"Chevrolet": {"Silverado", "Equinox", "Malibu", "Tahoe", "Cruze"},
	"Nissan":    {"Altima", "Sentra", "Rogue", "Murano", "Pathfinder"},
}

const DefaultModel = "Sedan"

// Enumerations for the fields no dealer page is parsed for.
var (
	Transmissions  = []string{"Automatic", "Manual", "CVT"}
	FuelTypes      = []string{"Gasoline", "Hybrid", "Electric", "Diesel"}
	Drivetrains    = []string{"FWD", "RWD", "AWD", "4WD"}
	ExteriorColors = []string{"White", "Black", "Silver", "Gray", "Red", "Blue", "Green"}
	InteriorColors = []string{"Black", "Gray", "Beige", "Brown", "Tan"}
)

// Bounds for inferred values.
const (
	MinFallbackYear = 2015
	MaxFallbackYear = 2024

	MinPrice  = 1000
	MaxPrice  = 200000
	BasePrice = 28000

	MaxModelLen = 30
)

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// priceRes are tried in order against the raw HTML; only the first match of
// each is considered.
var priceRes = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+`),
	regexp.MustCompile(`(?i)price["']?\s*:\s*["']?\$?([\d,]+)`),
	regexp.MustCompile(`(?i)asking["']?\s*:\s*["']?\$?([\d,]+)`),
	regexp.MustCompile(`(?i)sale["']?\s*price["']?\s*:\s*["']?\$?([\d,]+)`),
}

// modelCutRe marks where a captured model name stops. Case-sensitive.
var modelCutRe = regexp.MustCompile(`[/\-]|for[\-\s]sale|used|new|\d{4}`)

// modelRes holds the two model patterns for each make in Makes.
var modelRes = func() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(Makes))
	for _, m := range Makes {
		q := regexp.QuoteMeta(m)
		out[m] = []*regexp.Regexp{
			regexp.MustCompile(`(?i)` + q + `[/\-\s]+([a-zA-Z0-9\-\s]+)`),
			regexp.MustCompile(`(?i)Used[/\-\s]+\d{4}[/\-\s]+` + q + `[/\-\s]+([a-zA-Z0-9\-\s]+)`),
		}
	}
	return out
}()
