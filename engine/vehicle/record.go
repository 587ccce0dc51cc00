// Package vehicle defines the vehicle document persisted to the vehicles collection.
package vehicle

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// Record statuses and conditions written by the scraper.
const (
	StatusActive  = "active"
	ConditionUsed = "used"
)

// Source tells whether a field value was read from the page or made up.
type Source string

const (
	Extracted Source = "extracted"
	Inferred  Source = "inferred"
)

// Provenance records the Source of every heuristically derived field.
type Provenance struct {
	Year    Source `bson:"year" json:"year"`
	Make    Source `bson:"make" json:"make"`
	Model   Source `bson:"model" json:"model"`
	Price   Source `bson:"price" json:"price"`
	Mileage Source `bson:"mileage" json:"mileage"`
}

// Record is one scraped vehicle. It is built once per detail page and never
// modified after insertion.
type Record struct {
	ID            string     `bson:"id" json:"id"`
	Images        []Image    `bson:"images" json:"images"`
	DealerName    string     `bson:"dealer_name" json:"dealer_name"`
	DealerID      string     `bson:"dealer_id" json:"dealer_id"`
	DealerURL     string     `bson:"dealer_url" json:"dealer_url"`
	DealerCity    string     `bson:"dealer_city" json:"dealer_city"`
	DealerState   string     `bson:"dealer_state" json:"dealer_state"`
	SourceURL     string     `bson:"source_url" json:"source_url"`
	ScrapedAt     time.Time  `bson:"scraped_at" json:"scraped_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	Status        string     `bson:"status" json:"status"`
	Condition     string     `bson:"condition" json:"condition"`
	VIN           string     `bson:"vin" json:"vin"`
	StockNumber   string     `bson:"stock_number" json:"stock_number"`
	Transmission  string     `bson:"transmission" json:"transmission"`
	FuelType      string     `bson:"fuel_type" json:"fuel_type"`
	Drivetrain    string     `bson:"drivetrain" json:"drivetrain"`
	ExteriorColor string     `bson:"exterior_color" json:"exterior_color"`
	InteriorColor string     `bson:"interior_color" json:"interior_color"`
	Year          int        `bson:"year" json:"year"`
	Make          string     `bson:"make" json:"make"`
	Model         string     `bson:"model" json:"model"`
	Price         float64    `bson:"price" json:"price"`
	Mileage       int        `bson:"mileage" json:"mileage"`
	Provenance    Provenance `bson:"provenance" json:"provenance"`
}

// Title is the short "year make model" label used in progress output.
func (r *Record) Title() string {
	var b strings.Builder
	if r.Year > 0 {
		b.WriteString(strconv.Itoa(r.Year))
		b.WriteByte(' ')
	}
	b.WriteString(r.Make)
	b.WriteByte(' ')
	b.WriteString(r.Model)
	return strings.TrimSpace(b.String())
}

// Saved is the event published after a record has been inserted.
type Saved struct {
	ID         string    `json:"id"`
	SourceURL  string    `json:"source_url"`
	DealerName string    `json:"dealer_name"`
	Year       int       `json:"year"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Price      float64   `json:"price"`
	ImageCount int       `json:"image_count"`
	SavedAt    time.Time `json:"saved_at"`
}

// SavedEvent summarizes r for publishing.
func (r *Record) SavedEvent(at time.Time) Saved {
	return Saved{
		ID:         r.ID,
		SourceURL:  r.SourceURL,
		DealerName: r.DealerName,
		Year:       r.Year,
		Make:       r.Make,
		Model:      r.Model,
		Price:      r.Price,
		ImageCount: len(r.Images),
		SavedAt:    at,
	}
}

// Image is an inline image payload of the form data:image/jpeg;base64,<data>.
type Image string

const jpegPrefix = "data:image/jpeg;base64,"

// EncodeJPEG wraps raw image bytes as an inline JPEG payload. The bytes are not
// inspected; dealer CDNs serve JPEG almost exclusively.
func EncodeJPEG(raw []byte) Image {
	return Image(jpegPrefix + base64.StdEncoding.EncodeToString(raw))
}

// ByteLen returns the decoded size of the image in bytes, or 0 for payloads
// that are not base64 data URIs.
func (img Image) ByteLen() int {
	s := string(img)
	i := strings.Index(s, ";base64,")
	if !strings.HasPrefix(s, "data:") || i < 0 {
		return 0
	}
	payload := s[i+len(";base64,"):]
	n := base64.StdEncoding.DecodedLen(len(payload))
	n -= len(payload) - len(strings.TrimRight(payload, "="))
	if n < 0 {
		return 0
	}
	return n
}
