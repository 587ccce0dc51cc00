// Package dealer describes the dealer websites a scrape run targets.
package dealer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidDescriptor is returned by Validate for unusable dealer entries.
var ErrInvalidDescriptor = errors.New("invalid dealer descriptor")

// Descriptor identifies one dealer website and where its inventory listing lives.
type Descriptor struct {
	Name          string `mapstructure:"name" json:"name"`
	URL           string `mapstructure:"url" json:"url"`
	InventoryPath string `mapstructure:"inventory_path" json:"inventory_path"`
	City          string `mapstructure:"city" json:"city"`
	State         string `mapstructure:"state" json:"state"`
}

// InventoryURL is the listing page fetched for this dealer.
func (d Descriptor) InventoryURL() string {
	return d.URL + d.InventoryPath
}

// Validate checks that the descriptor can be crawled.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	u, err := url.Parse(d.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s: url %q is not absolute", ErrInvalidDescriptor, d.Name, d.URL)
	}
	if strings.HasSuffix(d.URL, "/") && strings.HasPrefix(d.InventoryPath, "/") {
		return fmt.Errorf("%w: %s: url must not end with / when inventory_path starts with /", ErrInvalidDescriptor, d.Name)
	}
	return nil
}

// Defaults returns the built-in dealer list used when no dealer file is given.
func Defaults() []Descriptor {
	return []Descriptor{
		{Name: "Memory Motors TN", URL: "https://memorymotorstn.com", InventoryPath: "/newandusedcars?clearall=1", City: "Gallatin", State: "TN"},
		{Name: "Motor Max", URL: "https://www.motormaxga.com", InventoryPath: "/vehicles", City: "Atlanta", State: "GA"},
		{Name: "Atlanta Auto Max", URL: "https://www.atlantaautomax.com", InventoryPath: "/inventory", City: "Atlanta", State: "GA"},
	}
}
