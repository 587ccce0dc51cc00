package infer

import "testing"

func TestExtractYear(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"2019 Toyota Camry LE https://d.example/vdp/1", 2019, true},
		{"Great deal https://d.example/used-1998-ford-ranger", 1998, true},
		{"Stock 12345 https://d.example/vdp/20190", 0, false},
		{"no year here", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractYear(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractYear(%q) = %d, %v; want %d, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractMake(t *testing.T) {
	tests := []struct {
		title, url string
		want       string
		ok         bool
	}{
		{"2019 Toyota Camry LE", "https://d.example/vdp/1", "Toyota", true},
		{"Inventory", "https://d.example/used-2020-gmc-sierra", "Gmc", true},
		{"Audi A4 or BMW 330i", "", "Audi", true},
		{"Great deal", "https://d.example/vdp/1", "", false},
	}
	for _, tt := range tests {
		got, _, ok := ExtractMake(tt.title, tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractMake(%q, %q) = %q, %v; want %q, %v", tt.title, tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExtractModel(t *testing.T) {
	tests := []struct {
		name       string
		make       string
		title, url string
		want       string
		ok         bool
	}{
		{"title", "toyota", "2019 Toyota Camry LE", "", "Camry Le", true},
		{"for sale cut", "toyota", "2019 Toyota Camry LE for sale", "", "Camry Le", true},
		{"year cut", "chevrolet", "Chevrolet Silverado 1500 2019", "", "Silverado", true},
		{"url fallback", "honda", "Honda", "https://d.example/Used-2018-Honda-CR-V/123", "Cr", true},
		{"lowercase url", "nissan", "", "https://d.example/used-2017-nissan-altima", "Altima", true},
		{"too short", "ford", "Ford F-150", "", "", false},
		{"starts with cut word", "nissan", "Nissan used Altima", "", "", false},
		{"truncated", "toyota", "Toyota Abcdefghij Klmnopqrst Uvwxyzabc Defg", "", "Abcdefghij Klmnopqrst Uvwxyzab", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractModel(tt.make, tt.title, tt.url)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("ExtractModel = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		html string
		want float64
		ok   bool
	}{
		{`<span class="price">$45,999</span>`, 45999, true},
		{`$5 off! <script>{"price": "12,500"}</script>`, 12500, true},
		{`Asking: 9,000`, 9000, true},
		{`SALE PRICE: $7,700`, 7700, true},
		{`$250,000 supercar`, 0, false},
		{`call for price`, 0, false},
		{`$, only`, 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractPrice(tt.html)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractPrice(%q) = %v, %v; want %v, %v", tt.html, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"cr v":     "Cr V",
		"x5m":      "X5M",
		"CAMRY le": "Camry Le",
		"4wd":      "4Wd",
		"":         "",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
