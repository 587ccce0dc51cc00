package infer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractYear returns the first 19xx or 20xx year in text.
func ExtractYear(text string) (int, bool) {
	m := yearRe.FindString(text)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	return y, err == nil
}

// ExtractMake returns the first make from Makes contained in title or url,
// title-cased, plus the lower-case key it matched.
func ExtractMake(title, url string) (name, key string, ok bool) {
	t, u := strings.ToLower(title), strings.ToLower(url)
	for _, m := range Makes {
		if strings.Contains(t, m) || strings.Contains(u, m) {
			return titleCase(m), m, true
		}
	}
	return "", "", false
}

// ExtractModel looks for a model name following makeKey in title, then url.
func ExtractModel(makeKey, title, url string) (string, bool) {
	res := modelRes[makeKey]
	for _, text := range []string{title, url} {
		for _, re := range res {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if model, ok := cleanModel(m[1]); ok {
				return model, true
			}
		}
	}
	return "", false
}

func cleanModel(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if loc := modelCutRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, "-", " "))
	if utf8.RuneCountInString(s) <= 1 {
		return "", false
	}
	return truncate(titleCase(s), MaxModelLen), true
}

// ExtractPrice returns the first in-range price found by the price patterns.
// A pattern whose first match is unparseable or out of range is skipped.
func ExtractPrice(html string) (float64, bool) {
	for _, re := range priceRes {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		raw := m[0]
		if len(m) > 1 {
			raw = m[1]
		}
		raw = strings.NewReplacer("$", "", ",", "").Replace(raw)
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if p >= MinPrice && p <= MaxPrice {
			return p, true
		}
	}
	return 0, false
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "cr v" becomes "Cr V" and "x5m" becomes "X5M".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
