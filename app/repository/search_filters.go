package repository

import (
	"strconv"
	"strings"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// SearchFilters carries the user-supplied catalog search parameters after
// parsing and clamping.
type SearchFilters struct {
	Query      string
	Category   string
	PriceRange string
	SortBy     string
	Page       int
	Limit      int
}

// Offset returns the pagination offset for the current page.
func (f SearchFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ParseSearchFilters normalizes raw query parameters into usable filters.
// Invalid page/limit values fall back to defaults rather than erroring.
func ParseSearchFilters(query, category, priceRange, sortBy, page, limit string) SearchFilters {
	f := SearchFilters{
		Query:      strings.TrimSpace(query),
		Category:   strings.TrimSpace(category),
		PriceRange: strings.TrimSpace(priceRange),
		SortBy:     strings.TrimSpace(sortBy),
		Page:       1,
		Limit:      defaultSearchLimit,
	}

	if p, err := strconv.Atoi(page); err == nil && p > 0 {
		f.Page = p
	}
	if l, err := strconv.Atoi(limit); err == nil && l > 0 {
		f.Limit = l
		if f.Limit > maxSearchLimit {
			f.Limit = maxSearchLimit
		}
	}
	if f.SortBy == "" {
		f.SortBy = "price"
	}
	if f.Category == "all" {
		f.Category = ""
	}

	return f
}

// PriceBounds is a parsed price bucket: a lower bound and an optional
// upper bound, both inclusive.
type PriceBounds struct {
	Min    float64
	Max    float64
	HasMax bool
}

// ParsePriceRange parses "min-max" and "min+" buckets. The second return
// is false for "all", empty, or unparseable input, meaning no price filter.
func ParsePriceRange(s string) (PriceBounds, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return PriceBounds{}, false
	}

	if strings.HasSuffix(s, "+") {
		min, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
		if err != nil {
			return PriceBounds{}, false
		}
		return PriceBounds{Min: min}, true
	}

	parts := strings.SplitN(s, "-", 2)
	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return PriceBounds{}, false
	}
	if len(parts) == 2 {
		if max, err := strconv.ParseFloat(parts[1], 64); err == nil {
			return PriceBounds{Min: min, Max: max, HasMax: true}, true
		}
	}
	return PriceBounds{Min: min}, true
}

// escapeLike neutralizes LIKE wildcards in user input so a search for "%"
// matches a literal percent sign instead of every row.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

// OrderClause maps a sort key onto a whitelisted ORDER BY expression.
// Anything unrecognized falls back to price. Ties keep storage order; no
// secondary ordering is applied.
func OrderClause(sortBy string) string {
	switch sortBy {
	case "name":
		return "services.name ASC"
	case "provider":
		return "providers.name ASC"
	default:
		return "services.rate ASC"
	}
}
