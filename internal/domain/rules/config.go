// Package rules turns the externally stored rule document into a typed
// configuration and evaluates reports against it.
package rules

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/vsm/qualitycheck/internal/domain/model"
)

// Rule document keys.
const (
	KeyRequiredCategories     = "requiredCategories"
	KeyAllowedCategories      = "allowedCategories"
	KeyMaxCategoryLength      = "maxCategoryLength"
	KeyMaxCategoriesPerReport = "maxCategoriesPerReport"
)

// Config is the normalized, immutable rule set. The zero value imposes no
// restriction at all.
type Config struct {
	required []string
	allowed  map[string]struct{}

	maxCategoryLength      int
	hasMaxCategoryLength   bool
	maxCategoriesPerReport int
	hasMaxCategories       bool
}

// FromDocument normalizes a decoded rule document. Entries that are missing
// or malformed impose no restriction; FromDocument never fails.
func FromDocument(doc map[string]any) Config {
	var c Config
	c.required = stringSet(doc[KeyRequiredCategories])

	// An allowlist that normalizes to nothing restricts nothing.
	if allowed := stringSet(doc[KeyAllowedCategories]); len(allowed) > 0 {
		c.allowed = make(map[string]struct{}, len(allowed))
		for _, name := range allowed {
			c.allowed[name] = struct{}{}
		}
	}

	c.maxCategoryLength, c.hasMaxCategoryLength = limit(doc[KeyMaxCategoryLength])
	c.maxCategoriesPerReport, c.hasMaxCategories = limit(doc[KeyMaxCategoriesPerReport])
	return c
}

// Required returns the required category names, sorted.
func (c Config) Required() []string {
	return append([]string(nil), c.required...)
}

// Allowed returns the allowlist, sorted, and whether one is configured.
func (c Config) Allowed() ([]string, bool) {
	if c.allowed == nil {
		return nil, false
	}
	out := make([]string, 0, len(c.allowed))
	for name := range c.allowed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, true
}

// MaxCategoryLength returns the per-category feedback length cap, if set.
func (c Config) MaxCategoryLength() (int, bool) {
	return c.maxCategoryLength, c.hasMaxCategoryLength
}

// MaxCategoriesPerReport returns the per-report category count cap, if set.
func (c Config) MaxCategoriesPerReport() (int, bool) {
	return c.maxCategoriesPerReport, c.hasMaxCategories
}

// stringSet keeps the non-blank string entries of a JSON array as canonical
// category names, de-duplicated and sorted. Anything other than an array yields nil.
func stringSet(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = model.CategoryName(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// limit reads a JSON number as a non-negative integer cap. Fractions are
// truncated toward zero. Negative, non-numeric and out-of-range values mean
// "no limit".
func limit(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	f = math.Trunc(f)
	if f < 0 || f >= math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
