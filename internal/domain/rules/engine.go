package rules

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vsm/qualitycheck/internal/domain/dedupe"
	"github.com/vsm/qualitycheck/internal/domain/model"
)

// Check names, used to label issues in metrics.
const (
	CheckDuplicateInBatch   = "duplicate_in_batch"
	CheckRequiredCategories = "required_categories"
	CheckAllowedCategories  = "allowed_categories"
	CheckCategoryCount      = "category_count"
	CheckCategoryLength     = "category_length"
)

// Issue texts and prefixes.
const (
	IssueDuplicateInBatch = "Duplicate reportId within payload"

	prefixMissing    = "Missing required categories: "
	prefixDisallowed = "Disallowed categories present: "
	prefixCount      = "Category count "
	prefixTooLong    = "Category feedback exceeds max length: "
)

// Evaluate applies cfg to every report and returns one Failure per report
// that triggered at least one check, in report order. It performs no I/O
// and keeps no state between calls.
func Evaluate(cfg Config, reports []model.Report) []model.Failure {
	var failures []model.Failure
	seen := dedupe.NewSet(len(reports))

	for _, report := range reports {
		var issues []string
		categories := canonical(report.Categories)

		if seen.SeenAndRecord(report.ReportID) {
			issues = append(issues, IssueDuplicateInBatch)
		}
		if missing := cfg.missingRequired(categories); len(missing) > 0 {
			issues = append(issues, prefixMissing+strings.Join(missing, ", "))
		}
		if disallowed := cfg.disallowed(categories); len(disallowed) > 0 {
			issues = append(issues, prefixDisallowed+strings.Join(disallowed, ", "))
		}
		if limit, ok := cfg.MaxCategoriesPerReport(); ok && len(categories) > limit {
			issues = append(issues, fmt.Sprintf("%s%d exceeds limit of %d", prefixCount, len(categories), limit))
		}
		if tooLong := cfg.tooLong(categories); len(tooLong) > 0 {
			issues = append(issues, prefixTooLong+strings.Join(tooLong, ", "))
		}

		if len(issues) > 0 {
			failures = append(failures, model.Failure{ReportID: report.ReportID, Issues: issues})
		}
	}
	return failures
}

// canonical returns categories keyed by model.CategoryName. A map already
// in that form, as normalize.Reports produces, is returned unchanged. Keys
// that collide are resolved in sorted raw-key order, first one wins.
func canonical(categories map[string]string) map[string]string {
	clean := true
	for name := range categories {
		if model.CategoryName(name) != name {
			clean = false
			break
		}
	}
	if clean {
		return categories
	}

	keys := make([]string, 0, len(categories))
	for name := range categories {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(categories))
	for _, key := range keys {
		name := model.CategoryName(key)
		if name == "" {
			continue
		}
		if _, dup := out[name]; dup {
			continue
		}
		out[name] = categories[key]
	}
	return out
}

// missingRequired lists required categories that are absent or blank.
// c.required is already sorted.
func (c Config) missingRequired(categories map[string]string) []string {
	var missing []string
	for _, name := range c.required {
		if strings.TrimSpace(categories[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (c Config) disallowed(categories map[string]string) []string {
	if c.allowed == nil {
		return nil
	}
	var out []string
	for name := range categories {
		if _, ok := c.allowed[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// tooLong lists categories whose feedback exceeds the length cap, counted
// in characters rather than bytes.
func (c Config) tooLong(categories map[string]string) []string {
	limit, ok := c.MaxCategoryLength()
	if !ok {
		return nil
	}
	var out []string
	for name, value := range categories {
		if utf8.RuneCountInString(value) > limit {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// CheckName maps an issue string to the check that produced it. Issues from
// other detectors map to "other".
func CheckName(issue string) string {
	switch {
	case issue == IssueDuplicateInBatch:
		return CheckDuplicateInBatch
	case strings.HasPrefix(issue, prefixMissing):
		return CheckRequiredCategories
	case strings.HasPrefix(issue, prefixDisallowed):
		return CheckAllowedCategories
	case strings.HasPrefix(issue, prefixCount):
		return CheckCategoryCount
	case strings.HasPrefix(issue, prefixTooLong):
		return CheckCategoryLength
	default:
		return "other"
	}
}
