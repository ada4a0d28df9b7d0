// Package normalize validates the shape of an incoming report batch and
// produces canonical reports.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vsm/qualitycheck/internal/domain/model"
)

// Required report fields, checked in this order.
var requiredFields = []string{"reportId", "playerId", "coachId", "reportTimestamp"}

// Optional report fields, kept only when they are non-blank strings.
var optionalFields = []string{"createdAt", "teamId", "playerEmail", "playerName"}

// Reports validates event and returns its reports in input order. The first
// defect aborts the whole batch with a *ValidationError.
func Reports(event model.Event) ([]model.Report, error) {
	if event == nil {
		return nil, invalid("event", "must be an object")
	}
	raw, ok := event[model.KeyReports].([]any)
	if !ok || len(raw) == 0 {
		return nil, invalid(model.KeyReports, "must be a non-empty array")
	}

	reports := make([]model.Report, 0, len(raw))
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(fmt.Sprintf("reports[%d]", i), "must be an object")
		}
		r, err := report(obj, i)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func report(obj map[string]any, index int) (model.Report, error) {
	required := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		s, ok := obj[field].(string)
		s = strings.TrimSpace(s)
		if !ok || s == "" {
			return model.Report{}, invalid(fmt.Sprintf("reports[%d].%s", index, field), "must be a non-empty string")
		}
		required[field] = s
	}

	path := fmt.Sprintf("reports[%d].categories", index)
	rawCategories, ok := obj["categories"].(map[string]any)
	if !ok || len(rawCategories) == 0 {
		return model.Report{}, invalid(path, "must be a non-empty object")
	}
	// Keys are visited in sorted order so that two raw keys collapsing to
	// the same name resolve the same way on every run.
	keys := make([]string, 0, len(rawCategories))
	for key := range rawCategories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	categories := make(map[string]string, len(rawCategories))
	for _, key := range keys {
		name := model.CategoryName(key)
		if name == "" {
			continue
		}
		if _, dup := categories[name]; dup {
			continue
		}
		categories[name] = text(rawCategories[key])
	}
	if len(categories) == 0 {
		return model.Report{}, invalid(path, "must include valid entries")
	}

	optional := make(map[string]string, len(optionalFields))
	for _, field := range optionalFields {
		if s, ok := obj[field].(string); ok {
			optional[field] = strings.TrimSpace(s)
		}
	}

	return model.Report{
		ReportID:        required["reportId"],
		PlayerID:        required["playerId"],
		CoachID:         required["coachId"],
		ReportTimestamp: required["reportTimestamp"],
		Categories:      categories,
		CreatedAt:       optional["createdAt"],
		TeamID:          optional["teamId"],
		PlayerEmail:     optional["playerEmail"],
		PlayerName:      optional["playerName"],
	}, nil
}

// text renders a category value as trimmed feedback text. JSON null becomes
// the empty string so a required category carrying null reads as missing.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return strings.TrimSpace(fmt.Sprint(t))
		}
		return strings.TrimSpace(string(b))
	}
}
