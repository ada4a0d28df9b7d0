// Package failures reconciles issues reported by independent detectors.
package failures

import "github.com/vsm/qualitycheck/internal/domain/model"

// group accumulates the distinct issues of one report id.
type group struct {
	id     string
	issues []string
	seen   map[string]struct{}
}

// Merge groups every failure by report id in first-encounter order across
// all lists and concatenates their issues, dropping repeats of an issue
// already recorded for that id. Inputs are not modified.
func Merge(lists ...[]model.Failure) []model.Failure {
	var order []*group
	groups := make(map[string]*group)

	for _, list := range lists {
		for _, f := range list {
			g, ok := groups[f.ReportID]
			if !ok {
				g = &group{id: f.ReportID, seen: make(map[string]struct{}, len(f.Issues))}
				groups[f.ReportID] = g
				order = append(order, g)
			}
			for _, issue := range f.Issues {
				if _, dup := g.seen[issue]; dup {
					continue
				}
				g.seen[issue] = struct{}{}
				g.issues = append(g.issues, issue)
			}
		}
	}

	if len(order) == 0 {
		return nil
	}
	out := make([]model.Failure, 0, len(order))
	for _, g := range order {
		out = append(out, model.Failure{ReportID: g.id, Issues: g.issues})
	}
	return out
}
