package rules_test

import (
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vsm/qualitycheck/internal/domain/model"
	"github.com/vsm/qualitycheck/internal/domain/rules"
)

func document(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return doc
}

func report(id string, categories map[string]string) model.Report {
	return model.Report{
		ReportID:        id,
		PlayerID:        "player-1",
		CoachID:         "coach-1",
		ReportTimestamp: "2024-02-04T00:00:00Z",
		Categories:      categories,
	}
}

func TestFromDocument(t *testing.T) {
	Convey("Given a well-formed rule document", t, func() {
		cfg := rules.FromDocument(document(t, `{
			"requiredCategories": [" passing", "serving", "passing", ""],
			"allowedCategories": ["serving", "passing", "defense"],
			"maxCategoryLength": 250,
			"maxCategoriesPerReport": 10.9
		}`))

		Convey("Then string entries are trimmed, de-duplicated and sorted", func() {
			So(cfg.Required(), ShouldResemble, []string{"passing", "serving"})
			allowed, ok := cfg.Allowed()
			So(ok, ShouldBeTrue)
			So(allowed, ShouldResemble, []string{"defense", "passing", "serving"})
		})

		Convey("Then numeric limits are read as integers", func() {
			length, ok := cfg.MaxCategoryLength()
			So(ok, ShouldBeTrue)
			So(length, ShouldEqual, 250)
			count, ok := cfg.MaxCategoriesPerReport()
			So(ok, ShouldBeTrue)
			So(count, ShouldEqual, 10)
		})
	})

	Convey("Given a document with malformed entries", t, func() {
		cfg := rules.FromDocument(document(t, `{
			"requiredCategories": "serving",
			"allowedCategories": {"serving": true},
			"maxCategoryLength": "250",
			"maxCategoriesPerReport": true
		}`))

		Convey("Then every malformed entry imposes no restriction", func() {
			So(cfg.Required(), ShouldBeEmpty)
			_, ok := cfg.Allowed()
			So(ok, ShouldBeFalse)
			_, ok = cfg.MaxCategoryLength()
			So(ok, ShouldBeFalse)
			_, ok = cfg.MaxCategoriesPerReport()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a document with mixed-type lists and negative limits", t, func() {
		cfg := rules.FromDocument(document(t, `{
			"requiredCategories": ["serving", 3, null, "  "],
			"allowedCategories": [1, 2],
			"maxCategoryLength": -1
		}`))

		Convey("Then only usable values survive", func() {
			So(cfg.Required(), ShouldResemble, []string{"serving"})
			_, ok := cfg.Allowed()
			So(ok, ShouldBeFalse)
			_, ok = cfg.MaxCategoryLength()
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an empty document", t, func() {
		cfg := rules.FromDocument(map[string]any{})

		Convey("Then it equals the zero configuration", func() {
			So(cfg, ShouldResemble, rules.Config{})
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a configuration without restrictions", t, func() {
		cfg := rules.FromDocument(map[string]any{})

		Convey("Then structurally valid reports never fail", func() {
			reports := []model.Report{
				report("r1", map[string]string{"serving": ""}),
				report("r2", map[string]string{"anything": strings.Repeat("x", 5000)}),
			}
			So(rules.Evaluate(cfg, reports), ShouldBeEmpty)
		})
	})

	Convey("Scenario A: a required category is missing", t, func() {
		cfg := rules.FromDocument(document(t, `{"requiredCategories": ["serving", "passing"]}`))
		failures := rules.Evaluate(cfg, []model.Report{report("r1", map[string]string{"serving": "x"})})

		So(failures, ShouldResemble, []model.Failure{
			{ReportID: "r1", Issues: []string{"Missing required categories: passing"}},
		})
	})

	Convey("Given required categories with blank values", t, func() {
		cfg := rules.FromDocument(document(t, `{"requiredCategories": ["serving", "passing", "defense"]}`))
		failures := rules.Evaluate(cfg, []model.Report{
			report("r1", map[string]string{"serving": "  ", "passing": "", "extra": "fine"}),
		})

		Convey("Then exactly one issue names every blank or absent one, sorted", func() {
			So(failures, ShouldHaveLength, 1)
			So(failures[0].Issues, ShouldResemble, []string{
				"Missing required categories: defense, passing, serving",
			})
		})
	})

	Convey("Given an allowlist", t, func() {
		cfg := rules.FromDocument(document(t, `{"allowedCategories": ["serving", "passing"]}`))
		failures := rules.Evaluate(cfg, []model.Report{
			report("r1", map[string]string{"serving": "a", "passing": "b", "zebra": "c", "attack": "d"}),
			report("r2", map[string]string{"serving": "a"}),
		})

		Convey("Then only the extra categories are listed, sorted", func() {
			So(failures, ShouldResemble, []model.Failure{
				{ReportID: "r1", Issues: []string{"Disallowed categories present: attack, zebra"}},
			})
		})
	})

	Convey("Given category names spelled in decomposed Unicode", t, func() {
		cfg := rules.FromDocument(document(t, `{
			"requiredCategories": ["de\u0301fense"],
			"allowedCategories": ["de\u0301fense", "serving"]
		}`))

		Convey("Then a report using the same bytes passes", func() {
			failures := rules.Evaluate(cfg, []model.Report{
				report("r1", map[string]string{"de\u0301fense": "solid"}),
			})
			So(failures, ShouldBeEmpty)
		})

		Convey("Then a report using the composed spelling passes too", func() {
			failures := rules.Evaluate(cfg, []model.Report{
				report("r1", map[string]string{"d\u00e9fense": "solid", "serving": "ok"}),
			})
			So(failures, ShouldBeEmpty)
		})

		Convey("Then the configured names are reported in composed form", func() {
			So(cfg.Required(), ShouldResemble, []string{"d\u00e9fense"})
		})
	})

	Convey("Scenario B: two reports share a reportId", t, func() {
		cfg := rules.FromDocument(map[string]any{})
		failures := rules.Evaluate(cfg, []model.Report{
			report("r1", map[string]string{"serving": "a"}),
			report("r2", map[string]string{"serving": "a"}),
			report("r1", map[string]string{"serving": "b"}),
			report("r1", map[string]string{"serving": "c"}),
		})

		Convey("Then only the second and later occurrences are flagged", func() {
			So(failures, ShouldResemble, []model.Failure{
				{ReportID: "r1", Issues: []string{rules.IssueDuplicateInBatch}},
				{ReportID: "r1", Issues: []string{rules.IssueDuplicateInBatch}},
			})
		})
	})

	Convey("Given a category count limit", t, func() {
		cfg := rules.FromDocument(document(t, `{"maxCategoriesPerReport": 2}`))
		failures := rules.Evaluate(cfg, []model.Report{
			report("r1", map[string]string{"a": "1", "b": "2", "c": "3"}),
			report("r2", map[string]string{"a": "1", "b": "2"}),
		})

		So(failures, ShouldResemble, []model.Failure{
			{ReportID: "r1", Issues: []string{"Category count 3 exceeds limit of 2"}},
		})
	})

	Convey("Scenario C: a category exceeds the length limit", t, func() {
		cfg := rules.FromDocument(document(t, `{"maxCategoryLength": 5}`))
		failures := rules.Evaluate(cfg, []model.Report{
			report("r1", map[string]string{"serving": "abcdef", "passing": "abcde", "défense": "ééééé"}),
		})

		Convey("Then the issue names that category and counts characters, not bytes", func() {
			So(failures, ShouldHaveLength, 1)
			So(failures[0].Issues, ShouldResemble, []string{"Category feedback exceeds max length: serving"})
		})
	})

	Convey("Given a report that triggers every check", t, func() {
		cfg := rules.FromDocument(document(t, `{
			"requiredCategories": ["serving"],
			"allowedCategories": ["serving"],
			"maxCategoriesPerReport": 1,
			"maxCategoryLength": 1
		}`))
		reports := []model.Report{
			report("r1", map[string]string{"serving": "ok"}),
			report("r1", map[string]string{"passing": "long", "defense": "long"}),
		}
		failures := rules.Evaluate(cfg, reports)

		Convey("Then issues come in the fixed check order", func() {
			So(failures, ShouldHaveLength, 2)
			So(failures[1].Issues, ShouldResemble, []string{
				"Duplicate reportId within payload",
				"Missing required categories: serving",
				"Disallowed categories present: defense, passing",
				"Category count 2 exceeds limit of 1",
				"Category feedback exceeds max length: defense, passing",
			})
		})

		Convey("Then re-running yields identical results", func() {
			So(rules.Evaluate(cfg, reports), ShouldResemble, failures)
		})

		Convey("Then each issue maps back to its check", func() {
			names := make([]string, 0, len(failures[1].Issues))
			for _, issue := range failures[1].Issues {
				names = append(names, rules.CheckName(issue))
			}
			So(names, ShouldResemble, []string{
				rules.CheckDuplicateInBatch,
				rules.CheckRequiredCategories,
				rules.CheckAllowedCategories,
				rules.CheckCategoryCount,
				rules.CheckCategoryLength,
			})
			So(rules.CheckName("Report already exists in reports table"), ShouldEqual, "other")
		})
	})
}
