package dedupe_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	dedupe "github.com/vsm/qualitycheck/internal/domain/dedupe"
)

func TestSet(t *testing.T) {
	Convey("Given a new Set", t, func() {
		s := dedupe.NewSet(4)

		Convey("Then it should be empty", func() {
			So(s.IDs(), ShouldBeEmpty)
		})

		Convey("When recording a new id", func() {
			seen := s.SeenAndRecord("r1")

			Convey("Then it should return false and record the id", func() {
				So(seen, ShouldBeFalse)
				So(s.IDs(), ShouldResemble, []string{"r1"})
			})
		})

		Convey("When recording the same id twice", func() {
			s.SeenAndRecord("r1")
			seen := s.SeenAndRecord("r1")

			Convey("Then the second call should report it as seen", func() {
				So(seen, ShouldBeTrue)
				So(s.IDs(), ShouldResemble, []string{"r1"})
			})
		})

		Convey("When recording ids out of lexical order", func() {
			for _, id := range []string{"c", "a", "c", "b", "a"} {
				s.SeenAndRecord(id)
			}

			Convey("Then IDs keeps first-seen order", func() {
				So(s.IDs(), ShouldResemble, []string{"c", "a", "b"})
			})
		})

		Convey("When IDs is mutated by the caller", func() {
			s.SeenAndRecord("a")
			ids := s.IDs()
			ids[0] = "z"

			Convey("Then the set is unaffected", func() {
				So(s.IDs(), ShouldResemble, []string{"a"})
			})
		})
	})
}

func TestDistinct(t *testing.T) {
	Convey("Given a list with repeated ids", t, func() {
		ids := make([]string, 0, 100)
		for i := 0; i < 100; i++ {
			ids = append(ids, fmt.Sprintf("r%d", i%10))
		}

		Convey("Then Distinct keeps one of each in first-seen order", func() {
			out := dedupe.Distinct(ids)
			So(len(out), ShouldEqual, 10)
			So(out[0], ShouldEqual, "r0")
			So(out[9], ShouldEqual, "r9")
		})

		Convey("Then an empty input yields an empty result", func() {
			So(dedupe.Distinct(nil), ShouldBeEmpty)
		})
	})
}
