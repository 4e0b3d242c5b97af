package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/routedash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResultDecode(t *testing.T) {
	Convey("Given a gateway response for BOS to DEN", t, func() {
		body := []byte(`{"mode":"air","upstream":"air-recommender","source":"BOS","destination":"DEN","recommendations":[{"id":"r1","name":"Flight 1","source":"BOS","destination":"DEN"}]}`)
		var res model.Result
		So(json.Unmarshal(body, &res), ShouldBeNil)

		Convey("Then the single recommendation is decoded", func() {
			So(res.Mode, ShouldEqual, "air")
			So(res.Upstream, ShouldEqual, "air-recommender")
			So(res.Recommendations, ShouldHaveLength, 1)
			rec := res.Recommendations[0]
			So(rec.ID, ShouldEqual, "r1")
			So(model.OrDash(rec.Departure), ShouldEqual, "-")
			So(rec.MetaJSON(), ShouldEqual, "{}")
		})

		Convey("And the raw view falls back to the decoded result", func() {
			So(res.RawJSON(), ShouldContainSubstring, `"upstream": "air-recommender"`)
		})
	})

	Convey("Given a recommendation with meta", t, func() {
		rec := model.Recommendation{ID: "r2", Meta: map[string]any{"carrier": "UA"}}
		So(rec.MetaJSON(), ShouldEqual, "{\n  \"carrier\": \"UA\"\n}")
	})

	Convey("Given a result holding raw bytes", t, func() {
		res := model.Result{Raw: json.RawMessage(`{"b":1,"a":2}`)}
		So(res.RawJSON(), ShouldEqual, "{\n  \"a\": 2,\n  \"b\": 1\n}")
	})
}

func TestResultClone(t *testing.T) {
	Convey("Given a result with raw bytes and nested meta", t, func() {
		res := model.Result{
			Upstream: "rail-recommender",
			Recommendations: []model.Recommendation{{
				ID:   "r1",
				Meta: map[string]any{"stops": []any{"NHV"}, "fare": map[string]any{"usd": 89.0}},
			}},
			Raw: json.RawMessage(`{"upstream":"rail-recommender"}`),
		}

		Convey("When the clone is mutated", func() {
			c := res.Clone()
			c.Raw[0] = '['
			c.Recommendations[0].ID = "changed"
			c.Recommendations[0].Meta["stops"].([]any)[0] = "PVD"
			c.Recommendations[0].Meta["fare"].(map[string]any)["usd"] = 1.0
			c.Recommendations[0].Meta["new"] = true

			Convey("Then the original is untouched", func() {
				So(string(res.Raw), ShouldEqual, `{"upstream":"rail-recommender"}`)
				So(res.Recommendations[0].ID, ShouldEqual, "r1")
				So(res.Recommendations[0].Meta["stops"], ShouldResemble, []any{"NHV"})
				So(res.Recommendations[0].Meta["fare"], ShouldResemble, map[string]any{"usd": 89.0})
				So(res.Recommendations[0].Meta, ShouldNotContainKey, "new")
			})
		})

		Convey("When cloning an empty result", func() {
			c := model.Result{}.Clone()

			Convey("Then nil fields stay nil", func() {
				So(c.Raw, ShouldBeNil)
				So(c.Recommendations, ShouldBeNil)
			})
		})
	})
}
