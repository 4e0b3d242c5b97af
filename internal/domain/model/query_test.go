package model_test

import (
	"errors"
	"testing"

	"github.com/okian/routedash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseMode(t *testing.T) {
	Convey("Given mode strings", t, func() {
		for in, want := range map[string]model.Mode{"": model.ModeAuto, "auto": model.ModeAuto, " AIR ": model.ModeAir, "rail": model.ModeRail} {
			got, err := model.ParseMode(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		Convey("Then unknown modes are rejected", func() {
			_, err := model.ParseMode("bus")
			So(errors.Is(err, model.ErrInvalidMode), ShouldBeTrue)
		})
	})
}

func TestQueryValidate(t *testing.T) {
	Convey("Given recommendation queries", t, func() {
		Convey("When source or destination is blank after trimming", func() {
			for _, q := range []model.Query{
				{Source: "", Destination: "DEN"},
				{Source: "BOS", Destination: "   "},
				{Source: "\t", Destination: "\n"},
			} {
				So(q.Validate(), ShouldEqual, model.ErrMissingEndpoints)
			}

			Convey("Then the message is the user-facing one", func() {
				So(model.ErrMissingEndpoints.Error(), ShouldEqual, "Please provide both source and destination.")
			})
		})

		Convey("When the mode is unknown", func() {
			err := model.Query{Source: "BOS", Destination: "DEN", Mode: "bus"}.Validate()
			So(errors.Is(err, model.ErrInvalidMode), ShouldBeTrue)
		})

		Convey("When the query is complete", func() {
			So(model.Query{Source: " BOS ", Destination: "DEN"}.Validate(), ShouldBeNil)
		})
	})
}

func TestQueryNormalize(t *testing.T) {
	Convey("Given result count bounds", t, func() {
		So(model.Query{}.Normalize().TopN, ShouldEqual, 10)
		So(model.Query{TopN: -3}.Normalize().TopN, ShouldEqual, 1)
		So(model.Query{TopN: 99}.Normalize().TopN, ShouldEqual, 50)
		So(model.Query{TopN: 7}.Normalize().TopN, ShouldEqual, 7)
		So(model.Query{}.Normalize().Mode, ShouldEqual, model.ModeAuto)
	})
}

func TestQueryEncode(t *testing.T) {
	Convey("Given a fully specified air query", t, func() {
		q := model.Query{Source: "BOS", Destination: "DEN", TopN: 5, Mode: model.ModeAir}

		Convey("Then parameters keep wire order", func() {
			So(q.Encode(), ShouldEqual, "source=BOS&destination=DEN&top_n=5&mode=air")
		})
	})

	Convey("Given auto or blank mode", t, func() {
		for _, mode := range []model.Mode{"", model.ModeAuto, "AUTO"} {
			q := model.Query{Source: "HBR", Destination: "IVY", Mode: mode}

			So(q.Encode(), ShouldEqual, "source=HBR&destination=IVY&top_n=10")
			So(q.Encode(), ShouldNotContainSubstring, "mode=")
		}
	})

	Convey("Given a user id with spaces around it", t, func() {
		q := model.Query{Source: " BOS", Destination: "DEN ", UserID: "  test user ", TopN: 3, Mode: model.ModeRail}

		Convey("Then it is trimmed, escaped and placed before mode", func() {
			So(q.Encode(), ShouldEqual, "source=BOS&destination=DEN&top_n=3&user_id=test+user&mode=rail")
		})
	})

	Convey("Given a blank user id", t, func() {
		q := model.Query{Source: "BOS", Destination: "DEN", UserID: "   "}
		So(q.Encode(), ShouldNotContainSubstring, "user_id")
	})
}
