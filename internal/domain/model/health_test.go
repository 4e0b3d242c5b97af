package model_test

import (
	"testing"

	"github.com/okian/routedash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	Convey("Given status strings reported by the gateway", t, func() {
		cases := map[string]string{
			"healthy":                model.ClassHealthy,
			"healthy (slow)":         model.ClassHealthy,
			"degraded":               model.ClassUnhealthy,
			"down":                   model.ClassUnhealthy,
			"unhealthy (503)":        model.ClassUnhealthy,
			"unreachable":            model.ClassUnhealthy,
			"Healthy":                model.ClassUnhealthy,
			"":                       model.ClassUnhealthy,
			"error: no such service": model.ClassUnhealthy,
		}

		Convey("Then only a literal healthy prefix classifies as healthy", func() {
			for status, want := range cases {
				So(model.Classify(status), ShouldEqual, want)
				So(model.IsHealthy(status), ShouldEqual, want == model.ClassHealthy)
			}
		})
	})
}

func TestHealthSnapshot(t *testing.T) {
	Convey("Given a snapshot with an air and a rail service", t, func() {
		snap := model.HealthSnapshot{"rail-service": "degraded", "air-service": "healthy"}

		Convey("When listing entries", func() {
			entries := snap.Entries()

			Convey("Then they are sorted and classified", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0], ShouldResemble, model.ServiceStatus{Service: "air-service", Status: "healthy", Class: model.ClassHealthy})
				So(entries[1], ShouldResemble, model.ServiceStatus{Service: "rail-service", Status: "degraded", Class: model.ClassUnhealthy})
			})
		})

		Convey("When counting", func() {
			healthy, unhealthy := snap.Counts()
			So(healthy, ShouldEqual, 1)
			So(unhealthy, ShouldEqual, 1)
		})

		Convey("When cloning", func() {
			clone := snap.Clone()
			clone["air-service"] = "down"

			Convey("Then the original is untouched", func() {
				So(snap["air-service"], ShouldEqual, "healthy")
			})
		})

		Convey("When cloning a nil snapshot", func() {
			var empty model.HealthSnapshot
			So(empty.Clone(), ShouldBeNil)
			So(empty.Entries(), ShouldBeEmpty)
		})
	})
}
