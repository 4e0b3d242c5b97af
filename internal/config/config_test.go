package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/routedash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Profile, convey.ShouldEqual, config.ProfileGateway)
			convey.So(cfg.PollInterval(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.DefaultTopN, convey.ShouldEqual, 10)
		})
	})
}

func TestConfig_Normalize(t *testing.T) {
	convey.Convey("Given configs per profile", t, func() {
		convey.Convey("When no gateway URL is set", func() {
			gw, air, rail := config.New(), config.New(), config.New()
			air.Profile = "Airline"
			rail.Profile = " rail "
			gw.Normalize()
			air.Normalize()
			rail.Normalize()

			convey.Convey("Then each instance keeps its own default upstream", func() {
				convey.So(gw.GatewayURL, convey.ShouldEqual, "http://localhost:9000")
				convey.So(air.GatewayURL, convey.ShouldEqual, "http://localhost:8150")
				convey.So(rail.GatewayURL, convey.ShouldEqual, "http://localhost:8050")
				convey.So(gw.ActiveProfile().Recommend, convey.ShouldBeTrue)
				convey.So(air.ActiveProfile().Recommend, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the gateway URL carries a trailing slash", func() {
			cfg := config.New()
			cfg.GatewayURL = "http://gw.local:9000/"
			cfg.Normalize()

			convey.Convey("Then it is stripped", func() {
				convey.So(cfg.GatewayURL, convey.ShouldEqual, "http://gw.local:9000")
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a normalized default config", t, func() {
		cfg := config.New()
		cfg.Normalize()
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("When the profile is unknown", func() {
			cfg.Profile = "bus"
			err := cfg.Validate()

			convey.Convey("Then it is rejected as invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unknown profile")
			})
		})

		convey.Convey("When the gateway URL is relative", func() {
			cfg.GatewayURL = "localhost:9000"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the poll interval is zero", func() {
			cfg.PollIntervalMS = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When default_top_n is out of range", func() {
			cfg.DefaultTopN = 51
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the request timeout is negative", func() {
			cfg.RequestTimeoutMS = -1
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
