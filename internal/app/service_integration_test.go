package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/routedash/internal/adapters/gateway"
	service "github.com/okian/routedash/internal/app"
	"github.com/okian/routedash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubGateway is an httptest stand-in for the recommendation gateway.
type stubGateway struct {
	mu           sync.Mutex
	healthStatus int
	healthBody   string
	healthDelay  time.Duration
	uris         []string
	requestIDs   []string
}

func (g *stubGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.uris = append(g.uris, r.URL.RequestURI())
	g.requestIDs = append(g.requestIDs, r.Header.Get(gateway.HeaderRequestID))
	status, body, delay := g.healthStatus, g.healthBody, g.healthDelay
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case gateway.PathServiceHealth:
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	case gateway.PathRecommendRoute:
		q := r.URL.Query()
		_, _ = w.Write([]byte(`{"mode":"` + q.Get("mode") + `","upstream":"air-recommender","source":"` + q.Get("source") +
			`","destination":"` + q.Get("destination") + `","recommendations":[{"id":"r1","name":"Flight 1","source":"BOS","destination":"DEN"}]}`))
	default:
		http.NotFound(w, r)
	}
}

func (g *stubGateway) requests() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.uris...)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a session wired to a gateway returning 500", t, func() {
		stub := &stubGateway{healthStatus: http.StatusInternalServerError, healthBody: `{"detail":"boom"}`}
		srv := httptest.NewServer(stub)
		defer srv.Close()

		client, err := gateway.New(srv.URL + "/")
		So(err, ShouldBeNil)
		s := service.New(client, service.WithPollInterval(time.Hour))
		defer s.Stop()

		Convey("When the first poll completes", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			So(eventually(func() bool { return s.State().HealthError != "" }), ShouldBeTrue)

			Convey("Then the snapshot is empty and the status error shown", func() {
				st := s.State()
				So(st.Health, ShouldBeNil)
				So(st.HealthError, ShouldEqual, `Health failed (500): {"detail":"boom"}`)
				So(stub.requests(), ShouldResemble, []string{"/service-health"})
			})
		})
	})

	Convey("Given a session wired to a healthy gateway", t, func() {
		stub := &stubGateway{healthStatus: http.StatusOK, healthBody: `{"air-service":"healthy","rail-service":"degraded"}`}
		srv := httptest.NewServer(stub)
		defer srv.Close()

		client, err := gateway.New(srv.URL)
		So(err, ShouldBeNil)
		ids := 0
		s := service.New(client,
			service.WithPollInterval(time.Hour),
			service.WithRequestIDs(func() string { ids++; return "id-" + strconv.Itoa(ids) }),
		)
		defer s.Stop()

		Convey("When submitting BOS to DEN for 5 air results", func() {
			res, err := s.Submit(context.Background(), model.Query{Source: "BOS", Destination: "DEN", TopN: 5, Mode: model.ModeAir})

			Convey("Then the gateway sees the ordered query and one card is produced", func() {
				So(err, ShouldBeNil)
				So(stub.requests(), ShouldResemble, []string{"/recommend-route?source=BOS&destination=DEN&top_n=5&mode=air"})
				So(stub.requestIDs, ShouldResemble, []string{"id-1"})
				So(res.Mode, ShouldEqual, "air")
				So(res.Recommendations, ShouldHaveLength, 1)
				So(s.State().Result.Recommendations[0].ID, ShouldEqual, "r1")
			})
		})

		Convey("When the session polls", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			So(eventually(func() bool { return s.State().Health != nil }), ShouldBeTrue)

			Convey("Then both services are shown", func() {
				healthy, unhealthy := s.State().Health.Counts()
				So(healthy, ShouldEqual, 1)
				So(unhealthy, ShouldEqual, 1)
			})
		})
	})
}

func TestServiceIntegration_SlowHealth(t *testing.T) {
	Convey("Given a gateway whose health check is slower than the poll interval", t, func() {
		stub := &stubGateway{
			healthStatus: http.StatusOK,
			healthBody:   `{"air-service":"healthy"}`,
			healthDelay:  80 * time.Millisecond,
		}
		srv := httptest.NewServer(stub)
		defer srv.Close()

		client, err := gateway.New(srv.URL)
		So(err, ShouldBeNil)
		s := service.New(client, service.WithPollInterval(20*time.Millisecond))
		defer s.Stop()

		Convey("When the session runs across several ticks", func() {
			So(s.Start(context.Background()), ShouldBeNil)
			So(eventually(func() bool {
				applied, _ := s.GetStats()["pollsApplied"].(int64)
				return applied >= 2
			}), ShouldBeTrue)

			Convey("Then every poll completes and its snapshot is stored", func() {
				st := s.State()
				So(st.Health, ShouldResemble, model.HealthSnapshot{"air-service": "healthy"})
				So(st.HealthError, ShouldBeEmpty)

				stats := s.GetStats()
				So(stats["pollsSkipped"], ShouldBeGreaterThan, int64(0))
				So(stats["pollsDropped"], ShouldEqual, int64(0))
			})
		})
	})
}
