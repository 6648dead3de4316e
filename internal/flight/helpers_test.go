package flight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"corptravel/pkg/cache"
	"corptravel/pkg/idgen"
	"corptravel/pkg/logger"
	"corptravel/pkg/ratelimit"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: testNow} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func daysFromNow(days int) string {
	return testNow.AddDate(0, 0, days).Format(dateLayout)
}

func madJFK() SearchRequest {
	return SearchRequest{
		Origin:        "MAD",
		Destination:   "JFK",
		DepartureDate: daysFromNow(10),
		Passengers:    1,
		CabinClass:    "economy",
	}
}

func u32(v uint32) *uint32 { return &v }

func f64(v float64) *float64 { return &v }

// testFlight builds a single-slice flight with stops+1 equal segments on carrier.
func testFlight(id string, price float64, minutes uint32, stops int, carrier string, depart time.Time) Flight {
	segMinutes := minutes / uint32(stops+1)
	segments := make([]Segment, 0, stops+1)
	at := depart
	for i := 0; i <= stops; i++ {
		arrive := at.Add(time.Duration(segMinutes) * time.Minute)
		segments = append(segments, Segment{
			Origin:       fmt.Sprintf("A%02d", i),
			Destination:  fmt.Sprintf("A%02d", i+1),
			DepartAt:     at,
			ArriveAt:     arrive,
			Airline:      Airline{Code: carrier, Name: carrier + " Airways"},
			FlightNumber: fmt.Sprintf("%s%d", carrier, 100+i),
		})
		at = arrive
	}
	return Flight{
		ID:         id,
		TotalPrice: Price{Amount: price, Currency: "EUR"},
		Slices: []Slice{{
			Origin:          segments[0].Origin,
			Destination:     segments[len(segments)-1].Destination,
			DurationMinutes: u32(minutes),
			Segments:        segments,
		}},
	}
}

func departAt(hour, minute int) time.Time {
	return time.Date(2026, 10, 29, hour, minute, 0, 0, time.UTC)
}

type fakeGateway struct {
	mu           sync.Mutex
	searchCalls  []SearchRequest
	offerCalls   int
	airportCalls int
	airlineCalls int

	search   func(ctx context.Context, req SearchRequest) (*SearchResult, error)
	offer    func(ctx context.Context, id string) (*Flight, error)
	airports []Airport
	airlines []Airline
}

func (g *fakeGateway) SearchFlights(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	g.mu.Lock()
	g.searchCalls = append(g.searchCalls, req)
	fn := g.search
	g.mu.Unlock()

	if fn == nil {
		return &SearchResult{Flights: []Flight{testFlight("off_1", 300, 480, 0, "IB", departAt(10, 0))}, FetchedAt: testNow}, nil
	}
	return fn(ctx, req)
}

func (g *fakeGateway) GetOffer(ctx context.Context, id string) (*Flight, error) {
	g.mu.Lock()
	g.offerCalls++
	fn := g.offer
	g.mu.Unlock()
	return fn(ctx, id)
}

func (g *fakeGateway) GetAirports(_ context.Context, _ string) ([]Airport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.airportCalls++
	return g.airports, nil
}

func (g *fakeGateway) GetAirlines(_ context.Context) ([]Airline, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.airlineCalls++
	return g.airlines, nil
}

func (g *fakeGateway) SearchCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.searchCalls)
}

func (g *fakeGateway) LastSearch() SearchRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.searchCalls[len(g.searchCalls)-1]
}

type testEnv struct {
	clock   *testClock
	gateway *fakeGateway
	cache   *ResultCache
	limiter *ratelimit.SlidingWindow
	service *Service
}

func newTestEnv(prefs PreferenceStore, opts ...Option) *testEnv {
	clock := newTestClock()
	gw := &fakeGateway{}
	rc := NewResultCache(cache.NewMemoryCache(), DefaultTTLPolicy(), logger.Nop(),
		WithCacheClock(clock.Now))
	limiter := ratelimit.NewSlidingWindow(10, time.Minute, ratelimit.WithWindowClock(clock.Now))

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	svc := NewService(gw, rc, limiter, prefs, &idgen.Sequence{}, logger.Nop(), opts...)
	return &testEnv{clock: clock, gateway: gw, cache: rc, limiter: limiter, service: svc}
}
