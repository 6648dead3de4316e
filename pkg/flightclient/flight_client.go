package flightclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"corptravel/internal/flight"
	"corptravel/pkg/logger"
	"corptravel/pkg/ratelimit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	limiterKey      = "duffel"
	maxResponseSize = 32 << 20
	referenceLimit  = 200
)

type Config struct {
	BaseURL     string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	// CorporateCodes maps airline IATA code to the corporate code sent when
	// corporate fares are requested.
	CorporateCodes map[string]string
}

// DuffelClient talks to a Duffel-style offer API. Each call is a single attempt;
// retrying is left to the caller.
type DuffelClient struct {
	httpClient     *http.Client
	baseURL        string
	apiVersion     string
	corporateCodes map[string]string
	limiter        *ratelimit.Keyed
	tracer         trace.Tracer
	now            func() time.Time
	logger         logger.Logger
}

// NewDuffelClient builds the gateway. limiter paces outbound calls and may be nil.
func NewDuffelClient(cfg Config, limiter *ratelimit.Keyed, log logger.Logger) *DuffelClient {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})

	return &DuffelClient{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &oauth2.Transport{Source: tokens, Base: http.DefaultTransport},
		},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion:     cfg.APIVersion,
		corporateCodes: cfg.CorporateCodes,
		limiter:        limiter,
		tracer:         otel.Tracer("corptravel/pkg/flightclient"),
		now:            time.Now,
		logger:         log,
	}
}

func (c *DuffelClient) SearchFlights(ctx context.Context, req flight.SearchRequest) (*flight.SearchResult, error) {
	payload := c.buildOfferRequest(req)

	var resp dataEnvelope[OfferRequestResponse]
	err := c.do(ctx, "offer_requests.create", http.MethodPost, "/air/offer_requests?return_offers=true",
		dataEnvelope[OfferRequestPayload]{Data: payload}, &resp)
	if err != nil {
		return nil, err
	}

	result := ToSearchResult(resp.Data, flight.Fingerprint(req), c.now())
	if skipped := len(resp.Data.Offers) - len(result.Flights); skipped > 0 {
		c.logger.Warn("skipped unusable offers",
			logger.Field{Key: "offer_request_id", Value: resp.Data.ID},
			logger.Field{Key: "skipped", Value: skipped},
		)
	}
	return result, nil
}

func (c *DuffelClient) GetOffer(ctx context.Context, offerID string) (*flight.Flight, error) {
	var resp dataEnvelope[OfferPayload]
	if err := c.do(ctx, "offers.get", http.MethodGet, "/air/offers/"+url.PathEscape(offerID), nil, &resp); err != nil {
		return nil, err
	}

	f, ok := ToFlight(resp.Data)
	if !ok {
		return nil, flight.NewAppError(flight.ErrorCodeServer, "offer payload lacks id or total amount", nil)
	}
	return &f, nil
}

// GetAirports lists airports, or suggests them for a city/airport query.
func (c *DuffelClient) GetAirports(ctx context.Context, query string) ([]flight.Airport, error) {
	var resp dataEnvelope[[]PlacePayload]

	var err error
	if query == "" {
		err = c.do(ctx, "airports.list", http.MethodGet, fmt.Sprintf("/air/airports?limit=%d", referenceLimit), nil, &resp)
	} else {
		err = c.do(ctx, "places.suggestions", http.MethodGet, "/places/suggestions?query="+url.QueryEscape(query), nil, &resp)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	airports := make([]flight.Airport, 0, len(resp.Data))
	add := func(p PlacePayload) {
		code := strings.ToUpper(p.IATACode)
		if code == "" {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		airports = append(airports, toAirport(p))
	}

	for _, place := range resp.Data {
		switch place.Type {
		case "", "airport":
			add(place)
		case "city":
			for _, a := range place.Airports {
				add(a)
			}
		}
	}
	return airports, nil
}

func (c *DuffelClient) GetAirlines(ctx context.Context) ([]flight.Airline, error) {
	var resp dataEnvelope[[]CarrierPayload]
	if err := c.do(ctx, "airlines.list", http.MethodGet, fmt.Sprintf("/air/airlines?limit=%d", referenceLimit), nil, &resp); err != nil {
		return nil, err
	}

	airlines := make([]flight.Airline, 0, len(resp.Data))
	for i := range resp.Data {
		if resp.Data[i].IATACode == "" {
			continue
		}
		airlines = append(airlines, toAirline(&resp.Data[i]))
	}
	return airlines, nil
}

func (c *DuffelClient) buildOfferRequest(req flight.SearchRequest) OfferRequestPayload {
	n := flight.Normalize(req)

	payload := OfferRequestPayload{
		Slices: []SliceRequestPayload{{
			Origin:        n.Origin,
			Destination:   n.Destination,
			DepartureDate: n.DepartureDate,
		}},
		CabinClass: n.CabinClass,
	}
	if n.IsRoundTrip() {
		payload.Slices = append(payload.Slices, SliceRequestPayload{
			Origin:        n.Destination,
			Destination:   n.Origin,
			DepartureDate: n.ReturnDate,
		})
	}

	accounts := make([]LoyaltyAccountPayload, 0, len(n.LoyaltyAccounts))
	for _, acc := range n.LoyaltyAccounts {
		accounts = append(accounts, LoyaltyAccountPayload{
			AirlineIATACode: acc.AirlineIATACode,
			AccountNumber:   acc.AccountNumber,
		})
	}

	passengers := n.Passengers
	if passengers == 0 {
		passengers = 1
	}
	payload.Passengers = make([]PassengerPayload, 0, passengers)
	for i := uint32(0); i < passengers; i++ {
		p := PassengerPayload{Type: "adult"}
		// loyalty accounts belong to the traveller making the search
		if i == 0 && len(accounts) > 0 {
			p.LoyaltyProgrammeAccounts = accounts
		}
		payload.Passengers = append(payload.Passengers, p)
	}

	if n.CorporateFares {
		if len(c.corporateCodes) == 0 {
			c.logger.Debug("corporate fares requested but no corporate codes configured")
		} else {
			payload.PrivateFares = make(map[string][]PrivateFarePayload, len(c.corporateCodes))
			for airline, code := range c.corporateCodes {
				payload.PrivateFares[airline] = []PrivateFarePayload{{CorporateCode: code}}
			}
		}
	}
	return payload
}

func (c *DuffelClient) do(ctx context.Context, operation, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "duffel."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.request.method", method))

	fail := func(appErr *flight.AppError) error {
		span.RecordError(appErr)
		span.SetStatus(codes.Error, string(appErr.Code))
		return appErr
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return fail(networkError(fmt.Errorf("waiting for provider slot: %w", err)))
		}
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fail(flight.NewAppError(flight.ErrorCodeInternalFailure, err.Error(), err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.logger.Error("failed to build provider request", logger.Field{Key: "operation", Value: operation}, logger.Err(err))
		return fail(flight.NewAppError(flight.ErrorCodeInternalFailure, err.Error(), err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Duffel-Version", c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(networkError(fmt.Errorf("external api call failed: %w", err)))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(networkError(fmt.Errorf("reading provider response: %w", err)))
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("provider call",
		logger.Field{Key: "operation", Value: operation},
		logger.Field{Key: "status", Value: resp.StatusCode},
		logger.Field{Key: "elapsed", Value: time.Since(start)},
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(mapStatus(resp.StatusCode, raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fail(flight.NewAppError(flight.ErrorCodeServer, "malformed provider response", err))
		}
	}
	return nil
}
