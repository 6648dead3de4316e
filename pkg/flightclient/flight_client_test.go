package flightclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"corptravel/internal/flight"
	"corptravel/pkg/logger"
	"corptravel/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "duffel_test_token"

func newTestClient(t *testing.T, handler http.HandlerFunc, corporate map[string]string) *DuffelClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewDuffelClient(Config{
		BaseURL:        srv.URL + "/",
		AccessToken:    testToken,
		APIVersion:     "v2",
		CorporateCodes: corporate,
	}, ratelimit.NewKeyed(1000, 10), logger.Nop())
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func searchRequest() flight.SearchRequest {
	return flight.SearchRequest{
		Origin:        "mad",
		Destination:   "JFK",
		DepartureDate: "2026-10-29",
		Passengers:    1,
	}
}

func TestSearchFlights_SendsOfferRequest(t *testing.T) {
	var got OfferRequestPayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/air/offer_requests", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("return_offers"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "v2", r.Header.Get("Duffel-Version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Data OfferRequestPayload `json:"data"`
		}
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		got = body.Data

		writeData(w, http.StatusCreated, OfferRequestResponse{
			ID: "orq_1",
			Offers: []OfferPayload{
				{ID: "off_1", TotalAmount: "420.00", TotalCurrency: "EUR"},
				{ID: "off_bad", TotalAmount: ""},
			},
		})
	}, map[string]string{"IB": "CORP42"})

	req := searchRequest()
	req.ReturnDate = "2026-11-05"
	req.Passengers = 2
	req.CabinClass = "Business"
	req.CorporateFares = true
	req.LoyaltyAccounts = []flight.LoyaltyAccount{{AirlineIATACode: "ib", AccountNumber: "123"}}

	res, err := client.SearchFlights(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "orq_1", res.OfferRequestID)
	assert.Equal(t, flight.Fingerprint(req), res.RequestFingerprint)
	assert.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "off_1", res.Flights[0].ID)

	require.Len(t, got.Slices, 2)
	assert.Equal(t, SliceRequestPayload{Origin: "MAD", Destination: "JFK", DepartureDate: "2026-10-29"}, got.Slices[0])
	assert.Equal(t, SliceRequestPayload{Origin: "JFK", Destination: "MAD", DepartureDate: "2026-11-05"}, got.Slices[1])
	assert.Equal(t, "business", got.CabinClass)

	require.Len(t, got.Passengers, 2)
	assert.Equal(t, "adult", got.Passengers[0].Type)
	assert.Equal(t, []LoyaltyAccountPayload{{AirlineIATACode: "IB", AccountNumber: "123"}}, got.Passengers[0].LoyaltyProgrammeAccounts)
	assert.Empty(t, got.Passengers[1].LoyaltyProgrammeAccounts)

	assert.Equal(t, map[string][]PrivateFarePayload{"IB": {{CorporateCode: "CORP42"}}}, got.PrivateFares)
}

func TestSearchFlights_OneWayWithoutCorporateFares(t *testing.T) {
	var got OfferRequestPayload
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data OfferRequestPayload `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body.Data
		writeData(w, http.StatusCreated, OfferRequestResponse{ID: "orq_2"})
	}, map[string]string{"IB": "CORP42"})

	res, err := client.SearchFlights(context.Background(), searchRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Flights)
	assert.NotNil(t, res.Flights)

	assert.Len(t, got.Slices, 1)
	assert.Equal(t, "economy", got.CabinClass)
	assert.Nil(t, got.PrivateFares)
}

func TestSearchFlights_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   flight.ErrorCode
	}{
		{status: http.StatusBadRequest, body: `{"errors":[{"code":"invalid_parameter","message":"bad origin"}]}`, want: flight.ErrorCodeValidation},
		{status: http.StatusUnauthorized, want: flight.ErrorCodeUnauthorized},
		{status: http.StatusForbidden, want: flight.ErrorCodeUnauthorized},
		{status: http.StatusNotFound, want: flight.ErrorCodeNotFound},
		{status: http.StatusConflict, want: flight.ErrorCodeOfferUnavailable},
		{status: http.StatusUnprocessableEntity, want: flight.ErrorCodeBookingFailed},
		{status: http.StatusUnprocessableEntity, body: `{"errors":[{"code":"no_offers_found","title":"No offers"}]}`, want: flight.ErrorCodeNoOffers},
		{status: http.StatusTooManyRequests, want: flight.ErrorCodeRateLimited},
		{status: http.StatusInternalServerError, want: flight.ErrorCodeServer},
		{status: http.StatusServiceUnavailable, body: "upstream down", want: flight.ErrorCodeServer},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.status, tt.want), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, nil)

			_, err := client.SearchFlights(context.Background(), searchRequest())
			require.Error(t, err)
			assert.Equal(t, tt.want, flight.CodeOf(err))
		})
	}
}

func TestMapStatus_Details(t *testing.T) {
	appErr := mapStatus(http.StatusBadRequest, []byte(`{"errors":[{"code":"invalid_parameter","message":"bad origin"},{"title":"missing date"}]}`))
	assert.Equal(t, "invalid_parameter: bad origin; missing date", appErr.Details)
	assert.Equal(t, flight.UserMessage(flight.ErrorCodeValidation), appErr.Message)

	appErr = mapStatus(http.StatusBadGateway, []byte("  <html>bad gateway</html>  "))
	assert.Equal(t, "<html>bad gateway</html>", appErr.Details)
}

func TestSearchFlights_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "{truncated")
	}, nil)

	_, err := client.SearchFlights(context.Background(), searchRequest())
	assert.Equal(t, flight.ErrorCodeServer, flight.CodeOf(err))
}

func TestSearchFlights_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewDuffelClient(Config{BaseURL: url, AccessToken: testToken, APIVersion: "v2"}, nil, logger.Nop())

	_, err := client.SearchFlights(context.Background(), searchRequest())
	assert.Equal(t, flight.ErrorCodeNetwork, flight.CodeOf(err))
}

func TestSearchFlights_CancelledBeforeSlot(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchFlights(ctx, searchRequest())
	assert.Equal(t, flight.ErrorCodeNetwork, flight.CodeOf(err))
	assert.Equal(t, 0, calls)
}

func TestGetOffer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/air/offers/off_1":
			writeData(w, http.StatusOK, OfferPayload{ID: "off_1", TotalAmount: "99.00", TotalCurrency: "GBP"})
		case "/air/offers/off_nameless":
			writeData(w, http.StatusOK, OfferPayload{TotalAmount: "99.00"})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errors":[{"code":"not_found","message":"offer not found"}]}`)
		}
	}, nil)

	f, err := client.GetOffer(context.Background(), "off_1")
	require.NoError(t, err)
	assert.Equal(t, "GBP", f.TotalPrice.Currency)

	_, err = client.GetOffer(context.Background(), "off_nameless")
	assert.Equal(t, flight.ErrorCodeServer, flight.CodeOf(err))

	_, err = client.GetOffer(context.Background(), "off_gone")
	assert.Equal(t, flight.ErrorCodeNotFound, flight.CodeOf(err))
}

func TestGetAirports(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/places/suggestions":
			assert.Equal(t, "london", r.URL.Query().Get("query"))
			writeData(w, http.StatusOK, []PlacePayload{
				{Type: "city", Name: "London", Airports: []PlacePayload{
					{Type: "airport", IATACode: "LHR", Name: "Heathrow", TimeZone: "Europe/London"},
					{Type: "airport", IATACode: "LGW", Name: "Gatwick"},
				}},
				{Type: "airport", IATACode: "lhr", Name: "Heathrow"},
				{Type: "airport", IATACode: "LCY", Name: "London City", IATACountryCode: "GB"},
			})
		case "/air/airports":
			assert.Equal(t, "200", r.URL.Query().Get("limit"))
			writeData(w, http.StatusOK, []PlacePayload{{IATACode: "MAD", Name: "Madrid-Barajas"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, nil)

	airports, err := client.GetAirports(context.Background(), "london")
	require.NoError(t, err)
	codes := make([]string, 0, len(airports))
	for _, a := range airports {
		codes = append(codes, a.IATACode)
	}
	assert.Equal(t, []string{"LHR", "LGW", "LCY"}, codes)
	assert.Equal(t, "Europe/London", airports[0].TimeZone)
	assert.Equal(t, "GB", airports[2].CountryCode)

	all, err := client.GetAirports(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "MAD", all[0].IATACode)
}

func TestGetAirlines(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air/airlines", r.URL.Path)
		writeData(w, http.StatusOK, []CarrierPayload{
			{IATACode: "ib", Name: "Iberia", LogoSymbolURL: "https://assets.example/ib.svg"},
			{Name: "Charter without code"},
		})
	}, nil)

	airlines, err := client.GetAirlines(context.Background())
	require.NoError(t, err)
	require.Len(t, airlines, 1)
	assert.Equal(t, flight.Airline{Code: "IB", Name: "Iberia", LogoURL: "https://assets.example/ib.svg"}, airlines[0])
}
