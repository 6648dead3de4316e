package flight

import (
	"errors"
	"net/http"
	"time"

	"corptravel/pkg/logger"

	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service       *Service
	logger        logger.Logger
	exposeDetails bool
}

// NewFlightHandler builds the HTTP surface. exposeDetails adds raw diagnostic text
// to error responses and must be off in production.
func NewFlightHandler(s *Service, log logger.Logger, exposeDetails bool) *FlightHandler {
	return &FlightHandler{
		service:       s,
		logger:        log,
		exposeDetails: exposeDetails,
	}
}

func (h *FlightHandler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.POST("/flights/search", h.SearchFlightsHandler)
	v1.POST("/flights/search/debounced", h.SubmitDebouncedHandler)
	v1.DELETE("/flights/search", h.ClearSearchHandler)
	v1.GET("/flights/session", h.SessionHandler)
	v1.PATCH("/flights/filters", h.UpdateFiltersHandler)
	v1.PUT("/flights/sort", h.UpdateSortingHandler)
	v1.GET("/flights/offers/:id", h.GetOfferHandler)
	v1.GET("/airports", h.GetAirportsHandler)
	v1.GET("/airlines", h.GetAirlinesHandler)
	v1.DELETE("/cache", h.ClearCacheHandler)
	v1.GET("/cache/stats", h.CacheStatsHandler)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code"`
	Details string    `json:"details,omitempty"`
	Field   string    `json:"field,omitempty"`
	Rule    string    `json:"rule,omitempty"`
}

// SessionView is the session as the UI renders it.
type SessionView struct {
	Phase          Phase           `json:"phase"`
	ActiveRequest  *SearchRequest  `json:"active_request,omitempty"`
	Filters        FilterState     `json:"filters"`
	SortKey        SortKey         `json:"sort_key"`
	Error          *AppError       `json:"error,omitempty"`
	RecentSearches []SearchRequest `json:"recent_searches"`
	Result         *ResultSummary  `json:"result,omitempty"`
	Flights        []Flight        `json:"flights"`
}

type ResultSummary struct {
	RequestFingerprint string    `json:"request_fingerprint"`
	OfferRequestID     string    `json:"offer_request_id,omitempty"`
	TotalCount         int       `json:"total_count"`
	VisibleCount       int       `json:"visible_count"`
	FromCache          bool      `json:"from_cache"`
	FetchedAt          time.Time `json:"fetched_at"`
}

type SortRequest struct {
	SortKey SortKey `json:"sort_key"`
}

// SearchFlightsHandler godoc
// @Summary      Search flight offers
// @Description  Validates, rate limits and runs a search for the calling client. Repeated searches are served from cache.
// @Tags         flights
// @Accept       json
// @Produce      json
// @Param        X-Client-ID header string false "Client id (issued when absent)"
// @Param        request body SearchRequest true "Search criteria"
// @Success      200 {object} SearchResult
// @Success      204 "Superseded by a newer search"
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /v1/flights/search [post]
func (h *FlightHandler) SearchFlightsHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, NewAppError(ErrorCodeValidation, "invalid JSON body: "+err.Error(), err))
		return
	}

	session := h.service.Session(c.Request.Context(), ClientID(c))
	result, err := session.Search(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, err)
		return
	}
	if result == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitDebouncedHandler godoc
// @Summary      Schedule a debounced search
// @Description  Runs the search after a short quiet period; only the last submission in the window is sent.
// @Tags         flights
// @Accept       json
// @Produce      json
// @Param        request body SearchRequest true "Search criteria"
// @Success      202 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Router       /v1/flights/search/debounced [post]
func (h *FlightHandler) SubmitDebouncedHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, NewAppError(ErrorCodeValidation, "invalid JSON body: "+err.Error(), err))
		return
	}

	h.service.Session(c.Request.Context(), ClientID(c)).SubmitDebounced(req)
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled"})
}

// ClearSearchHandler godoc
// @Summary      Clear the current search
// @Tags         flights
// @Success      204
// @Router       /v1/flights/search [delete]
func (h *FlightHandler) ClearSearchHandler(c *gin.Context) {
	h.service.Session(c.Request.Context(), ClientID(c)).ClearSearch()
	c.Status(http.StatusNoContent)
}

// SessionHandler godoc
// @Summary      Current search session
// @Description  Phase, active filters and sort, recent searches and the visible flight list.
// @Tags         flights
// @Produce      json
// @Success      200 {object} SessionView
// @Router       /v1/flights/session [get]
func (h *FlightHandler) SessionHandler(c *gin.Context) {
	session := h.service.Session(c.Request.Context(), ClientID(c))
	c.JSON(http.StatusOK, h.view(session.Snapshot()))
}

// UpdateFiltersHandler godoc
// @Summary      Update filters
// @Description  Partial update; fields left out keep their value, names in "clear" are reset.
// @Tags         flights
// @Accept       json
// @Produce      json
// @Param        request body FilterPatch true "Filter changes"
// @Success      200 {object} SessionView
// @Failure      400 {object} ErrorResponse
// @Router       /v1/flights/filters [patch]
func (h *FlightHandler) UpdateFiltersHandler(c *gin.Context) {
	var patch FilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.sendError(c, NewAppError(ErrorCodeValidation, "invalid filter body: "+err.Error(), err))
		return
	}

	session := h.service.Session(c.Request.Context(), ClientID(c))
	session.UpdateFilters(patch)
	c.JSON(http.StatusOK, h.view(session.Snapshot()))
}

// UpdateSortingHandler godoc
// @Summary      Change sort order
// @Tags         flights
// @Accept       json
// @Produce      json
// @Param        request body SortRequest true "price_asc, duration_asc or recommended"
// @Success      200 {object} SessionView
// @Failure      400 {object} ErrorResponse
// @Router       /v1/flights/sort [put]
func (h *FlightHandler) UpdateSortingHandler(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, NewAppError(ErrorCodeValidation, "invalid sort body: "+err.Error(), err))
		return
	}

	session := h.service.Session(c.Request.Context(), ClientID(c))
	if _, err := session.UpdateSorting(req.SortKey); err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(session.Snapshot()))
}

// GetOfferHandler godoc
// @Summary      Fetch a single offer
// @Tags         flights
// @Produce      json
// @Param        id path string true "Offer id"
// @Success      200 {object} Flight
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /v1/flights/offers/{id} [get]
func (h *FlightHandler) GetOfferHandler(c *gin.Context) {
	offer, err := h.service.GetOffer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// GetAirportsHandler godoc
// @Summary      Airport lookup
// @Tags         reference
// @Produce      json
// @Param        query query string false "City or airport name"
// @Success      200 {array} Airport
// @Router       /v1/airports [get]
func (h *FlightHandler) GetAirportsHandler(c *gin.Context) {
	airports, err := h.service.GetAirports(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, airports)
}

// GetAirlinesHandler godoc
// @Summary      Airline lookup
// @Tags         reference
// @Produce      json
// @Success      200 {array} Airline
// @Router       /v1/airlines [get]
func (h *FlightHandler) GetAirlinesHandler(c *gin.Context) {
	airlines, err := h.service.GetAirlines(c.Request.Context())
	if err != nil {
		h.sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, airlines)
}

// ClearCacheHandler godoc
// @Summary      Drop every cached result
// @Tags         cache
// @Success      204
// @Router       /v1/cache [delete]
func (h *FlightHandler) ClearCacheHandler(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		h.sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CacheStatsHandler godoc
// @Summary      Cache statistics
// @Tags         cache
// @Produce      json
// @Success      200 {object} CacheStats
// @Router       /v1/cache/stats [get]
func (h *FlightHandler) CacheStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CacheStats(c.Request.Context()))
}

func (h *FlightHandler) view(st SessionState) SessionView {
	v := SessionView{
		Phase:          st.Phase,
		ActiveRequest:  st.ActiveRequest,
		Filters:        st.Filters,
		SortKey:        st.SortKey,
		Error:          st.Error,
		RecentSearches: st.RecentSearches,
		Flights:        []Flight{},
	}
	if !h.exposeDetails {
		v.Error = st.Error.Redacted()
	}
	if st.Results != nil {
		v.Flights = Sort(Filter(st.Results.Flights, st.Filters), st.SortKey)
		v.Result = &ResultSummary{
			RequestFingerprint: st.Results.RequestFingerprint,
			OfferRequestID:     st.Results.OfferRequestID,
			TotalCount:         st.Results.TotalCount,
			VisibleCount:       len(v.Flights),
			FromCache:          st.Results.FromCache,
			FetchedAt:          st.Results.FetchedAt,
		}
	}
	return v
}

func (h *FlightHandler) sendError(c *gin.Context, err error) {
	var appErr *AppError

	if errors.As(err, &appErr) {
		resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code, Field: appErr.Field, Rule: appErr.Rule}
		if h.exposeDetails {
			resp.Details = appErr.Details
		}
		c.JSON(appErr.Status, resp)
		return
	}

	h.logger.Error("unhandled error", logger.Err(err))
	resp := ErrorResponse{Error: "Internal Server Error", Code: ErrorCodeInternalFailure}
	if h.exposeDetails {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
