package flight

import (
	"strings"
	"time"
)

const endOfDaySeconds = 24*3600 - 1

// filterContext holds parsed bounds so we don't re-parse inside the loop
type filterContext struct {
	opts     FilterState
	depFrom  int64
	depTo    int64
	arrFrom  int64
	arrTo    int64
	airlines map[string]struct{}
}

func newFilterContext(opts FilterState) *filterContext {
	fc := &filterContext{opts: opts}

	if opts.DepartureTime != nil {
		fc.depFrom = parseTimeToSeconds(opts.DepartureTime.From, 0)
		fc.depTo = parseTimeToSeconds(opts.DepartureTime.To, endOfDaySeconds)
	}
	if opts.ArrivalTime != nil {
		fc.arrFrom = parseTimeToSeconds(opts.ArrivalTime.From, 0)
		fc.arrTo = parseTimeToSeconds(opts.ArrivalTime.To, endOfDaySeconds)
	}
	if len(opts.Airlines) > 0 {
		fc.airlines = make(map[string]struct{}, len(opts.Airlines))
		for _, a := range opts.Airlines {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				fc.airlines[a] = struct{}{}
			}
		}
	}
	return fc
}

// Filter returns the flights satisfying every active constraint, in input order.
// The input slice is not modified.
func Filter(flights []Flight, opts FilterState) []Flight {
	fc := newFilterContext(opts)

	filtered := make([]Flight, 0, len(flights))
	for _, f := range flights {
		if fc.matches(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// matches returns true only if ALL active filters pass
func (fc *filterContext) matches(f Flight) bool {
	if fc.opts.PriceRange != nil {
		if !fc.opts.PriceRange.Contains(f.TotalPrice.Amount) {
			return false
		}
	}

	if fc.opts.MaxStops != nil {
		if uint32(f.Stops()) > *fc.opts.MaxStops {
			return false
		}
	}

	if fc.opts.DurationRange != nil {
		if !fc.opts.DurationRange.Contains(f.TotalDurationMinutes()) {
			return false
		}
	}

	if fc.opts.DepartureTime != nil || fc.opts.ArrivalTime != nil {
		out, ok := f.Outbound()
		if !ok || len(out.Segments) == 0 {
			return false
		}

		if fc.opts.DepartureTime != nil {
			dep := out.Segments[0].DepartAt
			if dep.IsZero() || !inBand(getSecondsFromMidnight(dep), fc.depFrom, fc.depTo) {
				return false
			}
		}
		if fc.opts.ArrivalTime != nil {
			arr := out.Segments[len(out.Segments)-1].ArriveAt
			if arr.IsZero() || !inBand(getSecondsFromMidnight(arr), fc.arrFrom, fc.arrTo) {
				return false
			}
		}
	}

	// Airlines (String comparison is heaviest, do last)
	if len(fc.airlines) > 0 {
		matched := false
		for _, a := range f.Airlines() {
			if fc.hasAirline(a) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func (fc *filterContext) hasAirline(a Airline) bool {
	if _, ok := fc.airlines[strings.ToLower(a.Code)]; ok && a.Code != "" {
		return true
	}
	_, ok := fc.airlines[strings.ToLower(a.Name)]
	return ok && a.Name != ""
}

// inBand handles bands that wrap past midnight, e.g. 22:00-06:00.
func inBand(sec, from, to int64) bool {
	if from <= to {
		return sec >= from && sec <= to
	}
	return sec >= from || sec <= to
}

func parseTimeToSeconds(timeStr string, fallback int64) int64 {
	t, err := time.Parse("15:04", strings.TrimSpace(timeStr))
	if err != nil {
		return fallback
	}
	return int64(t.Hour()*3600 + t.Minute()*60)
}

// getSecondsFromMidnight uses the wall clock of dt's own zone, i.e. airport local time.
func getSecondsFromMidnight(dt time.Time) int64 {
	return int64(dt.Hour()*3600 + dt.Minute()*60)
}
