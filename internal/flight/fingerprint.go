package flight

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

const searchKeyPrefix = "flight:search:"

// canonicalRequest fixes field order and casing so equivalent requests serialize identically.
type canonicalRequest struct {
	Origin          string           `json:"o"`
	Destination     string           `json:"d"`
	DepartureDate   string           `json:"dd"`
	ReturnDate      string           `json:"rd"`
	Passengers      uint32           `json:"p"`
	CabinClass      string           `json:"c"`
	LoyaltyAccounts []LoyaltyAccount `json:"l"`
	CorporateFares  bool             `json:"cf"`
}

// Normalize returns req with codes upper-cased, dates in ISO form, the cabin defaulted
// and loyalty accounts sorted.
func Normalize(req SearchRequest) SearchRequest {
	out := SearchRequest{
		Origin:         strings.ToUpper(strings.TrimSpace(req.Origin)),
		Destination:    strings.ToUpper(strings.TrimSpace(req.Destination)),
		DepartureDate:  isoDate(req.DepartureDate),
		ReturnDate:     isoDate(req.ReturnDate),
		Passengers:     req.Passengers,
		CabinClass:     strings.ToLower(strings.TrimSpace(req.CabinClass)),
		CorporateFares: req.CorporateFares,
	}
	if out.CabinClass == "" {
		out.CabinClass = string(CabinEconomy)
	}

	if len(req.LoyaltyAccounts) > 0 {
		out.LoyaltyAccounts = make([]LoyaltyAccount, 0, len(req.LoyaltyAccounts))
		for _, acc := range req.LoyaltyAccounts {
			out.LoyaltyAccounts = append(out.LoyaltyAccounts, LoyaltyAccount{
				AirlineIATACode: strings.ToUpper(strings.TrimSpace(acc.AirlineIATACode)),
				AccountNumber:   strings.TrimSpace(acc.AccountNumber),
			})
		}
		sort.Slice(out.LoyaltyAccounts, func(i, j int) bool {
			a, b := out.LoyaltyAccounts[i], out.LoyaltyAccounts[j]
			if a.AirlineIATACode != b.AirlineIATACode {
				return a.AirlineIATACode < b.AirlineIATACode
			}
			return a.AccountNumber < b.AccountNumber
		})
	}
	return out
}

// Fingerprint is the cache key of a search request.
func Fingerprint(req SearchRequest) string {
	n := Normalize(req)
	payload, _ := json.Marshal(canonicalRequest{
		Origin:          n.Origin,
		Destination:     n.Destination,
		DepartureDate:   n.DepartureDate,
		ReturnDate:      n.ReturnDate,
		Passengers:      n.Passengers,
		CabinClass:      n.CabinClass,
		LoyaltyAccounts: n.LoyaltyAccounts,
		CorporateFares:  n.CorporateFares,
	})

	hash := sha256.Sum256(payload)
	return searchKeyPrefix + hex.EncodeToString(hash[:])
}

func isoDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return s
}
