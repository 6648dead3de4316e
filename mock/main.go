package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
)

func main() {
	// Default port
	port := "8081"

	// Check if port is provided as command line argument
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /air/offer_requests", OfferRequestHandler)
	mux.HandleFunc("GET /air/offers/{id}", OfferHandler)
	mux.HandleFunc("GET /air/airports", AirportsHandler)
	mux.HandleFunc("GET /air/airlines", AirlinesHandler)
	mux.HandleFunc("GET /places/suggestions", SuggestionsHandler)

	addr := fmt.Sprintf(":%s", port)
	fmt.Printf("Duffel mock server running on port %s...\n", port)
	if err := http.ListenAndServe(addr, requireAuth(mux)); err != nil {
		log.Fatal(err)
	}
}

// requireAuth rejects calls without a bearer token or API version, like the real API.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing_authorization_header", "a bearer token is required")
			return
		}
		if r.Header.Get("Duffel-Version") == "" {
			writeError(w, http.StatusBadRequest, "missing_version_header", "Duffel-Version header is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]string{{
			"code":    code,
			"title":   http.StatusText(status),
			"message": message,
			"type":    "invalid_request_error",
		}},
	})
}
