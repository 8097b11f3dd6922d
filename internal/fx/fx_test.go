package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

// recordingRateClient counts calls and returns a fixed rate or error.
type recordingRateClient struct {
	calls int
	rate  float64
	err   error
}

func (c *recordingRateClient) Pair(ctx context.Context, base, target string) (float64, error) {
	c.calls++
	return c.rate, c.err
}

func TestNormalizer_Resolve(t *testing.T) {
	n := NewNormalizer(nil, zerolog.Nop())

	tests := []struct {
		label string
		want  string
	}{
		{"$", "USD"},
		{"US", "USD"},
		{"Dollars", "USD"},
		{"US Dollars", ""}, // compound label, not in table, not 3 letters
		{"€", "EUR"},
		{"Euros", "EUR"},
		{"£", "GBP"},
		{"Pound Sterling", ""}, // two words, not in table, not 3 letters
		{"¥", "JPY"},
		{"₹", "INR"},
		{"Riyal", "SAR"},
		{"Dirhams", "AED"},
		{"aed", "AED"},
		{"CHF", "CHF"}, // unknown but well-formed code passes through
		{"???", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := n.Resolve(tt.label); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Factor_IdentityShortcuts(t *testing.T) {
	rc := &recordingRateClient{rate: 3.67}
	n := NewNormalizer(rc, zerolog.Nop())

	tests := []struct {
		name   string
		source string
		target string
	}{
		{"empty source", "", "AED"},
		{"not applicable", "N/A", "AED"},
		{"same currency", "AED", "AED"},
		{"same after resolution", "Dirhams", "AED"},
		{"unmappable label", "???", "AED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Factor(context.Background(), tt.source, tt.target); got != 1 {
				t.Errorf("Factor(%q, %q) = %v, want 1", tt.source, tt.target, got)
			}
		})
	}

	if rc.calls != 0 {
		t.Errorf("expected no rate lookups for identity cases, got %d", rc.calls)
	}
}

func TestNormalizer_Factor_Lookup(t *testing.T) {
	rc := &recordingRateClient{rate: 3.67}
	n := NewNormalizer(rc, zerolog.Nop())

	got := n.Factor(context.Background(), "$", "AED")
	if got != 3.67 {
		t.Errorf("Factor = %v, want 3.67", got)
	}
	if rc.calls != 1 {
		t.Errorf("expected exactly one rate lookup, got %d", rc.calls)
	}
}

func TestNormalizer_Factor_LookupFailureFallsBackToOne(t *testing.T) {
	rc := &recordingRateClient{err: fmt.Errorf("boom")}
	n := NewNormalizer(rc, zerolog.Nop())

	if got := n.Factor(context.Background(), "USD", "AED"); got != 1 {
		t.Errorf("Factor with failing lookup = %v, want 1", got)
	}
}

func TestHTTPRateClient_Pair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pair/USD/AED" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(pairResponse{Result: "success", ConversionRate: 3.6725})
	}))
	defer srv.Close()

	c := NewHTTPRateClient(srv.URL)
	rate, err := c.Pair(context.Background(), "USD", "AED")
	if err != nil {
		t.Fatalf("Pair failed: %v", err)
	}
	if rate != 3.6725 {
		t.Errorf("rate = %v, want 3.6725", rate)
	}
}

func TestHTTPRateClient_Pair_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success result",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(pairResponse{Result: "error"})
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not json")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewHTTPRateClient(srv.URL)
			if _, err := c.Pair(context.Background(), "USD", "AED"); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
