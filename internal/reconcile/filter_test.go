package reconcile

import (
	"testing"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"15/01/2024", "2024-01-15", true},
		{"15-01-2024", "2024-01-15", true},
		{"15 Jan 2024", "2024-01-15", true},
		{"Jan 15, 2024", "2024-01-15", true},
		{"not a date", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestFilterByDateRange(t *testing.T) {
	txs := []domain.Transaction{
		{Date: "01/01/2024", Description: "before"},
		{Date: "15/01/2024", Description: "inside"},
		{Date: "31/01/2024", Description: "boundary"},
		{Date: "01/02/2024", Description: "after"},
		{Date: "??", Description: "undated"},
	}

	t.Run("both bounds", func(t *testing.T) {
		got := FilterByDateRange(txs, "10/01/2024", "31/01/2024")
		if len(got) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(got))
		}
		if got[0].Description != "inside" || got[1].Description != "boundary" || got[2].Description != "undated" {
			t.Errorf("unexpected rows: %+v", got)
		}
	})

	t.Run("no bounds is passthrough", func(t *testing.T) {
		got := FilterByDateRange(txs, "", "")
		if len(got) != len(txs) {
			t.Errorf("expected %d rows, got %d", len(txs), len(got))
		}
	})

	t.Run("only start", func(t *testing.T) {
		got := FilterByDateRange(txs, "2024-01-20", "")
		// 31/01, 01/02 and the undated row survive.
		if len(got) != 3 {
			t.Errorf("expected 3 rows, got %d", len(got))
		}
	})

	t.Run("unparseable bounds are ignored", func(t *testing.T) {
		got := FilterByDateRange(txs, "whenever", "")
		if len(got) != len(txs) {
			t.Errorf("expected passthrough, got %d rows", len(got))
		}
	})
}
