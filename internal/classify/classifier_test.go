package classify

import (
	"testing"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

func TestInvoiceType(t *testing.T) {
	filer := Filer{
		CompanyName: "Al Noor Trading LLC",
		TRN:         "100-2345-6789-0003",
	}

	tests := []struct {
		name    string
		invoice domain.Invoice
		want    domain.InvoiceType
	}{
		{
			name:    "matching TRN is sales",
			invoice: domain.Invoice{VendorName: "Some Other Name", VendorTRN: "100234567890003"},
			want:    domain.InvoiceTypeSales,
		},
		{
			name:    "TRN with punctuation still matches",
			invoice: domain.Invoice{VendorTRN: "100-2345-6789-0003"},
			want:    domain.InvoiceTypeSales,
		},
		{
			name:    "TRN containment matches",
			invoice: domain.Invoice{VendorTRN: "TRN:100234567890003"},
			want:    domain.InvoiceTypeSales,
		},
		{
			name:    "different TRN but exact vendor name is sales",
			invoice: domain.Invoice{VendorName: "AL NOOR TRADING L.L.C.", VendorTRN: "999999999999999"},
			want:    domain.InvoiceTypeSales,
		},
		{
			name:    "vendor name containing company is sales",
			invoice: domain.Invoice{VendorName: "Al Noor Trading LLC - Dubai Branch"},
			want:    domain.InvoiceTypeSales,
		},
		{
			name:    "token ratio above threshold is sales",
			invoice: domain.Invoice{VendorName: "Alnoor Trading Company"},
			want:    domain.InvoiceTypeSales,
		},
		{
			name:    "unrelated vendor is purchase",
			invoice: domain.Invoice{VendorName: "Emirates Telecom", VendorTRN: "555555555555555"},
			want:    domain.InvoiceTypePurchase,
		},
		{
			name:    "empty vendor identity is purchase",
			invoice: domain.Invoice{},
			want:    domain.InvoiceTypePurchase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InvoiceType(tt.invoice, filer); got != tt.want {
				t.Errorf("InvoiceType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenMatchRatio(t *testing.T) {
	tests := []struct {
		company string
		vendor  string
		want    float64
	}{
		{"al noor trading llc", "alnoor trading company", 2.0 / 3.0},
		{"gulf star", "gulf star services", 1},
		{"abc", "xyz", 0},
		{"", "anything", 0},
	}

	for _, tt := range tests {
		t.Run(tt.company+"/"+tt.vendor, func(t *testing.T) {
			if got := tokenMatchRatio(tt.company, tt.vendor); got != tt.want {
				t.Errorf("tokenMatchRatio(%q, %q) = %v, want %v", tt.company, tt.vendor, got, tt.want)
			}
		})
	}
}
