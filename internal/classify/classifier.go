// Package classify assigns the sales/purchase direction to extracted
// invoices by matching the filing company's identity against the vendor.
package classify

import (
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// Filer identifies the company the documents are being processed for.
type Filer struct {
	CompanyName string
	TRN         string
}

const tokenMatchThreshold = 0.6

// InvoiceType decides whether the filer issued the invoice (sales) or
// received it (purchase). TRN evidence wins over name evidence; the
// default is purchase.
func InvoiceType(inv domain.Invoice, filer Filer) domain.InvoiceType {
	vendorTRN := normalizeTRN(inv.VendorTRN)
	filerTRN := normalizeTRN(filer.TRN)
	if vendorTRN != "" && filerTRN != "" {
		if vendorTRN == filerTRN {
			return domain.InvoiceTypeSales
		}
		if len(vendorTRN) > 5 && len(filerTRN) > 5 &&
			(strings.Contains(vendorTRN, filerTRN) || strings.Contains(filerTRN, vendorTRN)) {
			return domain.InvoiceTypeSales
		}
	}

	vendor := normalizeName(inv.VendorName)
	company := normalizeName(filer.CompanyName)
	if vendor != "" && company != "" {
		if strings.Contains(vendor, company) || strings.Contains(company, vendor) {
			return domain.InvoiceTypeSales
		}
		if tokenMatchRatio(company, vendor) >= tokenMatchThreshold {
			return domain.InvoiceTypeSales
		}
	}

	return domain.InvoiceTypePurchase
}

// normalizeTRN strips everything but letters and digits and uppercases.
func normalizeTRN(trn string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(trn) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeName lowercases and keeps letters, digits and spaces so that
// punctuation differences ("Al-Noor L.L.C." vs "Al Noor LLC") collapse.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenMatchRatio counts how many of the filer's name tokens (longer
// than 2 characters) appear as a substring of any vendor-name token.
func tokenMatchRatio(company, vendor string) float64 {
	vendorTokens := strings.Fields(vendor)

	var total, matched int
	for _, tok := range strings.Fields(company) {
		if len(tok) <= 2 {
			continue
		}
		total++
		for _, vt := range vendorTokens {
			if strings.Contains(vt, tok) {
				matched++
				break
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}
