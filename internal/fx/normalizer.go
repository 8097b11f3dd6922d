package fx

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// currencyAliases maps freeform symbols and words to ISO 4217 codes.
// Keys are matched against both the letters-only uppercased candidate and
// the raw trimmed label, so "$", "Euros" and "UAE Dirham" all resolve.
var currencyAliases = map[string]string{
	"$": "USD", "US$": "USD", "USD": "USD", "DOLLAR": "USD", "DOLLARS": "USD", "US": "USD",
	"€": "EUR", "EUR": "EUR", "EURO": "EUR", "EUROS": "EUR",
	"£": "GBP", "GBP": "GBP", "POUND": "GBP", "POUNDS": "GBP", "STERLING": "GBP",
	"¥": "JPY", "JPY": "JPY", "YEN": "JPY",
	"₹": "INR", "INR": "INR", "RUPEE": "INR", "RUPEES": "INR", "RS": "INR",
	"SAR": "SAR", "RIYAL": "SAR", "RIYALS": "SAR", "SR": "SAR",
	"AED": "AED", "DIRHAM": "AED", "DIRHAMS": "AED", "DHS": "AED", "UAEDIRHAM": "AED",
}

// Normalizer resolves freeform currency labels to 3-letter codes and
// fetches conversion factors. Every path fails open: a label that cannot
// be resolved or a rate that cannot be fetched yields factor 1.
type Normalizer struct {
	rates RateClient
	log   zerolog.Logger
}

// NewNormalizer creates a normalizer backed by the given rate client.
func NewNormalizer(rates RateClient, log zerolog.Logger) *Normalizer {
	return &Normalizer{rates: rates, log: log}
}

// Resolve maps a freeform currency label to a 3-letter code, or "" when
// the label cannot be resolved.
func (n *Normalizer) Resolve(label string) string {
	raw := strings.TrimSpace(label)
	if raw == "" {
		return ""
	}

	candidate := lettersOnly(strings.ToUpper(raw))
	if code, ok := currencyAliases[candidate]; ok {
		return code
	}
	if code, ok := currencyAliases[strings.ToUpper(raw)]; ok {
		return code
	}
	if len(candidate) == 3 {
		return candidate
	}
	return ""
}

// Factor returns the multiplicative factor converting amounts in the
// source currency into the target currency. It never returns an error;
// identity (1) is the answer for empty, "N/A", equal, unresolvable
// source labels and for any rate-lookup failure.
func (n *Normalizer) Factor(ctx context.Context, source, target string) float64 {
	src := strings.TrimSpace(source)
	tgt := strings.ToUpper(strings.TrimSpace(target))
	if src == "" || strings.EqualFold(src, "N/A") || strings.EqualFold(src, tgt) {
		return 1
	}

	code := n.Resolve(src)
	if code == "" {
		n.log.Warn().Str("label", src).Msg("Unresolvable currency label, keeping amounts as-is")
		return 1
	}
	if code == tgt {
		return 1
	}

	rate, err := n.rates.Pair(ctx, code, tgt)
	if err != nil {
		n.log.Warn().Err(err).Str("base", code).Str("target", tgt).Msg("Rate lookup failed, keeping amounts as-is")
		return 1
	}
	return rate
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
