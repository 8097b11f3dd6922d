package reconcile

import (
	"strings"
	"time"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// dateLayouts are tried in order when parsing freeform statement dates.
// Day-first layouts come before month-first ones because the statements
// this pipeline sees are predominantly DD/MM.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a freeform date string against the known layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterByDateRange keeps transactions whose date falls inside the
// inclusive [start, end] window. Either bound may be empty. Rows whose
// date cannot be parsed are kept: dropping them would silently lose
// money movements over a formatting quirk.
func FilterByDateRange(txs []domain.Transaction, start, end string) []domain.Transaction {
	from, hasFrom := ParseDate(start)
	to, hasTo := ParseDate(end)
	if !hasFrom && !hasTo {
		return txs
	}

	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		d, ok := ParseDate(tx.Date)
		if !ok {
			out = append(out, tx)
			continue
		}
		if hasFrom && d.Before(from) {
			continue
		}
		if hasTo && d.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
