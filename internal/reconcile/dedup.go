// Package reconcile turns the harmonizer's raw transaction candidates
// into a clean ledger: duplicate and split rows are collapsed, an
// optional date window is applied, and the running balance is rebuilt
// from the opening balance.
package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// epsilon is the tolerance for treating two monetary values as equal.
const epsilon = 0.01

// placeholderDates are date cells that mark a wrapped continuation of
// the previous logical row rather than a new transaction.
var placeholderDates = map[string]bool{
	"":    true,
	"-":   true,
	"N/A": true,
	"..":  true,
	".":   true,
}

// Deduplicate runs a single forward pass over harmonized transactions,
// collapsing exact repeats, continuation rows, carried-over balance
// lines and sequential OCR redundancy. Running it on its own output is
// a no-op.
func Deduplicate(txs []domain.Transaction) []domain.Transaction {
	result := make([]domain.Transaction, 0, len(txs))
	seen := make(map[string]struct{}, len(txs))

	for _, tx := range txs {
		tx.Description = strings.TrimSpace(tx.Description)
		tx.Date = strings.TrimSpace(tx.Date)

		key := identityKey(tx)
		if _, ok := seen[key]; ok {
			continue
		}

		if len(result) > 0 {
			prev := &result[len(result)-1]

			if placeholderDates[tx.Date] {
				// Wrapped text from the previous row: merge and backfill.
				if tx.Description != "" {
					prev.Description = strings.TrimSpace(prev.Description + " " + tx.Description)
				}
				if prev.Debit == 0 && tx.Debit != 0 {
					prev.Debit = tx.Debit
				}
				if prev.Credit == 0 && tx.Credit != 0 {
					prev.Credit = tx.Credit
				}
				if prev.Balance == 0 && tx.Balance != 0 {
					prev.Balance = tx.Balance
				}
				continue
			}

			// Repeated header or balance carried over a page break.
			if tx.Debit == 0 && tx.Credit == 0 && tx.Balance != 0 &&
				math.Abs(tx.Balance-prev.Balance) < epsilon {
				continue
			}

			// The same row read twice in sequence.
			if tx.Date == prev.Date &&
				math.Abs(tx.Debit-prev.Debit) < epsilon &&
				math.Abs(tx.Credit-prev.Credit) < epsilon &&
				balancesCompatible(tx.Balance, prev.Balance) {
				continue
			}
		}

		result = append(result, tx)
		seen[key] = struct{}{}
	}

	return result
}

// identityKey builds the composite dedup hash for a transaction.
func identityKey(tx domain.Transaction) string {
	return fmt.Sprintf("%s|%s|%.2f|%.2f|%.2f",
		tx.Date, strings.ToLower(tx.Description), tx.Debit, tx.Credit, tx.Balance)
}

func balancesCompatible(a, b float64) bool {
	return a == 0 || b == 0 || math.Abs(a-b) < epsilon
}
