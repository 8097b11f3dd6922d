package reconcile

import (
	"math"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

// RebuildBalances recomputes the running balance column from the opening
// balance and each row's debit/credit. The computed value is
// authoritative and overwrites every row's extracted balance. The
// summary's opening/closing figures are replaced when they diverge from
// the computed values beyond the tolerance, and the withdrawal/deposit
// totals are always recomputed from the rows.
func RebuildBalances(txs []domain.Transaction, summary domain.BankStatementSummary) ([]domain.Transaction, domain.BankStatementSummary) {
	opening := summary.OpeningBalance
	if opening == 0 && len(txs) > 0 && txs[0].Balance != 0 {
		// Back-compute what the balance was before the first row.
		opening = round2(txs[0].Balance - txs[0].Credit + txs[0].Debit)
	}

	current := opening
	var withdrawals, deposits float64

	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		current = round2(current - tx.Debit + tx.Credit)
		tx.Balance = current
		withdrawals += tx.Debit
		deposits += tx.Credit
		out[i] = tx
	}

	if math.Abs(summary.OpeningBalance-opening) > epsilon {
		summary.OpeningBalance = opening
	}
	if math.Abs(summary.ClosingBalance-current) > epsilon {
		summary.ClosingBalance = current
	}
	summary.TotalWithdrawals = round2(withdrawals)
	summary.TotalDeposits = round2(deposits)

	return out, summary
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
