package reconcile

import (
	"math"
	"testing"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

func TestRebuildBalances_ForwardRecomputation(t *testing.T) {
	txs := []domain.Transaction{
		{Date: "01/01/2024", Description: "Salary", Credit: 5000, Balance: 0},
		{Date: "02/01/2024", Description: "Rent", Debit: 2000, Balance: 12345}, // junk extracted balance
		{Date: "03/01/2024", Description: "Groceries", Debit: 150.55, Balance: 0},
	}
	summary := domain.BankStatementSummary{OpeningBalance: 1000}

	got, sum := RebuildBalances(txs, summary)

	wantBalances := []float64{6000, 4000, 3849.45}
	for i, w := range wantBalances {
		if got[i].Balance != w {
			t.Errorf("balance[%d] = %v, want %v", i, got[i].Balance, w)
		}
	}
	if sum.ClosingBalance != 3849.45 {
		t.Errorf("closing = %v, want 3849.45", sum.ClosingBalance)
	}
	if sum.TotalWithdrawals != 2150.55 {
		t.Errorf("withdrawals = %v, want 2150.55", sum.TotalWithdrawals)
	}
	if sum.TotalDeposits != 5000 {
		t.Errorf("deposits = %v, want 5000", sum.TotalDeposits)
	}
}

func TestRebuildBalances_BackComputedOpening(t *testing.T) {
	txs := []domain.Transaction{
		{Date: "01/01/2024", Description: "Transfer in", Credit: 100, Balance: 600},
		{Date: "02/01/2024", Description: "Card payment", Debit: 50, Balance: 0},
	}

	got, sum := RebuildBalances(txs, domain.BankStatementSummary{})

	if sum.OpeningBalance != 500 {
		t.Errorf("opening = %v, want 500 (back-computed)", sum.OpeningBalance)
	}
	if got[0].Balance != 600 || got[1].Balance != 550 {
		t.Errorf("balances = %v/%v, want 600/550", got[0].Balance, got[1].Balance)
	}
}

func TestRebuildBalances_Invariant(t *testing.T) {
	txs := []domain.Transaction{
		{Date: "01/01/2024", Debit: 12.34, Balance: 1},
		{Date: "02/01/2024", Credit: 1000.01, Balance: 2},
		{Date: "03/01/2024", Debit: 0.07, Balance: 3},
		{Date: "04/01/2024", Credit: 55.55, Debit: 0, Balance: 0},
	}

	got, _ := RebuildBalances(txs, domain.BankStatementSummary{OpeningBalance: 250.25})

	for i := 1; i < len(got); i++ {
		expected := got[i-1].Balance - got[i].Debit + got[i].Credit
		if math.Abs(got[i].Balance-expected) >= 0.01 {
			t.Errorf("row %d violates balance invariant: %v vs %v", i, got[i].Balance, expected)
		}
	}
}

func TestRebuildBalances_SummaryKeptWithinTolerance(t *testing.T) {
	txs := []domain.Transaction{
		{Date: "01/01/2024", Credit: 100},
	}
	summary := domain.BankStatementSummary{OpeningBalance: 1000, ClosingBalance: 1100.005}

	_, sum := RebuildBalances(txs, summary)

	// Extracted closing agrees with computed 1100 within tolerance and is kept.
	if sum.ClosingBalance != 1100.005 {
		t.Errorf("closing = %v, want extracted 1100.005 preserved", sum.ClosingBalance)
	}
}

func TestRebuildBalances_Empty(t *testing.T) {
	got, sum := RebuildBalances(nil, domain.BankStatementSummary{OpeningBalance: 42})

	if len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
	if sum.OpeningBalance != 42 {
		t.Errorf("opening = %v, want 42", sum.OpeningBalance)
	}
	if sum.TotalDeposits != 0 || sum.TotalWithdrawals != 0 {
		t.Errorf("totals should be zero, got %v/%v", sum.TotalDeposits, sum.TotalWithdrawals)
	}
}
